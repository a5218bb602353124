package xmlrpc

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kbukum/xmlrpc/codec"
	"github.com/kbukum/xmlrpc/validation"
	"github.com/kbukum/xmlrpc/version"
)

// Credentials is a username and password pair. In a struct, an empty Pass
// is a supplied empty password. Map and URI input with no password at all
// leave BasicAuth unset.
type Credentials struct {
	User string `json:"user" yaml:"user" mapstructure:"user" validate:"required"`
	Pass string `json:"pass" yaml:"pass" mapstructure:"pass"`
}

// Options describes the server a Client talks to.
type Options struct {
	Host string `json:"host" yaml:"host" mapstructure:"host" validate:"required"`
	// Port defaults to 443 for secure clients and 80 otherwise.
	Port int `json:"port" yaml:"port" mapstructure:"port" validate:"min=1,max=65535"`
	// Path defaults to "/".
	Path string `json:"path" yaml:"path" mapstructure:"path" validate:"startswith=/"`
	// Headers are sent with every request and take precedence over the
	// client defaults.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers" mapstructure:"headers"`
	// BasicAuth is sent on every request unless Headers sets Authorization.
	BasicAuth *Credentials `json:"basic_auth,omitempty" yaml:"basic_auth" mapstructure:"basic_auth"`
	// DigestAuth answers a 401 Digest challenge.
	DigestAuth *Credentials `json:"digest_auth,omitempty" yaml:"digest_auth" mapstructure:"digest_auth"`
	// ResponseEncoding forces the text encoding used to read responses.
	ResponseEncoding string `json:"responseEncoding,omitempty" yaml:"response_encoding" mapstructure:"responseEncoding"`
}

// defaultHeaders are applied in this order to names the caller left unset.
func defaultHeaders() [][2]string {
	return [][2]string{
		{"User-Agent", version.UserAgent()},
		{"Content-Type", "text/xml"},
		{"Accept", "text/xml"},
		{"Accept-Charset", "UTF8"},
		{"Connection", "Keep-Alive"},
	}
}

// ParseURI splits a URI into Options. Credentials in the URI become
// BasicAuth when both user and password are present. The scheme is ignored; the secure flag passed to New decides the
// transport.
func ParseURI(uri string) (Options, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Options{}, configurationError("invalid uri", err)
	}
	if u.Host == "" {
		return Options{}, configurationError(fmt.Sprintf("uri %q has no host", uri), nil)
	}

	o := Options{Host: u.Hostname(), Path: u.EscapedPath()}
	if p := u.Port(); p != "" {
		o.Port, err = strconv.Atoi(p)
		if err != nil {
			return Options{}, configurationError("invalid port", err)
		}
	}
	if u.RawQuery != "" {
		o.Path += "?" + u.RawQuery
	}
	if u.User != nil {
		if pass, ok := u.User.Password(); ok {
			o.BasicAuth = &Credentials{User: u.User.Username(), Pass: pass}
		}
	}
	return o, nil
}

// decodeOptions converts a loosely typed map into Options. Keys match field
// names case-insensitively and with or without underscores, so "basic_auth",
// "basicAuth" and "responseEncoding" all work. A basic_auth without a pass
// key is dropped, so no Basic header is built from it.
func decodeOptions(m map[string]any) (Options, error) {
	var o Options
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &o,
		Metadata:         &md,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		MatchName: func(mapKey, fieldName string) bool {
			return normalizeKey(mapKey) == normalizeKey(fieldName)
		},
	})
	if err != nil {
		return Options{}, configurationError("invalid options", err)
	}
	if err := dec.Decode(m); err != nil {
		return Options{}, configurationError("invalid options", err)
	}
	if o.BasicAuth != nil && slices.Contains(md.Unset, "basic_auth.pass") {
		o.BasicAuth = nil
	}
	return o, nil
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

// resolve fills defaults, validates, and builds the base descriptor.
func (o Options) resolve(secure bool) (*target, error) {
	if o.Port == 0 {
		o.Port = 80
		if secure {
			o.Port = 443
		}
	}
	if o.Path == "" {
		o.Path = "/"
	}
	if err := validation.Validate(o); err != nil {
		return nil, configurationError("invalid options", err)
	}
	if o.ResponseEncoding != "" && !codec.KnownEncoding(o.ResponseEncoding) {
		return nil, configurationError(fmt.Sprintf("unknown response encoding %q", o.ResponseEncoding), nil)
	}

	t := &target{
		host:     o.Host,
		port:     o.Port,
		path:     o.Path,
		secure:   secure,
		header:   make(http.Header, len(o.Headers)+len(defaultHeaders())+1),
		encoding: o.ResponseEncoding,
	}
	for k, v := range o.Headers {
		t.header.Set(k, v)
	}
	applyDefaultHeaders(t.header)

	if o.BasicAuth != nil {
		c := *o.BasicAuth
		t.basic = &c
		if t.header.Get("Authorization") == "" {
			t.header.Set("Authorization", basicAuth(c))
		}
	}
	if o.DigestAuth != nil {
		c := *o.DigestAuth
		t.digest = &c
	}
	return t, nil
}

func applyDefaultHeaders(h http.Header) {
	for _, kv := range defaultHeaders() {
		if len(h.Values(kv[0])) == 0 {
			h.Set(kv[0], kv[1])
		}
	}
}

func basicAuth(c Credentials) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.User+":"+c.Pass))
}
