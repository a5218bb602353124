package digest

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

const (
	// NonceCount is the nc value sent with every response.
	NonceCount = "1"
	// ClientNonce is the cnonce value sent with every response.
	ClientNonce = ""
)

// Credentials are the username and password used to answer a challenge.
type Credentials struct {
	Username string
	Password string
}

// Param is one key/value pair of a rendered header.
type Param struct {
	Key   string
	Value string
}

// Response is the answer to a challenge, as carried in an Authorization header.
type Response struct {
	Username string
	Realm    string
	Nonce    string
	URI      string
	QOP      string
	Hash     string
	NC       string
	CNonce   string
}

// ComputeDigest returns the hex MD5 response for a single-shot client:
//
//	ha1 = MD5(username:realm:password)
//	ha2 = MD5(method:uri)
//	response = MD5(ha1:nonce:1::qop:ha2)
func ComputeDigest(username, password, realm, nonce, method, uri, qop string) string {
	return compute(username, password, realm, nonce, NonceCount, ClientNonce, qop, method, uri)
}

func compute(username, password, realm, nonce, nc, cnonce, qop, method, uri string) string {
	ha1 := md5Hex(username + ":" + realm + ":" + password)
	ha2 := md5Hex(method + ":" + uri)
	return md5Hex(strings.Join([]string{ha1, nonce, nc, cnonce, qop, ha2}, ":"))
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Respond validates the challenge and computes the response for a request
// with the given method and uri. The challenge's qop is used verbatim.
func Respond(c *Challenge, cred Credentials, method, uri string) (*Response, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Response{
		Username: cred.Username,
		Realm:    c.Realm,
		Nonce:    c.Nonce,
		URI:      uri,
		QOP:      c.QOP,
		Hash:     ComputeDigest(cred.Username, cred.Password, c.Realm, c.Nonce, method, uri, c.QOP),
		NC:       NonceCount,
		CNonce:   ClientNonce,
	}, nil
}

// Params returns the header parameters in their fixed order.
func (r *Response) Params() []Param {
	return []Param{
		{"username", r.Username},
		{"realm", r.Realm},
		{"nonce", r.Nonce},
		{"uri", r.URI},
		{"qop", r.QOP},
		{"response", r.Hash},
		{"nc", r.NC},
		{"cnonce", r.CNonce},
	}
}

// String renders the Authorization header value.
func (r *Response) String() string {
	return Render(r.Params())
}

// Render serializes params as `Digest key="value", key="value", ...` in
// slice order.
func Render(params []Param) string {
	var sb strings.Builder
	sb.WriteString(Scheme)
	for i, p := range params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Key)
		sb.WriteString(`="`)
		sb.WriteString(p.Value)
		sb.WriteByte('"')
	}
	return sb.String()
}

// ParseResponse parses a Digest Authorization header sent by a client.
func ParseResponse(header string) (*Response, error) {
	params, err := parseParams(header)
	if err != nil {
		return nil, err
	}
	return &Response{
		Username: params["username"],
		Realm:    params["realm"],
		Nonce:    params["nonce"],
		URI:      params["uri"],
		QOP:      params["qop"],
		Hash:     params["response"],
		NC:       params["nc"],
		CNonce:   params["cnonce"],
	}, nil
}

// Verify recomputes the response hash from password and method and compares
// it with the one the client sent.
func (r *Response) Verify(password, method string) bool {
	want := compute(r.Username, password, r.Realm, r.Nonce, r.NC, r.CNonce, r.QOP, method, r.URI)
	return subtle.ConstantTimeCompare([]byte(want), []byte(r.Hash)) == 1
}
