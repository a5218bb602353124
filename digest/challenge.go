package digest

import (
	"errors"
	"fmt"
	"strings"
)

// Scheme is the authentication scheme prefix, including the trailing space.
const Scheme = "Digest "

var (
	ErrUnsupportedScheme    = errors.New("digest: not a Digest challenge")
	ErrMalformedToken       = errors.New("digest: malformed challenge token")
	ErrMissingRealm         = errors.New("digest: challenge has no realm")
	ErrMissingNonce         = errors.New("digest: challenge has no nonce")
	ErrUnsupportedAlgorithm = errors.New("digest: unsupported algorithm")
)

// Challenge is a parsed WWW-Authenticate Digest header.
type Challenge struct {
	Realm     string
	Nonce     string
	QOP       string
	Algorithm string
	Opaque    string

	// Params holds every key/value pair, keys lower-cased.
	Params map[string]string
}

// ParseChallenge parses a `Digest key="value", key=value, ...` header.
func ParseChallenge(header string) (*Challenge, error) {
	params, err := parseParams(header)
	if err != nil {
		return nil, err
	}
	return &Challenge{
		Realm:     params["realm"],
		Nonce:     params["nonce"],
		QOP:       params["qop"],
		Algorithm: params["algorithm"],
		Opaque:    params["opaque"],
		Params:    params,
	}, nil
}

// Validate checks that the challenge can be answered.
func (c *Challenge) Validate() error {
	if c.Realm == "" {
		return ErrMissingRealm
	}
	if c.Nonce == "" {
		return ErrMissingNonce
	}
	if c.Algorithm != "" && !strings.EqualFold(c.Algorithm, "MD5") {
		return fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, c.Algorithm)
	}
	return nil
}

// HasScheme reports whether header starts with the Digest scheme.
func HasScheme(header string) bool {
	return len(header) >= len(Scheme) && strings.EqualFold(header[:len(Scheme)], Scheme)
}

// parseParams strips the scheme prefix and tokenizes the remaining
// key=value list. A value is everything after the first '=', so values that
// contain '=' survive intact. One pair of surrounding quotes is removed, and
// inside quotes a comma does not end the value.
func parseParams(header string) (map[string]string, error) {
	if !HasScheme(header) {
		return nil, ErrUnsupportedScheme
	}
	s := header[len(Scheme):]
	params := make(map[string]string)

	for i := 0; ; {
		i = skipSeparators(s, i)
		if i >= len(s) {
			break
		}

		eq := strings.IndexAny(s[i:], "=,")
		if eq < 0 || s[i+eq] == ',' {
			return nil, fmt.Errorf("%w: %q has no '='", ErrMalformedToken, tokenAt(s, i))
		}
		key := strings.ToLower(strings.TrimSpace(s[i : i+eq]))
		if key == "" {
			return nil, fmt.Errorf("%w: empty key", ErrMalformedToken)
		}
		i += eq + 1

		var value string
		if i < len(s) && s[i] == '"' {
			end := strings.IndexByte(s[i+1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated quote in %q", ErrMalformedToken, key)
			}
			value = s[i+1 : i+1+end]
			i += end + 2
			for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
				i++
			}
			if i < len(s) && s[i] != ',' {
				return nil, fmt.Errorf("%w: trailing data after %q", ErrMalformedToken, key)
			}
		} else {
			end := strings.IndexByte(s[i:], ',')
			if end < 0 {
				end = len(s) - i
			}
			value = strings.TrimSpace(s[i : i+end])
			i += end
		}
		params[key] = value
	}
	return params, nil
}

func skipSeparators(s string, i int) int {
	for i < len(s) && (s[i] == ',' || s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func tokenAt(s string, i int) string {
	if end := strings.IndexByte(s[i:], ','); end >= 0 {
		return s[i : i+end]
	}
	return s[i:]
}
