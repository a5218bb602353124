package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/xmlrpc/digest"
	"github.com/kbukum/xmlrpc/errors"
)

// UserKey is the Gin context key holding the authenticated username.
const UserKey = "auth_user"

// maxNonces caps the outstanding Digest nonces. The oldest is dropped first.
const maxNonces = 10000

// BasicAuth checks HTTP Basic credentials against users (username to
// password) and challenges with realm on failure. A rejected request
// carries an UNAUTHORIZED AppError in c.Errors.
func BasicAuth(realm string, users map[string]string) gin.HandlerFunc {
	check := gin.BasicAuthForRealm(gin.Accounts(users), realm)
	return func(c *gin.Context) {
		check(c)
		if c.IsAborted() {
			_ = c.Error(errors.Unauthorized("Basic credentials rejected."))
			return
		}
		c.Set(UserKey, c.GetString(gin.AuthUserKey))
	}
}

// DigestConfig configures the Digest middleware.
type DigestConfig struct {
	Realm string
	// Users maps usernames to passwords.
	Users map[string]string
	// NonceTTL bounds how long an issued nonce is accepted. Defaults to 5m.
	NonceTTL time.Duration
}

// DigestAuth answers unauthenticated requests with a single-round MD5 Digest
// challenge (qop=auth) and admits requests whose Authorization header
// answers a nonce issued by this middleware.
func DigestAuth(cfg DigestConfig) gin.HandlerFunc {
	if cfg.NonceTTL <= 0 {
		cfg.NonceTTL = 5 * time.Minute
	}
	nonces := newNonceStore(cfg.NonceTTL, maxNonces)

	return func(c *gin.Context) {
		if user, ok := verifyDigest(c, cfg, nonces); ok {
			c.Set(UserKey, user)
			c.Next()
			return
		}
		nonce := uuid.NewString()
		nonces.add(nonce)
		appErr := errors.Unauthorized("Digest credentials required.")
		c.Header("WWW-Authenticate", fmt.Sprintf(`Digest realm="%s", nonce="%s", qop="auth", algorithm=MD5`, cfg.Realm, nonce))
		c.AbortWithStatus(appErr.HTTPStatus)
		_ = c.Error(appErr)
	}
}

func verifyDigest(c *gin.Context, cfg DigestConfig, nonces *nonceStore) (string, bool) {
	header := c.GetHeader("Authorization")
	if !digest.HasScheme(header) {
		return "", false
	}
	resp, err := digest.ParseResponse(header)
	if err != nil {
		return "", false
	}
	password, ok := cfg.Users[resp.Username]
	if !ok || resp.Realm != cfg.Realm || resp.URI != c.Request.URL.RequestURI() || !nonces.valid(resp.Nonce) {
		return "", false
	}
	return resp.Username, resp.Verify(password, c.Request.Method)
}

// nonceStore remembers issued nonces until they expire. At most max are
// kept; issuing past that evicts the oldest.
type nonceStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	max    int
	issued map[string]time.Time
	order  []string
}

func newNonceStore(ttl time.Duration, maxSize int) *nonceStore {
	return &nonceStore{ttl: ttl, max: maxSize, issued: make(map[string]time.Time)}
}

func (s *nonceStore) add(nonce string) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	// order is oldest first, so expired nonces form a prefix.
	drop := 0
	for drop < len(s.order) && now.Sub(s.issued[s.order[drop]]) > s.ttl {
		delete(s.issued, s.order[drop])
		drop++
	}
	for len(s.order)-drop >= s.max {
		delete(s.issued, s.order[drop])
		drop++
	}
	s.order = append(s.order[drop:], nonce)
	s.issued[nonce] = now
}

func (s *nonceStore) valid(nonce string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.issued[nonce]
	return ok && time.Since(at) <= s.ttl
}

func (s *nonceStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.issued)
}
