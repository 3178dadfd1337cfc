// session.go - In-memory session registry for opaque bearer tokens.
//
// Tokens are random, carry no structure, and resolve only through this
// registry. Sessions expire after a TTL and can be revoked explicitly;
// expired entries are dropped lazily on resolve, so no janitor goroutine
// is needed.
package server

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session binds one opaque token to one account. An account may hold
// several live sessions at once; a token never resolves to more than one
// account.
type Session struct {
	Token     string
	UserID    uuid.UUID
	Role      Role
	ExpiresAt time.Time
}

// SessionRegistry issues and resolves session tokens.
type SessionRegistry struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]Session
}

// DefaultSessionTTL bounds session lifetime when no TTL is configured.
const DefaultSessionTTL = 12 * time.Hour

// NewSessionRegistry creates a registry whose sessions live for ttl.
// A non-positive ttl falls back to DefaultSessionTTL.
func NewSessionRegistry(ttl time.Duration) *SessionRegistry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionRegistry{
		ttl:      ttl,
		sessions: make(map[string]Session),
	}
}

// newOpaqueToken returns 32 random bytes hex-encoded (64 chars). The same
// shape is used for verification tokens, but the two are never
// interchangeable: verification tokens live on the user record, session
// tokens only in this registry.
func newOpaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Issue mints a fresh token for the user. Prior tokens for the same user
// stay valid; there is no one-session-per-account rule.
func (r *SessionRegistry) Issue(userID uuid.UUID, role Role) (Session, error) {
	tok, err := newOpaqueToken()
	if err != nil {
		return Session{}, err
	}

	sess := Session{
		Token:     tok,
		UserID:    userID,
		Role:      role,
		ExpiresAt: time.Now().Add(r.ttl),
	}

	r.mu.Lock()
	r.sessions[tok] = sess
	r.mu.Unlock()

	return sess, nil
}

// Resolve maps a token back to its session. Unknown, empty, and expired
// tokens all return ErrUnauthorized; expired entries are removed as a
// side effect.
func (r *SessionRegistry) Resolve(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrUnauthorized
	}

	r.mu.RLock()
	sess, ok := r.sessions[token]
	r.mu.RUnlock()

	if !ok {
		return Session{}, ErrUnauthorized
	}
	if time.Now().After(sess.ExpiresAt) {
		r.mu.Lock()
		delete(r.sessions, token)
		r.mu.Unlock()
		return Session{}, ErrUnauthorized
	}
	return sess, nil
}

// Revoke invalidates a token. Revoking an unknown token is a no-op.
func (r *SessionRegistry) Revoke(token string) {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
}

// Active returns the number of live sessions, counting entries that
// expired but were not yet resolved away.
func (r *SessionRegistry) Active() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
