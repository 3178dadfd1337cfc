// auth.go - Credential verification, login/logout handlers, and the
// role gate applied to every protected route.
//
// Secrets are stored as bcrypt hashes and verified with a constant-time
// comparison. Session tokens are opaque and resolved through the
// in-memory SessionRegistry.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// hashPassword generates a bcrypt hash of the password.
func hashPassword(password string) (string, error) {
	// bcrypt cost of 12 is a good balance of security and performance
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword compares a password with its hash.
func verifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// authenticate finds the account matching email, password, and role.
// Accounts with the same email are checked in creation order and the
// first password match wins. Returns ErrInvalidCredentials when nothing
// matches.
func authenticate(ctx context.Context, store UserStore, email, password string, role Role) (*User, error) {
	candidates, err := store.UsersByEmailRole(ctx, email, role)
	if err != nil {
		return nil, err
	}
	for _, u := range candidates {
		if verifyPassword(password, u.PasswordHash) {
			return u, nil
		}
	}
	return nil, ErrInvalidCredentials
}

// bearerToken extracts the token from an Authorization: Bearer header.
// Returns "" when the header is absent or malformed.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, prefix))
}

type sessionCtxKey struct{}

// sessionFromContext returns the session stored by requireRole.
func sessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionCtxKey{}).(Session)
	return sess, ok
}

// requireRole gates a protected operation behind a resolved session of
// the given role. A missing token, an invalid or expired token, and a
// valid token of the wrong role all produce the same 403 "unauthorized"
// response; callers cannot tell the cases apart.
func (s *Server) requireRole(role Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Resolve(bearerToken(r))
		if err != nil || sess.Role != role {
			http.Error(w, "unauthorized", http.StatusForbidden)
			return
		}
		ctx := context.WithValue(r.Context(), sessionCtxKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// loginHandler authenticates one role's credential pair and issues a
// session token. Client logins additionally require a verified email;
// operator logins have no such gate.
func (s *Server) loginHandler(role Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))

		if locked, until := s.lockout.IsLocked(req.Email); locked {
			log.Printf("rid=%s msg=login_locked email=%s until=%s",
				RequestIDFromContext(r.Context()), req.Email, until.Format("15:04:05"))
			http.Error(w, "too many failed attempts", http.StatusTooManyRequests)
			return
		}

		GetMetrics().RecordLoginAttempt()

		user, err := authenticate(r.Context(), s.cfg.Users, req.Email, req.Password, role)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				s.lockout.RecordFailedAttempt(req.Email)
				GetMetrics().RecordLoginFailure()
				s.audit.Record(r.Context(), AuditActionLogin, "", req.Email, getClientIP(r), false, "invalid credentials")
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
				return
			}
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		if role == RoleClient && !user.EmailVerified {
			GetMetrics().RecordLoginFailure()
			s.audit.Record(r.Context(), AuditActionLogin, user.ID.String(), req.Email, getClientIP(r), false, "email not verified")
			http.Error(w, "email not verified", http.StatusForbidden)
			return
		}

		sess, err := s.sessions.Issue(user.ID, user.Role)
		if err != nil {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		s.lockout.RecordSuccessfulLogin(req.Email)
		GetMetrics().RecordLoginSuccess()
		s.audit.Record(r.Context(), AuditActionLogin, user.ID.String(), req.Email, getClientIP(r), true, "")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(loginResponse{Token: sess.Token})
	}
}

// logoutHandler revokes the presented session token. An invalid token is
// rejected the same way the role gate rejects it.
func (s *Server) logoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		tok := bearerToken(r)
		sess, err := s.sessions.Resolve(tok)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusForbidden)
			return
		}

		s.sessions.Revoke(tok)
		s.audit.Record(r.Context(), AuditActionLogout, sess.UserID.String(), "", getClientIP(r), true, "")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "logged out"})
	}
}

// SeedOperator ensures an operator account with the given credentials
// exists. Operators have no signup endpoint; the production binary seeds
// one at startup. Seeding is idempotent per email: an existing operator
// account with that email short-circuits the insert.
func SeedOperator(ctx context.Context, store UserStore, email, password string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	existing, err := store.UsersByEmailRole(ctx, email, RoleOperator)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing[0], nil
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:         email,
		PasswordHash:  hash,
		Role:          RoleOperator,
		EmailVerified: true,
	}
	if err := store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
