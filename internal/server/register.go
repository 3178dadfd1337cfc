// register.go - Client signup and the email-verification flow.
//
// Signup creates an unverified client account and returns a verification
// URL; visiting it flips the account to verified, exactly once. The
// verification token is not cleared on success so that re-visiting the
// link stays a harmless no-op.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupResponse struct {
	Message   string `json:"message"`
	VerifyURL string `json:"verify_url"`
}

// signupHandler handles POST /client/signup. There is deliberately no
// duplicate-email check: several accounts may share an address, and
// login picks the first one whose password matches.
func (s *Server) signupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		req.Password = strings.TrimSpace(req.Password)

		if !validateEmail(req.Email) {
			http.Error(w, "invalid email address", http.StatusBadRequest)
			return
		}
		if valid, msg := validatePassword(req.Password); !valid {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}

		hash, err := hashPassword(req.Password)
		if err != nil {
			log.Printf("rid=%s msg=signup_hash_failed err=%v", RequestIDFromContext(r.Context()), err)
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		verificationToken, err := newOpaqueToken()
		if err != nil {
			log.Printf("rid=%s msg=signup_token_failed err=%v", RequestIDFromContext(r.Context()), err)
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		user := &User{
			Email:             req.Email,
			PasswordHash:      hash,
			Role:              RoleClient,
			EmailVerified:     false,
			VerificationToken: verificationToken,
		}
		if err := s.cfg.Users.CreateUser(r.Context(), user); err != nil {
			log.Printf("rid=%s msg=signup_insert_failed err=%v", RequestIDFromContext(r.Context()), err)
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		verifyURL := fmt.Sprintf("%s/client/verify-email/%s", s.cfg.BaseURL, verificationToken)

		if err := s.cfg.Email.SendVerificationEmail(req.Email, verifyURL); err != nil {
			// User is already created; a failed email must not undo signup.
			log.Printf("rid=%s msg=signup_email_failed err=%v", RequestIDFromContext(r.Context()), err)
		}

		GetMetrics().RecordSignup()
		s.audit.Record(r.Context(), AuditActionSignup, user.ID.String(), req.Email, getClientIP(r), true, "")
		log.Printf("rid=%s msg=signup_created email=%s", RequestIDFromContext(r.Context()), req.Email)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(signupResponse{
			Message:   "account created, please verify your email",
			VerifyURL: verifyURL,
		})
	}
}

// verifyEmailHandler handles GET /client/verify-email/{token}. Unknown
// tokens yield 404; verifying an already-verified account succeeds again
// with no state change.
func (s *Server) verifyEmailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		token := strings.TrimPrefix(r.URL.Path, "/client/verify-email/")
		if token == "" || strings.Contains(token, "/") {
			http.Error(w, "missing verification token", http.StatusBadRequest)
			return
		}

		user, err := s.cfg.Users.UserByVerificationToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "invalid verification token", http.StatusNotFound)
				return
			}
			log.Printf("rid=%s msg=verify_lookup_failed err=%v", RequestIDFromContext(r.Context()), err)
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if user.EmailVerified {
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "email already verified"})
			return
		}

		if err := s.cfg.Users.MarkVerified(r.Context(), user.ID); err != nil {
			log.Printf("rid=%s msg=verify_update_failed err=%v", RequestIDFromContext(r.Context()), err)
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		GetMetrics().RecordVerification()
		s.audit.Record(r.Context(), AuditActionVerify, user.ID.String(), user.Email, getClientIP(r), true, "")
		log.Printf("rid=%s msg=email_verified email=%s", RequestIDFromContext(r.Context()), user.Email)

		_ = json.NewEncoder(w).Encode(map[string]string{"message": "email verified"})
	}
}
