package server

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIssueAndResolve(t *testing.T) {
	reg := NewSessionRegistry(time.Hour)
	id := uuid.New()

	sess, err := reg.Issue(id, RoleClient)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("expected non-empty token")
	}

	got, err := reg.Resolve(sess.Token)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got.UserID != id || got.Role != RoleClient {
		t.Fatalf("resolved wrong session: %+v", got)
	}
}

func TestMultipleTokensPerAccount(t *testing.T) {
	reg := NewSessionRegistry(time.Hour)
	id := uuid.New()

	first, err := reg.Issue(id, RoleOperator)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	second, err := reg.Issue(id, RoleOperator)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if first.Token == second.Token {
		t.Fatal("expected distinct tokens for repeated issue")
	}

	// Both stay live: issuing a second token does not revoke the first.
	if _, err := reg.Resolve(first.Token); err != nil {
		t.Fatalf("first token should still resolve: %v", err)
	}
	if _, err := reg.Resolve(second.Token); err != nil {
		t.Fatalf("second token should resolve: %v", err)
	}
}

func TestResolveUnknownToken(t *testing.T) {
	reg := NewSessionRegistry(time.Hour)

	if _, err := reg.Resolve(""); err == nil {
		t.Fatal("expected error for empty token")
	}
	if _, err := reg.Resolve("deadbeef"); err == nil {
		t.Fatal("expected error for unknown token")
	}
}

func TestResolveExpiredToken(t *testing.T) {
	reg := NewSessionRegistry(time.Hour)
	sess, err := reg.Issue(uuid.New(), RoleClient)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// Backdate the stored expiry.
	reg.mu.Lock()
	stored := reg.sessions[sess.Token]
	stored.ExpiresAt = time.Now().Add(-time.Minute)
	reg.sessions[sess.Token] = stored
	reg.mu.Unlock()

	if _, err := reg.Resolve(sess.Token); err == nil {
		t.Fatal("expected error for expired token")
	}
	// Expired entry is dropped on resolve.
	if reg.Active() != 0 {
		t.Fatalf("expected 0 active sessions, got %d", reg.Active())
	}
}

func TestRevoke(t *testing.T) {
	reg := NewSessionRegistry(time.Hour)
	sess, err := reg.Issue(uuid.New(), RoleClient)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	reg.Revoke(sess.Token)
	if _, err := reg.Resolve(sess.Token); err == nil {
		t.Fatal("expected error after revoke")
	}

	// Revoking again is a no-op.
	reg.Revoke(sess.Token)
}
