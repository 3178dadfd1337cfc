package server

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionLogin  AuditAction = "login"
	AuditActionLogout AuditAction = "logout"
	AuditActionSignup AuditAction = "signup"
	AuditActionVerify AuditAction = "verify_email"
	AuditActionUpload AuditAction = "file_upload"
)

// auditRecorder writes insert-only audit rows. With no database it
// degrades to a log line, which keeps the in-memory deployment honest
// without growing unbounded state.
type auditRecorder struct {
	db *sql.DB
}

func newAuditRecorder(db *sql.DB) *auditRecorder {
	return &auditRecorder{db: db}
}

// Record stores one audit event. Audit failures are logged and swallowed:
// an unavailable audit trail must not fail the user-facing operation.
func (a *auditRecorder) Record(ctx context.Context, action AuditAction, userID, resource, ip string, success bool, errMsg string) {
	if a == nil || a.db == nil {
		log.Printf("audit action=%s user=%s resource=%q ip=%s success=%t err=%q",
			action, userID, resource, ip, success, errMsg)
		return
	}

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, timestamp, action, user_id, resource, ip_address, success, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.New(), time.Now().UTC(), string(action), nullString(userID), nullString(resource), ip, success, nullString(errMsg))
	if err != nil {
		log.Printf("msg=audit_insert_failed action=%s err=%v", action, err)
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
