package server

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role determines which half of the API an account may use.
type Role string

const (
	// RoleOperator accounts upload office documents.
	RoleOperator Role = "operator"
	// RoleClient accounts sign up, verify their email, and list files.
	RoleClient Role = "client"
)

// User is an account record. Operators are seeded at startup and are
// created verified; clients arrive through signup and start unverified.
type User struct {
	ID                uuid.UUID
	Email             string
	PasswordHash      string
	Role              Role
	EmailVerified     bool
	VerificationToken string
	CreatedAt         time.Time
}

// FileRecord describes one uploaded document. Records are append-only:
// they are never mutated or deleted once written.
type FileRecord struct {
	ID         uuid.UUID
	Filename   string
	ObjectKey  string
	UploadedBy uuid.UUID
	CreatedAt  time.Time
}

// UserStore is the credential store. Implementations must preserve
// creation order in UsersByEmailRole so that credential checks behave
// like a linear scan over the account table.
//
// Duplicate emails are allowed: signup performs no uniqueness check, so
// several accounts may share an address and lookups return all of them.
type UserStore interface {
	// CreateUser inserts a new account. It never fails on duplicates.
	CreateUser(ctx context.Context, u *User) error

	// UsersByEmailRole returns every account matching email and role,
	// in creation order.
	UsersByEmailRole(ctx context.Context, email string, role Role) ([]*User, error)

	// UserByVerificationToken resolves a signup verification token.
	// Returns ErrNotFound when no account carries the token.
	UserByVerificationToken(ctx context.Context, token string) (*User, error)

	// MarkVerified flips email_verified to true. Verifying an already
	// verified account is not an error. Returns ErrNotFound for an
	// unknown account id.
	MarkVerified(ctx context.Context, id uuid.UUID) error
}

// FileStore is the file metadata registry.
type FileStore interface {
	// CreateFile appends a new record. Called only after the blob write
	// succeeded; a failed upload must leave no record behind.
	CreateFile(ctx context.Context, f *FileRecord) error

	// ListFiles returns all records in insertion order. No pagination,
	// no filtering by uploader.
	ListFiles(ctx context.Context) ([]*FileRecord, error)
}
