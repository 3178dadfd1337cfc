package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresUserStore implements UserStore over database/sql. Rows carry a
// bigserial seq column so creation order survives round trips.
type PostgresUserStore struct {
	db *sql.DB
}

// NewPostgresUserStore binds a user store to an open connection pool.
func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) CreateUser(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, role, email_verified, verification_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.Email, u.PasswordHash, string(u.Role), u.EmailVerified, u.VerificationToken, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) UsersByEmailRole(ctx context.Context, email string, role Role) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, password_hash, role, email_verified, verification_token, created_at
		FROM users
		WHERE email = $1 AND role = $2
		ORDER BY seq
	`, email, string(role))
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PostgresUserStore) UserByVerificationToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, role, email_verified, verification_token, created_at
		FROM users
		WHERE verification_token = $1
		ORDER BY seq
		LIMIT 1
	`, token)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *PostgresUserStore) MarkVerified(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET email_verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*User, error) {
	var (
		u    User
		role string
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.EmailVerified, &u.VerificationToken, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = Role(role)
	return &u, nil
}

// PostgresFileStore implements FileStore over database/sql.
type PostgresFileStore struct {
	db *sql.DB
}

// NewPostgresFileStore binds a file store to an open connection pool.
func NewPostgresFileStore(db *sql.DB) *PostgresFileStore {
	return &PostgresFileStore{db: db}
}

func (s *PostgresFileStore) CreateFile(ctx context.Context, f *FileRecord) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO files (id, filename, object_key, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, f.ID, f.Filename, f.ObjectKey, f.UploadedBy, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (s *PostgresFileStore) ListFiles(ctx context.Context) ([]*FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, object_key, uploaded_by, created_at
		FROM files
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	var out []*FileRecord
	for rows.Next() {
		var f FileRecord
		if err := rows.Scan(&f.ID, &f.Filename, &f.ObjectKey, &f.UploadedBy, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
