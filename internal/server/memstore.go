package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryUserStore is an in-memory UserStore guarded by a RWMutex.
// Accounts live in a slice so creation order is the iteration order.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users []*User
}

// NewMemoryUserStore returns an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{}
}

func (s *MemoryUserStore) CreateUser(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	cp := *u
	s.users = append(s.users, &cp)
	return nil
}

func (s *MemoryUserStore) UsersByEmailRole(_ context.Context, email string, role Role) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*User
	for _, u := range s.users {
		if u.Email == email && u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryUserStore) UserByVerificationToken(_ context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.VerificationToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) MarkVerified(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == id {
			u.EmailVerified = true
			return nil
		}
	}
	return ErrNotFound
}

// MemoryFileStore is an in-memory FileStore. The backing slice keeps
// records in upload order.
type MemoryFileStore struct {
	mu    sync.RWMutex
	files []*FileRecord
}

// NewMemoryFileStore returns an empty in-memory file store.
func NewMemoryFileStore() *MemoryFileStore {
	return &MemoryFileStore{}
}

func (s *MemoryFileStore) CreateFile(_ context.Context, f *FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	cp := *f
	s.files = append(s.files, &cp)
	return nil
}

func (s *MemoryFileStore) ListFiles(_ context.Context) ([]*FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*FileRecord, 0, len(s.files))
	for _, f := range s.files {
		cp := *f
		out = append(out, &cp)
	}
	return out, nil
}
