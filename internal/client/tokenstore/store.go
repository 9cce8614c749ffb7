// Package tokenstore holds the current access token durably.
//
// Tokens are opaque strings; nothing here parses or validates them.
package tokenstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/quzhan/internal/client/repositories/metadata"
)

// AccessTokenKey is the metadata key the token is stored under.
const AccessTokenKey = "accessToken"

// Store reads and writes the current access token. Get reports false when no
// token is stored.
type Store interface {
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// SQLiteStore keeps the token in the local metadata table so it survives
// process restarts.
type SQLiteStore struct {
	repo metadata.Repository
}

func NewSQLiteStore(repo metadata.Repository) *SQLiteStore {
	return &SQLiteStore{repo: repo}
}

func (s *SQLiteStore) Get(ctx context.Context) (string, bool, error) {
	v, err := s.repo.Get(ctx, AccessTokenKey)
	if err != nil {
		return "", false, fmt.Errorf("read access token: %w", err)
	}
	if len(v) == 0 {
		return "", false, nil
	}
	return string(v), true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	if err := s.repo.Set(ctx, AccessTokenKey, []byte(token)); err != nil {
		return fmt.Errorf("write access token: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, AccessTokenKey); err != nil {
		return fmt.Errorf("clear access token: %w", err)
	}
	return nil
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != "", nil
}

func (s *MemoryStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	return s.Set(context.Background(), "")
}
