// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/shopassist/internal/config"
)

// =============================================================================
// VISIT STORE
// =============================================================================

// VisitStore remembers which profiles have been greeted before.
type VisitStore interface {
	// MarkVisited records profile and reports whether this was its first visit.
	MarkVisited(ctx context.Context, profile string) (first bool, err error)

	// Forget removes the marker so the next visit counts as a first visit.
	Forget(ctx context.Context, profile string) error

	Close() error
}

// OpenStore builds the VisitStore selected by cfg.VisitStore.
func OpenStore(ctx context.Context, cfg config.SessionConfig) (VisitStore, error) {
	switch strings.ToLower(cfg.VisitStore) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.VisitPath), nil
	case "sqlite":
		return OpenSQLiteStore(ctx, cfg.VisitPath)
	case "redis":
		return OpenRedisStore(ctx, cfg.RedisURL, time.Duration(cfg.RedisTTLHours)*time.Hour)
	default:
		return nil, fmt.Errorf("unknown visit store %q", cfg.VisitStore)
	}
}

// MemoryStore keeps markers for the life of the process.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]time.Time)}
}

func (s *MemoryStore) MarkVisited(_ context.Context, profile string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[profile]; ok {
		return false, nil
	}
	s.seen[profile] = time.Now()
	return true, nil
}

func (s *MemoryStore) Forget(_ context.Context, profile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, profile)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
