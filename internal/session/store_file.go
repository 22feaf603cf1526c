// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/jeranaias/shopassist/internal/util"
)

// FileStore persists markers as a JSON object of profile -> first-seen time.
// The whole file is rewritten atomically on every change.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore backed by path. The file is created on
// the first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) MarkVisited(_ context.Context, profile string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen, err := s.load()
	if err != nil {
		return false, err
	}
	if _, ok := seen[profile]; ok {
		return false, nil
	}
	seen[profile] = time.Now().UTC()
	return true, s.save(seen)
}

func (s *FileStore) Forget(_ context.Context, profile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := seen[profile]; !ok {
		return nil
	}
	delete(seen, profile)
	return s.save(seen)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) load() (map[string]time.Time, error) {
	seen := make(map[string]time.Time)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return seen, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read visit file: %w", err)
	}
	if len(data) == 0 {
		return seen, nil
	}
	if err := json.Unmarshal(data, &seen); err != nil {
		return nil, fmt.Errorf("decode visit file %s: %w", s.path, err)
	}
	return seen, nil
}

func (s *FileStore) save(seen map[string]time.Time) error {
	data, err := json.MarshalIndent(seen, "", "  ")
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write visit file: %w", err)
	}
	return nil
}
