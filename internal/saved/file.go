// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package saved

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// FileStore keeps each key's bookmarks as a JSON array in <dir>/<key>.json,
// the same layout the web client writes to local storage.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store for key under dir, creating dir if needed.
func NewFileStore(dir, key string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating saved papers directory: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, key+".json")}, nil
}

// Path is the file the store reads and writes.
func (s *FileStore) Path() string { return s.path }

// Close is a no-op.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) load() ([]SavedPaper, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []SavedPaper{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	var papers []SavedPaper
	if err := json.Unmarshal(data, &papers); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if papers == nil {
		papers = []SavedPaper{}
	}
	return papers, nil
}

// store replaces the file through a temp file and rename.
func (s *FileStore) store(papers []SavedPaper) error {
	data, err := json.Marshal(papers)
	if err != nil {
		return fmt.Errorf("encoding saved papers: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}

func indexOf(papers []SavedPaper, id string) int {
	return slices.IndexFunc(papers, func(p SavedPaper) bool { return p.ID == id })
}

func (s *FileStore) IsSaved(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	papers, err := s.load()
	if err != nil {
		return false, err
	}
	return indexOf(papers, id) >= 0, nil
}

func (s *FileStore) Save(ctx context.Context, p SavedPaper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	papers, err := s.load()
	if err != nil {
		return err
	}
	if indexOf(papers, p.ID) >= 0 {
		return nil
	}
	return s.store(append(papers, stamp(p)))
}

func (s *FileStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	papers, err := s.load()
	if err != nil {
		return err
	}
	return s.store(slices.DeleteFunc(papers, func(p SavedPaper) bool { return p.ID == id }))
}

func (s *FileStore) List(ctx context.Context) ([]SavedPaper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) Toggle(ctx context.Context, p SavedPaper) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	papers, err := s.load()
	if err != nil {
		return false, err
	}
	if i := indexOf(papers, p.ID); i >= 0 {
		return false, s.store(slices.Delete(papers, i, i+1))
	}
	return true, s.store(append(papers, stamp(p)))
}

// Clear deletes the key's file.
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clearing saved papers: %w", err)
	}
	return nil
}
