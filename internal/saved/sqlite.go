// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package saved

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

const dbFile = "saved.db"

// SQLiteStore keeps bookmarks in a SQLite table shared by all keys.
type SQLiteStore struct {
	db  *sql.DB
	key string
	mu  sync.Mutex
}

// NewSQLiteStore opens or creates the database at path and scopes the
// store to key.
func NewSQLiteStore(path, key string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating saved papers directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &SQLiteStore{db: db, key: key}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS saved_papers (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			storage_key TEXT NOT NULL,
			id TEXT NOT NULL,
			title TEXT,
			authors TEXT,
			publication_year TEXT,
			slug TEXT,
			saved_at TEXT NOT NULL,
			UNIQUE(storage_key, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_saved_papers_key ON saved_papers(storage_key)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) IsSaved(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM saved_papers WHERE storage_key = ? AND id = ?`, s.key, id,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking saved paper %s: %w", id, err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Save(ctx context.Context, p SavedPaper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(ctx, p)
}

func (s *SQLiteStore) insert(ctx context.Context, p SavedPaper) error {
	p = stamp(p)
	authorsJSON, err := json.Marshal(p.Authors)
	if err != nil {
		return fmt.Errorf("encoding authors: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO saved_papers (storage_key, id, title, authors, publication_year, slug, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.key, p.ID, p.Title, string(authorsJSON), p.PublicationYear, p.Slug, p.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("saving paper %s: %w", p.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delete(ctx, id)
}

func (s *SQLiteStore) delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM saved_papers WHERE storage_key = ? AND id = ?`, s.key, id,
	); err != nil {
		return fmt.Errorf("removing saved paper %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]SavedPaper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, authors, publication_year, slug, saved_at
		 FROM saved_papers WHERE storage_key = ? ORDER BY seq`, s.key)
	if err != nil {
		return nil, fmt.Errorf("listing saved papers: %w", err)
	}
	defer rows.Close()

	out := []SavedPaper{}
	for rows.Next() {
		var (
			p       SavedPaper
			authors string
		)
		if err := rows.Scan(&p.ID, &p.Title, &authors, &p.PublicationYear, &p.Slug, &p.SavedAt); err != nil {
			return nil, fmt.Errorf("scanning saved paper: %w", err)
		}
		if err := json.Unmarshal([]byte(authors), &p.Authors); err != nil {
			return nil, fmt.Errorf("decoding authors of %s: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Toggle(ctx context.Context, p SavedPaper) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.IsSaved(ctx, p.ID)
	if err != nil {
		return false, err
	}
	if saved {
		return false, s.delete(ctx, p.ID)
	}
	return true, s.insert(ctx, p)
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saved_papers WHERE storage_key = ?`, s.key); err != nil {
		return fmt.Errorf("clearing saved papers: %w", err)
	}
	return nil
}
