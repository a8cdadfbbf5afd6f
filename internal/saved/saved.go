// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package saved keeps a per-user list of bookmarked papers. Bookmarks for
// signed-in users are keyed by user id; guests get a generated id that is
// persisted so their list survives restarts.
package saved

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/harvest/pkg/types"
)

// KeyPrefix starts every storage key.
const KeyPrefix = "savedPapers_"

// guestFile holds the persisted guest id inside the saved directory.
const guestFile = "guest_id"

// SavedPaper is a bookmark. SavedAt is RFC 3339 in UTC.
type SavedPaper struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Authors         []string `json:"authors"`
	PublicationYear string   `json:"publicationYear"`
	SavedAt         string   `json:"savedAt"`
	Slug            string   `json:"slug,omitempty"`
}

// FromPaper builds an unsaved bookmark for p.
func FromPaper(p types.ResearchPaper) SavedPaper {
	return SavedPaper{
		ID:              p.ID,
		Title:           p.Title,
		Authors:         p.AuthorNames(),
		PublicationYear: p.Year(),
		Slug:            p.Slug,
	}
}

// Store is a bookmark list for one storage key. List returns bookmarks in
// the order they were saved.
type Store interface {
	IsSaved(ctx context.Context, id string) (bool, error)
	// Save adds p, stamping SavedAt when it is empty. Saving an id that is
	// already present does nothing.
	Save(ctx context.Context, p SavedPaper) error
	Remove(ctx context.Context, id string) error
	List(ctx context.Context) ([]SavedPaper, error)
	// Toggle saves p when absent and removes it when present. It reports
	// whether p is saved afterwards.
	Toggle(ctx context.Context, p SavedPaper) (bool, error)
	Clear(ctx context.Context) error
	Close() error
}

// GuestIDSource yields the guest id, creating it on first use.
type GuestIDSource interface {
	GuestID() (string, error)
}

// NewGuestID returns a fresh guest id of the form guest_<uuid>.
func NewGuestID() string {
	return "guest_" + uuid.NewString()
}

// FileGuestID persists the guest id in a file.
type FileGuestID struct {
	Path string
}

// GuestID reads the id from Path, writing a new one when the file is
// missing or blank.
func (g FileGuestID) GuestID() (string, error) {
	data, err := os.ReadFile(g.Path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("reading guest id: %w", err)
	}

	id := NewGuestID()
	if err := os.MkdirAll(filepath.Dir(g.Path), 0o755); err != nil {
		return "", fmt.Errorf("creating guest id directory: %w", err)
	}
	if err := os.WriteFile(g.Path, []byte(id+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("writing guest id: %w", err)
	}
	return id, nil
}

// Keyer derives the storage key for the current user.
type Keyer struct {
	UserID string
	Guests GuestIDSource
}

// Key returns savedPapers_<userID>, or savedPapers_<guestID> when no user
// is signed in.
func (k Keyer) Key() (string, error) {
	if id := strings.TrimSpace(k.UserID); id != "" {
		return KeyPrefix + id, nil
	}
	if k.Guests == nil {
		return "", errors.New("no user id and no guest id source")
	}
	id, err := k.Guests.GuestID()
	if err != nil {
		return "", err
	}
	return KeyPrefix + id, nil
}

// Open opens the store cfg selects under cfg.Dir for the current user.
func Open(cfg types.SavedConfig, log *zap.Logger) (Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Dir == "" {
		return nil, errors.New("saved papers directory is not set")
	}
	key, err := Keyer{UserID: cfg.UserID, Guests: FileGuestID{Path: filepath.Join(cfg.Dir, guestFile)}}.Key()
	if err != nil {
		return nil, fmt.Errorf("deriving saved papers key: %w", err)
	}
	log.Debug("opening saved papers", zap.String("backend", string(cfg.Backend)), zap.String("key", key))

	switch cfg.Backend {
	case types.SavedSQLite, "":
		return NewSQLiteStore(filepath.Join(cfg.Dir, dbFile), key)
	case types.SavedFile:
		return NewFileStore(cfg.Dir, key)
	}
	return nil, fmt.Errorf("unknown saved papers backend %q", cfg.Backend)
}

// clock is swapped in tests.
var clock = time.Now

func stamp(p SavedPaper) SavedPaper {
	if p.SavedAt == "" {
		p.SavedAt = clock().UTC().Format(time.RFC3339Nano)
	}
	if p.Authors == nil {
		p.Authors = []string{}
	}
	return p
}
