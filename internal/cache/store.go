package cache

import (
	"context"
	"errors"
	"time"

	"github.com/spigell/program-matcher/internal/ai"
)

var (
	// ErrNotFound is returned by a Store when no live entry matches the key.
	ErrNotFound = errors.New("cache entry not found")
	// ErrNoTable is returned by a Store whose backing table does not exist yet.
	ErrNoTable = errors.New("cache table does not exist")
)

// Key identifies one cached analysis.
type Key struct {
	UserID       string
	ProgramID    string
	Fingerprint  string
	ModelVersion string
}

// Entry is a stored analysis. Its content is never updated, a new
// fingerprint or model version produces a new key instead.
type Entry struct {
	ID        string
	Key       Key
	Result    *ai.Analysis
	ExpiresAt time.Time
	HitCount  int
	CreatedAt time.Time
}

// Store persists cache entries.
type Store interface {
	// Lookup returns the entry for key that is still valid at now.
	Lookup(ctx context.Context, key Key, now time.Time) (*Entry, error)
	// Upsert writes entry, replacing any entry with the same key.
	Upsert(ctx context.Context, entry *Entry) error
	IncrementHit(ctx context.Context, id string) error
}
