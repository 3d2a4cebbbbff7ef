package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spigell/program-matcher/internal/ai"
)

const undefinedTable = "42P01"

// PostgresStore keeps entries in the ai_match_cache table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the cache table when it is missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const query = `
CREATE TABLE IF NOT EXISTS ai_match_cache (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	program_id TEXT NOT NULL,
	profile_hash TEXT NOT NULL,
	model_version TEXT NOT NULL,
	ai_result JSONB NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	hit_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (user_id, program_id, profile_hash)
);

CREATE INDEX IF NOT EXISTS idx_ai_match_cache_expires_at ON ai_match_cache(expires_at);
`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute cache schema ddl: %w", err)
	}
	return nil
}

func (s *PostgresStore) Lookup(ctx context.Context, key Key, now time.Time) (*Entry, error) {
	const query = `
SELECT id, ai_result, expires_at, hit_count, created_at
FROM ai_match_cache
WHERE user_id = $1 AND program_id = $2 AND profile_hash = $3 AND model_version = $4 AND expires_at > $5
`
	var (
		entry   = Entry{Key: key}
		payload []byte
	)
	err := s.db.QueryRowContext(ctx, query, key.UserID, key.ProgramID, key.Fingerprint, key.ModelVersion, now).
		Scan(&entry.ID, &payload, &entry.ExpiresAt, &entry.HitCount, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapPgError("select cache entry", err)
	}

	var result ai.Analysis
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}
	entry.Result = &result
	return &entry, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, entry *Entry) error {
	payload, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	const query = `
INSERT INTO ai_match_cache (id, user_id, program_id, profile_hash, model_version, ai_result, expires_at, hit_count, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8)
ON CONFLICT (user_id, program_id, profile_hash) DO UPDATE SET
	model_version = EXCLUDED.model_version,
	ai_result = EXCLUDED.ai_result,
	expires_at = EXCLUDED.expires_at,
	hit_count = 0,
	created_at = EXCLUDED.created_at
`
	_, err = s.db.ExecContext(ctx, query,
		entry.ID,
		entry.Key.UserID,
		entry.Key.ProgramID,
		entry.Key.Fingerprint,
		entry.Key.ModelVersion,
		payload,
		entry.ExpiresAt,
		entry.CreatedAt,
	)
	if err != nil {
		return mapPgError("upsert cache entry", err)
	}
	return nil
}

func (s *PostgresStore) IncrementHit(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE ai_match_cache SET hit_count = hit_count + 1 WHERE id = $1`, id)
	if err != nil {
		return mapPgError("increment hit count", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func mapPgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return ErrNoTable
	}
	return fmt.Errorf("%s: %w", op, err)
}
