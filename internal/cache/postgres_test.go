package cache

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(db), mock
}

func TestPostgresStoreLookup(t *testing.T) {
	store, mock := newPostgresStore(t)
	now := time.Now()
	key := Key{UserID: "u1", ProgramID: "p1", Fingerprint: "fp", ModelVersion: "m1"}

	rows := sqlmock.NewRows([]string{"id", "ai_result", "expires_at", "hit_count", "created_at"}).
		AddRow("e1", []byte(`{"fit_level":"good","fit_score":78,"summary":"적합"}`), now.Add(time.Hour), 3, now)
	mock.ExpectQuery("SELECT id, ai_result, expires_at, hit_count, created_at").
		WithArgs("u1", "p1", "fp", "m1", sqlmock.AnyArg()).
		WillReturnRows(rows)

	entry, err := store.Lookup(context.Background(), key, now)
	require.NoError(t, err)
	assert.Equal(t, "e1", entry.ID)
	assert.Equal(t, 3, entry.HitCount)
	assert.Equal(t, 78, entry.Result.FitScore)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreLookupErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: sql.ErrNoRows, want: ErrNotFound},
		{name: "missing table", err: &pgconn.PgError{Code: "42P01", Message: `relation "ai_match_cache" does not exist`}, want: ErrNoTable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newPostgresStore(t)
			mock.ExpectQuery("SELECT id, ai_result").WillReturnError(tt.err)

			_, err := store.Lookup(context.Background(), Key{}, time.Now())
			assert.ErrorIs(t, err, tt.want)
		})
	}

	store, mock := newPostgresStore(t)
	mock.ExpectQuery("SELECT id, ai_result").WillReturnError(errors.New("connection reset"))
	_, err := store.Lookup(context.Background(), Key{}, time.Now())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoTable))
}

func TestPostgresStoreUpsert(t *testing.T) {
	store, mock := newPostgresStore(t)
	now := time.Now()
	entry := &Entry{
		ID:        "e1",
		Key:       Key{UserID: "u1", ProgramID: "p1", Fingerprint: "fp", ModelVersion: "m1"},
		Result:    sampleAnalysis(),
		ExpiresAt: now.Add(DefaultTTL),
		CreatedAt: now,
	}

	mock.ExpectExec("INSERT INTO ai_match_cache").
		WithArgs("e1", "u1", "p1", "fp", "m1", sqlmock.AnyArg(), entry.ExpiresAt, entry.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Upsert(context.Background(), entry))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreIncrementHit(t *testing.T) {
	store, mock := newPostgresStore(t)

	mock.ExpectExec("UPDATE ai_match_cache SET hit_count").WithArgs("e1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE ai_match_cache SET hit_count").WithArgs("gone").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.IncrementHit(context.Background(), "e1"))
	assert.ErrorIs(t, store.IncrementHit(context.Background(), "gone"), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreEnsureSchema(t *testing.T) {
	store, mock := newPostgresStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS ai_match_cache").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
