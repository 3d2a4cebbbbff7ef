package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spigell/program-matcher/internal/ai"
)

const defaultRedisPrefix = "program-matcher:ai-cache"

// incrementHitScript bumps hit_count only while the hash still exists.
var incrementHitScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
return redis.call("HINCRBY", KEYS[1], "hit_count", 1)
`)

// RedisOptions configures NewRedisClient.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
}

// NewRedisClient opens a client and checks the connection.
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Address,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// RedisStore keeps every entry in a hash that expires with the entry. The
// id of a Redis entry is its hash key.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k Key) string {
	return strings.Join([]string{s.prefix, k.UserID, k.ProgramID, k.Fingerprint}, ":")
}

func (s *RedisStore) Lookup(ctx context.Context, key Key, now time.Time) (*Entry, error) {
	id := s.key(key)

	fields, err := s.client.HGetAll(ctx, id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read cache hash: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	if fields["model_version"] != key.ModelVersion {
		return nil, ErrNotFound
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, fields["expires_at"])
	if err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}
	if !expiresAt.After(now) {
		return nil, ErrNotFound
	}

	var result ai.Analysis
	if err := json.Unmarshal([]byte(fields["ai_result"]), &result); err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}

	hits, _ := strconv.Atoi(fields["hit_count"])
	createdAt, _ := time.Parse(time.RFC3339Nano, fields["created_at"])

	return &Entry{
		ID:        id,
		Key:       key,
		Result:    &result,
		ExpiresAt: expiresAt,
		HitCount:  hits,
		CreatedAt: createdAt,
	}, nil
}

func (s *RedisStore) Upsert(ctx context.Context, entry *Entry) error {
	payload, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	id := s.key(entry.Key)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, id)
		pipe.HSet(ctx, id,
			"entry_id", entry.ID,
			"user_id", entry.Key.UserID,
			"program_id", entry.Key.ProgramID,
			"profile_hash", entry.Key.Fingerprint,
			"model_version", entry.Key.ModelVersion,
			"ai_result", string(payload),
			"expires_at", entry.ExpiresAt.UTC().Format(time.RFC3339Nano),
			"created_at", entry.CreatedAt.UTC().Format(time.RFC3339Nano),
			"hit_count", 0,
		)
		pipe.ExpireAt(ctx, id, entry.ExpiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("write cache hash: %w", err)
	}
	return nil
}

func (s *RedisStore) IncrementHit(ctx context.Context, id string) error {
	hits, err := incrementHitScript.Run(ctx, s.client, []string{id}).Int64()
	if err != nil {
		return fmt.Errorf("increment hit count: %w", err)
	}
	if hits == 0 {
		return ErrNotFound
	}
	return nil
}
