// Package cache stores reasoner analyses keyed by user, program, profile
// fingerprint and model version.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/program-matcher/internal/ai"
	"github.com/spigell/program-matcher/internal/logger"
)

// DefaultTTL is how long an analysis stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// Lookup and write outcomes reported to Metrics.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
	ResultOK    = "ok"
)

// Metrics receives cache outcomes.
type Metrics interface {
	ObserveCacheLookup(result string)
	ObserveCacheWrite(result string)
}

// Cache wraps a Store. Store faults never reach the caller: reads degrade
// to misses and writes are dropped after logging.
type Cache struct {
	store   Store
	ttl     time.Duration
	logger  *zap.Logger
	metrics Metrics
	now     func() time.Time

	pending sync.WaitGroup
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMetrics reports lookups and writes to m.
func WithMetrics(m Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(store Store, log *zap.Logger, opts ...Option) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Cache{
		store:  store,
		ttl:    DefaultTTL,
		logger: logger.Named(log, "cache"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached analysis for key or nil on a miss. A hit bumps the
// hit counter in the background.
func (c *Cache) Get(ctx context.Context, key Key) *ai.Analysis {
	if c == nil || c.store == nil {
		return nil
	}

	log := c.logger.With(logger.MatchFields(key.UserID, key.ProgramID)...)

	entry, err := c.store.Lookup(ctx, key, c.now())
	switch {
	case err == nil && entry != nil && entry.Result != nil:
	case err == nil, errors.Is(err, ErrNotFound):
		c.observeLookup(ResultMiss)
		return nil
	case errors.Is(err, ErrNoTable):
		log.Debug("cache table is missing, treating as miss")
		c.observeLookup(ResultMiss)
		return nil
	default:
		log.Warn("cache lookup failed, treating as miss", zap.Error(err))
		c.observeLookup(ResultError)
		return nil
	}

	c.observeLookup(ResultHit)
	log.Debug("cache hit", zap.String("entry_id", entry.ID), zap.Int("hit_count", entry.HitCount))

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		if err := c.store.IncrementHit(context.WithoutCancel(ctx), entry.ID); err != nil {
			log.Debug("cannot increment cache hit count", zap.Error(err))
		}
	}()

	return entry.Result
}

// Put stores result under key. Failures are logged and swallowed.
func (c *Cache) Put(ctx context.Context, key Key, result *ai.Analysis) {
	if c == nil || c.store == nil || result == nil {
		return
	}

	now := c.now()
	entry := &Entry{
		ID:        uuid.NewString(),
		Key:       key,
		Result:    result,
		ExpiresAt: now.Add(c.ttl),
		CreatedAt: now,
	}

	if err := c.store.Upsert(ctx, entry); err != nil {
		c.logger.Warn("cache write failed", append(logger.MatchFields(key.UserID, key.ProgramID), zap.Error(err))...)
		c.observeWrite(ResultError)
		return
	}
	c.observeWrite(ResultOK)
}

// PutAsync runs Put in the background. The write outlives ctx cancellation.
func (c *Cache) PutAsync(ctx context.Context, key Key, result *ai.Analysis) {
	if c == nil || c.store == nil || result == nil {
		return
	}

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		c.Put(context.WithoutCancel(ctx), key, result)
	}()
}

// Wait blocks until background writes and hit updates finish.
func (c *Cache) Wait() {
	if c == nil {
		return
	}
	c.pending.Wait()
}

// Enabled reports whether lookups can ever hit.
func (c *Cache) Enabled() bool {
	return c != nil && c.store != nil
}

func (c *Cache) observeLookup(result string) {
	if c.metrics != nil {
		c.metrics.ObserveCacheLookup(result)
	}
}

func (c *Cache) observeWrite(result string) {
	if c.metrics != nil {
		c.metrics.ObserveCacheWrite(result)
	}
}
