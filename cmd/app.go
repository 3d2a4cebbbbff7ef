package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/program-matcher/internal/ai"
	"github.com/spigell/program-matcher/internal/ai/gemini"
	"github.com/spigell/program-matcher/internal/augment"
	"github.com/spigell/program-matcher/internal/cache"
	"github.com/spigell/program-matcher/internal/catalog"
	"github.com/spigell/program-matcher/internal/engine"
	"github.com/spigell/program-matcher/internal/metrics"
	"github.com/spigell/program-matcher/internal/secrets"
)

// application holds the wired components of one command run.
type application struct {
	engine  *engine.Engine
	cache   *cache.Cache
	closers []func() error
	logger  *zap.Logger
}

// Close waits for pending cache writes and releases connections.
func (a *application) Close() {
	a.cache.Wait()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("closing resource", zap.Error(err))
		}
	}
}

// newApplication wires the engine from config. m may be nil.
func newApplication(ctx context.Context, config *Config, logger *zap.Logger, m *metrics.Metrics) (*application, error) {
	if config == nil {
		config = &Config{}
	}
	a := &application{logger: logger}

	var db *sql.DB
	openDB := func() (*sql.DB, error) {
		if db != nil {
			return db, nil
		}
		dsn, err := resolveDSN(config.Database)
		if err != nil {
			return nil, err
		}
		db, err = catalog.OpenDB(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	}

	source, err := newSource(config.Catalog, openDB)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("catalog: %w", err)
	}

	opts := []engine.Option{}
	if config.Match != nil {
		opts = append(opts, engine.WithWorkers(config.Match.Workers))
		if config.Match.UpcomingHorizon > 0 {
			opts = append(opts, engine.WithUpcomingHorizon(config.Match.UpcomingHorizon))
		}
	}
	if m != nil {
		opts = append(opts, engine.WithMetrics(m))
	}

	if config.AI != nil && config.AI.Enabled {
		analyzer, err := newAnalyzer(ctx, config.AI, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("building ai analyzer: %w", err)
		}

		a.cache, err = newCache(ctx, config.Cache, openDB, logger, m, a)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("cache: %w", err)
		}

		augmentOpts := []augment.Option{}
		if config.AI.Delay > 0 {
			augmentOpts = append(augmentOpts, augment.WithDelay(config.AI.Delay))
		}
		if m != nil {
			augmentOpts = append(augmentOpts, augment.WithMetrics(m))
		}
		opts = append(opts, engine.WithAugmenter(augment.New(analyzer, a.cache, logger, augmentOpts...)))
	} else {
		logger.Info("ai augmentation is disabled", zap.String("hint", "set ai.enabled in the configuration file"))
	}

	a.engine = engine.New(source, logger, opts...)
	return a, nil
}

func newSource(cfg *CatalogConfig, openDB func() (*sql.DB, error)) (catalog.Source, error) {
	if cfg == nil {
		cfg = &CatalogConfig{}
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Source)) {
	case "", "file":
		if strings.TrimSpace(cfg.File) == "" {
			return nil, errors.New("catalog.file is required for the file source")
		}
		return catalog.LoadFile(cfg.File)
	case "postgres":
		db, err := openDB()
		if err != nil {
			return nil, err
		}
		return catalog.NewPostgresSource(db), nil
	default:
		return nil, fmt.Errorf("unsupported catalog source: %s", cfg.Source)
	}
}

func newCache(ctx context.Context, cfg *CacheConfig, openDB func() (*sql.DB, error), logger *zap.Logger, m *metrics.Metrics, a *application) (*cache.Cache, error) {
	if cfg == nil {
		cfg = &CacheConfig{}
	}

	opts := []cache.Option{}
	if cfg.TTL > 0 {
		opts = append(opts, cache.WithTTL(cfg.TTL))
	}
	if m != nil {
		opts = append(opts, cache.WithMetrics(m))
	}

	var store cache.Store
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "none":
		logger.Info("ai cache is disabled")
		return nil, nil
	case "", "memory":
		store = cache.NewMemoryStore()
	case "redis":
		if cfg.Redis == nil || strings.TrimSpace(cfg.Redis.Address) == "" {
			return nil, errors.New("cache.redis.address is required for the redis backend")
		}
		password, err := secrets.LoadOptional(secrets.Source{
			Name:  "redis password",
			Value: cfg.Redis.Password,
			File:  cfg.Redis.PasswordFile,
		})
		if err != nil {
			return nil, err
		}
		client, err := cache.NewRedisClient(ctx, cache.RedisOptions{
			Address:  cfg.Redis.Address,
			Password: password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		store = cache.NewRedisStore(client, cfg.Redis.Prefix)
	case "postgres":
		db, err := openDB()
		if err != nil {
			return nil, err
		}
		pg := cache.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		store = pg
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
	}

	logger.Info("ai cache is enabled", zap.String("backend", cfg.Backend))
	return cache.New(store, logger, opts...), nil
}

func newAnalyzer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Analyzer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.Provider {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or PM_GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, gemini.GeneratorOptions{
		Model:           cfg.Gemini.Model,
		Temperature:     cfg.Gemini.Temperature,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
		BreakerFailures: cfg.Gemini.BreakerFailures,
		BreakerTimeout:  cfg.Gemini.BreakerTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	return gemini.NewAnalyzer(generator, logger, cfg.Gemini.MaxLogLength), nil
}

func resolveDSN(cfg *DatabaseConfig) (string, error) {
	if cfg == nil {
		cfg = &DatabaseConfig{}
	}
	dsn, err := secrets.Load(secrets.Source{
		Name:  "database dsn",
		Value: cfg.DSN,
		File:  cfg.DSNFile,
	})
	if err != nil {
		return "", fmt.Errorf("%w (set database.dsn-file or PM_DATABASE_DSN_FILE)", err)
	}
	return dsn, nil
}
