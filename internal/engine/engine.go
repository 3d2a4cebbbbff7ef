// Package engine answers match and analysis requests on top of the catalog,
// the rule scorer and the AI augmentation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/program-matcher/internal/augment"
	"github.com/spigell/program-matcher/internal/catalog"
	"github.com/spigell/program-matcher/internal/filtering"
	"github.com/spigell/program-matcher/internal/logger"
	"github.com/spigell/program-matcher/internal/programs"
	"github.com/spigell/program-matcher/internal/ranking"
	"github.com/spigell/program-matcher/internal/scoring"
)

const (
	statusOK = "ok"

	msgMatchesFound = "%d개의 맞춤 지원사업을 찾았습니다."
	msgAIApplied    = " (AI 분석 적용)"
	msgNoMatches    = "조건에 맞는 지원사업이 없습니다. 프로필을 업데이트해보세요."
)

// Request holds the options of one match request. Use NewRequest for defaults.
type Request struct {
	UserID          string
	MinScore        int
	Limit           int
	Offset          int
	ActiveOnly      bool
	IncludeUpcoming bool
	AI              bool
	AILimit         int
	SkipCache       bool
}

// NewRequest returns a request with the default options.
func NewRequest(userID string) Request {
	return Request{
		UserID:          userID,
		MinScore:        ranking.DefaultMinScore,
		Limit:           ranking.DefaultLimit,
		IncludeUpcoming: true,
		AILimit:         augment.DefaultLimit,
	}
}

// AIStats reports the augmentation of a match request.
type AIStats struct {
	Enabled       bool `json:"enabled"`
	AnalyzedCount int  `json:"analyzed_count,omitempty"`
	CacheEnabled  bool `json:"cache_enabled"`
	CacheHits     int  `json:"cache_hits"`
	LiveCalls     int  `json:"live_calls"`
	Failures      int  `json:"failures"`
}

// Response is the answer to a match request.
type Response struct {
	Matches             []*scoring.MatchedProgram `json:"matches"`
	Pagination          ranking.Pagination        `json:"pagination"`
	ProfileCompleteness int                       `json:"profile_completeness"`
	AI                  AIStats                   `json:"ai"`
	Message             string                    `json:"message"`
}

// Metrics observes match requests.
type Metrics interface {
	ObserveMatch(status string, ranked int, elapsed time.Duration)
}

// Engine is safe for concurrent use.
type Engine struct {
	source    catalog.Source
	augmenter *augment.Orchestrator
	logger    *zap.Logger
	metrics   Metrics
	workers   int
	horizon   time.Duration
	now       func() time.Time
}

type Option func(*Engine)

// WithAugmenter enables AI augmentation for requests asking for it.
func WithAugmenter(o *augment.Orchestrator) Option {
	return func(e *Engine) { e.augmenter = o }
}

func WithMetrics(m Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithWorkers bounds the scoring fan-out.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithUpcomingHorizon overrides how far ahead upcoming programs are listed.
func WithUpcomingHorizon(d time.Duration) Option {
	return func(e *Engine) { e.horizon = d }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(source catalog.Source, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		source:  source,
		logger:  logger.Named(log, "engine"),
		horizon: filtering.DefaultUpcomingHorizon,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Match scores the catalog for the request's user and returns the ranked page.
func (e *Engine) Match(ctx context.Context, req Request) (*Response, error) {
	started := e.now()
	resp, err := e.match(ctx, req)

	status, ranked := statusOK, -1
	if resp != nil {
		ranked = resp.Pagination.Total
	}
	var engineErr *Error
	if errors.As(err, &engineErr) {
		status = string(engineErr.Code)
	}
	if e.metrics != nil {
		e.metrics.ObserveMatch(status, ranked, e.now().Sub(started))
	}
	return resp, err
}

func (e *Engine) match(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, newError(CodeInvalidRequest, msgUserRequired, nil)
	}
	log := e.logger.With(zap.String(logger.FieldUserID, req.UserID))

	profile, err := e.profile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	catalogue, err := e.catalog(ctx, log, req)
	if err != nil {
		return nil, newError(CodeMatchFailed, msgMatchFailed, err)
	}

	scored, err := scoring.ScoreAll(ctx, profile, catalogue.Items, e.workers)
	if err != nil {
		return nil, newError(CodeMatchFailed, msgMatchFailed, fmt.Errorf("score programs: %w", err))
	}
	ranked := ranking.Rank(scored, req.MinScore)
	log.Info("programs ranked",
		zap.Int("catalog", catalogue.Len()),
		zap.Int("ranked", len(ranked)),
		zap.Int("min_score", req.MinScore),
	)

	stats := AIStats{}
	switch {
	case req.AI && e.augmenter.Enabled():
		limit := req.AILimit
		if limit <= 0 {
			limit = augment.DefaultLimit
		}
		stats = AIStats{
			Enabled:       true,
			AnalyzedCount: min(limit, len(ranked)),
			CacheEnabled:  e.augmenter.CacheEnabled() && !req.SkipCache,
		}
		result, err := e.augmenter.Augment(ctx, profile, ranked, augment.Options{Limit: limit, SkipCache: req.SkipCache})
		if err != nil {
			return nil, newError(CodeMatchFailed, msgMatchFailed, fmt.Errorf("augment matches: %w", err))
		}
		stats.CacheHits = result.CacheHits
		stats.LiveCalls = result.LiveCalls
		stats.Failures = result.Failures
	case req.AI:
		log.Debug("ai augmentation requested but no analyzer is configured")
	}

	page, pagination := ranking.Paginate(ranked, req.Offset, req.Limit)
	return &Response{
		Matches:             page,
		Pagination:          pagination,
		ProfileCompleteness: profile.ProfileCompleteness,
		AI:                  stats,
		Message:             matchMessage(pagination.Total, stats.Enabled),
	}, nil
}

func (e *Engine) profile(ctx context.Context, userID string) (*programs.CompanyProfile, error) {
	profile, err := e.source.Profile(ctx, userID)
	switch {
	case errors.Is(err, catalog.ErrProfileNotFound):
		return nil, newError(CodeProfileRequired, msgProfileRequired, err)
	case err != nil:
		return nil, newError(CodeMatchFailed, msgMatchFailed, fmt.Errorf("load profile: %w", err))
	}
	return profile, nil
}

func (e *Engine) catalog(ctx context.Context, log *zap.Logger, req Request) (*programs.Programs, error) {
	all, err := e.source.Programs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load programs: %w", err)
	}

	cfg := filtering.DefaultConfig()
	cfg.ActiveOnly = req.ActiveOnly
	cfg.IncludeUpcoming = req.IncludeUpcoming
	cfg.UpcomingHorizon = e.horizon

	filtered, err := filtering.Run(ctx, cfg, filtering.Deps{Logger: log, Now: e.now}, filtering.Default(), all)
	if err != nil {
		return nil, fmt.Errorf("filter programs: %w", err)
	}
	return filtered, nil
}

func matchMessage(total int, aiApplied bool) string {
	if total == 0 {
		return msgNoMatches
	}
	message := fmt.Sprintf(msgMatchesFound, total)
	if aiApplied {
		message += msgAIApplied
	}
	return message
}
