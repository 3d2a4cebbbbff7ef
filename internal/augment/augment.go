// Package augment enriches the best rule-scored programs with reasoner
// analyses, reading and filling the analysis cache on the way.
package augment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/program-matcher/internal/ai"
	"github.com/spigell/program-matcher/internal/cache"
	"github.com/spigell/program-matcher/internal/logger"
	"github.com/spigell/program-matcher/internal/programs"
	"github.com/spigell/program-matcher/internal/ranking"
	"github.com/spigell/program-matcher/internal/scoring"
	"github.com/spigell/program-matcher/internal/utils"
)

const (
	DefaultLimit = 5
	DefaultDelay = 300 * time.Millisecond

	// Blend weights in tenths.
	aiWeight   = 7
	ruleWeight = 3
)

// Analysis outcomes reported to Metrics.
const (
	OutcomeCacheHit = "cache_hit"
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
)

// Metrics receives one observation per analysed item.
type Metrics interface {
	ObserveAnalysis(outcome string, elapsed time.Duration)
}

// Options controls one augmentation run.
type Options struct {
	// Limit is the number of top matches to analyse. Zero selects DefaultLimit.
	Limit int
	// SkipCache forces live calls without reading the cache. Results are
	// still written.
	SkipCache bool
}

// Stats summarises one augmentation run.
type Stats struct {
	Analyzed  int `json:"analyzed"`
	CacheHits int `json:"cache_hits"`
	LiveCalls int `json:"live_calls"`
	Failures  int `json:"failures"`
}

// Orchestrator runs the reasoner over matches strictly one at a time.
type Orchestrator struct {
	analyzer ai.Analyzer
	cache    *cache.Cache
	logger   *zap.Logger
	metrics  Metrics
	delay    time.Duration
	wait     func(ctx context.Context, d time.Duration) error
	since    func(time.Time) time.Duration
}

type Option func(*Orchestrator)

// WithDelay sets the pause after every item that reached the reasoner.
func WithDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.delay = d }
}

func WithMetrics(m Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func withWait(wait func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) { o.wait = wait }
}

// New returns an orchestrator. c may be nil to run without a cache.
func New(analyzer ai.Analyzer, c *cache.Cache, log *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		analyzer: analyzer,
		cache:    c,
		logger:   logger.Named(log, "augment"),
		delay:    DefaultDelay,
		wait:     utils.WaitFor,
		since:    time.Since,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Enabled reports whether an analyzer is configured.
func (o *Orchestrator) Enabled() bool {
	return o != nil && o.analyzer != nil
}

// CacheEnabled reports whether analyses are cached.
func (o *Orchestrator) CacheEnabled() bool {
	return o.Enabled() && o.cache.Enabled()
}

// Augment analyses the first opts.Limit entries of matches, which must be
// ranked already, and re-sorts the whole slice by the blended scores. A
// failed analysis leaves its item with the rule result. When ctx is
// cancelled the run stops, items augmented so far are kept and ctx.Err()
// is returned.
func (o *Orchestrator) Augment(ctx context.Context, profile *programs.CompanyProfile, matches []*scoring.MatchedProgram, opts Options) (Stats, error) {
	var stats Stats
	if o == nil || o.analyzer == nil || len(matches) == 0 {
		return stats, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	top := matches[:min(limit, len(matches))]

	modelVersion := o.analyzer.ModelVersion()
	fingerprint := cache.Fingerprint(profile, modelVersion)
	log := o.logger.With(
		zap.String(logger.FieldUserID, profile.UserID),
		zap.String(logger.FieldFingerprint, fingerprint),
		zap.String(logger.FieldModel, modelVersion),
	)

	log.Info("starting ai analysis", zap.Int("items", len(top)), zap.Bool("cache_enabled", o.cache.Enabled() && !opts.SkipCache))

	var runErr error
	for idx, match := range top {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		key := cache.Key{
			UserID:       profile.UserID,
			ProgramID:    match.Program.ID,
			Fingerprint:  fingerprint,
			ModelVersion: modelVersion,
		}
		itemLog := log.With(zap.String(logger.FieldProgramID, key.ProgramID), zap.Int("position", idx+1))

		started := time.Now()
		var analysis *ai.Analysis
		if !opts.SkipCache {
			analysis = o.cache.Get(ctx, key)
		}

		live := false
		if analysis != nil {
			stats.CacheHits++
			o.observe(OutcomeCacheHit, started)
			itemLog.Debug("analysis served from cache")
		} else {
			live = true
			stats.LiveCalls++

			result, err := o.analyzer.Analyze(ctx, profile, match.Program)
			if err != nil {
				stats.Failures++
				o.observe(OutcomeFailure, started)
				itemLog.Warn("ai analysis failed, keeping rule score", zap.Error(err))
			} else {
				analysis = result
				o.observe(OutcomeSuccess, started)
				o.cache.PutAsync(ctx, key, result)
				itemLog.Debug("analysis received", zap.Int("ai_score", result.FitScore))
			}
		}

		if analysis != nil {
			Apply(match, analysis)
			stats.Analyzed++
		}

		if live && idx < len(top)-1 && o.delay > 0 {
			if err := o.wait(ctx, o.delay); err != nil {
				runErr = err
				break
			}
		}
	}

	ranking.Sort(matches)

	log.Info("ai analysis finished",
		zap.Int("analyzed", stats.Analyzed),
		zap.Int("cache_hits", stats.CacheHits),
		zap.Int("live_calls", stats.LiveCalls),
		zap.Int("failures", stats.Failures),
	)
	return stats, runErr
}

// Apply attaches analysis to match: the score becomes the blend of the
// reasoner and rule scores, the summary and reasons come from the reasoner.
func Apply(match *scoring.MatchedProgram, analysis *ai.Analysis) {
	match.AIAnalysis = analysis
	match.FitScore = Blend(analysis.FitScore, match.FitScore)

	if match.Breakdown == nil {
		match.Breakdown = &scoring.FitBreakdown{}
	}
	match.Breakdown.Summary = analysis.Summary

	reasons := make([]string, 0, len(analysis.StrategicReasons)+1)
	for _, reason := range analysis.StrategicReasons {
		reasons = append(reasons, "🎯 "+reason)
	}
	if len(analysis.Concerns) > 0 {
		reasons = append(reasons, "⚠️ "+analysis.Concerns[0])
	}
	match.Breakdown.Reasons = reasons
}

// Blend weighs the reasoner score 70% and the rule score 30%, rounding
// halves up.
func Blend(aiScore, ruleScore int) int {
	return (aiScore*aiWeight + ruleScore*ruleWeight + 5) / 10
}

func (o *Orchestrator) observe(outcome string, started time.Time) {
	if o.metrics != nil {
		o.metrics.ObserveAnalysis(outcome, o.since(started))
	}
}
