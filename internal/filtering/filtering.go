package filtering

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/program-matcher/internal/programs"
)

// Filter represents a single filtering step applied to the program catalog.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, p *programs.Programs) (*programs.Programs, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
	// Now returns the reference time for date windows. time.Now is used when nil.
	Now func() time.Time
}

func (d Deps) today() time.Time {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	t := now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains the request options consumed by the filters.
type Config struct {
	ActiveOnly      bool
	IncludeUpcoming bool
	// UpcomingHorizon bounds how far in the future an upcoming program may open.
	UpcomingHorizon time.Duration
	// PlaceholderMarkers are title fragments of demo and test announcements.
	PlaceholderMarkers []string
}

// DefaultConfig returns the options used when a request does not override them.
func DefaultConfig() *Config {
	return &Config{
		IncludeUpcoming:    true,
		UpcomingHorizon:    DefaultUpcomingHorizon,
		PlaceholderMarkers: DefaultPlaceholderMarkers(),
	}
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Default returns the catalog steps in the order they are applied.
func Default() []Filter {
	return []Filter{
		NewArchived(),
		NewPlaceholder(),
		NewApplicationWindow(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the remaining programs.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, p *programs.Programs) (*programs.Programs, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if p == nil {
		p = &programs.Programs{}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		p = next
	}

	return p, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
