package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/program-matcher/internal/programs"
)

// DefaultUpcomingHorizon is how far ahead upcoming programs are still listed.
const DefaultUpcomingHorizon = 365 * 24 * time.Hour

// DefaultPlaceholderMarkers returns the title fragments of demo and test announcements.
func DefaultPlaceholderMarkers() []string {
	return []string{"데모", "테스트"}
}

type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

type archivedFilter struct {
	toggle
}

// NewArchived creates a filter that removes archived programs.
func NewArchived() Filter {
	return &archivedFilter{}
}

func (f *archivedFilter) Name() string { return "archived" }

func (f *archivedFilter) Validate(*Config) error { return nil }

func (f *archivedFilter) Apply(_ context.Context, deps Deps, p *programs.Programs) (*programs.Programs, Step, error) {
	initial := p.Len()
	excluded := p.ExcludeFunc(func(program *programs.Program) bool { return program.Archived })
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Debug("excluding archived programs",
			zap.Strings("excluded_programs", excluded),
			zap.Int("programs_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}

func (f *archivedFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type placeholderFilter struct {
	toggle
	markers []string
}

// NewPlaceholder creates a filter that removes demo and test announcements by title.
func NewPlaceholder() Filter {
	return &placeholderFilter{}
}

func (f *placeholderFilter) Name() string { return "placeholder" }

func (f *placeholderFilter) Validate(cfg *Config) error {
	markers := cfg.PlaceholderMarkers
	if markers == nil {
		markers = DefaultPlaceholderMarkers()
	}
	f.markers = nil
	for _, marker := range markers {
		if marker = strings.TrimSpace(marker); marker != "" {
			f.markers = append(f.markers, marker)
		}
	}
	return nil
}

func (f *placeholderFilter) Apply(_ context.Context, deps Deps, p *programs.Programs) (*programs.Programs, Step, error) {
	initial := p.Len()
	if len(f.markers) == 0 {
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	excluded := p.ExcludeFunc(func(program *programs.Program) bool {
		for _, marker := range f.markers {
			if strings.Contains(program.Title, marker) {
				return true
			}
		}
		return false
	})
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Debug("excluding placeholder programs",
			zap.Strings("markers", f.markers),
			zap.Strings("excluded_programs", excluded),
			zap.Int("programs_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}

func (f *placeholderFilter) Status() Status {
	details := map[string]string{}
	if len(f.markers) > 0 {
		details["markers"] = strings.Join(f.markers, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type windowFilter struct {
	toggle
	activeOnly      bool
	includeUpcoming bool
	horizon         time.Duration
}

// NewApplicationWindow creates a filter that keeps programs by their application dates.
// Active-only keeps programs open today. Otherwise, with upcoming programs included,
// it keeps programs that have not closed and open within the horizon.
func NewApplicationWindow() Filter {
	return &windowFilter{}
}

func (f *windowFilter) Name() string { return "application_window" }

func (f *windowFilter) Validate(cfg *Config) error {
	if cfg.UpcomingHorizon < 0 {
		return fmt.Errorf("upcoming horizon must not be negative, got %s", cfg.UpcomingHorizon)
	}
	f.activeOnly = cfg.ActiveOnly
	f.includeUpcoming = cfg.IncludeUpcoming
	f.horizon = cfg.UpcomingHorizon
	if f.horizon == 0 {
		f.horizon = DefaultUpcomingHorizon
	}
	return nil
}

func (f *windowFilter) Apply(_ context.Context, deps Deps, p *programs.Programs) (*programs.Programs, Step, error) {
	initial := p.Len()

	var keep func(*programs.Program) bool
	today := deps.today()
	switch {
	case f.activeOnly:
		keep = func(program *programs.Program) bool { return openOn(program, today) }
	case f.includeUpcoming:
		limit := today.Add(f.horizon)
		keep = func(program *programs.Program) bool { return notClosed(program, today) && opensBefore(program, limit) }
	default:
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	excluded := p.ExcludeFunc(func(program *programs.Program) bool { return !keep(program) })
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Debug("excluding programs outside the application window",
			zap.Bool("active_only", f.activeOnly),
			zap.Strings("excluded_programs", excluded),
			zap.Int("programs_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}

func (f *windowFilter) Status() Status {
	details := map[string]string{
		"active_only":      strconv.FormatBool(f.activeOnly),
		"include_upcoming": strconv.FormatBool(f.includeUpcoming),
		"horizon":          f.horizon.String(),
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

// openOn requires both dates: a program without a window is never "active".
func openOn(program *programs.Program, day time.Time) bool {
	if program.ApplyStartDate == nil || program.ApplyEndDate == nil {
		return false
	}
	return !dateOf(*program.ApplyStartDate).After(day) && !dateOf(*program.ApplyEndDate).Before(day)
}

func notClosed(program *programs.Program, day time.Time) bool {
	return program.ApplyEndDate == nil || !dateOf(*program.ApplyEndDate).Before(day)
}

// opensBefore drops programs without a start date, matching a SQL "<=" on NULL.
func opensBefore(program *programs.Program, limit time.Time) bool {
	return program.ApplyStartDate != nil && !dateOf(*program.ApplyStartDate).After(limit)
}

// dateOf keeps the calendar date only so dates stored in different zones compare by day.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
