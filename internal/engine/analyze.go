package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/program-matcher/internal/catalog"
	"github.com/spigell/program-matcher/internal/logger"
	"github.com/spigell/program-matcher/internal/scoring"
)

// Fit levels of a single program analysis.
const (
	LevelHigh   = "high"
	LevelMedium = "medium"
	LevelLow    = "low"

	highThreshold   = 70
	mediumThreshold = 50
)

// Suggestion thresholds per category, and the profile completeness below which
// special conditions are worth filling in.
const (
	suggestIndustryBelow     = 20
	suggestScaleBelow        = 15
	suggestRegionBelow       = 10
	suggestSpecialBelow      = 10
	suggestCompletenessBelow = 80
)

var levelMessages = map[string]string{
	LevelHigh:   "이 지원사업은 귀사에 매우 적합합니다!",
	LevelMedium: "이 지원사업은 귀사에 적합할 수 있습니다.",
	LevelLow:    "이 지원사업은 조건이 맞지 않을 수 있습니다.",
}

const (
	suggestIndustry = "프로필의 업종 정보를 업데이트하면 더 정확한 매칭이 가능합니다."
	suggestScale    = "매출/직원 수 정보를 입력하면 규모 조건을 확인할 수 있습니다."
	suggestRegion   = "지역 정보를 확인하고 업데이트해보세요."
	suggestSpecial  = "특수 조건 (청년/여성/사회적기업 등)을 입력하면 우대 사업을 찾을 수 있습니다."
)

// ProgramRef identifies the analysed program.
type ProgramRef struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Organization string     `json:"organization,omitempty"`
	ApplyEndDate *time.Time `json:"apply_end_date,omitempty"`
	DetailURL    string     `json:"detail_url,omitempty"`
}

// CategoryScore is a category score out of its maximum.
type CategoryScore struct {
	Score int `json:"score"`
	Max   int `json:"max"`
}

type Breakdown struct {
	Industry CategoryScore `json:"industry"`
	Scale    CategoryScore `json:"scale"`
	Region   CategoryScore `json:"region"`
	Type     CategoryScore `json:"type"`
	Special  CategoryScore `json:"special"`
}

// Analysis is the fit analysis of one program for one user.
type Analysis struct {
	Program                 ProgramRef            `json:"program"`
	Score                   int                   `json:"score"`
	Level                   string                `json:"level"`
	Message                 string                `json:"message"`
	Breakdown               Breakdown             `json:"breakdown"`
	Reasons                 []string              `json:"reasons"`
	Suggestions             []string              `json:"suggestions"`
	Disqualified            bool                  `json:"disqualified"`
	DisqualificationReasons []string              `json:"disqualification_reasons,omitempty"`
	Details                 *scoring.FitBreakdown `json:"fit_breakdown"`
}

// Analyze scores a single program for the user and suggests profile improvements.
func (e *Engine) Analyze(ctx context.Context, userID, programID string) (*Analysis, error) {
	switch {
	case strings.TrimSpace(userID) == "":
		return nil, newError(CodeInvalidRequest, msgUserRequired, nil)
	case strings.TrimSpace(programID) == "":
		return nil, newError(CodeInvalidRequest, msgProgramRequired, nil)
	}

	profile, err := e.source.Profile(ctx, userID)
	switch {
	case errors.Is(err, catalog.ErrProfileNotFound):
		return nil, newError(CodeProfileRequired, msgProfileRequired, err)
	case err != nil:
		return nil, newError(CodeAnalysisFailed, msgAnalysisFailed, fmt.Errorf("load profile: %w", err))
	}

	program, err := e.source.Program(ctx, programID)
	switch {
	case errors.Is(err, catalog.ErrProgramNotFound):
		return nil, newError(CodeProgramNotFound, msgProgramNotFound, err)
	case err != nil:
		return nil, newError(CodeAnalysisFailed, msgAnalysisFailed, fmt.Errorf("load program: %w", err))
	}

	b := scoring.Score(profile, program)
	score := b.Total()
	level := levelFor(score)

	e.logger.Debug("program analysed",
		append(logger.MatchFields(userID, programID), zap.Int("score", score), zap.String("level", level))...,
	)

	return &Analysis{
		Program: ProgramRef{
			ID:           program.ID,
			Title:        program.Title,
			Organization: program.Organization,
			ApplyEndDate: program.ApplyEndDate,
			DetailURL:    program.DetailURL,
		},
		Score:   score,
		Level:   level,
		Message: levelMessages[level],
		Breakdown: Breakdown{
			Industry: CategoryScore{Score: b.IndustryMatch, Max: scoring.MaxIndustry},
			Scale:    CategoryScore{Score: b.ScaleMatch, Max: scoring.MaxScale},
			Region:   CategoryScore{Score: b.RegionMatch, Max: scoring.MaxRegion},
			Type:     CategoryScore{Score: b.TypeMatch, Max: scoring.MaxType},
			Special:  CategoryScore{Score: b.SpecialMatch, Max: scoring.MaxSpecial},
		},
		Reasons:                 b.Reasons,
		Suggestions:             suggestions(b, profile.ProfileCompleteness),
		Disqualified:            b.Disqualified,
		DisqualificationReasons: b.DisqualificationReasons,
		Details:                 b,
	}, nil
}

func levelFor(score int) string {
	switch {
	case score >= highThreshold:
		return LevelHigh
	case score >= mediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

func suggestions(b *scoring.FitBreakdown, completeness int) []string {
	out := []string{}
	if b.IndustryMatch < suggestIndustryBelow {
		out = append(out, suggestIndustry)
	}
	if b.ScaleMatch < suggestScaleBelow {
		out = append(out, suggestScale)
	}
	if b.RegionMatch < suggestRegionBelow {
		out = append(out, suggestRegion)
	}
	if b.SpecialMatch < suggestSpecialBelow && completeness < suggestCompletenessBelow {
		out = append(out, suggestSpecial)
	}
	return out
}
