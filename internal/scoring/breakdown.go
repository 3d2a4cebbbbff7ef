package scoring

import (
	"github.com/spigell/program-matcher/internal/ai"
	"github.com/spigell/program-matcher/internal/programs"
)

// Category maxima. They add up to 100.
const (
	MaxIndustry = 30
	MaxScale    = 20
	MaxRegion   = 15
	MaxType     = 15
	MaxSpecial  = 20
)

// Status grades a category score relative to its maximum.
type Status string

const (
	StatusFull    Status = "full"
	StatusPartial Status = "partial"
	StatusLow     Status = "low"
	StatusNone    Status = "none"
)

// StatusFor grades score out of max: 90% full, 60% partial, 30% low.
func StatusFor(score, max int) Status {
	if max <= 0 {
		return StatusNone
	}
	ratio := float64(score) / float64(max)
	switch {
	case ratio >= 0.9:
		return StatusFull
	case ratio >= 0.6:
		return StatusPartial
	case ratio >= 0.3:
		return StatusLow
	default:
		return StatusNone
	}
}

// Analysis quality grades.
const (
	QualityHigh   = "high"
	QualityMedium = "medium"
	QualityLow    = "low"
)

// CategoryDetail explains a single category score.
type CategoryDetail struct {
	Score              int      `json:"score"`
	Max                int      `json:"max"`
	Status             Status   `json:"status"`
	Reason             string   `json:"reason"`
	ProfileValue       string   `json:"profile_value"`
	ProgramRequirement string   `json:"program_requirement"`
	Tips               string   `json:"tips,omitempty"`
	MatchedKeywords    []string `json:"matched_keywords,omitempty"`
}

func newDetail(score, max int, reason, profileValue, requirement string) CategoryDetail {
	return CategoryDetail{
		Score:              score,
		Max:                max,
		Status:             StatusFor(score, max),
		Reason:             reason,
		ProfileValue:       profileValue,
		ProgramRequirement: requirement,
	}
}

// zeroed returns a copy with the score removed, used for ineligible programs.
func (d CategoryDetail) zeroed() CategoryDetail {
	d.Score = 0
	d.Status = StatusNone
	return d
}

// FitBreakdown is the explainable rule-based score of one program for one profile.
type FitBreakdown struct {
	IndustryMatch int `json:"industry_match"`
	ScaleMatch    int `json:"scale_match"`
	RegionMatch   int `json:"region_match"`
	TypeMatch     int `json:"type_match"`
	SpecialMatch  int `json:"special_match"`

	IndustryDetail CategoryDetail   `json:"industry_detail"`
	ScaleDetail    CategoryDetail   `json:"scale_detail"`
	RegionDetail   CategoryDetail   `json:"region_detail"`
	TypeDetail     CategoryDetail   `json:"type_detail"`
	SpecialDetails []CategoryDetail `json:"special_details,omitempty"`

	// Bonuses lists the preferential points awarded, e.g. "청년기업 +6점".
	Bonuses    []string `json:"bonuses,omitempty"`
	Reasons    []string `json:"reasons"`
	Strengths  []string `json:"strengths,omitempty"`
	Weaknesses []string `json:"weaknesses,omitempty"`

	Disqualified            bool     `json:"disqualified"`
	DisqualificationReasons []string `json:"disqualification_reasons,omitempty"`
	IndustryRestricted      bool     `json:"industry_restricted,omitempty"`

	Summary         string  `json:"summary"`
	AnalysisQuality string  `json:"analysis_quality"`
	ContentLength   int     `json:"content_length"`
	KeywordCoverage float64 `json:"keyword_coverage"`
}

// Total is the fit score: the sum of the five category scores.
func (b *FitBreakdown) Total() int {
	return clamp(b.IndustryMatch, 0, MaxIndustry) +
		clamp(b.ScaleMatch, 0, MaxScale) +
		clamp(b.RegionMatch, 0, MaxRegion) +
		clamp(b.TypeMatch, 0, MaxType) +
		clamp(b.SpecialMatch, 0, MaxSpecial)
}

func (b *FitBreakdown) disqualify(reason string) {
	b.Disqualified = true
	b.DisqualificationReasons = append(b.DisqualificationReasons, reason)
}

// MatchedProgram pairs a program with its score for one profile.
type MatchedProgram struct {
	Program    *programs.Program `json:"program"`
	FitScore   int               `json:"fit_score"`
	Breakdown  *FitBreakdown     `json:"fit_breakdown"`
	AIAnalysis *ai.Analysis      `json:"ai_analysis,omitempty"`
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
