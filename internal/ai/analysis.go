package ai

import (
	"context"
	"fmt"

	"github.com/spigell/program-matcher/internal/programs"
)

// Fit levels returned by the reasoner.
const (
	FitExcellent    = "excellent"
	FitGood         = "good"
	FitPossible     = "possible"
	FitPoor         = "poor"
	FitDisqualified = "disqualified"
)

// MaxStrategicReasons bounds the reasons kept from a reasoner answer.
const MaxStrategicReasons = 3

// Analysis is the structured answer of the external reasoner for one
// (profile, program) pair.
type Analysis struct {
	FitLevel             string   `json:"fit_level" mapstructure:"fit_level"`
	FitScore             int      `json:"fit_score" mapstructure:"fit_score"`
	Summary              string   `json:"summary" mapstructure:"summary"`
	CompanyStageFit      string   `json:"company_stage_fit" mapstructure:"company_stage_fit"`
	ProgramValue         string   `json:"program_value" mapstructure:"program_value"`
	StrategicReasons     []string `json:"strategic_reasons" mapstructure:"strategic_reasons"`
	Concerns             []string `json:"concerns" mapstructure:"concerns"`
	ActionRecommendation string   `json:"action_recommendation" mapstructure:"action_recommendation"`
	Confidence           float64  `json:"confidence" mapstructure:"confidence"`
}

// Normalize clamps numeric fields into range and bounds the reason list.
func (a *Analysis) Normalize() {
	if a.FitScore < 0 {
		a.FitScore = 0
	}
	if a.FitScore > 100 {
		a.FitScore = 100
	}
	if a.Confidence < 0 {
		a.Confidence = 0
	}
	if a.Confidence > 1 {
		a.Confidence = 1
	}
	if len(a.StrategicReasons) > MaxStrategicReasons {
		a.StrategicReasons = a.StrategicReasons[:MaxStrategicReasons]
	}
}

// Validate reports whether the analysis carries a usable level and summary.
func (a *Analysis) Validate() error {
	switch a.FitLevel {
	case FitExcellent, FitGood, FitPossible, FitPoor, FitDisqualified:
	default:
		return fmt.Errorf("unknown fit level %q", a.FitLevel)
	}
	if a.Summary == "" {
		return fmt.Errorf("summary is empty")
	}
	return nil
}

// Analyzer asks an external reasoning service how well a program fits a company.
type Analyzer interface {
	Analyze(ctx context.Context, profile *programs.CompanyProfile, program *programs.Program) (*Analysis, error)
	// ModelVersion identifies the model behind the answers. It is part of the cache key.
	ModelVersion() string
}
