// Package scoring computes explainable rule-based fit scores between a company
// profile and support programs.
package scoring

import (
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/spigell/program-matcher/internal/programs"
	"github.com/spigell/program-matcher/internal/textnorm"
)

const defaultWorkers = 8

// input holds the normalized texts shared by the category scorers.
type input struct {
	profile *programs.CompanyProfile
	program *programs.Program

	// raw joins the program text fields before markup removal.
	raw string
	// text is the cleaned, lowercased program text.
	text string
	// title is the lowercased program title.
	title string
	// profileText is the lowercased free text of the profile.
	profileText string
}

func newInput(profile *programs.CompanyProfile, program *programs.Program) *input {
	raw := strings.Join([]string{
		program.Title,
		program.Content,
		program.AISummary,
		program.EligibilityCriteria,
		program.Category,
	}, " ")

	return &input{
		profile:     profile,
		program:     program,
		raw:         raw,
		text:        strings.ToLower(textnorm.StripMarkup(raw)),
		title:       strings.ToLower(program.Title),
		profileText: strings.ToLower(profile.Text()),
	}
}

// categoryResult is the outcome of one category scorer.
type categoryResult struct {
	score  int
	detail CategoryDetail
	// reason is added to the breakdown reasons when not empty.
	reason string
	// disqualification is set when the category makes the program ineligible.
	disqualification string
	// restricted marks an industry-only program outside the profile's industry.
	restricted bool
}

// Score computes the fit breakdown of program for profile. It never fails;
// missing fields only weaken the affected category.
func Score(profile *programs.CompanyProfile, program *programs.Program) *FitBreakdown {
	if profile == nil {
		profile = &programs.CompanyProfile{}
	}
	if program == nil {
		program = &programs.Program{}
	}

	in := newInput(profile, program)
	b := &FitBreakdown{Reasons: []string{}}

	contentLength := utf8.RuneCountInString(textnorm.StripMarkup(program.Content)) +
		utf8.RuneCountInString(textnorm.StripMarkup(program.EligibilityCriteria))
	b.ContentLength = contentLength
	switch {
	case contentLength > 1000:
		b.AnalysisQuality = QualityHigh
	case contentLength > 300:
		b.AnalysisQuality = QualityMedium
	default:
		b.AnalysisQuality = QualityLow
	}
	b.KeywordCoverage = textnorm.KeywordCoverage(in.raw, ProfileKeywords(profile))

	industry := scoreIndustry(in)
	b.IndustryMatch, b.IndustryDetail = industry.score, industry.detail
	b.IndustryRestricted = industry.restricted

	scale := scoreScale(in)
	b.ScaleMatch, b.ScaleDetail = scale.score, scale.detail

	region := scoreRegion(in)
	b.RegionMatch, b.RegionDetail = region.score, region.detail

	stage := scoreType(in)
	b.TypeMatch, b.TypeDetail = stage.score, stage.detail

	special := scoreSpecial(in)
	b.SpecialMatch, b.SpecialDetails, b.Bonuses = special.score, special.details, special.bonuses

	for _, result := range []categoryResult{industry, region, stage} {
		if result.reason != "" {
			b.Reasons = append(b.Reasons, result.reason)
		}
	}
	b.Reasons = append(b.Reasons, special.bonuses...)

	for _, reason := range []string{region.disqualification, special.disqualification} {
		if reason != "" {
			b.disqualify(reason)
		}
	}

	b.Strengths, b.Weaknesses = assess(b)

	narrative := Narrate(profile, program, b)
	b.Summary = narrative.Summary
	b.Reasons = narrative.Reasons

	applyDisqualification(b)
	return b
}

// NewMatch scores program for profile.
func NewMatch(profile *programs.CompanyProfile, program *programs.Program) *MatchedProgram {
	breakdown := Score(profile, program)
	return &MatchedProgram{
		Program:   program,
		FitScore:  breakdown.Total(),
		Breakdown: breakdown,
	}
}

// ScoreAll scores every program concurrently on at most workers goroutines.
// The result keeps the catalog order.
func ScoreAll(ctx context.Context, profile *programs.CompanyProfile, catalog []*programs.Program, workers int) ([]*MatchedProgram, error) {
	if workers <= 0 {
		workers = defaultWorkers
	}

	matches := make([]*MatchedProgram, len(catalog))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for idx, program := range catalog {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			matches[idx] = NewMatch(profile, program)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return matches, nil
}

// assess lists the notable strengths and weaknesses of a breakdown.
func assess(b *FitBreakdown) (strengths, weaknesses []string) {
	switch {
	case b.IndustryMatch >= 25:
		strengths = append(strengths, "업종 적합성 우수")
	case b.IndustryMatch < 15:
		weaknesses = append(weaknesses, "업종 관련성 낮음")
	}
	switch {
	case b.ScaleMatch >= 18:
		strengths = append(strengths, "규모 조건 충족")
	case b.ScaleMatch < 10:
		weaknesses = append(weaknesses, "규모 요건 미달 가능")
	}
	if b.RegionMatch >= 13 {
		strengths = append(strengths, "지역 우대 적용")
	}
	switch {
	case b.TypeMatch >= 13:
		strengths = append(strengths, "창업단계 적합")
	case b.TypeMatch < 8:
		weaknesses = append(weaknesses, "사업자유형 조건 확인 필요")
	}
	if b.SpecialMatch >= 10 {
		strengths = append(strengths, "특별 우대 조건 충족")
	}
	return strengths, weaknesses
}

// applyDisqualification zeroes an ineligible breakdown and replaces its summary.
func applyDisqualification(b *FitBreakdown) {
	if !b.Disqualified {
		return
	}

	b.IndustryMatch, b.ScaleMatch, b.RegionMatch, b.TypeMatch, b.SpecialMatch = 0, 0, 0, 0, 0
	b.IndustryDetail = b.IndustryDetail.zeroed()
	b.ScaleDetail = b.ScaleDetail.zeroed()
	b.RegionDetail = b.RegionDetail.zeroed()
	b.TypeDetail = b.TypeDetail.zeroed()
	details := make([]CategoryDetail, len(b.SpecialDetails))
	for idx, detail := range b.SpecialDetails {
		details[idx] = detail.zeroed()
	}
	b.SpecialDetails = details

	reasons := "필수 자격 요건을 충족하지 않습니다."
	if len(b.DisqualificationReasons) > 0 {
		reasons = strings.Join(b.DisqualificationReasons, ", ")
	}
	b.Summary = "지원 자격 미달입니다. " + reasons + " 상세 요건을 다시 한번 확인하시기 바랍니다."
}
