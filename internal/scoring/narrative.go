package scoring

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/spigell/program-matcher/internal/programs"
)

// BenefitKind tells what a program offers in its headline figure.
type BenefitKind string

const (
	BenefitMoney BenefitKind = "money"
	BenefitSpace BenefitKind = "space"
	BenefitCount BenefitKind = "count"
)

// Benefit is the headline figure of a program, e.g. "5,000만원" or "20개실".
type Benefit struct {
	Kind  BenefitKind
	Value string
}

// Narrative is the human readable explanation of a breakdown.
type Narrative struct {
	Nature       string
	Benefit      *Benefit
	PrimaryLabel string
	Summary      string
	Reasons      []string
}

var (
	specificAmount = regexp.MustCompile(`(?:최대|지원|한도|규모|총)\s?(:?금액|예산)?\s?(\d+(?:,\d+)?(?:억|천|백|십)?(?:만)?원)`)
	looseAmount    = regexp.MustCompile(`(\d+(?:,\d+)?(?:억|천|백)?(?:만)?원)`)
	spaceAmount    = regexp.MustCompile(`(\d+(?:개실|평|m2|호실))`)
	selectionCount = regexp.MustCompile(`(\d+(?:명|개사|팀|업체))`)
)

const spaceFallback = "독립 사무공간"

type keyPoint struct {
	label  string
	score  int
	reason string
	weight int
}

// Narrate explains b in a few sentences. It does not modify b.
func Narrate(profile *programs.CompanyProfile, program *programs.Program, b *FitBreakdown) Narrative {
	body := whitespaceRun.ReplaceAllString(program.Title+" "+program.Content, " ")
	nature := natureOf(program, body)
	benefit := benefitOf(program, body, nature)

	points := keyPoints(b)
	n := Narrative{Nature: nature, Benefit: benefit}
	if len(points) > 0 {
		n.PrimaryLabel = points[0].label
	}

	match := matchClause(profile, points)
	benefitClause := ""
	if benefit != nil {
		switch benefit.Kind {
		case BenefitMoney:
			benefitClause = fmt.Sprintf(" **최대 %s**의 자금을 지원하며,", benefit.Value)
		case BenefitSpace:
			if benefit.Value == spaceFallback {
				benefitClause = " **독립형 입주 공간**을 지원하며,"
			} else {
				benefitClause = fmt.Sprintf(" **%s** 규모의 입주 공간을 제공하며,", benefit.Value)
			}
		case BenefitCount:
			benefitClause = fmt.Sprintf(" 총 **%s** 규모로 선발하며,", benefit.Value)
		}
	}

	total := b.Total()
	switch {
	case total >= 80:
		organization := program.Organization
		if organization == "" {
			organization = "정부/지자체"
		}
		second := "다른 자격 요건도 충족합니다."
		if len(points) > 1 {
			second = points[1].reason + " 또한 강점입니다."
		}
		n.Summary = fmt.Sprintf("이 사업은 %s에서 주관하여 %s입니다.%s %s, %s 놓치지 말고 신청하시기를 강력 추천합니다.",
			organization, nature, benefitClause, match, second)
	case total >= 65:
		n.Summary = fmt.Sprintf("이 사업은 %s입니다.%s %s 전반적인 지원 자격을 충족하고 있습니다. 상세 요건을 확인 후 신청 준비를 하시는 것이 좋겠습니다.",
			nature, benefitClause, match)
	case total >= 50:
		first := "기본적인 자격 요건은 충족"
		if len(points) > 0 {
			first = points[0].reason
		}
		caveat := "세부 요건을 꼼꼼히 따져보아야 합니다."
		if len(b.Weaknesses) > 0 {
			caveat = b.Weaknesses[0] + " 등 일부 조건에 대한 확인이 필요합니다."
		}
		n.Summary = fmt.Sprintf("신청을 고려해볼 만한 사업입니다.%s %s %s하지만, %s", benefitClause, match, first, caveat)
	default:
		weak := "주요 자격 요건이 맞지 않을 수 있습니다."
		if len(b.Weaknesses) > 0 {
			weak = strings.Join(b.Weaknesses, ", ")
		}
		n.Summary = fmt.Sprintf("이 사업은 %s이나, 귀사의 현황과 맞지 않아 적합성이 낮습니다. %s 다른 지원사업을 우선적으로 검토하시기 바랍니다.", nature, weak)
	}

	n.Reasons = narrateReasons(program, b.Reasons, points, benefit)
	return n
}

func natureOf(program *programs.Program, body string) string {
	for _, nature := range programNatures {
		if (nature.Title != nil && containsRaw(program.Title, nature.Title)) ||
			(nature.Body != nil && containsRaw(body, nature.Body)) {
			return nature.Clause
		}
	}
	if clause, ok := supportTypeNatures[program.SupportType]; ok {
		return clause
	}
	return genericNature
}

func containsRaw(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func benefitOf(program *programs.Program, body, nature string) *Benefit {
	if amount := strings.TrimSpace(program.SupportAmount); amount != "" {
		return &Benefit{Kind: BenefitMoney, Value: amount}
	}
	if m := specificAmount.FindStringSubmatch(body); m != nil {
		return &Benefit{Kind: BenefitMoney, Value: m[2]}
	}
	if m := looseAmount.FindStringSubmatch(body); m != nil {
		return &Benefit{Kind: BenefitMoney, Value: m[1]}
	}
	if m := spaceAmount.FindStringSubmatch(body); m != nil {
		return &Benefit{Kind: BenefitSpace, Value: m[1]}
	}
	if m := selectionCount.FindStringSubmatch(body); m != nil {
		return &Benefit{Kind: BenefitCount, Value: m[1]}
	}
	if strings.Contains(nature, "입주") || strings.Contains(nature, "공간") {
		return &Benefit{Kind: BenefitSpace, Value: spaceFallback}
	}
	return nil
}

// keyPoints ranks the scored categories with a usable reason by weighted score.
func keyPoints(b *FitBreakdown) []keyPoint {
	candidates := []keyPoint{
		{label: "업종", score: b.IndustryMatch, reason: b.IndustryDetail.Reason, weight: 3},
		{label: "규모", score: b.ScaleMatch, reason: b.ScaleDetail.Reason, weight: 2},
		{label: "지역", score: b.RegionMatch, reason: b.RegionDetail.Reason, weight: 2},
		{label: "우대", score: b.SpecialMatch, reason: strings.Join(b.Bonuses, ", "), weight: 3},
	}

	points := candidates[:0]
	for _, p := range candidates {
		if p.score > 0 && p.reason != "" && !strings.Contains(p.reason, "미입력") {
			points = append(points, p)
		}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].score*points[i].weight > points[j].score*points[j].weight
	})
	return points
}

func matchClause(profile *programs.CompanyProfile, points []keyPoint) string {
	if len(points) == 0 {
		industry := profile.IndustryCategory
		if industry == "" {
			industry = "업종"
		}
		return fmt.Sprintf("전반적인 지원 요건이 귀사의 **%s** 및 기업 현황과 잘 부합하며", industry)
	}

	best := points[0]
	switch best.label {
	case "우대":
		return fmt.Sprintf("특히 **%s** 등의 우대 요건을 갖추고 있어 선정 확률이 매우 높으며", best.reason)
	case "업종":
		return fmt.Sprintf("귀사의 주요 업종인 **%s** 분야를 대상으로 하여 적합성이 뛰어나며", orMissing(profile.IndustryCategory))
	case "지역":
		return fmt.Sprintf("**%s** 지역 기업을 우대하는 사업으로 지역 할당 혜택을 기대할 수 있으며", profile.Region)
	default:
		return "귀사의 현재 기업 규모와 업력에 최적화된 사업이며"
	}
}

func narrateReasons(program *programs.Program, existing []string, points []keyPoint, benefit *Benefit) []string {
	reasons := append([]string{}, existing...)

	if len(points) == 0 && len(reasons) == 0 {
		category := program.Category
		if category == "" {
			category = "일반"
		}
		reasons = append(reasons, fmt.Sprintf("✅ %s 분야 적합", category), "✅ 기본 자격 요건 충족")
	}

	if benefit != nil && !anyContains(reasons, benefit.Value) {
		icon, label := "👥", "선발규모"
		switch benefit.Kind {
		case BenefitMoney:
			icon, label = "💰", "지원금"
		case BenefitSpace:
			icon, label = "🏢", "입주공간"
		}
		reasons = append([]string{fmt.Sprintf("%s %s: %s", icon, label, benefit.Value)}, reasons...)
	}

	if len(points) > 0 && !anyContains(reasons, points[0].label) {
		reasons = append(reasons, fmt.Sprintf("✅ %s 적합: %s", points[0].label, points[0].reason))
	}
	return reasons
}

func anyContains(items []string, sub string) bool {
	for _, item := range items {
		if strings.Contains(item, sub) {
			return true
		}
	}
	return false
}

var whitespaceRun = regexp.MustCompile(`\s+`)
