package scoring

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/spigell/program-matcher/internal/programs"
)

const (
	interestPoints      = 5
	interestCap         = 10
	supportTypePoints   = 4
	interestFullAtLeast = 8
)

var bracketed = regexp.MustCompile(`\(([^)]+)\)`)

type specialResult struct {
	score            int
	details          []CategoryDetail
	bonuses          []string
	disqualification string
}

func scoreSpecial(in *input) specialResult {
	profile := in.profile
	res := specialResult{}
	sum := 0

	for _, cond := range specialConditions {
		keyword := findAny(in.text, cond.Keywords...)
		has := cond.Has(profile)

		if cond.Youth && !has {
			titled := findAny(in.title, cond.Keywords...) != ""
			if titled || (keyword != "" && strings.Contains(in.text, "제한")) {
				res.disqualification = fmt.Sprintf("청년 전용 사업 (%s 대상) - 귀사는 연령 요건 미충족", keyword)
			}
		}

		if !has && keyword == "" {
			continue
		}

		profileValue := cond.NonHolder
		if has {
			profileValue = cond.Holder(profile)
		}
		requirement := cond.Absent
		if keyword != "" {
			requirement = keyword + " 우대"
			if cond.Youth {
				requirement = keyword + " 우대/제한"
			}
		}

		detail := CategoryDetail{
			Max:                cond.Points,
			ProfileValue:       profileValue,
			ProgramRequirement: requirement,
		}
		switch {
		case has && keyword != "":
			detail.Score = cond.Points
			detail.Status = StatusFull
			detail.Reason = fmt.Sprintf("공고에서 %q 조건 발견. 귀사가 %s에 해당하여 +%d점 우대 적용", keyword, cond.Label, cond.Points)
			sum += cond.Points
			res.bonuses = append(res.bonuses, fmt.Sprintf("%s +%d점", cond.Label, cond.Points))
		case has:
			detail.Status = StatusPartial
			detail.Reason = fmt.Sprintf("귀사는 %s이나 이 공고는 해당 우대조건 없음", cond.Label)
		default:
			detail.Status = StatusLow
			detail.Reason = fmt.Sprintf("공고에서 %q 우대 조건 발견. 귀사는 해당 없어 우대점수 미획득", keyword)
		}
		res.details = append(res.details, detail)
	}

	if detail, points, ok := scoreInterests(in); ok {
		res.details = append(res.details, detail)
		if points > 0 {
			sum += points
			res.bonuses = append(res.bonuses, fmt.Sprintf("관심분야 +%d점", points))
		}
	}

	if detail, ok := scoreSupportType(profile, in.program); ok {
		res.details = append(res.details, detail)
		if detail.Score > 0 {
			sum += detail.Score
			res.bonuses = append(res.bonuses, fmt.Sprintf("지원유형 +%d점", detail.Score))
		}
	}

	res.score = min(MaxSpecial, sum)
	return res
}

// interestKeywords expands an interested category such as "기술개발(R&D/특허)"
// into the keywords to look for.
func interestKeywords(category string) []string {
	var keywords []string
	for _, set := range interestTable {
		if strings.Contains(category, set.Label) {
			keywords = append(keywords, set.Keywords...)
		}
	}
	if m := bracketed.FindStringSubmatch(category); m != nil {
		for _, word := range strings.FieldsFunc(m[1], func(r rune) bool { return r == '/' || r == ',' }) {
			if word = strings.TrimSpace(word); word != "" {
				keywords = append(keywords, word)
			}
		}
	}
	return keywords
}

func scoreInterests(in *input) (CategoryDetail, int, bool) {
	categories := in.profile.InterestedCategories
	if len(categories) == 0 {
		return CategoryDetail{}, 0, false
	}

	var matched []string
	for _, category := range categories {
		if containsAny(in.text, interestKeywords(category)...) {
			name, _, _ := strings.Cut(category, "(")
			matched = append(matched, strings.TrimSpace(name))
		}
	}

	profileValue := strings.Join(categories, ", ")
	if len(matched) == 0 {
		return CategoryDetail{
			Max:                interestCap,
			Status:             StatusLow,
			Reason:             fmt.Sprintf("귀사 관심분야(%s)가 이 공고 내용에서 발견되지 않음", strings.Join(head(categories, 2), ", ")),
			ProfileValue:       profileValue,
			ProgramRequirement: "관련 분야 없음",
		}, 0, true
	}

	points := min(len(matched)*interestPoints, interestCap)
	status := StatusPartial
	if points >= interestFullAtLeast {
		status = StatusFull
	}
	return CategoryDetail{
		Score:              points,
		Max:                interestCap,
		Status:             status,
		Reason:             fmt.Sprintf("✅ 귀사 관심분야 %q와 높은 연관성", strings.Join(matched, ", ")),
		ProfileValue:       profileValue,
		ProgramRequirement: strings.Join(matched, ", "),
		MatchedKeywords:    matched,
	}, points, true
}

func scoreSupportType(profile *programs.CompanyProfile, program *programs.Program) (CategoryDetail, bool) {
	preferred := profile.PreferredSupportTypes
	if len(preferred) == 0 || program.SupportType == "" {
		return CategoryDetail{}, false
	}

	detail := CategoryDetail{
		Max:                supportTypePoints,
		ProfileValue:       strings.Join(preferred, ", "),
		ProgramRequirement: program.SupportType,
	}
	if slices.Contains(preferred, program.SupportType) {
		detail.Score = supportTypePoints
		detail.Status = StatusFull
		detail.Reason = fmt.Sprintf("이 공고의 지원유형 %q이 귀사 선호유형과 일치하여 +%d점", program.SupportType, supportTypePoints)
		return detail, true
	}
	detail.Status = StatusLow
	detail.Reason = fmt.Sprintf("이 공고의 지원유형 %q이 귀사 선호유형(%s)과 불일치", program.SupportType, strings.Join(head(preferred, 2), ", "))
	return detail, true
}
