package scoring

import (
	"fmt"
	"strings"

	"github.com/spigell/program-matcher/internal/textnorm"
)

const (
	industryBaseline   = 20
	industryGeneral    = 22
	industryRestricted = 5
	industryOpen       = 28
	industryKeywordPts = 4
	industryKeywordCap = 12
	industryDirectPts  = 3
)

func scoreIndustry(in *input) categoryResult {
	profile := in.profile
	industry := profile.IndustryCategory

	score := industryBaseline
	reason := ""
	requirement := "제한 없음"
	restricted := false
	var matched []string

	keywords := ProfileKeywords(profile)

	if restriction := restrictionFor(in.program.Title); restriction != nil && !restriction.admits(industry) {
		score = industryRestricted
		restricted = true
		requirement = restriction.Label + " 전용"
		reason = fmt.Sprintf("⚠️ %s 업종 전용 사업으로 귀사 업종(%s)과 일치하지 않음", restriction.Label, orMissing(industry))
	} else {
		if containsAny(in.text, generalStartupKeywords...) {
			score = industryGeneral
			requirement = "창업/중소기업 전반"
			reason = "창업/중소기업 대상 사업으로 대부분의 업종에서 신청 가능"
		}

		if len(keywords) > 0 {
			matched = textnorm.MatchedKeywords(in.raw, keywords)
			if len(matched) > 0 {
				score = min(MaxIndustry, score+min(len(matched)*industryKeywordPts, industryKeywordCap))
				requirement = strings.Join(head(matched, 5), ", ")
				source := industry
				if len(profile.InterestedKeywords) > 0 {
					source = "귀사 프로필"
				}
				reason = fmt.Sprintf("✅ 공고에서 %s 키워드 발견, %s과(와) 연관성 높음", quoteAll(head(matched, 3)), source)
			}
		}

		if len([]rune(strings.TrimSpace(in.profileText))) > 10 {
			if words := directMatches(in.profileText, in.text); len(words) >= 2 {
				score = min(MaxIndustry, score+industryDirectPts)
				if !strings.Contains(reason, "✅") {
					reason = fmt.Sprintf("귀사 사업설명의 %s 등이 공고 내용과 일치", quoteAll(head(words, 2)))
				}
			}
		}

		if containsAny(in.text, allIndustryPhrases...) {
			score = industryOpen
			requirement = "전업종 (제한없음)"
			reason = "✅ 업종 제한 없이 모든 기업이 신청 가능한 사업"
		}
	}

	if industry == "" {
		score = max(15, score-5)
		if reason == "" {
			reason = "업종 정보 미입력으로 정확한 매칭 불가. 업종을 입력하면 맞춤 분석 제공"
		}
	}

	score = clamp(score, industryRestricted, MaxIndustry)

	profileValue := orMissing(industry)
	if len(keywords) > 0 {
		suffix := ""
		if len(keywords) > 5 {
			suffix = "..."
		}
		profileValue = fmt.Sprintf("%s (키워드: %s%s)", orMissing(industry), strings.Join(head(keywords, 5), ", "), suffix)
	}

	detail := newDetail(score, MaxIndustry, reason, profileValue, requirement)
	detail.MatchedKeywords = matched
	if len(profile.InterestedKeywords) == 0 && industry == "" {
		detail.Tips = "사업 설명과 관심 키워드를 입력하면 더 정확한 매칭이 가능합니다"
	}

	return categoryResult{score: score, detail: detail, reason: reason, restricted: restricted}
}

// directMatches returns the distinct profile words longer than two characters
// that literally appear in the program text.
func directMatches(profileText, programText string) []string {
	seen := make(map[string]struct{})
	var words []string
	for _, word := range strings.Fields(profileText) {
		if len([]rune(word)) <= 2 {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		if strings.Contains(programText, word) {
			words = append(words, word)
		}
	}
	return words
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for idx, item := range items {
		quoted[idx] = `"` + item + `"`
	}
	return strings.Join(quoted, ", ")
}

func orMissing(value string) string {
	if strings.TrimSpace(value) == "" {
		return "미입력"
	}
	return value
}
