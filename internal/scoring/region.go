package scoring

import (
	"fmt"
	"strings"
)

const (
	regionBaseline   = 8
	regionUnknown    = 10
	regionOwn        = 15
	regionNationwide = 12
	regionOpen       = 12
)

func scoreRegion(in *input) categoryResult {
	region := in.profile.Region
	if region == "" {
		reason := "지역 정보 미입력. 지역을 입력하면 지역 우대 사업 매칭 가능"
		detail := newDetail(regionUnknown, MaxRegion, reason, "미입력", "전국")
		detail.Tips = "지역을 선택하면 우대 지원사업을 더 잘 찾을 수 있습니다"
		return categoryResult{score: regionUnknown, detail: detail, reason: reason}
	}

	own := RegionKeywords(region)

	score := regionBaseline
	requirement := "전국"
	reason := ""
	disqualification := ""

	if other := otherRegionInTitle(in.title, region, own); other != "" {
		score = 0
		requirement = other + " 지역 한정"
		reason = fmt.Sprintf("❌ 공고 제목에 %q 지역 명시. 귀사(%s)는 지역 요건 미충족", other, region)
		disqualification = fmt.Sprintf("지역 제한: %s 지역만 가능 (귀사: %s)", other, region)
	} else if keyword := findAny(in.text, own...); keyword != "" {
		score = regionOwn
		requirement = region + " 소재기업 우대"
		reason = fmt.Sprintf("공고에서 %q 지역 조건 발견. 귀사(%s) 소재지와 일치", keyword, region)
	} else if strings.Contains(in.title, "[전국]") || containsAny(in.text, nationwidePhrases...) {
		score = regionNationwide
		requirement = "전국 (지역무관)"
		reason = "전국 단위 사업으로 지역 제한 없음"
	} else if other := otherRegionInText(in.text, region, own); other != "" {
		score = 0
		requirement = other + " 지역 한정"
		reason = fmt.Sprintf("❌ 본문에 %s 지역 관련 내용. 귀사(%s)는 지역 요건 미충족 가능", other, region)
		disqualification = fmt.Sprintf("지역 제한: %s 지역 (귀사: %s)", other, region)
	} else {
		score = regionOpen
		requirement = "지역 제한 명시 없음"
		reason = "특정 지역 제한 명시가 없어 전국 기업 신청 가능으로 추정"
	}

	detail := newDetail(score, MaxRegion, reason, region, requirement)
	return categoryResult{score: score, detail: detail, reason: reason, disqualification: disqualification}
}

// titleForms are the ways a region appears in an announcement title, e.g.
// "[부산]", "부산시", "창원·김해".
var titleForms = []func(title, keyword string) bool{
	func(title, k string) bool { return strings.Contains(title, "["+k+"]") },
	func(title, k string) bool { return strings.Contains(title, k+"시") },
	func(title, k string) bool { return strings.Contains(title, k+"도") },
	func(title, k string) bool { return strings.Contains(title, k+"군") },
	func(title, k string) bool { return strings.Contains(title, k+"구") },
	func(title, k string) bool { return strings.HasPrefix(title, k) },
	func(title, k string) bool { return strings.Contains(title, " "+k+" ") },
	func(title, k string) bool { return strings.Contains(title, k+"·") },
	func(title, k string) bool { return strings.Contains(title, "·"+k) },
}

func otherRegionInTitle(title, region string, own []string) string {
	return scanOtherRegions(region, own, func(keyword string) bool {
		for _, form := range titleForms {
			if form(title, keyword) {
				return true
			}
		}
		return false
	})
}

func otherRegionInText(text, region string, own []string) string {
	return scanOtherRegions(region, own, func(keyword string) bool {
		return strings.Contains(text, keyword)
	})
}

// scanOtherRegions returns the first region other than region with a keyword
// accepted by found. Keywords the profile's own region shares are skipped.
func scanOtherRegions(region string, own []string, found func(keyword string) bool) string {
	for _, set := range regionTable {
		if set.Label == region {
			continue
		}
		for _, keyword := range set.Keywords {
			keyword = strings.ToLower(keyword)
			if containsExact(own, keyword) {
				continue
			}
			if found(keyword) {
				return set.Label
			}
		}
	}
	return ""
}

func containsExact(items []string, target string) bool {
	for _, item := range items {
		if strings.EqualFold(item, target) {
			return true
		}
	}
	return false
}
