package scoring

import (
	"fmt"

	"github.com/spigell/program-matcher/internal/programs"
)

const (
	microEmployeeLimit   = 10
	smeEmployeeLimit     = 300
	startupYearsLimit    = 7
	scaleBaseline        = 10
	scaleNoLimitRequired = "제한 없음"
)

func scoreScale(in *input) categoryResult {
	profile := in.profile
	employees := profile.EmployeeCount
	years := profile.BusinessYears

	score := scaleBaseline
	reason := ""
	requirement := scaleNoLimitRequired
	profileValue := profile.ScaleLabel()

	if containsAny(in.text, "소상공인", "소기업") {
		requirement = "소상공인/소기업 (10인 이하)"
		switch {
		case employees > 0 && employees <= microEmployeeLimit:
			score = 20
			reason = fmt.Sprintf("직원 %d명으로 소상공인 기준(10인 이하) 충족", employees)
		case employees == 0:
			score = 15
			reason = "소상공인/소기업 대상 사업. 직원수 미입력으로 자격 확인 필요"
		default:
			score = 8
			reason = fmt.Sprintf("직원 %d명으로 소상공인 기준(10인 이하) 초과 가능성. 자격 확인 필요", employees)
		}
	}

	if containsAny(in.text, "중소기업", "중소벤처") {
		requirement = "중소기업 (300인 이하)"
		switch {
		case employees > 0 && employees <= smeEmployeeLimit:
			score = max(score, 18)
			reason = fmt.Sprintf("직원 %d명으로 중소기업 기준(300인 이하) 충족", employees)
		case employees == 0:
			score = max(score, 15)
			reason = "중소기업 대상 사업. 직원수 미입력으로 정확한 자격 확인 필요"
		default:
			score = 6
			reason = fmt.Sprintf("직원 %d명으로 중소기업 기준 초과 가능성 있음", employees)
		}
	}

	if containsAny(in.text, "스타트업", "창업기업") {
		if requirement == scaleNoLimitRequired {
			requirement = "스타트업/창업기업 (7년 이하)"
		}
		switch {
		case profile.EntityType == programs.EntityCorporation && years > 0 && years <= startupYearsLimit:
			score = 20
			reason = fmt.Sprintf("업력 %d년으로 창업기업 기준(7년 이하) 충족", years)
		case years > startupYearsLimit:
			score = max(score, 8)
			reason = fmt.Sprintf("업력 %d년으로 창업기업 기준(7년 이하) 초과. 자격 미달 가능성", years)
		case reason == "":
			score = max(score, 14)
			reason = "스타트업/창업기업 대상 사업. 업력 정보를 입력하면 정확한 자격 확인 가능"
		}
	}

	if reason == "" {
		reason = "공고에 별도 규모 제한이 없어 대부분의 기업이 신청 가능"
		if profileValue == "미입력" {
			reason = "규모 정보 미입력. 직원수와 매출액을 입력하면 정확한 자격 분석 제공"
		}
	}

	score = clamp(score, 0, MaxScale)
	detail := newDetail(score, MaxScale, reason, profileValue, requirement)
	if profileValue == "미입력" {
		detail.Tips = "직원수, 매출액을 입력하면 더 정확한 매칭이 가능합니다"
	}

	return categoryResult{score: score, detail: detail}
}
