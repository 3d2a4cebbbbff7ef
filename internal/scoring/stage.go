package scoring

import (
	"fmt"
	"strings"

	"github.com/spigell/program-matcher/internal/programs"
)

const typeBaseline = 8

func scoreType(in *input) categoryResult {
	profile := in.profile
	entity := profile.EntityType
	stage := profile.StartupStage
	years := profile.BusinessYears

	score := typeBaseline
	reason := ""
	requirement := "제한 없음"

	var parts []string
	if entity != "" {
		parts = append(parts, entity)
	}
	if stage != "" {
		parts = append(parts, stage)
	}
	if years > 0 {
		parts = append(parts, fmt.Sprintf("업력 %d년", years))
	}
	profileValue := "미입력"
	if len(parts) > 0 {
		profileValue = strings.Join(parts, ", ")
	}

	if entity == "" && stage == "" {
		reason = "사업자 유형/창업단계 정보 미입력. 입력하면 정확한 자격 분석 가능"
		detail := newDetail(score, MaxType, reason, profileValue, requirement)
		detail.Tips = "사업자 유형, 창업단계를 입력하면 맞춤 지원사업을 찾기 쉬워집니다"
		return categoryResult{score: score, detail: detail}
	}

	switch {
	case entity == programs.EntityPreFounder || stage == programs.StagePreFounding:
		if keyword := findAny(in.text, stageTable.Lookup(programs.StagePreFounding)...); keyword != "" {
			score = 15
			requirement = "예비창업자 대상"
			reason = fmt.Sprintf("공고에서 %q 조건 발견. 예비창업자에게 적합한 사업", keyword)
		} else {
			score = 6
			requirement = "기존 사업자 대상 추정"
			reason = "예비창업자 관련 조건이 없어 사업자등록을 마친 기업 대상 사업으로 추정"
		}
	case stage == programs.StageEarly || (years > 0 && years <= 3):
		if keyword := findAny(in.text, stageTable.Lookup(programs.StageEarly)...); keyword != "" {
			score = 15
			requirement = "초기창업 (3년 이내)"
			reason = fmt.Sprintf("공고에서 %q 조건 발견. 귀사 업력이 초기창업 기준에 적합", keyword)
		} else {
			score = 12
			requirement = "창업기업 전반"
			reason = "초기창업 명시 조건은 없으나 업력 3년 이하로 대부분의 창업지원사업 신청 가능"
		}
	case stage == programs.StageGrowth || (years > 3 && years <= 7):
		if keyword := findAny(in.text, stageTable.Lookup(programs.StageGrowth)...); keyword != "" {
			score = 15
			requirement = "성장기 (스케일업)"
			reason = fmt.Sprintf("공고에서 %q 조건 발견. 성장기 기업 기준에 적합", keyword)
		} else {
			score = 10
			requirement = "중소기업 전반"
			reason = "초기창업 사업 자격 미달 가능. 성장기/일반 중소기업 사업 확인 필요"
		}
	case years > 7:
		if containsAny(in.text, globalKeywords...) {
			score = 14
			requirement = "수출/글로벌 진출 기업"
			reason = fmt.Sprintf("업력 %d년 기업으로 글로벌/수출 지원사업에 적합", years)
		} else {
			score = 8
			requirement = "창업기업 대상 추정"
			reason = fmt.Sprintf("업력 %d년으로 창업초기 지원사업(7년 이내) 자격 미달 가능성. 일반 중소기업 사업 확인 권장", years)
		}
	}

	if entity == programs.EntityCorporation && containsAny(in.text, "법인", "기업") {
		score = max(score, 12)
		if reason == "" {
			reason = "법인 사업자로서 대부분의 기업 지원사업 신청 가능"
		}
	}

	if entity == programs.EntityIndividual && strings.Contains(in.text, "법인") && !strings.Contains(in.text, "개인") {
		score = min(score, 6)
		requirement = "법인 사업자 대상"
		reason = "법인 사업자 대상 사업으로 추정. 개인사업자는 신청이 어려울 수 있음"
	}

	score = clamp(score, 0, MaxType)
	return categoryResult{
		score:  score,
		detail: newDetail(score, MaxType, reason, profileValue, requirement),
		reason: reason,
	}
}
