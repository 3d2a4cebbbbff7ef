package scoring

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/spigell/program-matcher/internal/programs"
)

func seoulProfile() *programs.CompanyProfile {
	return &programs.CompanyProfile{
		UserID:              "u1",
		CompanyName:         "테스트랩",
		IndustryCategory:    "정보통신업",
		BusinessYears:       2,
		StartupStage:        programs.StageEarly,
		EmployeeCount:       5,
		AnnualRevenue:       300_000_000,
		Region:              "서울",
		EntityType:          programs.EntityCorporation,
		BusinessDescription: "인공지능 기반 물류 최적화 플랫폼 개발",
		MainProducts:        "배송 경로 최적화 솔루션",
	}
}

func TestScoreRegionTitleConflictDisqualifies(t *testing.T) {
	program := &programs.Program{ID: "p1", Title: "[부산] 창업지원사업 참가기업 모집", Content: "부산 소재 창업기업을 지원합니다."}

	b := Score(seoulProfile(), program)

	if !b.Disqualified {
		t.Fatalf("expected disqualification, got %+v", b)
	}
	if b.RegionMatch != 0 || b.Total() != 0 {
		t.Fatalf("expected zeroed scores, region=%d total=%d", b.RegionMatch, b.Total())
	}
	if len(b.DisqualificationReasons) == 0 || b.DisqualificationReasons[0] != "지역 제한: 부산 지역만 가능 (귀사: 서울)" {
		t.Fatalf("unexpected disqualification reasons: %v", b.DisqualificationReasons)
	}
	if !strings.HasPrefix(b.Summary, "지원 자격 미달입니다.") || !strings.Contains(b.Summary, "부산") {
		t.Fatalf("unexpected summary: %s", b.Summary)
	}
	if b.RegionDetail.Status != StatusNone || b.RegionDetail.Reason == "" {
		t.Fatalf("region detail should keep its reason: %+v", b.RegionDetail)
	}
}

func TestScoreRegion(t *testing.T) {
	tests := []struct {
		name    string
		region  string
		program *programs.Program
		want    int
		disq    bool
	}{
		{name: "unknown region", region: "", program: &programs.Program{Title: "창업 지원"}, want: regionUnknown},
		{name: "own region", region: "서울", program: &programs.Program{Title: "창업 지원", Content: "서울 소재 기업 우대"}, want: regionOwn},
		{name: "shared keyword is not a conflict", region: "서울", program: &programs.Program{Title: "판교 입주기업 모집"}, want: regionOwn},
		{name: "nationwide", region: "서울", program: &programs.Program{Title: "[전국] 창업 지원"}, want: regionNationwide},
		{name: "no mention", region: "서울", program: &programs.Program{Title: "창업 지원"}, want: regionOpen},
		{name: "body conflict", region: "서울", program: &programs.Program{Title: "창업 지원", Content: "제주 소재 기업 대상"}, want: 0, disq: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := seoulProfile()
			profile.Region = tt.region
			res := scoreRegion(newInput(profile, tt.program))
			if res.score != tt.want {
				t.Fatalf("expected %d, got %d (%s)", tt.want, res.score, res.detail.Reason)
			}
			if (res.disqualification != "") != tt.disq {
				t.Fatalf("unexpected disqualification %q", res.disqualification)
			}
		})
	}
}

func TestScoreYouthOverride(t *testing.T) {
	program := &programs.Program{ID: "y1", Title: "청년창업 사관학교 입교생 모집", Content: "만 39세 이하 창업자 대상"}

	profile := seoulProfile()
	b := Score(profile, program)
	if !b.Disqualified {
		t.Fatalf("expected youth-only program to disqualify a non-youth profile")
	}
	if !strings.Contains(b.DisqualificationReasons[0], "청년 전용 사업 (청년 대상)") {
		t.Fatalf("unexpected reason: %v", b.DisqualificationReasons)
	}
	if b.SpecialMatch != 0 || b.IndustryMatch != 0 {
		t.Fatalf("expected all categories zeroed, got %+v", b)
	}

	profile.IsYouthStartup = true
	b = Score(profile, program)
	if b.Disqualified {
		t.Fatalf("youth profile must stay eligible: %v", b.DisqualificationReasons)
	}
	if b.SpecialMatch < 6 {
		t.Fatalf("expected youth bonus, got %d", b.SpecialMatch)
	}
	found := false
	for _, bonus := range b.Bonuses {
		if bonus == "청년기업 +6점" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected youth bonus entry, got %v", b.Bonuses)
	}
}

func TestScoreScale(t *testing.T) {
	program := &programs.Program{Title: "소상공인 경영개선 지원"}
	tests := []struct {
		employees int
		want      int
	}{
		{employees: 5, want: 20},
		{employees: 0, want: 15},
		{employees: 50, want: 8},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.employees), func(t *testing.T) {
			profile := seoulProfile()
			profile.EmployeeCount = tt.employees
			res := scoreScale(newInput(profile, program))
			if res.score != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, res.score)
			}
			if res.detail.ProgramRequirement != "소상공인/소기업 (10인 이하)" {
				t.Fatalf("unexpected requirement: %s", res.detail.ProgramRequirement)
			}
		})
	}
}

func TestScoreScaleMissingProfileAddsTip(t *testing.T) {
	res := scoreScale(newInput(&programs.CompanyProfile{}, &programs.Program{Title: "혁신 기업 지원"}))
	if res.score != scaleBaseline {
		t.Fatalf("expected baseline, got %d", res.score)
	}
	if res.detail.ProfileValue != "미입력" || res.detail.Tips == "" {
		t.Fatalf("expected missing profile tip, got %+v", res.detail)
	}
}

func TestScoreType(t *testing.T) {
	tests := []struct {
		name    string
		profile *programs.CompanyProfile
		program *programs.Program
		want    int
	}{
		{
			name:    "pre-founder with matching program",
			profile: &programs.CompanyProfile{EntityType: programs.EntityPreFounder},
			program: &programs.Program{Title: "예비창업패키지 예비창업자 모집"},
			want:    15,
		},
		{
			name:    "pre-founder with regular program",
			profile: &programs.CompanyProfile{EntityType: programs.EntityPreFounder},
			program: &programs.Program{Title: "수출 바우처 지원"},
			want:    6,
		},
		{
			name:    "individual on corporate-only program",
			profile: &programs.CompanyProfile{EntityType: programs.EntityIndividual, BusinessYears: 2},
			program: &programs.Program{Title: "법인 대상 초기 투자 지원"},
			want:    6,
		},
		{
			name:    "mature exporter",
			profile: &programs.CompanyProfile{EntityType: programs.EntityCorporation, BusinessYears: 12},
			program: &programs.Program{Title: "글로벌 진출 지원"},
			want:    14,
		},
		{
			name:    "missing",
			profile: &programs.CompanyProfile{},
			program: &programs.Program{Title: "창업 지원"},
			want:    typeBaseline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := scoreType(newInput(tt.profile, tt.program))
			if res.score != tt.want {
				t.Fatalf("expected %d, got %d (%s)", tt.want, res.score, res.detail.Reason)
			}
		})
	}
}

func TestScoreIndustry(t *testing.T) {
	profile := seoulProfile()

	restricted := scoreIndustry(newInput(profile, &programs.Program{Title: "스마트팜 농업인 육성 지원"}))
	if restricted.score != industryRestricted || !restricted.restricted {
		t.Fatalf("expected restricted industry score, got %d", restricted.score)
	}

	open := scoreIndustry(newInput(profile, &programs.Program{Title: "혁신기업 지원", Content: "업종 제한 없음"}))
	if open.score != industryOpen {
		t.Fatalf("expected open industry score, got %d", open.score)
	}

	matched := scoreIndustry(newInput(profile, &programs.Program{Title: "AI 플랫폼 스타트업 지원", Content: "소프트웨어 창업기업 대상"}))
	if matched.score < 26 || len(matched.detail.MatchedKeywords) == 0 {
		t.Fatalf("expected keyword bonus, got %d %+v", matched.score, matched.detail)
	}

	missing := scoreIndustry(newInput(&programs.CompanyProfile{}, &programs.Program{Title: "지원사업"}))
	if missing.score != 15 {
		t.Fatalf("expected floor for missing industry, got %d", missing.score)
	}
}

func TestScoreInvariantHolds(t *testing.T) {
	catalog := []*programs.Program{
		{Title: "AI 플랫폼 스타트업 지원", Content: "최대 1억원 서울 소재 창업기업 지원", SupportType: "사업화"},
		{Title: "창업센터 입주기업 모집", Content: "20개실 규모"},
		{Title: "여성기업 판로개척 지원", Content: "여성 대표 기업 우대, 30개사 선발"},
		{Title: "수출 바우처", Content: "글로벌 진출 수출기업 지원"},
		{Title: "", Content: ""},
		nil,
	}
	profile := seoulProfile()
	profile.IsFemaleOwned = true
	profile.InterestedCategories = []string{"판로개척(마케팅/수출)", "사업화"}
	profile.PreferredSupportTypes = []string{"사업화"}

	for idx, program := range catalog {
		b := Score(profile, program)
		if b.Disqualified {
			continue
		}
		scores := []struct{ got, max int }{
			{b.IndustryMatch, MaxIndustry},
			{b.ScaleMatch, MaxScale},
			{b.RegionMatch, MaxRegion},
			{b.TypeMatch, MaxType},
			{b.SpecialMatch, MaxSpecial},
		}
		sum := 0
		for _, s := range scores {
			if s.got < 0 || s.got > s.max {
				t.Fatalf("program %d: score %d outside [0,%d]", idx, s.got, s.max)
			}
			sum += s.got
		}
		if b.Total() != sum {
			t.Fatalf("program %d: total %d != sum %d", idx, b.Total(), sum)
		}
		if b.Summary == "" || len(b.Reasons) == 0 {
			t.Fatalf("program %d: expected narrative, got %+v", idx, b)
		}
	}
}

func TestScoreSpecialInterestsAndSupportType(t *testing.T) {
	profile := &programs.CompanyProfile{
		InterestedCategories:  []string{"판로개척(마케팅/수출)", "교육"},
		PreferredSupportTypes: []string{"판로"},
	}
	program := &programs.Program{Title: "온라인 마케팅 지원", Content: "전문가 멘토링 포함", SupportType: "판로"}

	res := scoreSpecial(newInput(profile, program))
	if res.score != 14 {
		t.Fatalf("expected 10 interest + 4 support type, got %d (%v)", res.score, res.bonuses)
	}
	if len(res.bonuses) != 2 || res.bonuses[0] != "관심분야 +10점" || res.bonuses[1] != "지원유형 +4점" {
		t.Fatalf("unexpected bonuses: %v", res.bonuses)
	}
}

func TestScoreSpecialDetailStatuses(t *testing.T) {
	profile := &programs.CompanyProfile{IsExportBusiness: true}
	program := &programs.Program{Title: "여성기업 제품 개발 지원"}

	res := scoreSpecial(newInput(profile, program))
	statuses := map[Status]int{}
	for _, d := range res.details {
		statuses[d.Status]++
	}
	if statuses[StatusPartial] != 1 || statuses[StatusLow] != 1 {
		t.Fatalf("expected one partial (export) and one low (female) detail, got %+v", res.details)
	}
	if res.score != 0 {
		t.Fatalf("expected no points, got %d", res.score)
	}
}

func TestScoreAllKeepsOrder(t *testing.T) {
	catalog := make([]*programs.Program, 25)
	for idx := range catalog {
		catalog[idx] = &programs.Program{ID: strconv.Itoa(idx), Title: "창업 지원 " + strconv.Itoa(idx)}
	}

	matches, err := ScoreAll(context.Background(), seoulProfile(), catalog, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != len(catalog) {
		t.Fatalf("expected %d matches, got %d", len(catalog), len(matches))
	}
	for idx, match := range matches {
		if match.Program != catalog[idx] {
			t.Fatalf("match %d is out of order", idx)
		}
		if match.FitScore != match.Breakdown.Total() {
			t.Fatalf("match %d: fit score %d != total %d", idx, match.FitScore, match.Breakdown.Total())
		}
	}
}

func TestScoreAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ScoreAll(ctx, seoulProfile(), []*programs.Program{{ID: "1"}}, 1); err == nil {
		t.Fatalf("expected cancellation error")
	}
}
