package scoring

import (
	"strings"
	"testing"

	"github.com/spigell/program-matcher/internal/programs"
)

func breakdownWith(industry, scale, region, stage, special int) *FitBreakdown {
	return &FitBreakdown{
		IndustryMatch:  industry,
		ScaleMatch:     scale,
		RegionMatch:    region,
		TypeMatch:      stage,
		SpecialMatch:   special,
		IndustryDetail: CategoryDetail{Reason: "업종 키워드 일치"},
		ScaleDetail:    CategoryDetail{Reason: "중소기업 기준 충족"},
		RegionDetail:   CategoryDetail{Reason: "서울 소재지와 일치"},
	}
}

func TestNarrateTiers(t *testing.T) {
	profile := &programs.CompanyProfile{IndustryCategory: "정보통신업", Region: "서울"}
	program := &programs.Program{Title: "혁신 성장 지원사업", Organization: "중소벤처기업부"}

	tests := []struct {
		name      string
		breakdown *FitBreakdown
		contains  []string
	}{
		{
			name:      "strong",
			breakdown: breakdownWith(30, 20, 15, 15, 5),
			contains:  []string{"중소벤처기업부에서 주관하여", "강력 추천합니다"},
		},
		{
			name:      "recommend",
			breakdown: breakdownWith(25, 15, 15, 12, 0),
			contains:  []string{"전반적인 지원 자격을 충족하고 있습니다"},
		},
		{
			name: "conditional",
			breakdown: func() *FitBreakdown {
				b := breakdownWith(12, 18, 12, 10, 0)
				b.Weaknesses = []string{"업종 관련성 낮음"}
				return b
			}(),
			contains: []string{"신청을 고려해볼 만한 사업입니다", "업종 관련성 낮음 등 일부 조건"},
		},
		{
			name: "discourage",
			breakdown: func() *FitBreakdown {
				b := breakdownWith(5, 8, 12, 6, 0)
				b.Weaknesses = []string{"업종 관련성 낮음", "규모 요건 미달 가능"}
				return b
			}(),
			contains: []string{genericNature, "적합성이 낮습니다", "업종 관련성 낮음, 규모 요건 미달 가능"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Narrate(profile, program, tt.breakdown)
			for _, want := range tt.contains {
				if !strings.Contains(n.Summary, want) {
					t.Fatalf("summary %q does not contain %q", n.Summary, want)
				}
			}
		})
	}
}

func TestNarrateBenefit(t *testing.T) {
	tests := []struct {
		name    string
		program *programs.Program
		kind    BenefitKind
		value   string
	}{
		{name: "support amount wins", program: &programs.Program{Title: "사업화 지원", Content: "최대 1억원", SupportAmount: "3천만원"}, kind: BenefitMoney, value: "3천만원"},
		{name: "specific amount", program: &programs.Program{Title: "사업화 지원", Content: "기업당 최대 5,000만원 지원"}, kind: BenefitMoney, value: "5,000만원"},
		{name: "loose amount", program: &programs.Program{Title: "사업화 지원", Content: "과제당 2억원 내외"}, kind: BenefitMoney, value: "2억원"},
		{name: "space", program: &programs.Program{Title: "창업 공간 입주기업 모집", Content: "20개실 제공"}, kind: BenefitSpace, value: "20개실"},
		{name: "count", program: &programs.Program{Title: "액셀러레이팅 프로그램", Content: "30개사 선발"}, kind: BenefitCount, value: "30개사"},
		{name: "space fallback", program: &programs.Program{Title: "창업센터 입주기업 모집"}, kind: BenefitSpace, value: spaceFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Narrate(&programs.CompanyProfile{}, tt.program, breakdownWith(20, 10, 10, 8, 0))
			if n.Benefit == nil {
				t.Fatalf("expected benefit")
			}
			if n.Benefit.Kind != tt.kind || n.Benefit.Value != tt.value {
				t.Fatalf("expected %s %q, got %s %q", tt.kind, tt.value, n.Benefit.Kind, n.Benefit.Value)
			}
			if !strings.Contains(n.Reasons[0], tt.value) {
				t.Fatalf("expected benefit bullet first, got %v", n.Reasons)
			}
		})
	}
}

func TestNarrateNoBenefit(t *testing.T) {
	n := Narrate(&programs.CompanyProfile{}, &programs.Program{Title: "기술 교육"}, breakdownWith(20, 10, 10, 8, 0))
	if n.Benefit != nil {
		t.Fatalf("unexpected benefit %+v", n.Benefit)
	}
	if n.Nature != "체계적인 교육과 멘토링을 제공하는" {
		t.Fatalf("unexpected nature: %s", n.Nature)
	}
}

func TestNarrateNatureFromSupportType(t *testing.T) {
	n := Narrate(&programs.CompanyProfile{}, &programs.Program{Title: "2025년 지원사업", SupportType: "인력"}, breakdownWith(0, 0, 0, 0, 0))
	if n.Nature != supportTypeNatures["인력"] {
		t.Fatalf("unexpected nature: %s", n.Nature)
	}
}

func TestNarratePrimaryReason(t *testing.T) {
	profile := &programs.CompanyProfile{Region: "서울"}
	program := &programs.Program{Title: "지원사업"}

	tie := Narrate(profile, program, breakdownWith(10, 0, 15, 0, 0))
	if tie.PrimaryLabel != "업종" {
		t.Fatalf("ties keep category order, got %s", tie.PrimaryLabel)
	}

	region := Narrate(profile, program, breakdownWith(5, 0, 15, 0, 0))
	if region.PrimaryLabel != "지역" {
		t.Fatalf("expected region as primary reason, got %s", region.PrimaryLabel)
	}
	if last := region.Reasons[len(region.Reasons)-1]; last != "✅ 지역 적합: 서울 소재지와 일치" {
		t.Fatalf("expected primary reason bullet, got %v", region.Reasons)
	}

	b := breakdownWith(0, 0, 15, 0, 0)
	b.RegionDetail.Reason = "지역 정보 미입력"
	missing := Narrate(profile, program, b)
	if missing.PrimaryLabel != "" {
		t.Fatalf("reasons with missing data must not be used, got %s", missing.PrimaryLabel)
	}
}

func TestNarrateFallbackReasons(t *testing.T) {
	n := Narrate(&programs.CompanyProfile{}, &programs.Program{Title: "지원사업", Category: "기술"}, breakdownWith(0, 0, 0, 0, 0))
	if len(n.Reasons) != 2 || n.Reasons[0] != "✅ 기술 분야 적합" || n.Reasons[1] != "✅ 기본 자격 요건 충족" {
		t.Fatalf("unexpected fallback reasons: %v", n.Reasons)
	}
}

func TestNarrateDoesNotDuplicateReasons(t *testing.T) {
	b := breakdownWith(5, 0, 15, 0, 0)
	b.Reasons = []string{"💰 지원금: 5천만원", "서울 지역 우대"}

	n := Narrate(&programs.CompanyProfile{Region: "서울"}, &programs.Program{Title: "지원사업", SupportAmount: "5천만원"}, b)
	if len(n.Reasons) != 2 {
		t.Fatalf("expected no new reasons, got %v", n.Reasons)
	}
	if len(b.Reasons) != 2 {
		t.Fatalf("input breakdown must not change")
	}
}
