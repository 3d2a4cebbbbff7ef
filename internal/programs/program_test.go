package programs

import (
	"encoding/json"
	"os"
	"testing"
	"time"
)

func TestProgramsExcludeKeepsOrder(t *testing.T) {
	catalog := &Programs{Items: []*Program{
		{ID: "1", Organization: "중소벤처기업부"},
		{ID: "2", Organization: "서울시"},
		{ID: "3", Organization: "중소벤처기업부"},
		{ID: "4", Organization: "창업진흥원"},
	}}

	excluded := catalog.Exclude(ProgramOrganizationField, []string{"중소벤처기업부"})
	if len(excluded) != 2 || excluded[0] != "1" || excluded[1] != "3" {
		t.Fatalf("unexpected excluded ids: %v", excluded)
	}

	if catalog.Len() != 2 || catalog.Items[0].ID != "2" || catalog.Items[1].ID != "4" {
		t.Fatalf("unexpected remaining programs: %+v", catalog.Items)
	}

	if catalog.FindByID("4") == nil || catalog.FindByID("1") != nil {
		t.Fatalf("FindByID does not reflect exclusion")
	}
}

func TestReportByOrganization(t *testing.T) {
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	catalog := &Programs{Items: []*Program{
		{ID: "b", Title: "판로 지원", Organization: "서울시", ApplyEndDate: &end},
		{ID: "a", Title: "입주기업 모집", Organization: "서울시"},
		{ID: "c", Title: "R&D 과제"},
	}}

	report := catalog.ReportByOrganization()

	seoul := report["서울시"]
	if len(seoul) != 2 || seoul[0]["title"] != "입주기업 모집" {
		t.Fatalf("expected sorted entries for 서울시, got %v", seoul)
	}
	if seoul[1]["apply_period"] != "미정 ~ 2025-03-31" {
		t.Fatalf("unexpected apply period: %q", seoul[1]["apply_period"])
	}
	if _, ok := report["미상"]; !ok {
		t.Fatalf("expected fallback organization key")
	}
}

func TestDumpToTmpFile(t *testing.T) {
	catalog := &Programs{Items: []*Program{{ID: "1", Title: "테스트"}}}

	path, err := DumpToTmpFile(catalog.Items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}
	var decoded []*Program
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("dump is not valid json: %v", err)
	}
	if len(decoded) != 1 || decoded[0].ID != "1" {
		t.Fatalf("unexpected dump content: %s", data)
	}
}

func TestDecodePrograms(t *testing.T) {
	items := []map[string]any{
		{
			"id":               "p-1",
			"title":            "2025 창업도약패키지",
			"apply_start_date": "2025-02-01",
			"apply_end_date":   "2025-03-15T18:00:00+09:00",
			"archived":         "false",
		},
		{
			"id":             42,
			"title":          "수출바우처",
			"apply_end_date": "",
		},
	}

	catalog, err := DecodePrograms(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if catalog.Len() != 2 {
		t.Fatalf("expected 2 programs, got %d", catalog.Len())
	}

	first := catalog.Items[0]
	if first.ApplyStartDate == nil || first.ApplyStartDate.Format(time.DateOnly) != "2025-02-01" {
		t.Fatalf("unexpected start date: %v", first.ApplyStartDate)
	}
	if first.ApplyEndDate == nil || first.ApplyEndDate.Day() != 15 {
		t.Fatalf("unexpected end date: %v", first.ApplyEndDate)
	}

	second := catalog.Items[1]
	if second.ID != "42" {
		t.Fatalf("expected weakly typed id, got %q", second.ID)
	}
	if second.ApplyEndDate != nil {
		t.Fatalf("expected empty date to decode as nil, got %v", second.ApplyEndDate)
	}

	if _, err := DecodePrograms([]map[string]any{{"title": "no id"}}); err == nil {
		t.Fatalf("expected error for program without id")
	}
}

func TestDecodeProfile(t *testing.T) {
	profile, err := DecodeProfile(map[string]any{
		"user_id":             "u-1",
		"industry_category":   "정보통신업",
		"employee_count":      "12",
		"annual_revenue":      350000000,
		"tech_certifications": "벤처기업,이노비즈",
		"is_youth_startup":    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if profile.EmployeeCount != 12 {
		t.Fatalf("expected employee count 12, got %d", profile.EmployeeCount)
	}
	if len(profile.TechCertifications) != 2 {
		t.Fatalf("expected certifications split, got %v", profile.TechCertifications)
	}
	if got := profile.ScaleLabel(); got != "직원 12명, 매출 3.5억원" {
		t.Fatalf("unexpected scale label %q", got)
	}
}
