package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spigell/program-matcher/internal/programs"
)

const fixtureJSON = `{
  "profiles": [
    {
      "user_id": "u1",
      "company_name": "한빛소프트",
      "industry_category": "정보통신업",
      "employee_count": "12",
      "annual_revenue": 300000000,
      "region": "서울",
      "interested_keywords": "AI,SaaS",
      "is_youth_startup": true
    }
  ],
  "programs": [
    {"id": "p1", "title": "[서울] AI 바우처", "apply_start_date": "2026-03-01", "apply_end_date": "2026-03-31"},
    {"id": "p2", "title": "수출 지원", "archived": true}
  ]
}`

func TestParseFile(t *testing.T) {
	source, err := ParseFile([]byte(fixtureJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	profile, err := source.Profile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.EmployeeCount != 12 || profile.AnnualRevenue != 300000000 {
		t.Fatalf("numbers not decoded: %+v", profile)
	}
	if len(profile.InterestedKeywords) != 2 || profile.InterestedKeywords[1] != "SaaS" {
		t.Fatalf("expected keyword list, got %v", profile.InterestedKeywords)
	}
	if !profile.IsYouthStartup {
		t.Fatalf("expected youth flag")
	}

	program, err := source.Program(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
	if program.ApplyEndDate == nil || !program.ApplyEndDate.Equal(want) {
		t.Fatalf("expected end date %s, got %v", want, program.ApplyEndDate)
	}
}

func TestFileSourceNotFound(t *testing.T) {
	source, err := ParseFile([]byte(fixtureJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := source.Profile(context.Background(), "missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if _, err := source.Program(context.Background(), "missing"); !errors.Is(err, ErrProgramNotFound) {
		t.Fatalf("expected ErrProgramNotFound, got %v", err)
	}
}

func TestFileSourceProgramsAreCallerOwned(t *testing.T) {
	source, err := ParseFile([]byte(fixtureJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, _ := source.Programs(context.Background())
	first.ExcludeFunc(func(*programs.Program) bool { return true })

	second, _ := source.Programs(context.Background())
	if second.Len() != 2 {
		t.Fatalf("expected catalog to stay intact, got %d programs", second.Len())
	}
}

func TestParseFileRejectsInvalidInput(t *testing.T) {
	cases := map[string]string{
		"broken json":     `{"programs": [`,
		"program id":      `{"programs": [{"title": "no id"}]}`,
		"profile user id": `{"profiles": [{"company_name": "x"}]}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseFile([]byte(input)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(fixtureJSON), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	source, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all, _ := source.Programs(context.Background())
	if all.Len() != 2 {
		t.Fatalf("expected 2 programs, got %d", all.Len())
	}
}
