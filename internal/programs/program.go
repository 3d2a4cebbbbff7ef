package programs

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

const (
	ProgramIDField           = "ID"
	ProgramOrganizationField = "Organization"
	ProgramCategoryField     = "Category"
)

// Program is a government support program announcement.
type Program struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Organization        string     `json:"organization,omitempty"`
	ExecutingAgency     string     `json:"executing_agency,omitempty"`
	Category            string     `json:"category,omitempty"`
	SupportType         string     `json:"support_type,omitempty"`
	Content             string     `json:"content,omitempty"`
	AISummary           string     `json:"ai_summary,omitempty"`
	EligibilityCriteria string     `json:"eligibility_criteria,omitempty"`
	ApplyStartDate      *time.Time `json:"apply_start_date,omitempty"`
	ApplyEndDate        *time.Time `json:"apply_end_date,omitempty"`
	SupportAmount       string     `json:"support_amount,omitempty"`
	DetailURL           string     `json:"detail_url,omitempty"`
	Archived            bool       `json:"archived,omitempty"`
}

// ApplyPeriod renders the application window for prompts and reports.
func (p *Program) ApplyPeriod() string {
	format := func(t *time.Time) string {
		if t == nil {
			return "미정"
		}
		return t.Format(time.DateOnly)
	}
	return format(p.ApplyStartDate) + " ~ " + format(p.ApplyEndDate)
}

func (p *Program) GetStringField(name string) string {
	switch name {
	case ProgramIDField:
		return p.ID
	case ProgramOrganizationField:
		return p.Organization
	case ProgramCategoryField:
		return p.Category
	default:
		return ""
	}
}

// Programs is an ordered program catalog.
type Programs struct {
	Items []*Program
}

func (p *Programs) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Items)
}

func (p *Programs) FindByID(id string) *Program {
	for _, program := range p.Items {
		if program.ID == id {
			return program
		}
	}
	return nil
}

// Exclude removes programs whose field equals any of targets and returns their ids.
// The relative order of the remaining programs is preserved.
func (p *Programs) Exclude(name string, targets []string) []string {
	set := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		set[target] = struct{}{}
	}
	return p.ExcludeFunc(func(program *Program) bool {
		_, ok := set[program.GetStringField(name)]
		return ok
	})
}

// ExcludeFunc removes programs for which drop returns true and returns their ids.
func (p *Programs) ExcludeFunc(drop func(*Program) bool) []string {
	var excluded []string
	kept := p.Items[:0]
	for _, program := range p.Items {
		if drop(program) {
			excluded = append(excluded, program.ID)
			continue
		}
		kept = append(kept, program)
	}
	for i := len(kept); i < len(p.Items); i++ {
		p.Items[i] = nil
	}
	p.Items = kept
	return excluded
}

// DumpToTmpFile writes v as indented json into a new temporary file.
func DumpToTmpFile(v any) (string, error) {
	file, err := os.CreateTemp("", "programs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByOrganization groups program titles by the announcing organization.
func (p *Programs) ReportByOrganization() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, program := range p.Items {
		key := program.Organization
		if key == "" {
			key = "미상"
		}
		report[key] = append(report[key], map[string]string{
			"id":           program.ID,
			"title":        program.Title,
			"category":     program.Category,
			"support_type": program.SupportType,
			"apply_period": program.ApplyPeriod(),
			"url":          program.DetailURL,
		})
	}
	for key := range report {
		entries := report[key]
		sort.SliceStable(entries, func(i, j int) bool { return entries[i]["title"] < entries[j]["title"] })
	}
	return report
}

func (p *Programs) String() string {
	return fmt.Sprintf("%d programs", p.Len())
}
