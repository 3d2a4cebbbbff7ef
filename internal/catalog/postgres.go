package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/spigell/program-matcher/internal/programs"
)

// OpenDB opens a pgx backed database handle and checks the connection.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// PostgresSource reads the company_support_profiles and government_programs tables.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

const profileQuery = `
SELECT user_id,
	COALESCE(company_name, ''), COALESCE(ceo_name, ''),
	COALESCE(industry_category, ''), COALESCE(industry_subcategory, ''),
	COALESCE(business_years, 0), COALESCE(startup_stage, ''),
	COALESCE(employee_count, 0), COALESCE(annual_revenue, 0),
	COALESCE(region, ''), COALESCE(city, ''), COALESCE(entity_type, ''),
	COALESCE(business_description, ''), COALESCE(main_products, ''), COALESCE(core_technologies, ''),
	COALESCE(tech_certifications, '[]'::jsonb), COALESCE(interested_categories, '[]'::jsonb),
	COALESCE(interested_keywords, '[]'::jsonb), COALESCE(preferred_support_types, '[]'::jsonb),
	COALESCE(is_youth_startup, false), COALESCE(is_female_owned, false),
	COALESCE(is_social_enterprise, false), COALESCE(is_venture_certified, false),
	COALESCE(is_export_business, false), COALESCE(profile_completeness, 0)
FROM company_support_profiles
WHERE user_id = $1
`

func (s *PostgresSource) Profile(ctx context.Context, userID string) (*programs.CompanyProfile, error) {
	var (
		profile                                    programs.CompanyProfile
		certifications, categories, keywords, kind []byte
	)
	err := s.db.QueryRowContext(ctx, profileQuery, userID).Scan(
		&profile.UserID,
		&profile.CompanyName, &profile.CEOName,
		&profile.IndustryCategory, &profile.IndustrySubcategory,
		&profile.BusinessYears, &profile.StartupStage,
		&profile.EmployeeCount, &profile.AnnualRevenue,
		&profile.Region, &profile.City, &profile.EntityType,
		&profile.BusinessDescription, &profile.MainProducts, &profile.CoreTechnologies,
		&certifications, &categories, &keywords, &kind,
		&profile.IsYouthStartup, &profile.IsFemaleOwned,
		&profile.IsSocialEnterprise, &profile.IsVentureCertified,
		&profile.IsExportBusiness, &profile.ProfileCompleteness,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, userID)
		}
		return nil, fmt.Errorf("select profile: %w", err)
	}

	lists := []struct {
		name string
		raw  []byte
		dst  *[]string
	}{
		{"tech_certifications", certifications, &profile.TechCertifications},
		{"interested_categories", categories, &profile.InterestedCategories},
		{"interested_keywords", keywords, &profile.InterestedKeywords},
		{"preferred_support_types", kind, &profile.PreferredSupportTypes},
	}
	for _, list := range lists {
		if err := unmarshalList(list.raw, list.dst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", list.name, err)
		}
	}
	return &profile, nil
}

const programColumns = `
SELECT id, title,
	COALESCE(organization, ''), COALESCE(executing_agency, ''),
	COALESCE(category, ''), COALESCE(support_type, ''),
	COALESCE(content, ''), COALESCE(ai_summary, ''), COALESCE(eligibility_criteria, ''),
	apply_start_date, apply_end_date,
	COALESCE(support_amount, ''), COALESCE(detail_url, ''), COALESCE(archived, false)
FROM government_programs
`

func (s *PostgresSource) Programs(ctx context.Context) (*programs.Programs, error) {
	rows, err := s.db.QueryContext(ctx, programColumns+"ORDER BY apply_end_date NULLS LAST, id")
	if err != nil {
		return nil, fmt.Errorf("select programs: %w", err)
	}
	defer rows.Close()

	result := &programs.Programs{}
	for rows.Next() {
		program, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		result.Items = append(result.Items, program)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate programs: %w", err)
	}
	return result, nil
}

func (s *PostgresSource) Program(ctx context.Context, id string) (*programs.Program, error) {
	program, err := scanProgram(s.db.QueryRowContext(ctx, programColumns+"WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrProgramNotFound, id)
		}
		return nil, err
	}
	return program, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProgram(row scanner) (*programs.Program, error) {
	var (
		program    programs.Program
		start, end sql.NullTime
	)
	err := row.Scan(
		&program.ID, &program.Title,
		&program.Organization, &program.ExecutingAgency,
		&program.Category, &program.SupportType,
		&program.Content, &program.AISummary, &program.EligibilityCriteria,
		&start, &end,
		&program.SupportAmount, &program.DetailURL, &program.Archived,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan program: %w", err)
	}
	if start.Valid {
		program.ApplyStartDate = &start.Time
	}
	if end.Valid {
		program.ApplyEndDate = &end.Time
	}
	return &program, nil
}

func unmarshalList(raw []byte, dst *[]string) error {
	if len(raw) == 0 {
		return nil
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	if len(items) > 0 {
		*dst = items
	}
	return nil
}
