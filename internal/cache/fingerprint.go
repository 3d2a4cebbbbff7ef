package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"

	"github.com/spigell/program-matcher/internal/programs"
	"github.com/spigell/program-matcher/internal/utils"
)

const fingerprintTextLimit = 200

// fingerprintFields is the profile subset that influences an analysis.
// The field order is part of the hash.
type fingerprintFields struct {
	IndustryCategory     string   `json:"industry_category"`
	IndustrySubcategory  string   `json:"industry_subcategory"`
	BusinessYears        int      `json:"business_years"`
	StartupStage         string   `json:"startup_stage"`
	EmployeeCount        int      `json:"employee_count"`
	AnnualRevenue        int64    `json:"annual_revenue"`
	Region               string   `json:"region"`
	EntityType           string   `json:"entity_type"`
	BusinessDescription  string   `json:"business_description"`
	MainProducts         string   `json:"main_products"`
	CoreTechnologies     string   `json:"core_technologies"`
	TechCertifications   []string `json:"tech_certifications"`
	InterestedCategories []string `json:"interested_categories"`
	InterestedKeywords   []string `json:"interested_keywords"`
	IsYouthStartup       bool     `json:"is_youth_startup"`
	IsFemaleOwned        bool     `json:"is_female_owned"`
	IsSocialEnterprise   bool     `json:"is_social_enterprise"`
	IsVentureCertified   bool     `json:"is_venture_certified"`
	IsExportBusiness     bool     `json:"is_export_business"`
	ModelVersion         string   `json:"model_version"`
}

// Fingerprint hashes the profile fields that matter to the reasoner together
// with the model version. Any change to them invalidates cached analyses.
func Fingerprint(profile *programs.CompanyProfile, modelVersion string) string {
	if profile == nil {
		profile = &programs.CompanyProfile{}
	}

	fields := fingerprintFields{
		IndustryCategory:     profile.IndustryCategory,
		IndustrySubcategory:  profile.IndustrySubcategory,
		BusinessYears:        profile.BusinessYears,
		StartupStage:         profile.StartupStage,
		EmployeeCount:        profile.EmployeeCount,
		AnnualRevenue:        profile.AnnualRevenue,
		Region:               profile.Region,
		EntityType:           profile.EntityType,
		BusinessDescription:  utils.TruncateRunes(profile.BusinessDescription, fingerprintTextLimit),
		MainProducts:         utils.TruncateRunes(profile.MainProducts, fingerprintTextLimit),
		CoreTechnologies:     utils.TruncateRunes(profile.CoreTechnologies, fingerprintTextLimit),
		TechCertifications:   sorted(profile.TechCertifications),
		InterestedCategories: sorted(profile.InterestedCategories),
		InterestedKeywords:   sorted(profile.InterestedKeywords),
		IsYouthStartup:       profile.IsYouthStartup,
		IsFemaleOwned:        profile.IsFemaleOwned,
		IsSocialEnterprise:   profile.IsSocialEnterprise,
		IsVentureCertified:   profile.IsVentureCertified,
		IsExportBusiness:     profile.IsExportBusiness,
		ModelVersion:         modelVersion,
	}

	// Marshalling a struct of strings, ints and bools cannot fail.
	payload, _ := json.Marshal(fields)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func sorted(items []string) []string {
	out := slices.Clone(items)
	if out == nil {
		out = []string{}
	}
	slices.Sort(out)
	return out
}
