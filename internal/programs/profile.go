package programs

import "fmt"

// Entity types and startup stages as they are stored in company profiles.
const (
	EntityCorporation = "법인"
	EntityIndividual  = "개인"
	EntityPreFounder  = "예비창업자"

	StagePreFounding = "예비창업"
	StageEarly       = "초기창업"
	StageGrowth      = "성장기"
	StageMature      = "성숙기"
)

// CompanyProfile is the support profile of a company. Zero numeric values mean the
// value was not provided.
type CompanyProfile struct {
	UserID              string `json:"user_id"`
	CompanyName         string `json:"company_name,omitempty"`
	CEOName             string `json:"ceo_name,omitempty"`
	IndustryCategory    string `json:"industry_category,omitempty"`
	IndustrySubcategory string `json:"industry_subcategory,omitempty"`
	BusinessYears       int    `json:"business_years,omitempty"`
	StartupStage        string `json:"startup_stage,omitempty"`
	EmployeeCount       int    `json:"employee_count,omitempty"`
	// AnnualRevenue is expressed in won.
	AnnualRevenue int64  `json:"annual_revenue,omitempty"`
	Region        string `json:"region,omitempty"`
	City          string `json:"city,omitempty"`
	EntityType    string `json:"entity_type,omitempty"`

	BusinessDescription string `json:"business_description,omitempty"`
	MainProducts        string `json:"main_products,omitempty"`
	CoreTechnologies    string `json:"core_technologies,omitempty"`

	TechCertifications    []string `json:"tech_certifications,omitempty"`
	InterestedCategories  []string `json:"interested_categories,omitempty"`
	InterestedKeywords    []string `json:"interested_keywords,omitempty"`
	PreferredSupportTypes []string `json:"preferred_support_types,omitempty"`

	IsYouthStartup      bool `json:"is_youth_startup,omitempty"`
	IsFemaleOwned       bool `json:"is_female_owned,omitempty"`
	IsSocialEnterprise  bool `json:"is_social_enterprise,omitempty"`
	IsVentureCertified  bool `json:"is_venture_certified,omitempty"`
	IsExportBusiness    bool `json:"is_export_business,omitempty"`
	ProfileCompleteness int  `json:"profile_completeness,omitempty"`
}

// RevenueLabel renders the annual revenue in 억원 (100 million won) units.
func (p *CompanyProfile) RevenueLabel() string {
	if p == nil || p.AnnualRevenue <= 0 {
		return ""
	}
	eok := float64(p.AnnualRevenue) / 1e8
	if eok == float64(int64(eok)) {
		return fmt.Sprintf("%d억원", int64(eok))
	}
	return fmt.Sprintf("%.1f억원", eok)
}

// ScaleLabel summarises head count and revenue, e.g. "직원 12명, 매출 3억원".
func (p *CompanyProfile) ScaleLabel() string {
	parts := ""
	if p.EmployeeCount > 0 {
		parts = fmt.Sprintf("직원 %d명", p.EmployeeCount)
	}
	if revenue := p.RevenueLabel(); revenue != "" {
		if parts != "" {
			parts += ", "
		}
		parts += "매출 " + revenue
	}
	if parts == "" {
		return "미입력"
	}
	return parts
}

// Text joins the free-text fields together with the industry, lowercased
// by the caller when needed.
func (p *CompanyProfile) Text() string {
	return p.BusinessDescription + " " + p.MainProducts + " " + p.CoreTechnologies + " " + p.IndustryCategory
}
