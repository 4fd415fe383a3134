// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ReportSection is one of the fixed report-section keys a caller can
// request. The compiler's six TopicCategory buckets feed into this wider
// taxonomy at the report stage.
type ReportSection string

const (
	SectionCompanyOverview   ReportSection = "company_overview"
	SectionManagement        ReportSection = "management"
	SectionPhilosophy        ReportSection = "philosophy"
	SectionEstablishment     ReportSection = "establishment"
	SectionBusiness          ReportSection = "business"
	SectionPerformance       ReportSection = "performance"
	SectionGrowth            ReportSection = "growth"
	SectionEconomicImpact    ReportSection = "economic_impact"
	SectionCompetitiveness   ReportSection = "competitiveness"
	SectionCulture           ReportSection = "culture"
	SectionCareerPath        ReportSection = "career_path"
	SectionJobTypes          ReportSection = "job_types"
	SectionWorkingConditions ReportSection = "working_conditions"
	SectionCSR               ReportSection = "csr"
	SectionRelatedCompanies  ReportSection = "related_companies"
)

// ReportSections lists every section key in report order.
var ReportSections = []ReportSection{
	SectionCompanyOverview,
	SectionManagement,
	SectionPhilosophy,
	SectionEstablishment,
	SectionBusiness,
	SectionPerformance,
	SectionGrowth,
	SectionEconomicImpact,
	SectionCompetitiveness,
	SectionCulture,
	SectionCareerPath,
	SectionJobTypes,
	SectionWorkingConditions,
	SectionCSR,
	SectionRelatedCompanies,
}

// SectionTitles maps section keys to human-readable report headings.
var SectionTitles = map[ReportSection]string{
	SectionCompanyOverview:   "Company overview: size, history, and main lines of business",
	SectionManagement:        "Management: names, backgrounds, and representative's message",
	SectionPhilosophy:        "Corporate philosophy: founding principles and values",
	SectionEstablishment:     "Establishment: founding year, capital, listing status, and locations",
	SectionBusiness:          "Business details: products, services, customers, and business model",
	SectionPerformance:       "Performance: revenue and operating profit",
	SectionGrowth:            "Growth: revenue/profit trends and expansion plans",
	SectionEconomicImpact:    "Economic sensitivity: how business conditions affect results",
	SectionCompetitiveness:   "Competitiveness: development strength, technology, quality, and rivals",
	SectionCulture:           "Culture: workforce composition, decision making, and atmosphere",
	SectionCareerPath:        "Career development: promotion, tenure, and typical career paths",
	SectionJobTypes:          "Job types: roles and the skills they require",
	SectionWorkingConditions: "Working conditions: pay, locations, hours, leave, and benefits",
	SectionCSR:               "CSR and diversity initiatives",
	SectionRelatedCompanies:  "Related companies: parents, subsidiaries, and partners",
}

// IsValidSection reports whether key is a known report-section key.
func IsValidSection(key string) bool {
	_, ok := SectionTitles[ReportSection(key)]
	return ok
}

// DefaultSections is the core subset used to steer query generation when
// the caller selects nothing.
var DefaultSections = []ReportSection{
	SectionManagement,
	SectionEstablishment,
	SectionCompanyOverview,
	SectionBusiness,
}
