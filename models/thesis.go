package models

import (
	"fmt"
	"strings"
	"time"
)

// FocusAreas sind die Zielbereiche eines Investors.
type FocusAreas struct {
	Sectors        []string `json:"sectors"`
	Stages         []string `json:"stages"`
	Geographies    []string `json:"geographies"`
	BusinessModels []string `json:"business_models"`
}

// InvestmentCriteria sind die harten numerischen Kriterien. Nicht gesetzte
// Kriterien gelten als automatisch erfüllt.
type InvestmentCriteria struct {
	MinRevenue       *float64 `json:"min_revenue,omitempty"`
	MinGrowthRate    *float64 `json:"min_growth_rate,omitempty"`
	MinTeamSize      *int     `json:"min_team_size,omitempty"`
	MaxBurnRate      *float64 `json:"max_burn_rate,omitempty"`
	CheckSizeMin     *float64 `json:"check_size_min,omitempty"`
	CheckSizeMax     *float64 `json:"check_size_max,omitempty"`
	MustHaveFeatures []string `json:"must_have_features"`
	DealBreakers     []string `json:"deal_breakers"`
}

// TargetMetrics sind die Renditeziele der These.
type TargetMetrics struct {
	TargetIRR              *float64 `json:"target_irr,omitempty"`      // 0-100
	TargetMultiple         *float64 `json:"target_multiple,omitempty"` // >= 1
	InvestmentHorizonYears *int     `json:"investment_horizon_years,omitempty"`
}

// ThesisExamples sind Positiv- und Negativbeispiele in Freitext.
type ThesisExamples struct {
	PositiveExamples []string `json:"positive_examples"`
	NegativeExamples []string `json:"negative_examples"`
}

// InvestorThesis ist die erklärte Investment-These eines Investors.
// version wird bei jedem inhaltlich ändernden Update um genau 1 erhöht.
type InvestorThesis struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	InvestorID uint   `json:"investor_id" gorm:"index;not null"`
	Title      string `json:"title"`
	ThesisText string `json:"thesis_text" gorm:"type:text"`

	// Nur intern für Ähnlichkeitssuche, nie in API-Antworten.
	Embedding []float64 `json:"-" gorm:"serializer:json"`

	FocusAreas            FocusAreas         `json:"focus_areas" gorm:"serializer:json"`
	InvestmentCriteria    InvestmentCriteria `json:"investment_criteria" gorm:"serializer:json"`
	KeyThemes             []string           `json:"key_themes" gorm:"serializer:json"`
	PreferredTechnologies []string           `json:"preferred_technologies" gorm:"serializer:json"`
	Exclusions            []string           `json:"exclusions" gorm:"serializer:json"`
	TargetMetrics         TargetMetrics      `json:"target_metrics" gorm:"serializer:json"`
	Examples              ThesisExamples     `json:"examples" gorm:"serializer:json"`

	IsActive bool `json:"is_active" gorm:"index;default:true"`
	Version  int  `json:"version" gorm:"default:1"`
}

// TableName gibt explizit den Tabellennamen an.
func (InvestorThesis) TableName() string {
	return "investor_theses"
}

// Validate prüft jedes Feld einzeln gegen seine Regel.
func (t *InvestorThesis) Validate() error {
	if t.InvestorID == 0 {
		return invalid("investor_id", "Investor ID is required")
	}
	t.Title = strings.TrimSpace(t.Title)
	if len(t.Title) < 5 {
		return invalid("title", "Title must be at least 5 characters")
	}
	if len(t.Title) > 200 {
		return invalid("title", "Title cannot exceed 200 characters")
	}
	if len(t.ThesisText) < 100 {
		return invalid("thesis_text", "Thesis must be at least 100 characters")
	}
	if len(t.ThesisText) > 10000 {
		return invalid("thesis_text", "Thesis cannot exceed 10000 characters")
	}
	if len(t.FocusAreas.Sectors) == 0 {
		return invalid("focus_areas.sectors", "At least one sector is required")
	}
	for _, s := range t.FocusAreas.Sectors {
		if !isOneOf(s, Sectors) {
			return invalid("focus_areas.sectors", fmt.Sprintf("%q is not a valid sector", s))
		}
	}
	if len(t.FocusAreas.Stages) == 0 {
		return invalid("focus_areas.stages", "At least one stage is required")
	}
	for _, s := range t.FocusAreas.Stages {
		if !isOneOf(s, Stages) {
			return invalid("focus_areas.stages", fmt.Sprintf("%q is not a valid stage", s))
		}
	}
	if len(t.FocusAreas.Geographies) == 0 {
		return invalid("focus_areas.geographies", "At least one geography is required")
	}
	for _, b := range t.FocusAreas.BusinessModels {
		if !isOneOf(b, BusinessModels) {
			return invalid("focus_areas.business_models", fmt.Sprintf("%q is not a valid business model", b))
		}
	}
	c := t.InvestmentCriteria
	if c.MinRevenue != nil && *c.MinRevenue < 0 {
		return invalid("investment_criteria.min_revenue", "Minimum revenue cannot be negative")
	}
	if c.MinGrowthRate != nil && *c.MinGrowthRate < 0 {
		return invalid("investment_criteria.min_growth_rate", "Minimum growth rate cannot be negative")
	}
	if c.MinTeamSize != nil && *c.MinTeamSize < 1 {
		return invalid("investment_criteria.min_team_size", "Minimum team size must be at least 1")
	}
	if c.MaxBurnRate != nil && *c.MaxBurnRate < 0 {
		return invalid("investment_criteria.max_burn_rate", "Maximum burn rate cannot be negative")
	}
	if c.CheckSizeMin != nil && *c.CheckSizeMin < 0 {
		return invalid("investment_criteria.check_size_min", "Check size cannot be negative")
	}
	if c.CheckSizeMax != nil && *c.CheckSizeMax < 0 {
		return invalid("investment_criteria.check_size_max", "Check size cannot be negative")
	}
	m := t.TargetMetrics
	if m.TargetIRR != nil && (*m.TargetIRR < 0 || *m.TargetIRR > 100) {
		return invalid("target_metrics.target_irr", "Target IRR must be between 0 and 100")
	}
	if m.TargetMultiple != nil && *m.TargetMultiple < 1 {
		return invalid("target_metrics.target_multiple", "Target multiple must be at least 1")
	}
	if m.InvestmentHorizonYears != nil && (*m.InvestmentHorizonYears < 1 || *m.InvestmentHorizonYears > 20) {
		return invalid("target_metrics.investment_horizon_years", "Investment horizon must be between 1 and 20 years")
	}
	return nil
}

// Matches prüft, ob ein Startup die These erfüllt. Reine Funktion über zwei
// geladene Records, keine IO. Alle Kriterien sind AND-verknüpft; fehlende
// Kriterien gelten als erfüllt. Das ist bewusst ein grober boolescher Filter,
// kein Ranking.
func (t *InvestorThesis) Matches(s *Startup) bool {
	c := t.InvestmentCriteria

	if c.MinRevenue != nil && s.Metrics.Revenue < *c.MinRevenue {
		return false
	}
	if c.MinGrowthRate != nil && s.Metrics.GrowthRateYoY < *c.MinGrowthRate {
		return false
	}
	if c.MinTeamSize != nil && s.TeamSize < *c.MinTeamSize {
		return false
	}
	if c.MaxBurnRate != nil && s.Metrics.BurnRate > *c.MaxBurnRate {
		return false
	}

	sectorMatch := false
	for _, want := range t.FocusAreas.Sectors {
		if isOneOf(want, s.Sector) {
			sectorMatch = true
			break
		}
	}
	if !sectorMatch {
		return false
	}

	if !isOneOf(s.Stage, t.FocusAreas.Stages) {
		return false
	}

	country := strings.ToLower(s.Location.Country)
	region := strings.ToLower(s.Location.Region)
	geoMatch := false
	for _, g := range t.FocusAreas.Geographies {
		g = strings.ToLower(g)
		if g == "" {
			continue
		}
		if strings.Contains(country, g) || (region != "" && strings.Contains(region, g)) {
			geoMatch = true
			break
		}
	}
	return geoMatch
}
