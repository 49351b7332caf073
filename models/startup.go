package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// FundingRound ist eine einzelne Finanzierungsrunde in der Historie.
type FundingRound struct {
	RoundType string    `json:"round_type"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Date      time.Time `json:"date"`
	Investors []string  `json:"investors"`
	Valuation *float64  `json:"valuation,omitempty"`
}

// StartupMetrics sind die zuletzt gemeldeten Geschäftskennzahlen.
type StartupMetrics struct {
	Revenue       float64  `json:"revenue"`
	ARR           *float64 `json:"arr,omitempty" gorm:"column:arr"`
	MRR           *float64 `json:"mrr,omitempty" gorm:"column:mrr"`
	GrowthRateMoM float64  `json:"growth_rate_mom" gorm:"column:growth_rate_mom"`
	GrowthRateYoY float64  `json:"growth_rate_yoy" gorm:"column:growth_rate_yoy"`
	BurnRate      float64  `json:"burn_rate"`
	RunwayMonths  float64  `json:"runway_months"`
	GrossMargin   *float64 `json:"gross_margin,omitempty"` // 0-100
	CustomerCount *int     `json:"customer_count,omitempty"`
	CAC           *float64 `json:"cac,omitempty" gorm:"column:cac"`
	LTV           *float64 `json:"ltv,omitempty" gorm:"column:ltv"`
}

// Location ist der Firmensitz.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country" gorm:"index"`
	Region  string `json:"region,omitempty"`
}

// Note ist ein Freitext-Kommentar eines Nutzers an einer Entität.
type Note struct {
	UserID    uint      `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Startup repräsentiert einen Deal-Kandidaten inklusive Kennzahlen und
// Finanzierungshistorie.
type Startup struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `json:"name" gorm:"index;not null"`
	Description string `json:"description" gorm:"type:text"`
	ShortPitch  string `json:"short_pitch,omitempty"`

	Sector         []string       `json:"sector" gorm:"serializer:json"`
	Stage          string         `json:"stage" gorm:"index"`
	FundingHistory []FundingRound `json:"funding_history" gorm:"serializer:json"`

	Metrics  StartupMetrics `json:"metrics" gorm:"embedded;embeddedPrefix:metrics_"`
	Location Location       `json:"location" gorm:"embedded;embeddedPrefix:location_"`

	TeamSize    int       `json:"team_size"`
	FounderIDs  []uint    `json:"founders" gorm:"serializer:json"`
	FoundedDate time.Time `json:"founded_date"`
	Website     string    `json:"website"`

	TechnologyStack []string `json:"technology_stack" gorm:"serializer:json"`
	BusinessModel   string   `json:"business_model,omitempty"`

	// Duplikatschutz gegen erneute Ingestion aus derselben externen Quelle:
	// (source, external_id) ist unique, solange external_id gesetzt ist.
	Source     string     `json:"source" gorm:"index:idx_startups_source_external,unique,where:external_id <> '';default:'manual'"`
	ExternalID string     `json:"external_id,omitempty" gorm:"index:idx_startups_source_external,unique,where:external_id <> ''"`
	LastSynced *time.Time `json:"last_synced,omitempty"`

	Status string `json:"status" gorm:"index;default:'active'"`
	Notes  []Note `json:"notes" gorm:"serializer:json"`
}

// TableName gibt explizit den Tabellennamen an.
func (Startup) TableName() string {
	return "startups"
}

var websitePattern = regexp.MustCompile(`^https?://.+`)

// Validate prüft jedes Feld einzeln gegen seine Regel. Das erste verletzte
// Feld bricht den Schreibvorgang mit einem ValidationError ab.
func (s *Startup) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return invalid("name", "Startup name is required")
	}
	if len(s.Description) < 50 {
		return invalid("description", "Description must be at least 50 characters")
	}
	if len(s.Description) > 2000 {
		return invalid("description", "Description cannot exceed 2000 characters")
	}
	if len(s.ShortPitch) > 280 {
		return invalid("short_pitch", "Short pitch cannot exceed 280 characters")
	}
	if len(s.Sector) == 0 {
		return invalid("sector", "At least one sector is required")
	}
	for _, sec := range s.Sector {
		if !isOneOf(sec, Sectors) {
			return invalid("sector", fmt.Sprintf("%q is not a valid sector", sec))
		}
	}
	if !isOneOf(s.Stage, Stages) {
		return invalid("stage", "Stage is required and must be one of the known stages")
	}
	for i := range s.FundingHistory {
		r := &s.FundingHistory[i]
		if !isOneOf(r.RoundType, RoundTypes) {
			return invalid("funding_history.round_type", fmt.Sprintf("%q is not a valid round type", r.RoundType))
		}
		if r.Amount < 0 {
			return invalid("funding_history.amount", "Round amount cannot be negative")
		}
		if r.Currency == "" {
			r.Currency = "USD"
		}
		if !isOneOf(r.Currency, Currencies) {
			return invalid("funding_history.currency", fmt.Sprintf("%q is not a supported currency", r.Currency))
		}
		if r.Date.IsZero() {
			return invalid("funding_history.date", "Round date is required")
		}
		if r.Valuation != nil && *r.Valuation < 0 {
			return invalid("funding_history.valuation", "Valuation cannot be negative")
		}
	}
	if err := s.Metrics.validate(); err != nil {
		return err
	}
	if s.TeamSize < 1 {
		return invalid("team_size", "Team size must be at least 1")
	}
	if s.FoundedDate.IsZero() {
		return invalid("founded_date", "Founded date is required")
	}
	s.Website = strings.TrimSpace(s.Website)
	if !websitePattern.MatchString(s.Website) {
		return invalid("website", "Please provide a valid URL")
	}
	if s.Location.City == "" {
		return invalid("location.city", "City is required")
	}
	if s.Location.Country == "" {
		return invalid("location.country", "Country is required")
	}
	if s.BusinessModel != "" && !isOneOf(s.BusinessModel, BusinessModels) {
		return invalid("business_model", fmt.Sprintf("%q is not a valid business model", s.BusinessModel))
	}
	if s.Source == "" {
		s.Source = "manual"
	}
	if !isOneOf(s.Source, Sources) {
		return invalid("source", fmt.Sprintf("%q is not a valid source", s.Source))
	}
	if s.Status == "" {
		s.Status = "active"
	}
	if !isOneOf(s.Status, StartupStatuses) {
		return invalid("status", fmt.Sprintf("%q is not a valid status", s.Status))
	}
	for _, n := range s.Notes {
		if len(n.Content) > 5000 {
			return invalid("notes.content", "Note content cannot exceed 5000 characters")
		}
	}
	return nil
}

func (m *StartupMetrics) validate() error {
	if m.Revenue < 0 {
		return invalid("metrics.revenue", "Revenue cannot be negative")
	}
	if m.ARR != nil && *m.ARR < 0 {
		return invalid("metrics.arr", "ARR cannot be negative")
	}
	if m.MRR != nil && *m.MRR < 0 {
		return invalid("metrics.mrr", "MRR cannot be negative")
	}
	if m.BurnRate < 0 {
		return invalid("metrics.burn_rate", "Burn rate cannot be negative")
	}
	if m.RunwayMonths < 0 {
		return invalid("metrics.runway_months", "Runway cannot be negative")
	}
	if m.GrossMargin != nil && (*m.GrossMargin < 0 || *m.GrossMargin > 100) {
		return invalid("metrics.gross_margin", "Gross margin must be between 0 and 100")
	}
	if m.CustomerCount != nil && *m.CustomerCount < 0 {
		return invalid("metrics.customer_count", "Customer count cannot be negative")
	}
	if m.CAC != nil && *m.CAC < 0 {
		return invalid("metrics.cac", "CAC cannot be negative")
	}
	if m.LTV != nil && *m.LTV < 0 {
		return invalid("metrics.ltv", "LTV cannot be negative")
	}
	return nil
}

// TotalFunding ist die Summe aller Rundenbeträge. Wird bei jedem Lesen neu
// berechnet und nie gespeichert.
func (s *Startup) TotalFunding() float64 {
	var sum float64
	for _, r := range s.FundingHistory {
		sum += r.Amount
	}
	return sum
}

// LatestValuation ist die Bewertung der jüngsten Runde, die eine hat.
// Nil, wenn keine Runde eine Bewertung trägt.
func (s *Startup) LatestValuation() *float64 {
	var latest *FundingRound
	for i := range s.FundingHistory {
		r := &s.FundingHistory[i]
		if r.Valuation == nil {
			continue
		}
		if latest == nil || r.Date.After(latest.Date) {
			latest = r
		}
	}
	if latest == nil {
		return nil
	}
	v := *latest.Valuation
	return &v
}

// StartupView ist die Serialisierungsform eines Startups inklusive der
// abgeleiteten Felder.
type StartupView struct {
	Startup
	TotalFunding    float64  `json:"total_funding"`
	LatestValuation *float64 `json:"latest_valuation"`
}

// NewStartupView berechnet die abgeleiteten Felder zum Lesezeitpunkt.
func NewStartupView(s Startup) StartupView {
	return StartupView{
		Startup:         s,
		TotalFunding:    s.TotalFunding(),
		LatestValuation: s.LatestValuation(),
	}
}
