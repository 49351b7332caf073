package models

import (
	"fmt"
	"time"
)

// InvestmentDetails beschreiben die ursprüngliche Beteiligung.
type InvestmentDetails struct {
	InvestmentDate        time.Time `json:"investment_date"`
	AmountInvested        float64   `json:"amount_invested"`
	Currency              string    `json:"currency"`
	OwnershipPercentage   float64   `json:"ownership_percentage"`
	ValuationAtInvestment float64   `json:"valuation_at_investment"`
	RoundType             string    `json:"round_type"`
	LeadInvestor          bool      `json:"lead_investor"`
	BoardSeat             bool      `json:"board_seat"`
}

// CurrentStatus ist der aktuelle Zustand der Position.
type CurrentStatus struct {
	CurrentValuation           *float64 `json:"current_valuation,omitempty"`
	UnrealizedMultiple         *float64 `json:"unrealized_multiple,omitempty"`
	OwnershipDilutedPercentage *float64 `json:"ownership_diluted_percentage,omitempty"`
	Status                     string   `json:"status" gorm:"index"`
}

// PerformanceMetrics sind die zuletzt gemeldeten Kennzahlen der Beteiligung.
type PerformanceMetrics struct {
	LastReportedRevenue    *float64   `json:"last_reported_revenue,omitempty"`
	LastReportedARR        *float64   `json:"last_reported_arr,omitempty"`
	LastReportedGrowthRate *float64   `json:"last_reported_growth_rate,omitempty"`
	LastReportedBurnRate   *float64   `json:"last_reported_burn_rate,omitempty"`
	LastReportedRunway     *float64   `json:"last_reported_runway,omitempty"`
	LastUpdateDate         *time.Time `json:"last_update_date,omitempty"`
}

// Milestone ist ein geplanter oder erreichter Meilenstein.
type Milestone struct {
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Achieved     bool       `json:"achieved"`
	TargetDate   *time.Time `json:"target_date,omitempty"`
	AchievedDate *time.Time `json:"achieved_date,omitempty"`
}

// KPIEntry ist ein einzelner Messpunkt einer getrackten Kennzahl.
type KPIEntry struct {
	MetricName string    `json:"metric_name"`
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

// FollowOnRound ist eine Anschlussrunde und ob der Investor teilgenommen hat.
type FollowOnRound struct {
	RoundType      string    `json:"round_type"`
	Date           time.Time `json:"date"`
	Amount         float64   `json:"amount"`
	Participated   bool      `json:"participated"`
	AmountInvested *float64  `json:"amount_invested,omitempty"`
}

// ExitDetails werden erst beim Übergang auf exited gesetzt.
type ExitDetails struct {
	ExitType      string    `json:"exit_type"`
	ExitDate      time.Time `json:"exit_date"`
	ExitValuation float64   `json:"exit_valuation"`
	Proceeds      float64   `json:"proceeds"`
	Multiple      float64   `json:"multiple"`
	IRR           float64   `json:"irr"`
}

// RiskAssessment ist die letzte Risikoeinschätzung der Position.
type RiskAssessment struct {
	RiskLevel    string    `json:"risk_level"`
	RiskFactors  []string  `json:"risk_factors"`
	LastAssessed time.Time `json:"last_assessed"`
}

// Portfolio ist die Position eines Investors in einem Startup. Pro
// (startup_id, investor_id) existiert höchstens ein Eintrag.
type Portfolio struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StartupID  uint `json:"startup_id" gorm:"index:idx_portfolios_position,unique;not null"`
	InvestorID uint `json:"investor_id" gorm:"index:idx_portfolios_position,unique;index;not null"`

	InvestmentDetails  InvestmentDetails  `json:"investment_details" gorm:"embedded;embeddedPrefix:investment_"`
	CurrentStatus      CurrentStatus      `json:"current_status" gorm:"embedded;embeddedPrefix:current_"`
	PerformanceMetrics PerformanceMetrics `json:"performance_metrics" gorm:"serializer:json"`

	Milestones     []Milestone     `json:"milestones" gorm:"serializer:json"`
	KPITracking    []KPIEntry      `json:"kpi_tracking" gorm:"serializer:json"`
	FollowOnRounds []FollowOnRound `json:"follow_on_rounds" gorm:"serializer:json"`

	ExitDetails    *ExitDetails   `json:"exit_details,omitempty" gorm:"serializer:json"`
	RiskAssessment RiskAssessment `json:"risk_assessment" gorm:"serializer:json"`
	Notes          []Note         `json:"notes" gorm:"serializer:json"`
}

// TableName gibt explizit den Tabellennamen an.
func (Portfolio) TableName() string {
	return "portfolios"
}

// Validate prüft jedes Feld einzeln gegen seine Regel.
func (p *Portfolio) Validate() error {
	if p.StartupID == 0 {
		return invalid("startup_id", "Startup ID is required")
	}
	if p.InvestorID == 0 {
		return invalid("investor_id", "Investor ID is required")
	}
	d := &p.InvestmentDetails
	if d.InvestmentDate.IsZero() {
		return invalid("investment_details.investment_date", "Investment date is required")
	}
	if d.AmountInvested < 0 {
		return invalid("investment_details.amount_invested", "Amount invested cannot be negative")
	}
	if d.Currency == "" {
		d.Currency = "USD"
	}
	if !isOneOf(d.Currency, Currencies) {
		return invalid("investment_details.currency", fmt.Sprintf("%q is not a supported currency", d.Currency))
	}
	if d.OwnershipPercentage < 0 || d.OwnershipPercentage > 100 {
		return invalid("investment_details.ownership_percentage", "Ownership must be between 0 and 100 percent")
	}
	if d.ValuationAtInvestment < 0 {
		return invalid("investment_details.valuation_at_investment", "Valuation cannot be negative")
	}
	if !isOneOf(d.RoundType, RoundTypes) {
		return invalid("investment_details.round_type", fmt.Sprintf("%q is not a valid round type", d.RoundType))
	}
	if p.CurrentStatus.Status == "" {
		p.CurrentStatus.Status = "active"
	}
	if !isOneOf(p.CurrentStatus.Status, PortfolioStatuses) {
		return invalid("current_status.status", fmt.Sprintf("%q is not a valid status", p.CurrentStatus.Status))
	}
	if p.ExitDetails != nil {
		if p.CurrentStatus.Status != "exited" {
			return invalid("exit_details", "Exit details are only allowed on exited positions")
		}
		if !isOneOf(p.ExitDetails.ExitType, ExitTypes) {
			return invalid("exit_details.exit_type", fmt.Sprintf("%q is not a valid exit type", p.ExitDetails.ExitType))
		}
	}
	if p.RiskAssessment.RiskLevel == "" {
		p.RiskAssessment.RiskLevel = "medium"
	}
	if !isOneOf(p.RiskAssessment.RiskLevel, PortfolioRiskLevels) {
		return invalid("risk_assessment.risk_level", fmt.Sprintf("%q is not a valid risk level", p.RiskAssessment.RiskLevel))
	}
	for _, m := range p.Milestones {
		if m.Title == "" {
			return invalid("milestones.title", "Milestone title is required")
		}
	}
	for _, k := range p.KPITracking {
		if k.MetricName == "" {
			return invalid("kpi_tracking.metric_name", "Metric name is required")
		}
	}
	return nil
}
