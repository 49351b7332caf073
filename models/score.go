package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// ScoreBreakdown sind die Teilscores, alle 0-100. Markt, Traction, Team und
// Financial sind Pflicht, Product und Competitive optional.
type ScoreBreakdown struct {
	MarketScore      float64  `json:"market_score"`
	TractionScore    float64  `json:"traction_score"`
	TeamScore        float64  `json:"team_score"`
	FinancialScore   float64  `json:"financial_score"`
	ProductScore     *float64 `json:"product_score,omitempty"`
	CompetitiveScore *float64 `json:"competitive_score,omitempty"`
}

// DetailedAnalysis ist die qualitative Einschätzung aus dem Scoring.
type DetailedAnalysis struct {
	MarketSizeEstimate *float64 `json:"market_size_estimate,omitempty"`
	GrowthPotential    string   `json:"growth_potential"`
	RiskLevel          string   `json:"risk_level"`
	Recommendation     string   `json:"recommendation"`
	Strengths          []string `json:"strengths"`
	Weaknesses         []string `json:"weaknesses"`
	KeyRisks           []string `json:"key_risks"`
	Opportunities      []string `json:"opportunities"`
}

// ScoringWeights sind die vier Gewichte des Modells. Sie sollen sich zu 1
// summieren, das wird aber nicht erzwungen.
type ScoringWeights struct {
	MarketWeight    float64 `json:"market_weight"`
	TractionWeight  float64 `json:"traction_weight"`
	TeamWeight      float64 `json:"team_weight"`
	FinancialWeight float64 `json:"financial_weight"`
}

// ScoringParameters dokumentieren, womit der Score entstanden ist.
type ScoringParameters struct {
	WeightsUsed  ScoringWeights `json:"weights_used"`
	FeaturesUsed []string       `json:"features_used"`
	Algorithm    string         `json:"algorithm"`
}

// Score ist eine punktuelle Fitness-Bewertung eines Startups. Pro Startup
// trägt zu jedem Zeitpunkt höchstens ein Score is_latest=true.
type Score struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	StartupID uint  `json:"startup_id" gorm:"index:idx_scores_startup_latest;not null"`
	UserID    *uint `json:"user_id,omitempty" gorm:"index"`

	InvestmentFitScore float64           `json:"investment_fit_score" gorm:"index"`
	Breakdown          ScoreBreakdown    `json:"breakdown" gorm:"serializer:json"`
	DetailedAnalysis   DetailedAnalysis  `json:"detailed_analysis" gorm:"serializer:json"`
	Confidence         float64           `json:"confidence"`
	MLModelVersion     string            `json:"ml_model_version" gorm:"index"`
	ScoringParameters  ScoringParameters `json:"scoring_parameters" gorm:"serializer:json"`

	// Rohantwort des ML-Service, für Debugging aufbewahrt.
	RawResponse datatypes.JSON `json:"-" gorm:"type:jsonb"`

	ScoredAt  time.Time  `json:"scored_at" gorm:"index"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" gorm:"index"`
	IsLatest  bool       `json:"is_latest" gorm:"index:idx_scores_startup_latest;default:true"`
	Notes     string     `json:"notes,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (Score) TableName() string {
	return "scores"
}

// Validate prüft jedes Feld einzeln gegen seine Regel.
func (s *Score) Validate() error {
	if s.StartupID == 0 {
		return invalid("startup_id", "Startup ID is required")
	}
	if s.InvestmentFitScore < 0 || s.InvestmentFitScore > 100 {
		return invalid("investment_fit_score", "Score must be between 0 and 100")
	}
	required := map[string]float64{
		"breakdown.market_score":    s.Breakdown.MarketScore,
		"breakdown.traction_score":  s.Breakdown.TractionScore,
		"breakdown.team_score":      s.Breakdown.TeamScore,
		"breakdown.financial_score": s.Breakdown.FinancialScore,
	}
	for field, v := range required {
		if v < 0 || v > 100 {
			return invalid(field, "Breakdown scores must be between 0 and 100")
		}
	}
	if s.Breakdown.ProductScore != nil && (*s.Breakdown.ProductScore < 0 || *s.Breakdown.ProductScore > 100) {
		return invalid("breakdown.product_score", "Breakdown scores must be between 0 and 100")
	}
	if s.Breakdown.CompetitiveScore != nil && (*s.Breakdown.CompetitiveScore < 0 || *s.Breakdown.CompetitiveScore > 100) {
		return invalid("breakdown.competitive_score", "Breakdown scores must be between 0 and 100")
	}
	if !isOneOf(s.DetailedAnalysis.GrowthPotential, GrowthPotentials) {
		return invalid("detailed_analysis.growth_potential", fmt.Sprintf("%q is not a valid growth potential", s.DetailedAnalysis.GrowthPotential))
	}
	if !isOneOf(s.DetailedAnalysis.RiskLevel, RiskLevels) {
		return invalid("detailed_analysis.risk_level", fmt.Sprintf("%q is not a valid risk level", s.DetailedAnalysis.RiskLevel))
	}
	if !isOneOf(s.DetailedAnalysis.Recommendation, Recommendations) {
		return invalid("detailed_analysis.recommendation", fmt.Sprintf("%q is not a valid recommendation", s.DetailedAnalysis.Recommendation))
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return invalid("confidence", "Confidence must be between 0 and 1")
	}
	if s.MLModelVersion == "" {
		return invalid("ml_model_version", "ML model version is required")
	}
	if !isOneOf(s.ScoringParameters.Algorithm, Algorithms) {
		return invalid("scoring_parameters.algorithm", fmt.Sprintf("%q is not a valid algorithm", s.ScoringParameters.Algorithm))
	}
	if len(s.Notes) > 2000 {
		return invalid("notes", "Notes cannot exceed 2000 characters")
	}
	return nil
}

// Grade bildet den Fit-Score auf eine Schulnote ab. Bandgrenzen sind an der
// Unterkante inklusiv.
func (s *Score) Grade() string {
	return GradeFor(s.InvestmentFitScore)
}

// GradeFor ist die reine Notenfunktion über den Fit-Score.
func GradeFor(score float64) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B+"
	case score >= 60:
		return "B"
	case score >= 50:
		return "C"
	default:
		return "D"
	}
}

// ScoreView ist die Serialisierungsform inklusive der abgeleiteten Note.
type ScoreView struct {
	Score
	ScoreGrade string `json:"score_grade"`
}

// NewScoreView berechnet die Note zum Lesezeitpunkt.
func NewScoreView(s Score) ScoreView {
	return ScoreView{Score: s, ScoreGrade: s.Grade()}
}
