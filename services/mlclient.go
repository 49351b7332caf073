package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"dealflow/config"
	"dealflow/models"
)

// MLClient spricht den externen Scoring-Service an. Der Algorithmus dahinter
// ist eine opake Abhängigkeit; hier ist nur der Request/Response-Vertrag
// festgelegt.
type MLClient struct {
	BaseURL string
	Logger  *zap.Logger
	client  *http.Client
}

// NewMLClient erstellt einen Client mit dem konfigurierten Timeout.
func NewMLClient(cfg *config.Config, logger *zap.Logger) *MLClient {
	timeout := time.Duration(cfg.MLRequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MLClient{
		BaseURL: cfg.MLServiceURL,
		Logger:  logger,
		client:  &http.Client{Timeout: timeout},
	}
}

// DefaultWeights sind die Gewichte, wenn der Aufrufer keine eigenen mitgibt.
var DefaultWeights = models.ScoringWeights{
	MarketWeight:    0.3,
	TractionWeight:  0.25,
	TeamWeight:      0.25,
	FinancialWeight: 0.2,
}

// ScoreResult ist die Antwort des ML-Service auf einen Scoring-Request.
type ScoreResult struct {
	InvestmentFitScore float64                 `json:"investment_fit_score"`
	Breakdown          models.ScoreBreakdown   `json:"breakdown"`
	DetailedAnalysis   models.DetailedAnalysis `json:"detailed_analysis"`
	Confidence         float64                 `json:"confidence"`
	MLModelVersion     string                  `json:"ml_model_version"`
	FeaturesUsed       []string                `json:"features_used"`
	Algorithm          string                  `json:"algorithm"`
	Raw                json.RawMessage         `json:"-"`
}

type scoreRequest struct {
	Startup *models.Startup        `json:"startup"`
	Weights *models.ScoringWeights `json:"weights,omitempty"`
}

// ScoreDeal lässt den externen Service ein Startup bewerten. Jeder Fehler
// (Transport, Status, Dekodierung) wird als ErrScoringUnavailable gemeldet;
// der Aufrufer persistiert dann nichts.
func (m *MLClient) ScoreDeal(ctx context.Context, startup *models.Startup, weights *models.ScoringWeights) (*ScoreResult, error) {
	body, err := json.Marshal(scoreRequest{Startup: startup, Weights: weights})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.BaseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		m.Logger.Error("ML service request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		m.Logger.Error("ML service returned non-OK status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: ml service returned status %d", ErrScoringUnavailable, resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}
	var result ScoreResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}
	result.Raw = raw
	return &result, nil
}
