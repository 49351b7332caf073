package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dealflow/config"
	"dealflow/models"
)

func newScoreServiceForTest(t *testing.T) *ScoreService {
	t.Helper()
	db := testDB(t)
	svc := NewScoreService(db, nil, testLogger())
	svc.Now = func() time.Time {
		return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestInsertKeepsAtMostOneLatest(t *testing.T) {
	svc := newScoreServiceForTest(t)

	deal := testStartup("Scored Deal")
	if err := svc.DB.Create(deal).Error; err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		score := testScore(deal.ID, float64(50+i*10))
		if err := svc.Insert(score); err != nil {
			t.Fatalf("insert %d failed: %v", i, err)
		}
	}

	var latestCount int64
	err := svc.DB.Model(&models.Score{}).
		Where("startup_id = ? AND is_latest = ?", deal.ID, true).
		Count(&latestCount).Error
	if err != nil {
		t.Fatal(err)
	}
	if latestCount != 1 {
		t.Fatalf("latest count = %d, want 1", latestCount)
	}

	latest, err := svc.Latest(deal.ID)
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if latest.InvestmentFitScore != 90 {
		t.Fatalf("latest score = %v, want 90 (last insert)", latest.InvestmentFitScore)
	}
}

func TestInsertDefaultsExpiry(t *testing.T) {
	svc := newScoreServiceForTest(t)

	deal := testStartup("Expiring Deal")
	if err := svc.DB.Create(deal).Error; err != nil {
		t.Fatal(err)
	}

	score := testScore(deal.ID, 70)
	if err := svc.Insert(score); err != nil {
		t.Fatal(err)
	}

	wantScored := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	if !score.ScoredAt.Equal(wantScored) {
		t.Errorf("scored_at = %v, want %v", score.ScoredAt, wantScored)
	}
	if score.ExpiresAt == nil || !score.ExpiresAt.Equal(wantScored.Add(30*24*time.Hour)) {
		t.Errorf("expires_at = %v, want scored_at + 30d", score.ExpiresAt)
	}

	// Explizit gesetztes expires_at bleibt stehen.
	explicit := testScore(deal.ID, 80)
	custom := wantScored.Add(48 * time.Hour)
	explicit.ExpiresAt = &custom
	if err := svc.Insert(explicit); err != nil {
		t.Fatal(err)
	}
	if !explicit.ExpiresAt.Equal(custom) {
		t.Errorf("explicit expires_at overwritten: %v", explicit.ExpiresAt)
	}
}

func TestInsertRejectsInvalidScore(t *testing.T) {
	svc := newScoreServiceForTest(t)
	score := testScore(1, 150)
	if err := svc.Insert(score); err == nil {
		t.Fatal("expected validation error")
	}
	var count int64
	svc.DB.Model(&models.Score{}).Count(&count)
	if count != 0 {
		t.Fatalf("invalid score persisted, count = %d", count)
	}
}

func TestScoreHistoryOrder(t *testing.T) {
	svc := newScoreServiceForTest(t)

	deal := testStartup("History Deal")
	if err := svc.DB.Create(deal).Error; err != nil {
		t.Fatal(err)
	}

	times := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC),
	}
	for i, ts := range times {
		score := testScore(deal.ID, float64(50+i))
		score.ScoredAt = ts
		if err := svc.Insert(score); err != nil {
			t.Fatal(err)
		}
	}

	history, err := svc.History(deal.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 {
		t.Fatalf("history length = %d", len(history))
	}
	if !history[0].ScoredAt.After(history[1].ScoredAt) || !history[1].ScoredAt.After(history[2].ScoredAt) {
		t.Fatal("history not ordered by scored_at desc")
	}
}

func TestRequestScoreUnavailableMLPersistsNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	db := testDB(t)
	cfg := &config.Config{MLServiceURL: server.URL, MLRequestTimeout: 2}
	ml := NewMLClient(cfg, testLogger())
	svc := NewScoreService(db, ml, testLogger())

	deal := testStartup("Unscorable Deal")
	if err := db.Create(deal).Error; err != nil {
		t.Fatal(err)
	}

	_, err := svc.RequestScore(context.Background(), deal, nil, nil)
	if !errors.Is(err, ErrScoringUnavailable) {
		t.Fatalf("got %v, want ErrScoringUnavailable", err)
	}

	var count int64
	db.Model(&models.Score{}).Count(&count)
	if count != 0 {
		t.Fatalf("score persisted despite ML failure, count = %d", count)
	}
}

func TestRequestScorePersistsMLResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"investment_fit_score": 82.5,
			"breakdown": {"market_score": 85, "traction_score": 80, "team_score": 84, "financial_score": 78},
			"detailed_analysis": {"growth_potential": "high", "risk_level": "medium", "recommendation": "strong-consider"},
			"confidence": 0.91,
			"ml_model_version": "v3.1.0",
			"algorithm": "ensemble"
		}`))
	}))
	defer server.Close()

	db := testDB(t)
	cfg := &config.Config{MLServiceURL: server.URL, MLRequestTimeout: 2}
	ml := NewMLClient(cfg, testLogger())
	svc := NewScoreService(db, ml, testLogger())

	deal := testStartup("Scorable Deal")
	if err := db.Create(deal).Error; err != nil {
		t.Fatal(err)
	}

	score, err := svc.RequestScore(context.Background(), deal, nil, nil)
	if err != nil {
		t.Fatalf("request score failed: %v", err)
	}
	if score.InvestmentFitScore != 82.5 {
		t.Errorf("fit score = %v", score.InvestmentFitScore)
	}
	if score.Grade() != "A" {
		t.Errorf("grade = %q, want A", score.Grade())
	}
	if score.ScoringParameters.WeightsUsed != DefaultWeights {
		t.Errorf("weights = %+v, want defaults", score.ScoringParameters.WeightsUsed)
	}
	if !score.IsLatest {
		t.Error("expected is_latest on fresh score")
	}
	if len(score.RawResponse) == 0 {
		t.Error("raw response not kept")
	}
}

func TestCompare(t *testing.T) {
	svc := newScoreServiceForTest(t)

	var ids []uint
	for i, fit := range []float64{60, 90, 75} {
		deal := testStartup([]string{"Low Deal", "High Deal", "Mid Deal"}[i])
		if err := svc.DB.Create(deal).Error; err != nil {
			t.Fatal(err)
		}
		score := testScore(deal.ID, fit)
		if err := svc.Insert(score); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, deal.ID)
	}

	// Ein Deal ohne Score wird übersprungen, nicht gemeldet.
	unscored := testStartup("Unscored Deal")
	if err := svc.DB.Create(unscored).Error; err != nil {
		t.Fatal(err)
	}
	ids = append(ids, unscored.ID)

	cmp, err := svc.Compare(ids)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if len(cmp.Deals) != 3 {
		t.Fatalf("compared deals = %d, want 3", len(cmp.Deals))
	}
	if cmp.HighestScore != 90 || cmp.LowestScore != 60 {
		t.Errorf("highest/lowest = %v/%v", cmp.HighestScore, cmp.LowestScore)
	}
	if cmp.AverageScore != 75 {
		t.Errorf("average = %v, want 75", cmp.AverageScore)
	}
}
