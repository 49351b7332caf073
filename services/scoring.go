package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"dealflow/models"
)

// scoreExpiry ist die Standard-Gültigkeit eines Scores.
const scoreExpiry = 30 * 24 * time.Hour

// lockTimeout begrenzt das Warten auf die Per-Startup-Serialisierung.
const lockTimeout = 5 * time.Second

// ScoreService verwaltet Scores. Inserts für dasselbe Startup werden
// serialisiert, damit zu jedem Zeitpunkt höchstens ein Score is_latest=true
// trägt.
type ScoreService struct {
	DB     *gorm.DB
	ML     *MLClient
	Logger *zap.Logger

	mu    sync.Mutex
	locks map[uint]chan struct{}

	// Now ist für Tests austauschbar.
	Now func() time.Time
}

// NewScoreService erstellt eine neue Instanz des ScoreService.
func NewScoreService(db *gorm.DB, ml *MLClient, logger *zap.Logger) *ScoreService {
	return &ScoreService{
		DB:     db,
		ML:     ml,
		Logger: logger,
		locks:  map[uint]chan struct{}{},
		Now:    time.Now,
	}
}

// acquire holt die Schreibsperre für ein Startup oder meldet ErrConcurrency
// nach Ablauf des Timeouts.
func (s *ScoreService) acquire(startupID uint) (func(), error) {
	s.mu.Lock()
	lock, ok := s.locks[startupID]
	if !ok {
		lock = make(chan struct{}, 1)
		s.locks[startupID] = lock
	}
	s.mu.Unlock()

	select {
	case lock <- struct{}{}:
		return func() { <-lock }, nil
	case <-time.After(lockTimeout):
		return nil, ErrConcurrency
	}
}

// Insert persistiert einen neuen Score. Innerhalb derselben Transaktion
// werden zuerst alle anderen Scores des Startups auf is_latest=false gesetzt;
// schlägt das fehl, wird auch der Insert verworfen. expires_at wird auf
// scored_at + 30 Tage gesetzt, wenn der Aufrufer nichts liefert.
func (s *ScoreService) Insert(score *models.Score) error {
	if err := score.Validate(); err != nil {
		return err
	}

	release, err := s.acquire(score.StartupID)
	if err != nil {
		return err
	}
	defer release()

	now := s.Now().UTC()
	if score.ScoredAt.IsZero() {
		score.ScoredAt = now
	}
	if score.ExpiresAt == nil {
		exp := score.ScoredAt.Add(scoreExpiry)
		score.ExpiresAt = &exp
	}
	score.IsLatest = true

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Score{}).
			Where("startup_id = ?", score.StartupID).
			Update("is_latest", false).Error; err != nil {
			return err
		}
		return tx.Create(score).Error
	})
}

// RequestScore lässt ein Startup vom externen ML-Service bewerten und
// persistiert das Ergebnis als neuesten Score. Schlägt der externe Aufruf
// fehl, bleibt der Deal ungescored.
func (s *ScoreService) RequestScore(ctx context.Context, startup *models.Startup, userID *uint, weights *models.ScoringWeights) (*models.Score, error) {
	result, err := s.ML.ScoreDeal(ctx, startup, weights)
	if err != nil {
		return nil, err
	}

	used := DefaultWeights
	if weights != nil {
		used = *weights
	}
	algorithm := result.Algorithm
	if algorithm == "" {
		algorithm = "ensemble"
	}

	score := &models.Score{
		StartupID:          startup.ID,
		UserID:             userID,
		InvestmentFitScore: result.InvestmentFitScore,
		Breakdown:          result.Breakdown,
		DetailedAnalysis:   result.DetailedAnalysis,
		Confidence:         result.Confidence,
		MLModelVersion:     result.MLModelVersion,
		ScoringParameters: models.ScoringParameters{
			WeightsUsed:  used,
			FeaturesUsed: result.FeaturesUsed,
			Algorithm:    algorithm,
		},
		RawResponse: datatypes.JSON(result.Raw),
	}

	if err := s.Insert(score); err != nil {
		return nil, err
	}
	s.Logger.Info("Deal scored",
		zap.Uint("startup_id", startup.ID),
		zap.Float64("investment_fit_score", score.InvestmentFitScore),
		zap.String("grade", score.Grade()))
	return score, nil
}

// History liefert die Scores eines Startups, neueste zuerst.
func (s *ScoreService) History(startupID uint, limit int) ([]models.ScoreView, error) {
	if limit <= 0 {
		limit = 20
	}
	var scores []models.Score
	err := s.DB.Where("startup_id = ?", startupID).
		Order("scored_at desc").
		Limit(limit).
		Find(&scores).Error
	if err != nil {
		return nil, err
	}
	views := make([]models.ScoreView, 0, len(scores))
	for _, sc := range scores {
		views = append(views, models.NewScoreView(sc))
	}
	return views, nil
}

// Latest liefert den aktuellen Score eines Startups.
func (s *ScoreService) Latest(startupID uint) (*models.ScoreView, error) {
	var score models.Score
	err := s.DB.Where("startup_id = ? AND is_latest = ?", startupID, true).
		First(&score).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	view := models.NewScoreView(score)
	return &view, nil
}

// DealComparison stellt die aktuellen Scores mehrerer Deals nebeneinander.
type DealComparison struct {
	Deals        []RankedDeal `json:"deals"`
	HighestScore float64      `json:"highest_score"`
	LowestScore  float64      `json:"lowest_score"`
	AverageScore float64      `json:"average_score"`
}

// Compare lädt die aktuellen Scores der angefragten Deals. Deals ohne Score
// werden übersprungen.
func (s *ScoreService) Compare(dealIDs []uint) (*DealComparison, error) {
	cmp := &DealComparison{Deals: []RankedDeal{}}
	var sum float64
	for _, id := range dealIDs {
		var startup models.Startup
		if err := s.DB.First(&startup, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		latest, err := s.Latest(id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		cmp.Deals = append(cmp.Deals, RankedDeal{
			Deal:  models.NewStartupView(startup),
			Score: *latest,
		})
		sum += latest.InvestmentFitScore
	}

	if len(cmp.Deals) == 0 {
		return cmp, nil
	}
	cmp.HighestScore = cmp.Deals[0].Score.InvestmentFitScore
	cmp.LowestScore = cmp.Deals[0].Score.InvestmentFitScore
	for _, d := range cmp.Deals {
		if d.Score.InvestmentFitScore > cmp.HighestScore {
			cmp.HighestScore = d.Score.InvestmentFitScore
		}
		if d.Score.InvestmentFitScore < cmp.LowestScore {
			cmp.LowestScore = d.Score.InvestmentFitScore
		}
	}
	cmp.AverageScore = sum / float64(len(cmp.Deals))
	return cmp, nil
}
