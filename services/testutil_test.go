package services

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dealflow/models"
)

var testDBCounter atomic.Int64

// testDB öffnet eine frische In-Memory-Datenbank mit allen Tabellen.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	err = db.AutoMigrate(&models.Startup{}, &models.Founder{}, &models.InvestorThesis{},
		&models.Score{}, &models.Portfolio{})
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func testStartup(name string) *models.Startup {
	return &models.Startup{
		Name:        name,
		Description: strings.Repeat(name+" builds useful software for businesses. ", 3),
		Sector:      []string{"saas"},
		Stage:       "seed",
		TeamSize:    5,
		FoundedDate: time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
		Website:     "https://" + strings.ToLower(strings.ReplaceAll(name, " ", "")) + ".example.com",
		Location:    models.Location{City: "Berlin", Country: "Germany"},
		Metrics:     models.StartupMetrics{Revenue: 250_000, GrowthRateYoY: 60},
	}
}

func testScore(startupID uint, fit float64) *models.Score {
	return &models.Score{
		StartupID:          startupID,
		InvestmentFitScore: fit,
		Breakdown: models.ScoreBreakdown{
			MarketScore:    fit,
			TractionScore:  fit,
			TeamScore:      fit,
			FinancialScore: fit,
		},
		DetailedAnalysis: models.DetailedAnalysis{
			GrowthPotential: "high",
			RiskLevel:       "medium",
			Recommendation:  "consider",
		},
		Confidence:     0.9,
		MLModelVersion: "v1.0.0",
		ScoringParameters: models.ScoringParameters{
			WeightsUsed: DefaultWeights,
			Algorithm:   "ensemble",
		},
	}
}
