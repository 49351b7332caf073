package services

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dealflow/models"
)

func testPosition(startupID, investorID uint, amount float64) *models.Portfolio {
	return &models.Portfolio{
		StartupID:  startupID,
		InvestorID: investorID,
		InvestmentDetails: models.InvestmentDetails{
			InvestmentDate:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			AmountInvested:        amount,
			Currency:              "EUR",
			OwnershipPercentage:   10,
			ValuationAtInvestment: amount * 10,
			RoundType:             "seed",
		},
	}
}

func TestPortfolioCreate(t *testing.T) {
	db := testDB(t)
	deals := NewDealService(db, testLogger())
	svc := NewPortfolioService(db, testLogger())

	deal := testStartup("Invested Deal")
	if err := deals.Create(deal); err != nil {
		t.Fatal(err)
	}

	pos := testPosition(deal.ID, 7, 500_000)
	if err := svc.Create(pos); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if pos.CurrentStatus.Status != "active" {
		t.Errorf("status = %q, want active", pos.CurrentStatus.Status)
	}
	if pos.RiskAssessment.RiskLevel != "medium" {
		t.Errorf("risk level = %q, want medium", pos.RiskAssessment.RiskLevel)
	}
}

func TestPortfolioCreateMissingStartup(t *testing.T) {
	svc := NewPortfolioService(testDB(t), testLogger())
	pos := testPosition(9999, 7, 500_000)
	if err := svc.Create(pos); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestPortfolioCreateDuplicatePosition(t *testing.T) {
	db := testDB(t)
	deals := NewDealService(db, testLogger())
	svc := NewPortfolioService(db, testLogger())

	deal := testStartup("Contested Deal")
	if err := deals.Create(deal); err != nil {
		t.Fatal(err)
	}

	if err := svc.Create(testPosition(deal.ID, 7, 500_000)); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if err := svc.Create(testPosition(deal.ID, 7, 250_000)); !errors.Is(err, ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}

	// Ein anderer Investor darf dieselbe Firma halten.
	if err := svc.Create(testPosition(deal.ID, 8, 250_000)); err != nil {
		t.Fatalf("second investor blocked: %v", err)
	}
}

func TestPortfolioListByInvestor(t *testing.T) {
	db := testDB(t)
	deals := NewDealService(db, testLogger())
	svc := NewPortfolioService(db, testLogger())

	var exitedID uint
	for i, name := range []string{"Position A", "Position B", "Position C"} {
		deal := testStartup(name)
		if err := deals.Create(deal); err != nil {
			t.Fatal(err)
		}
		pos := testPosition(deal.ID, 7, 100_000)
		pos.InvestmentDetails.InvestmentDate = time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
		if err := svc.Create(pos); err != nil {
			t.Fatal(err)
		}
		if i == 0 {
			exitedID = pos.ID
		}
	}
	if _, err := svc.Exit(exitedID, models.ExitDetails{ExitType: "acquisition", Proceeds: 300_000}); err != nil {
		t.Fatal(err)
	}

	all, err := svc.ListByInvestor(7, "", PageRequest{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if all.Total != 3 {
		t.Errorf("total = %d, want 3", all.Total)
	}
	// Neueste Investments zuerst.
	if len(all.Positions) != 3 || !all.Positions[0].InvestmentDetails.InvestmentDate.After(all.Positions[2].InvestmentDetails.InvestmentDate) {
		t.Errorf("positions not ordered by investment date desc")
	}

	active, err := svc.ListByInvestor(7, "active", PageRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if active.Total != 2 {
		t.Errorf("active total = %d, want 2", active.Total)
	}

	other, err := svc.ListByInvestor(8, "", PageRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if other.Total != 0 {
		t.Errorf("foreign investor total = %d, want 0", other.Total)
	}
}

func TestPortfolioExit(t *testing.T) {
	db := testDB(t)
	deals := NewDealService(db, testLogger())
	svc := NewPortfolioService(db, testLogger())

	deal := testStartup("Exiting Deal")
	if err := deals.Create(deal); err != nil {
		t.Fatal(err)
	}
	pos := testPosition(deal.ID, 7, 500_000)
	if err := svc.Create(pos); err != nil {
		t.Fatal(err)
	}

	exited, err := svc.Exit(pos.ID, models.ExitDetails{
		ExitType:      "acquisition",
		ExitValuation: 20_000_000,
		Proceeds:      2_000_000,
	})
	if err != nil {
		t.Fatalf("exit failed: %v", err)
	}
	if exited.CurrentStatus.Status != "exited" {
		t.Errorf("status = %q, want exited", exited.CurrentStatus.Status)
	}
	if exited.ExitDetails == nil {
		t.Fatal("exit details not set")
	}
	if exited.ExitDetails.Multiple != 4 {
		t.Errorf("multiple = %v, want 4 (proceeds / invested)", exited.ExitDetails.Multiple)
	}
	if exited.ExitDetails.ExitDate.IsZero() {
		t.Error("exit date not defaulted")
	}

	// Zweiter Exit derselben Position ist ein Konflikt.
	if _, err := svc.Exit(pos.ID, models.ExitDetails{ExitType: "ipo"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
}

func TestPortfolioAddKPIEntry(t *testing.T) {
	db := testDB(t)
	deals := NewDealService(db, testLogger())
	svc := NewPortfolioService(db, testLogger())

	deal := testStartup("Tracked Deal")
	if err := deals.Create(deal); err != nil {
		t.Fatal(err)
	}
	pos := testPosition(deal.ID, 7, 100_000)
	if err := svc.Create(pos); err != nil {
		t.Fatal(err)
	}

	updated, err := svc.AddKPIEntry(pos.ID, models.KPIEntry{MetricName: "arr", Value: 1_200_000})
	if err != nil {
		t.Fatalf("add kpi failed: %v", err)
	}
	if len(updated.KPITracking) != 1 || updated.KPITracking[0].RecordedAt.IsZero() {
		t.Fatalf("kpi tracking = %+v", updated.KPITracking)
	}

	if _, err := svc.AddKPIEntry(pos.ID, models.KPIEntry{Value: 1}); err == nil {
		t.Fatal("expected validation error for missing metric name")
	}
}

func TestPortfolioAnalytics(t *testing.T) {
	db := testDB(t)
	deals := NewDealService(db, testLogger())
	svc := NewPortfolioService(db, testLogger())

	makePosition := func(name string, amount float64) *models.Portfolio {
		deal := testStartup(name)
		if err := deals.Create(deal); err != nil {
			t.Fatal(err)
		}
		pos := testPosition(deal.ID, 7, amount)
		if err := svc.Create(pos); err != nil {
			t.Fatal(err)
		}
		return pos
	}

	winner := makePosition("Winner", 500_000)
	makePosition("Holder", 300_000)
	valued := makePosition("Valued", 200_000)

	if _, err := svc.Exit(winner.ID, models.ExitDetails{ExitType: "acquisition", Proceeds: 2_000_000}); err != nil {
		t.Fatal(err)
	}

	valuation := 10_000_000.0
	unrealized := 2.0
	got, err := svc.Get(valued.ID)
	if err != nil {
		t.Fatal(err)
	}
	got.CurrentStatus.CurrentValuation = &valuation
	got.CurrentStatus.UnrealizedMultiple = &unrealized
	if err := db.Save(got).Error; err != nil {
		t.Fatal(err)
	}

	a, err := svc.Analytics(7)
	if err != nil {
		t.Fatalf("analytics failed: %v", err)
	}
	if a.TotalPositions != 3 || a.ActivePositions != 2 || a.ExitedPositions != 1 {
		t.Errorf("counts = %d/%d/%d", a.TotalPositions, a.ActivePositions, a.ExitedPositions)
	}
	if !a.TotalInvested.Equal(decimal.NewFromInt(1_000_000)) {
		t.Errorf("total invested = %s, want 1000000", a.TotalInvested)
	}
	if !a.TotalProceeds.Equal(decimal.NewFromInt(2_000_000)) {
		t.Errorf("total proceeds = %s, want 2000000", a.TotalProceeds)
	}
	// 10M Bewertung bei 10% Anteil.
	if !a.TotalCurrentValue.Equal(decimal.NewFromInt(1_000_000)) {
		t.Errorf("total current value = %s, want 1000000", a.TotalCurrentValue)
	}
	// Exit-Multiple 4x und unrealisierte 2x mitteln sich auf 3.
	if a.AverageMultiple != 3 {
		t.Errorf("average multiple = %v, want 3", a.AverageMultiple)
	}
	if a.PositionsByStatus["active"] != 2 || a.PositionsByStatus["exited"] != 1 {
		t.Errorf("by_status = %v", a.PositionsByStatus)
	}
	if a.PositionsByRisk["medium"] != 3 {
		t.Errorf("by_risk = %v", a.PositionsByRisk)
	}
}
