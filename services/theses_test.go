package services

import (
	"errors"
	"strings"
	"testing"

	"dealflow/models"
)

func testThesis(investorID uint) *models.InvestorThesis {
	return &models.InvestorThesis{
		InvestorID: investorID,
		Title:      "European B2B SaaS at seed",
		ThesisText: strings.Repeat("We back European B2B SaaS companies at seed stage. ", 3),
		FocusAreas: models.FocusAreas{
			Sectors:     []string{"saas"},
			Stages:      []string{"seed"},
			Geographies: []string{"Germany"},
		},
	}
}

func TestThesisCreateStartsAtVersionOne(t *testing.T) {
	svc := NewThesisService(testDB(t), testLogger())
	th := testThesis(1)
	if err := svc.Create(th); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if th.Version != 1 {
		t.Fatalf("version = %d, want 1", th.Version)
	}
	if !th.IsActive {
		t.Fatal("new thesis should be active")
	}
}

func TestThesisUpdateBumpsVersionOncePerChange(t *testing.T) {
	svc := NewThesisService(testDB(t), testLogger())
	th := testThesis(1)
	if err := svc.Create(th); err != nil {
		t.Fatal(err)
	}

	changed := *th
	changed.Title = "European B2B SaaS, seed and series A"
	updated, err := svc.Update(th.ID, &changed)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Version != 2 {
		t.Fatalf("version = %d, want 2", updated.Version)
	}

	// Mehrere Feldänderungen in einem Update: genau +1.
	changed2 := *updated
	changed2.Title = "DACH B2B SaaS"
	changed2.FocusAreas.Geographies = []string{"Germany", "Austria", "Switzerland"}
	updated2, err := svc.Update(th.ID, &changed2)
	if err != nil {
		t.Fatal(err)
	}
	if updated2.Version != 3 {
		t.Fatalf("version = %d, want 3", updated2.Version)
	}
}

func TestThesisNoOpUpdateKeepsVersion(t *testing.T) {
	svc := NewThesisService(testDB(t), testLogger())
	th := testThesis(1)
	if err := svc.Create(th); err != nil {
		t.Fatal(err)
	}

	same := *th
	updated, err := svc.Update(th.ID, &same)
	if err != nil {
		t.Fatalf("no-op update failed: %v", err)
	}
	if updated.Version != 1 {
		t.Fatalf("version after no-op = %d, want 1", updated.Version)
	}

	// Nochmal, um Idempotenz sicherzustellen.
	again, err := svc.Update(th.ID, &same)
	if err != nil {
		t.Fatal(err)
	}
	if again.Version != 1 {
		t.Fatalf("version after second no-op = %d, want 1", again.Version)
	}
}

func TestThesisEmbeddingRefreshKeepsVersion(t *testing.T) {
	svc := NewThesisService(testDB(t), testLogger())
	th := testThesis(1)
	th.Embedding = []float64{0.1, 0.2}
	if err := svc.Create(th); err != nil {
		t.Fatal(err)
	}

	// Inhalt identisch, nur das Embedding neu: wird gespeichert, Version
	// bleibt stehen.
	refresh := *th
	refresh.Embedding = []float64{0.3, 0.4}
	updated, err := svc.Update(th.ID, &refresh)
	if err != nil {
		t.Fatalf("embedding refresh failed: %v", err)
	}
	if updated.Version != 1 {
		t.Fatalf("version = %d, want 1", updated.Version)
	}

	got, err := svc.Get(th.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Embedding) != 2 || got.Embedding[0] != 0.3 {
		t.Fatalf("embedding not persisted: %v", got.Embedding)
	}

	// Update ohne Embedding im Payload lässt das gespeicherte stehen.
	content := *got
	content.Embedding = nil
	content.Title = "DACH B2B SaaS at seed"
	if _, err := svc.Update(th.ID, &content); err != nil {
		t.Fatal(err)
	}
	again, err := svc.Get(th.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Embedding) != 2 {
		t.Fatalf("embedding dropped on content update: %v", again.Embedding)
	}
}

func TestThesisDeactivate(t *testing.T) {
	svc := NewThesisService(testDB(t), testLogger())
	th := testThesis(1)
	if err := svc.Create(th); err != nil {
		t.Fatal(err)
	}

	if err := svc.Deactivate(th.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	got, err := svc.Get(th.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsActive {
		t.Fatal("thesis still active")
	}
	if got.Version != 1 {
		t.Fatalf("deactivate changed version to %d", got.Version)
	}

	if err := svc.Deactivate(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestMatchingDeals(t *testing.T) {
	db := testDB(t)
	theses := NewThesisService(db, testLogger())
	deals := NewDealService(db, testLogger())

	match := testStartup("Matching Deal")
	wrongStage := testStartup("Wrong Stage")
	wrongStage.Stage = "growth"
	wrongCountry := testStartup("Wrong Country")
	wrongCountry.Location.Country = "Brazil"
	archived := testStartup("Archived Deal")
	archived.Status = "archived"
	for _, s := range []*models.Startup{match, wrongStage, wrongCountry, archived} {
		if err := deals.Create(s); err != nil {
			t.Fatal(err)
		}
	}

	th := testThesis(1)
	if err := theses.Create(th); err != nil {
		t.Fatal(err)
	}

	page, err := theses.MatchingDeals(th.ID, PageRequest{})
	if err != nil {
		t.Fatalf("matching deals failed: %v", err)
	}
	if page.Total != 1 || page.Deals[0].Name != "Matching Deal" {
		t.Fatalf("matches = %+v", page.Deals)
	}
}

func TestMatchingTheses(t *testing.T) {
	db := testDB(t)
	theses := NewThesisService(db, testLogger())
	deals := NewDealService(db, testLogger())

	deal := testStartup("Hot Deal")
	if err := deals.Create(deal); err != nil {
		t.Fatal(err)
	}

	matching := testThesis(1)
	if err := theses.Create(matching); err != nil {
		t.Fatal(err)
	}
	inactive := testThesis(2)
	if err := theses.Create(inactive); err != nil {
		t.Fatal(err)
	}
	if err := theses.Deactivate(inactive.ID); err != nil {
		t.Fatal(err)
	}
	mismatched := testThesis(3)
	mismatched.FocusAreas.Sectors = []string{"agritech"}
	if err := theses.Create(mismatched); err != nil {
		t.Fatal(err)
	}

	matches, err := theses.MatchingTheses(deal.ID)
	if err != nil {
		t.Fatalf("matching theses failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Thesis.ID != matching.ID {
		t.Fatalf("matches = %+v", matches)
	}
}
