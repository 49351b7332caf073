package services

import (
	"errors"
	"fmt"
	"testing"

	"dealflow/models"
)

func TestDealCreateAndGet(t *testing.T) {
	svc := NewDealService(testDB(t), testLogger())

	s := testStartup("Acme Analytics")
	if err := svc.Create(s); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if s.ID == 0 {
		t.Fatal("expected assigned id")
	}

	got, err := svc.Get(s.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "Acme Analytics" {
		t.Errorf("name = %q", got.Name)
	}
}

func TestDealGetNotFound(t *testing.T) {
	svc := NewDealService(testDB(t), testLogger())
	if _, err := svc.Get(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDealCreateDuplicateExternalID(t *testing.T) {
	svc := NewDealService(testDB(t), testLogger())

	a := testStartup("Synced Deal")
	a.Source = "dealroom"
	a.ExternalID = "dr-123"
	if err := svc.Create(a); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	b := testStartup("Synced Deal Again")
	b.Source = "dealroom"
	b.ExternalID = "dr-123"
	if err := svc.Create(b); !errors.Is(err, ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
}

func TestDealCreateEmptyExternalIDsDoNotConflict(t *testing.T) {
	svc := NewDealService(testDB(t), testLogger())

	// Manuell angelegte Deals ohne external_id dürfen sich nicht gegenseitig
	// blockieren.
	for i := 0; i < 3; i++ {
		s := testStartup(fmt.Sprintf("Manual Deal %d", i))
		if err := svc.Create(s); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
	}
}

func TestDealSearchPagination(t *testing.T) {
	svc := NewDealService(testDB(t), testLogger())

	for i := 0; i < 45; i++ {
		s := testStartup(fmt.Sprintf("Deal %02d", i))
		if err := svc.Create(s); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
	}

	page, err := svc.Search(DealSearchParams{PageRequest: PageRequest{Page: 1, Limit: 20}})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if page.Total != 45 {
		t.Errorf("total = %d, want 45", page.Total)
	}
	if page.TotalPages != 3 {
		t.Errorf("total_pages = %d, want 3", page.TotalPages)
	}
	if len(page.Deals) != 20 {
		t.Errorf("page 1 size = %d, want 20", len(page.Deals))
	}

	last, err := svc.Search(DealSearchParams{PageRequest: PageRequest{Page: 3, Limit: 20}})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(last.Deals) != 5 {
		t.Errorf("page 3 size = %d, want 5", len(last.Deals))
	}

	// Seite jenseits des Bereichs: leere Liste, kein Fehler.
	beyond, err := svc.Search(DealSearchParams{PageRequest: PageRequest{Page: 4, Limit: 20}})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(beyond.Deals) != 0 {
		t.Errorf("page 4 size = %d, want 0", len(beyond.Deals))
	}
	if beyond.TotalPages != 3 {
		t.Errorf("total_pages = %d, want 3", beyond.TotalPages)
	}
}

func TestDealSearchFilters(t *testing.T) {
	svc := NewDealService(testDB(t), testLogger())

	fintech := testStartup("PayFlow")
	fintech.Sector = []string{"fintech"}
	fintech.Stage = "series-a"
	fintech.Metrics.Revenue = 2_000_000
	if err := svc.Create(fintech); err != nil {
		t.Fatal(err)
	}

	saas := testStartup("DashBoardly")
	if err := svc.Create(saas); err != nil {
		t.Fatal(err)
	}

	minRev := 1_000_000.0
	page, err := svc.Search(DealSearchParams{
		Sectors:    []string{"fintech"},
		MinRevenue: &minRev,
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if page.Total != 1 || page.Deals[0].Name != "PayFlow" {
		t.Fatalf("filter result = %+v", page.Deals)
	}

	byText, err := svc.Search(DealSearchParams{Query: "dashboardly"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if byText.Total != 1 || byText.Deals[0].Name != "DashBoardly" {
		t.Fatalf("text search result = %+v", byText.Deals)
	}
}

func TestBulkImportPartialFailure(t *testing.T) {
	svc := NewDealService(testDB(t), testLogger())

	good := testStartup("Good Deal")
	bad := testStartup("Bad Deal")
	bad.Description = "too short"
	alsoGood := testStartup("Also Good")

	result := svc.BulkImport([]models.Startup{*good, *bad, *alsoGood})
	if result.Created != 2 {
		t.Errorf("created = %d, want 2", result.Created)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
	if len(result.Errors) != 1 || result.Errors[0].Index != 1 || result.Errors[0].Name != "Bad Deal" {
		t.Errorf("errors = %+v", result.Errors)
	}

	// Geschwister sind trotzdem drin.
	page, err := svc.Search(DealSearchParams{})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 {
		t.Errorf("persisted deals = %d, want 2", page.Total)
	}
}

func TestDealStatistics(t *testing.T) {
	svc := NewDealService(testDB(t), testLogger())

	seed := testStartup("Seed Co")
	seriesA := testStartup("Growth Co")
	seriesA.Stage = "series-a"
	archived := testStartup("Old Co")
	archived.Status = "archived"
	for _, s := range []*models.Startup{seed, seriesA, archived} {
		if err := svc.Create(s); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := svc.Statistics()
	if err != nil {
		t.Fatalf("statistics failed: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("total = %d", stats.Total)
	}
	if stats.ByStage["seed"] != 2 || stats.ByStage["series-a"] != 1 {
		t.Errorf("by_stage = %v", stats.ByStage)
	}
	if stats.ByStatus["active"] != 2 || stats.ByStatus["archived"] != 1 {
		t.Errorf("by_status = %v", stats.ByStatus)
	}
	if stats.BySector["saas"] != 3 {
		t.Errorf("by_sector = %v", stats.BySector)
	}
	if stats.AvgTeamSize != 5 {
		t.Errorf("avg_team_size = %v", stats.AvgTeamSize)
	}
}

func TestSimilarDeals(t *testing.T) {
	svc := NewDealService(testDB(t), testLogger())

	base := testStartup("Base Deal")
	twin := testStartup("Twin Deal")
	otherStage := testStartup("Other Stage")
	otherStage.Stage = "growth"
	otherCountry := testStartup("Other Country")
	otherCountry.Location.Country = "France"
	archivedTwin := testStartup("Archived Twin")
	archivedTwin.Status = "archived"

	for _, s := range []*models.Startup{base, twin, otherStage, otherCountry, archivedTwin} {
		if err := svc.Create(s); err != nil {
			t.Fatal(err)
		}
	}

	similar, err := svc.Similar(base.ID, 10)
	if err != nil {
		t.Fatalf("similar failed: %v", err)
	}
	if len(similar) != 1 || similar[0].Name != "Twin Deal" {
		t.Fatalf("similar = %+v", similar)
	}
}

func TestAddNote(t *testing.T) {
	svc := NewDealService(testDB(t), testLogger())
	s := testStartup("Noted Deal")
	if err := svc.Create(s); err != nil {
		t.Fatal(err)
	}

	updated, err := svc.AddNote(s.ID, 42, "Strong founding team, revisit after next round.")
	if err != nil {
		t.Fatalf("add note failed: %v", err)
	}
	if len(updated.Notes) != 1 || updated.Notes[0].UserID != 42 {
		t.Fatalf("notes = %+v", updated.Notes)
	}

	if _, err := svc.AddNote(s.ID, 42, ""); err == nil {
		t.Fatal("expected validation error for empty note")
	}
}
