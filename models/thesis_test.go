package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func validThesis() *InvestorThesis {
	return &InvestorThesis{
		InvestorID: 7,
		Title:      "European B2B SaaS at seed",
		ThesisText: strings.Repeat("We back European B2B SaaS companies at seed stage. ", 3),
		FocusAreas: FocusAreas{
			Sectors:     []string{"saas", "fintech"},
			Stages:      []string{"seed", "series-a"},
			Geographies: []string{"Germany", "Europe"},
		},
	}
}

func matchableStartup() *Startup {
	s := validStartup()
	s.Sector = []string{"saas"}
	s.Stage = "seed"
	s.Location = Location{City: "Berlin", Country: "Germany"}
	s.Metrics.Revenue = 500_000
	s.Metrics.GrowthRateYoY = 80
	s.TeamSize = 8
	return s
}

func TestThesisValidate(t *testing.T) {
	th := validThesis()
	if err := th.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	th = validThesis()
	th.Title = "abc"
	if err := th.Validate(); err == nil || err.Error() != "Title must be at least 5 characters" {
		t.Errorf("got %v", err)
	}

	th = validThesis()
	th.ThesisText = "short"
	if err := th.Validate(); err == nil || err.Error() != "Thesis must be at least 100 characters" {
		t.Errorf("got %v", err)
	}

	th = validThesis()
	th.FocusAreas.Geographies = nil
	if err := th.Validate(); err == nil || err.Error() != "At least one geography is required" {
		t.Errorf("got %v", err)
	}
}

func TestThesisEmbeddingNeverSerialized(t *testing.T) {
	th := validThesis()
	th.Embedding = []float64{0.12, 0.34, 0.56}

	data, err := json.Marshal(th)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "embedding") {
		t.Fatalf("embedding leaked into JSON: %s", data)
	}
}

func TestMatchesAllCriteria(t *testing.T) {
	minRev := 100_000.0
	minGrowth := 50.0
	minTeam := 5
	maxBurn := 200_000.0

	th := validThesis()
	th.InvestmentCriteria = InvestmentCriteria{
		MinRevenue:    &minRev,
		MinGrowthRate: &minGrowth,
		MinTeamSize:   &minTeam,
		MaxBurnRate:   &maxBurn,
	}

	if !th.Matches(matchableStartup()) {
		t.Fatal("startup should match thesis")
	}
}

func TestMatchesRejections(t *testing.T) {
	minRev := 1_000_000.0

	tests := []struct {
		name   string
		thesis func(*InvestorThesis)
		deal   func(*Startup)
	}{
		{"revenue below minimum", func(th *InvestorThesis) { th.InvestmentCriteria.MinRevenue = &minRev }, func(s *Startup) {}},
		{"no sector overlap", func(th *InvestorThesis) {}, func(s *Startup) { s.Sector = []string{"agritech"} }},
		{"stage not in focus", func(th *InvestorThesis) {}, func(s *Startup) { s.Stage = "growth" }},
		{"geography mismatch", func(th *InvestorThesis) {}, func(s *Startup) { s.Location = Location{City: "Austin", Country: "United States"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := validThesis()
			tt.thesis(th)
			s := matchableStartup()
			tt.deal(s)
			if th.Matches(s) {
				t.Fatal("expected no match")
			}
		})
	}
}

func TestMatchesAbsentCriteriaPass(t *testing.T) {
	th := validThesis()
	s := matchableStartup()
	s.Metrics.Revenue = 0
	s.Metrics.GrowthRateYoY = 0
	if !th.Matches(s) {
		t.Fatal("absent numeric criteria must pass automatically")
	}
}

func TestMatchesGeographyIsCaseInsensitiveSubstring(t *testing.T) {
	th := validThesis()
	th.FocusAreas.Geographies = []string{"germ"}
	if !th.Matches(matchableStartup()) {
		t.Fatal("case-insensitive substring on country should match")
	}

	th.FocusAreas.Geographies = []string{"bavaria"}
	s := matchableStartup()
	s.Location.Region = "Bavaria"
	if !th.Matches(s) {
		t.Fatal("substring on region should match")
	}
}

func TestMatchesIsPure(t *testing.T) {
	th := validThesis()
	s := matchableStartup()
	before := *s
	_ = th.Matches(s)
	if s.Stage != before.Stage || len(s.Sector) != len(before.Sector) {
		t.Fatal("Matches must not mutate its inputs")
	}
}
