package crunchbase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"dealflow/config"
	"dealflow/models"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

// stageMap übersetzt die Crunchbase-Funding-Stages in unsere Stage-Werte.
var stageMap = map[string]string{
	"pre_seed":       "pre-seed",
	"seed":           "seed",
	"early_stage":    "series-a",
	"series_a":       "series-a",
	"series_b":       "series-b",
	"late_stage":     "series-c",
	"private_equity": "growth",
}

// Fetcher implementiert das Provider-Interface für Crunchbase.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen Crunchbase Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "crunchbase"
}

// searchRequest ist der Body der Crunchbase Search API. Paginierung läuft
// über limit/offset statt Cursor, weil der Sync immer den vollen Bestand
// durchgeht.
type searchRequest struct {
	FieldIDs []string `json:"field_ids"`
	Limit    int      `json:"limit"`
	Offset   int      `json:"offset"`
}

// FetchStartups lädt eine Seite von Organisationen aus der Crunchbase API.
func (f *Fetcher) FetchStartups(page int) ([]*models.Startup, error) {
	log := f.Logger.With(zap.Int("page", page))
	log.Info("Starte Abruf von Crunchbase.")

	body, err := json.Marshal(searchRequest{
		FieldIDs: []string{
			"name", "short_description", "description", "category_groups",
			"funding_stage", "website_url", "founded_on", "num_employees_enum",
			"location_identifiers", "funding_rounds",
		},
		Limit:  f.Config.SyncPageSize,
		Offset: page * f.Config.SyncPageSize,
	})
	if err != nil {
		return nil, err
	}

	searchURL := f.Config.CrunchbaseBaseURL + "/searches/organizations"
	req, err := http.NewRequest(http.MethodPost, searchURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-cb-user-key", f.Config.CrunchbaseAPIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crunchbase returned status %d", resp.StatusCode)
	}

	var search SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, err
	}

	var startups []*models.Startup
	for i := range search.Entities {
		startups = append(startups, mapEntityToModel(&search.Entities[i]))
	}

	log.Info("Abruf von Crunchbase abgeschlossen", zap.Int("found_startups", len(startups)))
	return startups, nil
}

// mapEntityToModel konvertiert eine Crunchbase-Organisation in unser internes
// Startup-Modell.
func mapEntityToModel(e *Entity) *models.Startup {
	p := &e.Properties

	startup := &models.Startup{
		Name:        p.Name,
		Description: p.Description,
		ShortPitch:  p.ShortDescription,
		Website:     p.WebsiteURL,
		Source:      "crunchbase",
		ExternalID:  e.UUID,
		Status:      "active",
	}

	for _, cg := range p.CategoryGroups {
		if sector := mapSector(cg.Value); sector != "" {
			startup.Sector = append(startup.Sector, sector)
		}
	}
	if len(startup.Sector) == 0 {
		startup.Sector = []string{"other"}
	}

	if stage, ok := stageMap[strings.ToLower(p.FundingStage)]; ok {
		startup.Stage = stage
	} else {
		startup.Stage = "seed"
	}

	if d := parseDate(p.FoundedOn); d != nil {
		startup.FoundedDate = *d
	}

	if count, ok := employeeCounts[p.NumEmployeesEnum]; ok {
		startup.TeamSize = count
	} else {
		startup.TeamSize = 1
	}

	for _, loc := range p.LocationIdents {
		switch loc.LocationType {
		case "city":
			startup.Location.City = loc.Value
		case "country":
			startup.Location.Country = loc.Value
		case "region":
			startup.Location.Region = loc.Value
		}
	}

	for _, r := range p.FundingRounds {
		d := parseDate(r.AnnouncedOn)
		if d == nil {
			continue
		}
		round := models.FundingRound{
			RoundType: mapRoundType(r.InvestmentType),
			Amount:    r.MoneyRaised.Value,
			Currency:  "USD",
			Date:      *d,
			Investors: r.InvestorNames,
		}
		if r.Valuation != nil {
			v := r.Valuation.Value
			round.Valuation = &v
		}
		startup.FundingHistory = append(startup.FundingHistory, round)
	}

	return startup
}

// mapSector bildet Crunchbase-Kategoriegruppen auf unsere Sektoren ab.
func mapSector(category string) string {
	switch strings.ToLower(category) {
	case "financial services", "payments", "lending and investments":
		return "fintech"
	case "health care", "biotechnology":
		return "healthtech"
	case "education":
		return "edtech"
	case "commerce and shopping":
		return "e-commerce"
	case "software", "apps":
		return "saas"
	case "artificial intelligence", "data and analytics":
		return "ai-ml"
	case "blockchain and cryptocurrency":
		return "blockchain"
	case "internet of things", "hardware":
		return "iot"
	case "privacy and security":
		return "cybersecurity"
	case "sustainability", "energy":
		return "climate-tech"
	case "agriculture and farming", "food and beverage":
		return "agritech"
	case "transportation":
		return "mobility"
	case "real estate":
		return "real-estate"
	case "logistics", "supply chain management":
		return "logistics"
	case "professional services", "administrative services":
		return "hr-tech"
	case "advertising", "sales and marketing":
		return "martech"
	case "consumer goods", "consumer electronics":
		return "consumer"
	case "enterprise software":
		return "enterprise"
	case "developer platform", "developer tools":
		return "devtools"
	default:
		return ""
	}
}

// mapRoundType normalisiert Crunchbase-Investment-Typen auf unsere Werte.
func mapRoundType(investmentType string) string {
	switch strings.ToLower(investmentType) {
	case "pre_seed", "angel":
		return "pre-seed"
	case "seed":
		return "seed"
	case "series_a":
		return "series-a"
	case "series_b":
		return "series-b"
	case "series_c":
		return "series-c"
	case "convertible_note", "debt_financing":
		return "bridge"
	default:
		return "growth"
	}
}
