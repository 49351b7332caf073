package dealroom

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"dealflow/config"
	"dealflow/models"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

// stageMap übersetzt die Dealroom-Wachstumsphasen in unsere Stage-Werte.
var stageMap = map[string]string{
	"mind the seed": "pre-seed",
	"seed":          "seed",
	"early growth":  "series-a",
	"late growth":   "series-b",
	"scaleup":       "series-c",
	"mature":        "growth",
}

// Fetcher implementiert das Provider-Interface für Dealroom.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen Dealroom Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "dealroom"
}

// FetchStartups lädt eine Seite von Unternehmen aus der Dealroom API.
func (f *Fetcher) FetchStartups(page int) ([]*models.Startup, error) {
	log := f.Logger.With(zap.Int("page", page))
	log.Info("Starte Abruf von Dealroom.")

	fetchURL := fmt.Sprintf("%s/companies?limit=%d&offset=%d",
		f.Config.DealroomBaseURL, f.Config.SyncPageSize, page*f.Config.SyncPageSize)
	log.Debug("Rufe Dealroom API auf", zap.String("url", fetchURL))

	req, err := http.NewRequest(http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+f.Config.DealroomAPIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dealroom returned status %d", resp.StatusCode)
	}

	var companies CompaniesResponse
	if err := json.NewDecoder(resp.Body).Decode(&companies); err != nil {
		return nil, err
	}

	var startups []*models.Startup
	for i := range companies.Items {
		startups = append(startups, mapCompanyToModel(&companies.Items[i]))
	}

	log.Info("Abruf von Dealroom abgeschlossen", zap.Int("found_startups", len(startups)))
	return startups, nil
}

// mapCompanyToModel konvertiert ein Dealroom Company-Objekt in unser internes
// Startup-Modell.
func mapCompanyToModel(c *Company) *models.Startup {
	startup := &models.Startup{
		Name:        c.Name,
		Description: c.About,
		ShortPitch:  c.Tagline,
		Website:     c.WebsiteURL,
		TeamSize:    c.EmployeeInfo.Latest,
		Source:      "dealroom",
		ExternalID:  strconv.FormatInt(c.ID, 10),
		Status:      "active",
	}
	if startup.TeamSize < 1 {
		startup.TeamSize = 1
	}

	for _, ind := range c.Industries {
		if sector := mapSector(ind.Name); sector != "" {
			startup.Sector = append(startup.Sector, sector)
		}
	}
	if len(startup.Sector) == 0 {
		startup.Sector = []string{"other"}
	}

	if stage, ok := stageMap[strings.ToLower(c.GrowthStage)]; ok {
		startup.Stage = stage
	} else {
		startup.Stage = "seed"
	}

	if c.LaunchYear > 0 {
		month := time.January
		if c.LaunchMonth >= 1 && c.LaunchMonth <= 12 {
			month = time.Month(c.LaunchMonth)
		}
		startup.FoundedDate = time.Date(c.LaunchYear, month, 1, 0, 0, 0, 0, time.UTC)
	}

	if len(c.HQLocations) > 0 {
		hq := c.HQLocations[0]
		startup.Location = models.Location{City: hq.City, Country: hq.Country, Region: hq.Region}
	}

	for _, r := range c.Fundings {
		d := parseDate(r.Date)
		if d == nil {
			// Runden ohne Datum halten die Validierung nicht; lieber die
			// Runde verlieren als den ganzen Deal.
			continue
		}
		round := models.FundingRound{
			RoundType: mapRoundType(r.Round),
			Amount:    r.Amount,
			Currency:  strings.ToUpper(r.Currency),
			Date:      *d,
			Valuation: r.Valuation,
		}
		for _, inv := range r.Investors {
			round.Investors = append(round.Investors, inv.Name)
		}
		startup.FundingHistory = append(startup.FundingHistory, round)
	}

	for _, t := range c.Technologies {
		startup.TechnologyStack = append(startup.TechnologyStack, t.Name)
	}

	if c.Revenue != nil {
		startup.Metrics.Revenue = c.Revenue.Value
	}

	return startup
}

// mapSector bildet Dealroom-Industrienamen auf unsere Sektoren ab. Unbekannte
// Industrien fallen weg statt auf "other", damit ein Treffer nicht von
// Rauschen verwässert wird.
func mapSector(industry string) string {
	switch strings.ToLower(industry) {
	case "fintech", "financial technology":
		return "fintech"
	case "health", "healthtech", "digital health":
		return "healthtech"
	case "edtech", "education":
		return "edtech"
	case "e-commerce", "marketplace & ecommerce":
		return "e-commerce"
	case "saas", "software as a service":
		return "saas"
	case "artificial intelligence", "machine learning", "ai":
		return "ai-ml"
	case "blockchain", "crypto":
		return "blockchain"
	case "iot", "internet of things":
		return "iot"
	case "security", "cybersecurity":
		return "cybersecurity"
	case "energy", "cleantech", "climate tech":
		return "climate-tech"
	case "agritech", "food":
		return "agritech"
	case "mobility", "transportation":
		return "mobility"
	case "real estate", "proptech":
		return "real-estate"
	case "logistics", "supply chain":
		return "logistics"
	case "hr tech", "recruitment":
		return "hr-tech"
	case "marketing", "adtech":
		return "martech"
	case "consumer":
		return "consumer"
	case "enterprise software":
		return "enterprise"
	case "developer tools":
		return "devtools"
	default:
		return ""
	}
}

// mapRoundType normalisiert Rundenbezeichnungen auf unsere Werte.
func mapRoundType(round string) string {
	switch strings.ToLower(strings.TrimSpace(round)) {
	case "pre-seed", "pre seed", "angel":
		return "pre-seed"
	case "seed":
		return "seed"
	case "series a":
		return "series-a"
	case "series b":
		return "series-b"
	case "series c":
		return "series-c"
	case "bridge", "convertible":
		return "bridge"
	default:
		return "growth"
	}
}
