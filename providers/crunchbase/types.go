package crunchbase

import "time"

// SearchResponse ist die Top-Level-Struktur der Crunchbase API-Antwort.
type SearchResponse struct {
	Count    int      `json:"count"`
	Entities []Entity `json:"entities"`
}

// Entity ist ein einzelnes Suchergebnis.
type Entity struct {
	UUID       string     `json:"uuid"`
	Properties Properties `json:"properties"`
}

// Properties sind die angefragten Felder einer Organisation.
type Properties struct {
	Name             string       `json:"name"`
	ShortDescription string       `json:"short_description"`
	Description      string       `json:"description"`
	CategoryGroups   []Identifier `json:"category_groups"`
	FundingStage     string       `json:"funding_stage"`
	WebsiteURL       string       `json:"website_url"`
	FoundedOn        string       `json:"founded_on"`
	NumEmployeesEnum string       `json:"num_employees_enum"`
	LocationIdents   []Location   `json:"location_identifiers"`
	FundingRounds    []Funding    `json:"funding_rounds"`
	RevenueRange     string       `json:"revenue_range"`
}

// Identifier ist ein benanntes Crunchbase-Objekt.
type Identifier struct {
	Value string `json:"value"`
}

// Location ist ein Standort-Identifier mit Typangabe.
type Location struct {
	Value        string `json:"value"`
	LocationType string `json:"location_type"`
}

// Funding ist eine Finanzierungsrunde.
type Funding struct {
	InvestmentType string   `json:"investment_type"`
	AnnouncedOn    string   `json:"announced_on"`
	MoneyRaised    Money    `json:"money_raised"`
	Valuation      *Money   `json:"post_money_valuation"`
	InvestorNames  []string `json:"investor_identifiers"`
}

// Money ist ein Betrag mit Währung.
type Money struct {
	Value    float64 `json:"value_usd"`
	Currency string  `json:"currency"`
}

// employeeCounts übersetzt die Crunchbase-Größenklassen in eine konkrete
// Untergrenze.
var employeeCounts = map[string]int{
	"c_00001_00010": 1,
	"c_00011_00050": 11,
	"c_00051_00100": 51,
	"c_00101_00250": 101,
	"c_00251_00500": 251,
	"c_00501_01000": 501,
}

// Hilfsfunktion zum sicheren Parsen von Daten.
func parseDate(dateStr string) *time.Time {
	layouts := []string{"2006-01-02", "2006-01", "2006"}
	for _, layout := range layouts {
		t, err := time.Parse(layout, dateStr)
		if err == nil {
			return &t
		}
	}
	return nil
}
