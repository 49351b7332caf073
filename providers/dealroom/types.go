package dealroom

import "time"

// CompaniesResponse ist die Top-Level-Struktur der Dealroom API-Antwort.
type CompaniesResponse struct {
	Items []Company `json:"items"`
	Total int       `json:"total"`
}

// Company repräsentiert ein einzelnes Unternehmen in der API-Antwort.
type Company struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Tagline      string   `json:"tagline"`
	About        string   `json:"about"`
	Industries   []Tag    `json:"industries"`
	GrowthStage  string   `json:"growth_stage"`
	WebsiteURL   string   `json:"website_url"`
	LaunchYear   int      `json:"launch_year"`
	LaunchMonth  int      `json:"launch_month"`
	EmployeeInfo Employee `json:"employees"`
	HQLocations  []HQ     `json:"hq_locations"`
	Fundings     []Round  `json:"fundings"`
	Technologies []Tag    `json:"technologies"`
	Revenue      *Money   `json:"revenue"`
}

// Tag ist ein benanntes Label (Industrie, Technologie).
type Tag struct {
	Name string `json:"name"`
}

// Employee enthält die gemeldete Teamgröße.
type Employee struct {
	Latest int `json:"latest"`
}

// HQ ist ein Firmensitz-Eintrag.
type HQ struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Region  string `json:"region"`
}

// Round ist eine Finanzierungsrunde aus der Dealroom-Historie.
type Round struct {
	Round     string   `json:"round"`
	Amount    float64  `json:"amount"`
	Currency  string   `json:"currency"`
	Date      string   `json:"date"`
	Valuation *float64 `json:"valuation"`
	Investors []Tag    `json:"investors"`
}

// Money ist ein Betrag mit Währung.
type Money struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
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
