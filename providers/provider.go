package providers

import "dealflow/models"

// Provider ist das Interface, das jede externe Deal-Quelle (z.B. Dealroom,
// Crunchbase) implementieren muss.
type Provider interface {
	// FetchStartups lädt eine Seite von Startups aus der Quelle und gibt sie
	// als standardisierte Startup-Modelle zurück.
	FetchStartups(page int) ([]*models.Startup, error)

	// Name gibt den eindeutigen Namen des Providers zurück (z.B. "dealroom").
	Name() string
}
