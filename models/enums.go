package models

import "slices"

// Geschlossene Wertemengen für Enum-Felder. Validierung passiert explizit an
// der Schreibgrenze, nicht über ein Reflection-Framework.

var Sectors = []string{
	"fintech", "healthtech", "edtech", "e-commerce", "saas", "ai-ml",
	"blockchain", "iot", "cybersecurity", "climate-tech", "agritech",
	"mobility", "real-estate", "logistics", "hr-tech", "martech",
	"consumer", "enterprise", "devtools", "other",
}

var Stages = []string{"pre-seed", "seed", "series-a", "series-b", "series-c", "growth"}

var RoundTypes = []string{"pre-seed", "seed", "series-a", "series-b", "series-c", "bridge", "growth"}

var Currencies = []string{"USD", "EUR", "GBP", "BDT"}

var BusinessModels = []string{
	"B2B", "B2C", "B2B2C", "marketplace", "subscription",
	"transaction-based", "freemium", "other",
}

var Sources = []string{"dealroom", "crunchbase", "manual", "angellist"}

var StartupStatuses = []string{"active", "archived", "rejected", "invested"}

var FounderRoles = []string{"ceo", "cto", "coo", "cfo", "co-founder", "founder"}

var Degrees = []string{"high-school", "bachelor", "master", "phd", "mba", "other"}

var StartupOutcomes = []string{"exit", "active", "failed", "acquired"}

var RedFlagTypes = []string{
	"employment-gap", "frequent-job-changes", "failed-startup",
	"legal-issues", "reputation-concerns", "skill-mismatch", "other",
}

var Severities = []string{"low", "medium", "high"}

var GrowthPotentials = []string{"low", "medium", "high", "very-high"}

var RiskLevels = []string{"low", "medium", "high", "very-high"}

var Recommendations = []string{"pass", "watch", "consider", "strong-consider", "pursue"}

var Algorithms = []string{"random-forest", "gradient-boost", "neural-network", "ensemble"}

var PortfolioStatuses = []string{"active", "exited", "written-off", "zombie"}

var ExitTypes = []string{"ipo", "acquisition", "secondary-sale", "buyback"}

var PortfolioRiskLevels = []string{"low", "medium", "high", "critical"}

func isOneOf(v string, allowed []string) bool {
	return slices.Contains(allowed, v)
}
