package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dealflow/config"
	"dealflow/models"
	"dealflow/providers"
)

// SyncService kümmert sich um die Orchestrierung der Ingestion aus externen
// Deal-Quellen.
type SyncService struct {
	Config    *config.Config
	DB        *gorm.DB
	Logger    *zap.Logger
	Providers []providers.Provider

	// OnSynced wird pro neu angelegtem oder aktualisiertem Deal aufgerufen,
	// z.B. für Metriken. Darf nil sein.
	OnSynced func(provider string)
}

// NewSyncService erstellt eine neue Instanz des SyncService.
func NewSyncService(cfg *config.Config, db *gorm.DB, logger *zap.Logger, provs []providers.Provider) *SyncService {
	return &SyncService{
		Config:    cfg,
		DB:        db,
		Logger:    logger,
		Providers: provs,
	}
}

// SyncResult fasst einen Sync-Lauf zusammen.
type SyncResult struct {
	Provider string `json:"provider"`
	Fetched  int    `json:"fetched"`
	Upserted int    `json:"upserted"`
	Skipped  int    `json:"skipped"`
}

// RunAll führt den Sync für alle konfigurierten Provider aus. Ein Fehler bei
// einem Provider bricht die anderen nicht ab.
func (s *SyncService) RunAll(ctx context.Context) ([]SyncResult, error) {
	results := make([]SyncResult, 0, len(s.Providers))
	for _, provider := range s.Providers {
		result, err := s.RunProvider(ctx, provider)
		if err != nil {
			s.Logger.Error("Provider-Sync fehlgeschlagen",
				zap.String("provider", provider.Name()), zap.Error(err))
			continue
		}
		results = append(results, *result)
	}
	return results, nil
}

// RunProvider holt seitenweise Startups aus einer Quelle und upsertet sie.
// Die Schleife endet bei der ersten leeren Seite.
func (s *SyncService) RunProvider(ctx context.Context, provider providers.Provider) (*SyncResult, error) {
	log := s.Logger.With(zap.String("provider", provider.Name()))
	log.Info("Starte Sync-Prozess für Provider.")

	result := &SyncResult{Provider: provider.Name()}
	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		startups, err := provider.FetchStartups(page)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			log.Warn("Seite konnte nicht geladen werden, Sync endet hier",
				zap.Int("page", page), zap.Error(err))
			break
		}
		if len(startups) == 0 {
			break
		}

		result.Fetched += len(startups)
		for _, startup := range startups {
			if err := s.upsert(startup); err != nil {
				log.Warn("Startup konnte nicht übernommen werden",
					zap.String("external_id", startup.ExternalID),
					zap.String("name", startup.Name),
					zap.Error(err))
				result.Skipped++
				continue
			}
			result.Upserted++
			if s.OnSynced != nil {
				s.OnSynced(provider.Name())
			}
		}

		if len(startups) < s.Config.SyncPageSize {
			break
		}
	}

	log.Info("Sync-Prozess abgeschlossen",
		zap.Int("fetched", result.Fetched),
		zap.Int("upserted", result.Upserted),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// upsert legt den Deal an oder aktualisiert den bestehenden Eintrag derselben
// Quelle. Der manuell gepflegte Zustand (Status, Notes) bleibt dabei stehen.
func (s *SyncService) upsert(startup *models.Startup) error {
	now := time.Now().UTC()
	startup.LastSynced = &now

	if err := startup.Validate(); err != nil {
		var verr *models.ValidationError
		// Externe Quellen liefern oft keine brauchbare Beschreibung; dann
		// strecken wir den Pitch, statt den Deal zu verlieren.
		if errors.As(err, &verr) && verr.Field == "description" && len(startup.Description) < 50 {
			startup.Description = padDescription(startup)
			err = startup.Validate()
		}
		if err != nil {
			return err
		}
	}

	return s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "source"}, {Name: "external_id"}},
		// Der Unique-Index ist partiell, das Konfliktziel braucht dasselbe
		// Prädikat — als Literal, ein gebundener Parameter matcht den Index
		// nicht.
		TargetWhere: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "external_id <> ''"},
		}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "description", "short_pitch", "stage", "funding_history",
			"metrics_revenue", "team_size", "website", "technology_stack",
			"location_city", "location_country", "location_region", "last_synced",
		}),
	}).Create(startup).Error
}

// padDescription baut aus den vorhandenen Feldern eine Mindestbeschreibung.
func padDescription(startup *models.Startup) string {
	desc := startup.Description
	if desc == "" {
		desc = startup.ShortPitch
	}
	base := startup.Name + ": " + desc
	for len(base) < 50 {
		base += " (imported from " + startup.Source + ")"
	}
	return base
}
