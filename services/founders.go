package services

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dealflow/models"
)

// FounderService verwaltet Gründerprofile.
type FounderService struct {
	DB     *gorm.DB
	Logger *zap.Logger

	// Now ist für Tests austauschbar; abgeleitete Erfahrungswerte hängen
	// davon ab.
	Now func() time.Time
}

// NewFounderService erstellt eine neue Instanz des FounderService.
func NewFounderService(db *gorm.DB, logger *zap.Logger) *FounderService {
	return &FounderService{DB: db, Logger: logger, Now: time.Now}
}

// Create validiert und persistiert ein neues Gründerprofil. Das referenzierte
// Startup muss existieren.
func (f *FounderService) Create(founder *models.Founder) error {
	if err := founder.Validate(); err != nil {
		return err
	}
	var startup models.Startup
	if err := f.DB.First(&startup, founder.StartupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := f.DB.Create(founder).Error; err != nil {
		return err
	}

	// Rückverweis am Startup pflegen, damit dessen founders-Liste stimmt.
	// Das Update muss über das Struct-Feld laufen, sonst greift der
	// JSON-Serializer der Spalte nicht.
	startup.FounderIDs = append(startup.FounderIDs, founder.ID)
	return f.DB.Model(&startup).
		Select("founder_ids").
		Updates(&models.Startup{FounderIDs: startup.FounderIDs}).Error
}

// Get liefert die View eines Gründers inklusive abgeleiteter Felder.
func (f *FounderService) Get(id uint) (*models.FounderView, error) {
	var founder models.Founder
	if err := f.DB.First(&founder, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	view := models.NewFounderView(founder, f.Now())
	return &view, nil
}

// ListByStartup liefert alle Gründer eines Startups.
func (f *FounderService) ListByStartup(startupID uint) ([]models.FounderView, error) {
	var founders []models.Founder
	err := f.DB.Where("startup_id = ?", startupID).
		Order("created_at asc").
		Find(&founders).Error
	if err != nil {
		return nil, err
	}
	now := f.Now()
	views := make([]models.FounderView, 0, len(founders))
	for _, founder := range founders {
		views = append(views, models.NewFounderView(founder, now))
	}
	return views, nil
}

// Update validiert das geänderte Profil und speichert es.
func (f *FounderService) Update(founder *models.Founder) error {
	if err := founder.Validate(); err != nil {
		return err
	}
	res := f.DB.Save(founder)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete entfernt einen Gründer und den Rückverweis an seinem Startup.
func (f *FounderService) Delete(id uint) error {
	var founder models.Founder
	if err := f.DB.First(&founder, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := f.DB.Delete(&founder).Error; err != nil {
		return err
	}

	var startup models.Startup
	if err := f.DB.First(&startup, founder.StartupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	kept := make([]uint, 0, len(startup.FounderIDs))
	for _, fid := range startup.FounderIDs {
		if fid != id {
			kept = append(kept, fid)
		}
	}
	return f.DB.Model(&startup).
		Select("founder_ids").
		Updates(&models.Startup{FounderIDs: kept}).Error
}
