package services

import (
	"errors"
	"reflect"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dealflow/models"
)

// ThesisService verwaltet Investment-Thesen und deren Abgleich gegen Deals.
type ThesisService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewThesisService erstellt eine neue Instanz des ThesisService.
func NewThesisService(db *gorm.DB, logger *zap.Logger) *ThesisService {
	return &ThesisService{DB: db, Logger: logger}
}

// Create validiert und persistiert eine neue These mit Version 1.
func (t *ThesisService) Create(thesis *models.InvestorThesis) error {
	if err := thesis.Validate(); err != nil {
		return err
	}
	thesis.Version = 1
	thesis.IsActive = true
	return t.DB.Create(thesis).Error
}

// Get liefert eine These per ID.
func (t *ThesisService) Get(id uint) (*models.InvestorThesis, error) {
	var thesis models.InvestorThesis
	if err := t.DB.First(&thesis, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &thesis, nil
}

// ListByInvestor liefert alle Thesen eines Investors, aktive zuerst.
func (t *ThesisService) ListByInvestor(investorID uint) ([]models.InvestorThesis, error) {
	var theses []models.InvestorThesis
	err := t.DB.Where("investor_id = ?", investorID).
		Order("is_active desc, updated_at desc").
		Find(&theses).Error
	return theses, err
}

// contentChanged vergleicht die inhaltlichen Felder zweier Thesen. ID,
// Zeitstempel, Version und Embedding zählen nicht als Inhalt.
func contentChanged(old, updated *models.InvestorThesis) bool {
	return old.Title != updated.Title ||
		old.ThesisText != updated.ThesisText ||
		!reflect.DeepEqual(old.FocusAreas, updated.FocusAreas) ||
		!reflect.DeepEqual(old.InvestmentCriteria, updated.InvestmentCriteria) ||
		!reflect.DeepEqual(old.KeyThemes, updated.KeyThemes) ||
		!reflect.DeepEqual(old.PreferredTechnologies, updated.PreferredTechnologies) ||
		!reflect.DeepEqual(old.Exclusions, updated.Exclusions) ||
		!reflect.DeepEqual(old.TargetMetrics, updated.TargetMetrics) ||
		!reflect.DeepEqual(old.Examples, updated.Examples)
}

// Update übernimmt die inhaltlichen Felder und erhöht die Version um genau 1,
// aber nur wenn sich tatsächlich etwas geändert hat. Ein No-op-Update lässt
// die Version stehen.
func (t *ThesisService) Update(id uint, updated *models.InvestorThesis) (*models.InvestorThesis, error) {
	existing, err := t.Get(id)
	if err != nil {
		return nil, err
	}

	next := *existing
	next.Title = updated.Title
	next.ThesisText = updated.ThesisText
	next.FocusAreas = updated.FocusAreas
	next.InvestmentCriteria = updated.InvestmentCriteria
	next.KeyThemes = updated.KeyThemes
	next.PreferredTechnologies = updated.PreferredTechnologies
	next.Exclusions = updated.Exclusions
	next.TargetMetrics = updated.TargetMetrics
	next.Examples = updated.Examples
	if updated.Embedding != nil {
		next.Embedding = updated.Embedding
	}

	if err := next.Validate(); err != nil {
		return nil, err
	}

	if !contentChanged(existing, &next) {
		// Das Embedding zählt nicht als Inhalt: ein reiner Refresh wird
		// gespeichert, ohne die Version anzufassen.
		if reflect.DeepEqual(existing.Embedding, next.Embedding) {
			return existing, nil
		}
		if err := t.DB.Save(&next).Error; err != nil {
			return nil, err
		}
		return &next, nil
	}

	next.Version = existing.Version + 1
	if err := t.DB.Save(&next).Error; err != nil {
		return nil, err
	}
	t.Logger.Info("Thesis updated",
		zap.Uint("thesis_id", next.ID),
		zap.Int("version", next.Version))
	return &next, nil
}

// Deactivate schaltet eine These aus dem Matching heraus, ohne sie zu
// löschen. Die Version bleibt unverändert.
func (t *ThesisService) Deactivate(id uint) error {
	res := t.DB.Model(&models.InvestorThesis{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete entfernt eine These endgültig.
func (t *ThesisService) Delete(id uint) error {
	res := t.DB.Delete(&models.InvestorThesis{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MatchingDeals liefert alle aktiven Deals, die die These erfüllen. Der
// Datenbankfilter übernimmt die groben Kriterien, der Rest läuft durch das
// Prädikat der These.
func (t *ThesisService) MatchingDeals(thesisID uint, page PageRequest) (*DealPage, error) {
	thesis, err := t.Get(thesisID)
	if err != nil {
		return nil, err
	}
	page.Clamp()

	query := t.DB.Model(&models.Startup{}).Where("status = ?", "active")
	if len(thesis.FocusAreas.Stages) > 0 {
		query = query.Where("stage IN ?", thesis.FocusAreas.Stages)
	}
	if c := thesis.InvestmentCriteria; c.MinRevenue != nil {
		query = query.Where("metrics_revenue >= ?", *c.MinRevenue)
	}

	var candidates []models.Startup
	if err := query.Find(&candidates).Error; err != nil {
		return nil, err
	}

	matched := make([]models.StartupView, 0)
	for i := range candidates {
		if thesis.Matches(&candidates[i]) {
			matched = append(matched, models.NewStartupView(candidates[i]))
		}
	}

	total := int64(len(matched))
	start := page.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + page.Limit
	if end > len(matched) {
		end = len(matched)
	}

	return &DealPage{
		Deals:      matched[start:end],
		Total:      total,
		Page:       page.Page,
		TotalPages: TotalPages(total, page.Limit),
	}, nil
}

// ThesisMatch ist eine These, die zu einem Deal passt.
type ThesisMatch struct {
	Thesis models.InvestorThesis `json:"thesis"`
}

// MatchingTheses liefert alle aktiven Thesen, die den Deal erfüllen.
func (t *ThesisService) MatchingTheses(startupID uint) ([]ThesisMatch, error) {
	var startup models.Startup
	if err := t.DB.First(&startup, startupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var theses []models.InvestorThesis
	if err := t.DB.Where("is_active = ?", true).Find(&theses).Error; err != nil {
		return nil, err
	}

	matches := make([]ThesisMatch, 0)
	for i := range theses {
		if theses[i].Matches(&startup) {
			matches = append(matches, ThesisMatch{Thesis: theses[i]})
		}
	}
	return matches, nil
}
