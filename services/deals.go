package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dealflow/models"
)

// DealService kapselt alle Schreib- und Suchpfade für Deals.
type DealService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewDealService erstellt eine neue Instanz des DealService.
func NewDealService(db *gorm.DB, logger *zap.Logger) *DealService {
	return &DealService{DB: db, Logger: logger}
}

// DealSearchParams sind die Filter der Listen-/Suchendpunkte.
type DealSearchParams struct {
	Query         string   `json:"query" form:"query"`
	Sectors       []string `json:"sectors" form:"sector"`
	Stages        []string `json:"stages" form:"stage"`
	Status        string   `json:"status" form:"status"`
	Countries     []string `json:"countries" form:"country"`
	Technologies  []string `json:"technologies" form:"technology"`
	MinRevenue    *float64 `json:"min_revenue" form:"min_revenue"`
	MaxRevenue    *float64 `json:"max_revenue" form:"max_revenue"`
	MinGrowthRate *float64 `json:"min_growth_rate" form:"min_growth_rate"`
	PageRequest
}

// DealPage ist das paginierte Suchergebnis.
type DealPage struct {
	Deals      []models.StartupView `json:"deals"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"total_pages"`
}

// Create validiert und persistiert einen neuen Deal. Das Duplikat aus
// derselben externen Quelle wird vom Unique-Index abgefangen, nicht von
// einem check-then-insert.
func (d *DealService) Create(startup *models.Startup) error {
	if err := startup.Validate(); err != nil {
		return err
	}
	if err := d.DB.Create(startup).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: deal from %s with external id %s already exists",
				ErrConflict, startup.Source, startup.ExternalID)
		}
		d.Logger.Error("Failed to create deal", zap.String("name", startup.Name), zap.Error(err))
		return err
	}
	return nil
}

// Get lädt einen Deal per ID.
func (d *DealService) Get(id uint) (*models.Startup, error) {
	var startup models.Startup
	if err := d.DB.First(&startup, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &startup, nil
}

// Update validiert den geänderten Deal und speichert ihn.
func (d *DealService) Update(startup *models.Startup) error {
	if err := startup.Validate(); err != nil {
		return err
	}
	if err := d.DB.Save(startup).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: deal from %s with external id %s already exists",
				ErrConflict, startup.Source, startup.ExternalID)
		}
		return err
	}
	return nil
}

// Delete entfernt einen Deal hart. Der normale Lebenszyklus läuft über den
// Status (archived/rejected), der Endpunkt existiert aber an der API-Grenze.
func (d *DealService) Delete(id uint) error {
	res := d.DB.Delete(&models.Startup{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddNote hängt einen Kommentar an einen Deal an.
func (d *DealService) AddNote(dealID, userID uint, content string) (*models.Startup, error) {
	if content == "" || len(content) > 5000 {
		return nil, &models.ValidationError{Field: "content", Rule: "Note content is required and cannot exceed 5000 characters"}
	}
	startup, err := d.Get(dealID)
	if err != nil {
		return nil, err
	}
	startup.Notes = append(startup.Notes, models.Note{
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	if err := d.DB.Save(startup).Error; err != nil {
		return nil, err
	}
	return startup, nil
}

// Search filtert und paginiert Deals. Eine Seite jenseits des Bereichs
// liefert eine leere Liste.
func (d *DealService) Search(params DealSearchParams) (*DealPage, error) {
	params.Clamp()

	query := d.DB.Model(&models.Startup{})

	if params.Query != "" {
		q := "%" + strings.ToLower(params.Query) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", q, q)
	}
	if len(params.Sectors) > 0 {
		cond, args := jsonArrayContainsAny("sector", params.Sectors)
		query = query.Where(cond, args...)
	}
	if len(params.Stages) > 0 {
		query = query.Where("stage IN ?", params.Stages)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if len(params.Countries) > 0 {
		query = query.Where("location_country IN ?", params.Countries)
	}
	if len(params.Technologies) > 0 {
		cond, args := jsonArrayContainsAny("technology_stack", params.Technologies)
		query = query.Where(cond, args...)
	}
	if params.MinRevenue != nil {
		query = query.Where("metrics_revenue >= ?", *params.MinRevenue)
	}
	if params.MaxRevenue != nil {
		query = query.Where("metrics_revenue <= ?", *params.MaxRevenue)
	}
	if params.MinGrowthRate != nil {
		query = query.Where("metrics_growth_rate_yoy >= ?", *params.MinGrowthRate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		d.Logger.Error("Deal count failed", zap.Error(err))
		return nil, err
	}

	var startups []models.Startup
	if err := query.Order("created_at desc").
		Offset(params.Offset()).Limit(params.Limit).
		Find(&startups).Error; err != nil {
		d.Logger.Error("Deal search failed", zap.Error(err))
		return nil, err
	}

	views := make([]models.StartupView, 0, len(startups))
	for _, s := range startups {
		views = append(views, models.NewStartupView(s))
	}

	return &DealPage{
		Deals:      views,
		Total:      total,
		Page:       params.Page,
		TotalPages: TotalPages(total, params.Limit),
	}, nil
}

// jsonArrayContainsAny baut eine OR-Bedingung über das serialisierte
// JSON-Array. Die Werte stammen aus geschlossenen Enums bzw. werden als
// JSON-String-Literal eingebettet, daher reicht ein LIKE auf den Spaltentext.
func jsonArrayContainsAny(column string, values []string) (string, []interface{}) {
	conditions := make([]string, 0, len(values))
	args := make([]interface{}, 0, len(values))
	for _, v := range values {
		conditions = append(conditions, column+" LIKE ?")
		args = append(args, `%"`+v+`"%`)
	}
	return "(" + strings.Join(conditions, " OR ") + ")", args
}

// BulkImportResult fasst einen Batch-Import zusammen. Fehlerhafte Payloads
// brechen die Geschwister nicht ab (partielle Semantik, siehe DESIGN.md).
type BulkImportResult struct {
	Created int               `json:"created"`
	Failed  int               `json:"failed"`
	Errors  []BulkImportError `json:"errors"`
}

// BulkImportError benennt die fehlgeschlagene Position im Batch.
type BulkImportError struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// MaxBulkImport ist die Obergrenze an Payloads pro Batch-Request.
const MaxBulkImport = 100

// BulkImport legt bis zu MaxBulkImport Deals unabhängig voneinander an.
func (d *DealService) BulkImport(deals []models.Startup) *BulkImportResult {
	result := &BulkImportResult{Errors: []BulkImportError{}}
	for i := range deals {
		if err := d.Create(&deals[i]); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, BulkImportError{
				Index: i,
				Name:  deals[i].Name,
				Error: err.Error(),
			})
			continue
		}
		result.Created++
	}
	return result
}

// DealStatistics sind die Dashboard-Rollups über alle Deals.
type DealStatistics struct {
	Total         int64            `json:"total"`
	ByStage       map[string]int64 `json:"by_stage"`
	ByStatus      map[string]int64 `json:"by_status"`
	BySector      map[string]int64 `json:"by_sector"`
	ByCountry     map[string]int64 `json:"by_country"`
	AvgRevenue    float64          `json:"avg_revenue"`
	AvgGrowthRate float64          `json:"avg_growth_rate"`
	AvgTeamSize   float64          `json:"avg_team_size"`
}

// Statistics berechnet Zählungen nach Stage/Status/Land und Durchschnitte.
func (d *DealService) Statistics() (*DealStatistics, error) {
	stats := &DealStatistics{
		ByStage:   map[string]int64{},
		ByStatus:  map[string]int64{},
		BySector:  map[string]int64{},
		ByCountry: map[string]int64{},
	}

	if err := d.DB.Model(&models.Startup{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	type bucket struct {
		Key   string
		Count int64
	}
	groupInto := func(column string, dest map[string]int64) error {
		var rows []bucket
		err := d.DB.Model(&models.Startup{}).
			Select(column + " as key, count(*) as count").
			Group(column).Scan(&rows).Error
		if err != nil {
			return err
		}
		for _, r := range rows {
			dest[r.Key] = r.Count
		}
		return nil
	}
	if err := groupInto("stage", stats.ByStage); err != nil {
		return nil, err
	}
	if err := groupInto("status", stats.ByStatus); err != nil {
		return nil, err
	}
	if err := groupInto("location_country", stats.ByCountry); err != nil {
		return nil, err
	}

	// Sektoren stecken in einem JSON-Array, die Zählung läuft im Speicher.
	var sectorRows []models.Startup
	if err := d.DB.Model(&models.Startup{}).Select("sector").Find(&sectorRows).Error; err != nil {
		return nil, err
	}
	for i := range sectorRows {
		for _, sec := range sectorRows[i].Sector {
			stats.BySector[sec]++
		}
	}

	type averages struct {
		AvgRevenue    float64
		AvgGrowthRate float64
		AvgTeamSize   float64
	}
	var avg averages
	err := d.DB.Model(&models.Startup{}).
		Select("COALESCE(AVG(metrics_revenue),0) as avg_revenue, COALESCE(AVG(metrics_growth_rate_yoy),0) as avg_growth_rate, COALESCE(AVG(team_size),0) as avg_team_size").
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	stats.AvgRevenue = avg.AvgRevenue
	stats.AvgGrowthRate = avg.AvgGrowthRate
	stats.AvgTeamSize = avg.AvgTeamSize
	return stats, nil
}

// Similar liefert aktive Deals mit gleichem Sektor, Stage und Land.
func (d *DealService) Similar(dealID uint, limit int) ([]models.StartupView, error) {
	startup, err := d.Get(dealID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	query := d.DB.Model(&models.Startup{}).
		Where("id <> ?", startup.ID).
		Where("stage = ?", startup.Stage).
		Where("location_country = ?", startup.Location.Country).
		Where("status = ?", "active")
	if len(startup.Sector) > 0 {
		cond, args := jsonArrayContainsAny("sector", startup.Sector)
		query = query.Where(cond, args...)
	}

	var similar []models.Startup
	if err := query.Limit(limit).Find(&similar).Error; err != nil {
		return nil, err
	}
	views := make([]models.StartupView, 0, len(similar))
	for _, s := range similar {
		views = append(views, models.NewStartupView(s))
	}
	return views, nil
}

// RankedDeal ist ein Deal mit seinem aktuellsten Score.
type RankedDeal struct {
	Deal  models.StartupView `json:"deal"`
	Score models.ScoreView   `json:"score"`
}

// TopRanked liefert die Deals mit den höchsten aktuellen Fit-Scores.
func (d *DealService) TopRanked(limit int) ([]RankedDeal, error) {
	if limit <= 0 {
		limit = 10
	}
	var scores []models.Score
	err := d.DB.Where("is_latest = ?", true).
		Order("investment_fit_score desc").
		Limit(limit).
		Find(&scores).Error
	if err != nil {
		return nil, err
	}

	ranked := make([]RankedDeal, 0, len(scores))
	for _, sc := range scores {
		var startup models.Startup
		if err := d.DB.First(&startup, sc.StartupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		ranked = append(ranked, RankedDeal{
			Deal:  models.NewStartupView(startup),
			Score: models.NewScoreView(sc),
		})
	}
	return ranked, nil
}
