package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dealflow/config"
	"dealflow/models"
	"dealflow/storage"
)

// ExportService schreibt gefilterte Deal-Listen als CSV in den Export-Bucket.
type ExportService struct {
	Config   *config.Config
	DB       *gorm.DB
	S3Client *s3.Client
	Logger   *zap.Logger
	Deals    *DealService
}

// NewExportService erstellt eine neue Instanz des ExportService.
func NewExportService(cfg *config.Config, db *gorm.DB, s3Client *s3.Client, logger *zap.Logger, deals *DealService) *ExportService {
	return &ExportService{Config: cfg, DB: db, S3Client: s3Client, Logger: logger, Deals: deals}
}

var csvHeader = []string{
	"id", "name", "short_pitch", "sectors", "stage", "status",
	"city", "country", "team_size", "founded_date", "website",
	"revenue", "growth_rate_yoy", "burn_rate", "runway_months",
	"total_funding", "latest_valuation", "source",
}

// ExportCSV sammelt alle Deals, die den Filtern entsprechen, flacht sie in
// Zeilen ab und lädt die Datei hoch. Zurück kommt der Download-Link.
func (e *ExportService) ExportCSV(params DealSearchParams) (string, error) {
	e.Logger.Info("Starte CSV-Export.")

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}

	params.Page = 1
	params.Limit = 100
	rows := 0
	for {
		page, err := e.Deals.Search(params)
		if err != nil {
			return "", err
		}
		for i := range page.Deals {
			if err := w.Write(csvRow(&page.Deals[i])); err != nil {
				return "", err
			}
			rows++
		}
		if params.Page >= page.TotalPages {
			break
		}
		params.Page++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	key := fmt.Sprintf("exports/deals-%s.csv", time.Now().UTC().Format("20060102-150405"))
	link, err := storage.UploadFile(e.S3Client, e.Config.ExportS3Bucket, key, buf.Bytes(), e.Config)
	if err != nil {
		e.Logger.Error("S3-Upload des Exports fehlgeschlagen", zap.Error(err))
		return "", err
	}

	e.Logger.Info("CSV-Export abgeschlossen", zap.Int("rows", rows), zap.String("key", key))
	return link, nil
}

// csvRow flacht einen Deal in eine CSV-Zeile ab.
func csvRow(v *models.StartupView) []string {
	latestValuation := ""
	if v.LatestValuation != nil {
		latestValuation = strconv.FormatFloat(*v.LatestValuation, 'f', -1, 64)
	}
	foundedDate := ""
	if !v.FoundedDate.IsZero() {
		foundedDate = v.FoundedDate.Format("2006-01-02")
	}
	return []string{
		strconv.FormatUint(uint64(v.ID), 10),
		v.Name,
		v.ShortPitch,
		strings.Join(v.Sector, ";"),
		v.Stage,
		v.Status,
		v.Location.City,
		v.Location.Country,
		strconv.Itoa(v.TeamSize),
		foundedDate,
		v.Website,
		strconv.FormatFloat(v.Metrics.Revenue, 'f', -1, 64),
		strconv.FormatFloat(v.Metrics.GrowthRateYoY, 'f', -1, 64),
		strconv.FormatFloat(v.Metrics.BurnRate, 'f', -1, 64),
		strconv.FormatFloat(v.Metrics.RunwayMonths, 'f', -1, 64),
		strconv.FormatFloat(v.TotalFunding, 'f', -1, 64),
		latestValuation,
		v.Source,
	}
}
