package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dealflow/models"
)

// PortfolioService verwaltet Beteiligungen und deren Auswertung.
type PortfolioService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewPortfolioService erstellt eine neue Instanz des PortfolioService.
func NewPortfolioService(db *gorm.DB, logger *zap.Logger) *PortfolioService {
	return &PortfolioService{DB: db, Logger: logger}
}

// Create validiert und persistiert eine neue Position. Die zweite Position
// desselben Investors im selben Startup wird vom Unique-Index abgefangen.
func (p *PortfolioService) Create(position *models.Portfolio) error {
	if err := position.Validate(); err != nil {
		return err
	}
	var startup models.Startup
	if err := p.DB.First(&startup, position.StartupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := p.DB.Create(position).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return err
	}
	p.Logger.Info("Portfolio position created",
		zap.Uint("portfolio_id", position.ID),
		zap.Uint("startup_id", position.StartupID),
		zap.Uint("investor_id", position.InvestorID))
	return nil
}

// Get liefert eine Position per ID.
func (p *PortfolioService) Get(id uint) (*models.Portfolio, error) {
	var position models.Portfolio
	if err := p.DB.First(&position, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &position, nil
}

// PortfolioPage ist eine Seite von Positionen eines Investors.
type PortfolioPage struct {
	Positions  []models.Portfolio `json:"positions"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	TotalPages int                `json:"total_pages"`
}

// ListByInvestor liefert die Positionen eines Investors, optional nach Status
// gefiltert, neueste Investments zuerst.
func (p *PortfolioService) ListByInvestor(investorID uint, status string, page PageRequest) (*PortfolioPage, error) {
	page.Clamp()

	query := p.DB.Model(&models.Portfolio{}).Where("investor_id = ?", investorID)
	if status != "" {
		query = query.Where("current_status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var positions []models.Portfolio
	err := query.Order("investment_investment_date desc").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&positions).Error
	if err != nil {
		return nil, err
	}

	return &PortfolioPage{
		Positions:  positions,
		Total:      total,
		Page:       page.Page,
		TotalPages: TotalPages(total, page.Limit),
	}, nil
}

// UpdateMetrics übernimmt neu gemeldete Kennzahlen und stempelt das
// Update-Datum.
func (p *PortfolioService) UpdateMetrics(id uint, metrics models.PerformanceMetrics) (*models.Portfolio, error) {
	position, err := p.Get(id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	metrics.LastUpdateDate = &now
	position.PerformanceMetrics = metrics
	if err := p.DB.Save(position).Error; err != nil {
		return nil, err
	}
	return position, nil
}

// AddKPIEntry hängt einen Messpunkt an die KPI-Historie an.
func (p *PortfolioService) AddKPIEntry(id uint, entry models.KPIEntry) (*models.Portfolio, error) {
	position, err := p.Get(id)
	if err != nil {
		return nil, err
	}
	if entry.MetricName == "" {
		return nil, &models.ValidationError{Field: "kpi_tracking.metric_name", Rule: "Metric name is required"}
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	position.KPITracking = append(position.KPITracking, entry)
	if err := p.DB.Save(position).Error; err != nil {
		return nil, err
	}
	return position, nil
}

// Exit überführt eine Position in den Zustand exited und setzt die
// Exit-Details. Eine bereits beendete Position bleibt unverändert.
func (p *PortfolioService) Exit(id uint, details models.ExitDetails) (*models.Portfolio, error) {
	position, err := p.Get(id)
	if err != nil {
		return nil, err
	}
	if position.CurrentStatus.Status == "exited" {
		return nil, ErrConflict
	}

	if details.ExitDate.IsZero() {
		details.ExitDate = time.Now().UTC()
	}
	if details.Multiple == 0 && position.InvestmentDetails.AmountInvested > 0 {
		details.Multiple = details.Proceeds / position.InvestmentDetails.AmountInvested
	}

	position.CurrentStatus.Status = "exited"
	position.ExitDetails = &details
	if err := position.Validate(); err != nil {
		return nil, err
	}
	if err := p.DB.Save(position).Error; err != nil {
		return nil, err
	}
	p.Logger.Info("Portfolio position exited",
		zap.Uint("portfolio_id", position.ID),
		zap.String("exit_type", details.ExitType),
		zap.Float64("multiple", details.Multiple))
	return position, nil
}

// Delete entfernt eine Position endgültig.
func (p *PortfolioService) Delete(id uint) error {
	res := p.DB.Delete(&models.Portfolio{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PortfolioAnalytics sind die Rollups über alle Positionen eines Investors.
// Geldbeträge werden dezimal aufsummiert, nicht in float64.
type PortfolioAnalytics struct {
	TotalPositions    int64            `json:"total_positions"`
	ActivePositions   int64            `json:"active_positions"`
	ExitedPositions   int64            `json:"exited_positions"`
	TotalInvested     decimal.Decimal  `json:"total_invested"`
	TotalProceeds     decimal.Decimal  `json:"total_proceeds"`
	TotalCurrentValue decimal.Decimal  `json:"total_current_value"`
	AverageMultiple   float64          `json:"average_multiple"`
	PositionsByStatus map[string]int64 `json:"positions_by_status"`
	PositionsByRisk   map[string]int64 `json:"positions_by_risk"`
}

// Analytics berechnet die Rollups eines Investors über alle seine Positionen.
func (p *PortfolioService) Analytics(investorID uint) (*PortfolioAnalytics, error) {
	var positions []models.Portfolio
	err := p.DB.Where("investor_id = ?", investorID).Find(&positions).Error
	if err != nil {
		return nil, err
	}

	a := &PortfolioAnalytics{
		TotalPositions:    int64(len(positions)),
		TotalInvested:     decimal.Zero,
		TotalProceeds:     decimal.Zero,
		TotalCurrentValue: decimal.Zero,
		PositionsByStatus: map[string]int64{},
		PositionsByRisk:   map[string]int64{},
	}

	var multipleSum float64
	var multipleCount int
	for i := range positions {
		pos := &positions[i]
		a.PositionsByStatus[pos.CurrentStatus.Status]++
		a.PositionsByRisk[pos.RiskAssessment.RiskLevel]++
		a.TotalInvested = a.TotalInvested.Add(decimal.NewFromFloat(pos.InvestmentDetails.AmountInvested))

		switch pos.CurrentStatus.Status {
		case "exited":
			a.ExitedPositions++
			if pos.ExitDetails != nil {
				a.TotalProceeds = a.TotalProceeds.Add(decimal.NewFromFloat(pos.ExitDetails.Proceeds))
				multipleSum += pos.ExitDetails.Multiple
				multipleCount++
			}
		case "active":
			a.ActivePositions++
			if pos.CurrentStatus.CurrentValuation != nil {
				value := *pos.CurrentStatus.CurrentValuation * pos.InvestmentDetails.OwnershipPercentage / 100
				a.TotalCurrentValue = a.TotalCurrentValue.Add(decimal.NewFromFloat(value))
			}
			if pos.CurrentStatus.UnrealizedMultiple != nil {
				multipleSum += *pos.CurrentStatus.UnrealizedMultiple
				multipleCount++
			}
		}
	}
	if multipleCount > 0 {
		a.AverageMultiple = multipleSum / float64(multipleCount)
	}
	return a, nil
}
