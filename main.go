package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dealflow/config"
	"dealflow/models"
	"dealflow/providers"
	"dealflow/providers/crunchbase"
	"dealflow/providers/dealroom"
	"dealflow/services"
	"dealflow/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	dealsCreatedCounter   prometheus.Counter
	scoresComputedCounter prometheus.Counter
	dealsSyncedCounter    *prometheus.CounterVec
)

func init() {
	dealsCreatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "deals_created_total",
			Help: "Total number of deals created via the API.",
		},
	)
	scoresComputedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scores_computed_total",
			Help: "Total number of scores computed by the ML service.",
		},
	)
	dealsSyncedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deals_synced_total",
			Help: "Total number of deals upserted from external sources.",
		},
		[]string{"provider"},
	)
	prometheus.MustRegister(dealsCreatedCounter, scoresComputedCounter, dealsSyncedCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

// writeServiceError übersetzt die Fehlertaxonomie der Services in HTTP-Codes.
func writeServiceError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Rule, "field": verr.Field})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConcurrency):
		c.JSON(http.StatusConflict, gin.H{"error": "concurrent write on the same deal, retry"})
	case errors.Is(err, services.ErrScoringUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scoring service unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
	}
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to deal database.")

	// Auto-Migration
	logging.Info("Running database auto-migration...")
	db.AutoMigrate(&models.Startup{}, &models.Founder{}, &models.InvestorThesis{},
		&models.Score{}, &models.Portfolio{})

	// Setup Providers
	enabledProviderNames := strings.Split(cfg.EnabledProviders, ",")
	var enabledProviders []providers.Provider
	for _, name := range enabledProviderNames {
		switch strings.TrimSpace(name) {
		case "dealroom":
			enabledProviders = append(enabledProviders, dealroom.NewFetcher(cfg, logging))
		case "crunchbase":
			enabledProviders = append(enabledProviders, crunchbase.NewFetcher(cfg, logging))
		default:
			logging.Warn("Unknown provider in config", zap.String("provider_name", name))
		}
	}
	if len(enabledProviders) == 0 {
		logging.Warn("No external providers enabled, sync endpoints are inactive.")
	} else {
		logging.Info("Active providers loaded", zap.Strings("providers", enabledProviderNames))
	}

	// Setup Services
	s3Client, err := storage.NewS3Client(cfg)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}
	dealService := services.NewDealService(db, logging)
	founderService := services.NewFounderService(db, logging)
	thesisService := services.NewThesisService(db, logging)
	mlClient := services.NewMLClient(cfg, logging)
	scoreService := services.NewScoreService(db, mlClient, logging)
	jobService := services.NewJobService(db, scoreService, logging)
	portfolioService := services.NewPortfolioService(db, logging)
	exportService := services.NewExportService(cfg, db, s3Client, logging, dealService)
	syncService := services.NewSyncService(cfg, db, logging, enabledProviders)
	syncService.OnSynced = func(provider string) {
		dealsSyncedCounter.WithLabelValues(provider).Inc()
	}

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Routes
	setupDealRoutes(router, dealService, scoreService, exportService, logging)
	setupFounderRoutes(router, founderService, logging)
	setupThesisRoutes(router, thesisService, logging)
	setupScoreRoutes(router, dealService, scoreService, jobService, logging)
	setupPortfolioRoutes(router, portfolioService, logging)
	setupSyncRoutes(router, syncService)

	// Setup Cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		logging.Info("Running scheduled sync job...")
		results, err := syncService.RunAll(context.Background())
		if err != nil {
			logging.Error("Cron job failed", zap.Error(err))
			return
		}
		total := 0
		for _, r := range results {
			total += r.Upserted
		}
		logging.Info("Cron job completed", zap.Int("deals_upserted", total))
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func setupDealRoutes(router *gin.Engine, deals *services.DealService, scores *services.ScoreService, export *services.ExportService, log *zap.Logger) {
	rg := router.Group("/deals")

	rg.POST("/", func(c *gin.Context) {
		var startup models.Startup
		if err := c.ShouldBindJSON(&startup); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if err := deals.Create(&startup); err != nil {
			writeServiceError(c, err)
			return
		}
		dealsCreatedCounter.Inc()
		c.JSON(http.StatusCreated, models.NewStartupView(startup))
	})

	rg.GET("/", func(c *gin.Context) {
		var params services.DealSearchParams
		if err := c.ShouldBindQuery(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
			return
		}
		page, err := deals.Search(params)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	})

	rg.GET("/stats", func(c *gin.Context) {
		stats, err := deals.Statistics()
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	rg.GET("/top", func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		ranked, err := deals.TopRanked(limit)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, ranked)
	})

	rg.POST("/bulk", func(c *gin.Context) {
		var payload []models.Startup
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if len(payload) == 0 || len(payload) > services.MaxBulkImport {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Bulk import accepts 1-100 deals per request"})
			return
		}
		result := deals.BulkImport(payload)
		dealsCreatedCounter.Add(float64(result.Created))
		c.JSON(http.StatusOK, result)
	})

	rg.POST("/export", func(c *gin.Context) {
		var params services.DealSearchParams
		if err := c.ShouldBindJSON(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		link, err := export.ExportCSV(params)
		if err != nil {
			log.Error("CSV export failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"link": link})
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		startup, err := deals.Get(id)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		var latest *models.ScoreView
		if view, err := scores.Latest(id); err == nil {
			latest = view
		} else if !errors.Is(err, services.ErrNotFound) {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"deal":         models.NewStartupView(*startup),
			"latest_score": latest,
		})
	})

	rg.PUT("/:id", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		startup, err := deals.Get(id)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		if err := c.ShouldBindJSON(startup); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		startup.ID = id
		if err := deals.Update(startup); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.NewStartupView(*startup))
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		if err := deals.Delete(id); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "deal deleted"})
	})

	rg.POST("/:id/notes", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		var req struct {
			UserID  uint   `json:"user_id"`
			Content string `json:"content" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'content' field is required."})
			return
		}
		startup, err := deals.AddNote(id, req.UserID, req.Content)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.NewStartupView(*startup))
	})

	rg.GET("/:id/similar", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		similar, err := deals.Similar(id, limit)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, similar)
	})
}

func setupFounderRoutes(router *gin.Engine, founders *services.FounderService, log *zap.Logger) {
	rg := router.Group("/founders")

	rg.POST("/", func(c *gin.Context) {
		var founder models.Founder
		if err := c.ShouldBindJSON(&founder); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if err := founders.Create(&founder); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, founder)
	})

	rg.GET("/", func(c *gin.Context) {
		startupID, err := strconv.ParseUint(c.Query("startup_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "startup_id query parameter is required"})
			return
		}
		views, err := founders.ListByStartup(uint(startupID))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, views)
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		view, err := founders.Get(id)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	})

	rg.PUT("/:id", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		view, err := founders.Get(id)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		founder := view.Founder
		if err := c.ShouldBindJSON(&founder); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		founder.ID = id
		if err := founders.Update(&founder); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, founder)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		if err := founders.Delete(id); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "founder deleted"})
	})
}

// thesisPayload nimmt das Embedding write-only entgegen: das Feld am Modell
// ist mit json:"-" aus allen Antworten ausgeblendet, hier wird es beim
// Schreiben trotzdem angenommen.
type thesisPayload struct {
	models.InvestorThesis
	Embedding []float64 `json:"embedding"`
}

func (p *thesisPayload) thesis() models.InvestorThesis {
	t := p.InvestorThesis
	t.Embedding = p.Embedding
	return t
}

func setupThesisRoutes(router *gin.Engine, theses *services.ThesisService, log *zap.Logger) {
	rg := router.Group("/theses")

	rg.POST("/", func(c *gin.Context) {
		var payload thesisPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		thesis := payload.thesis()
		if err := theses.Create(&thesis); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, thesis)
	})

	rg.GET("/", func(c *gin.Context) {
		investorID, err := strconv.ParseUint(c.Query("investor_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "investor_id query parameter is required"})
			return
		}
		list, err := theses.ListByInvestor(uint(investorID))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		if c.Query("include_inactive") != "true" {
			active := list[:0]
			for _, t := range list {
				if t.IsActive {
					active = append(active, t)
				}
			}
			list = active
		}
		c.JSON(http.StatusOK, list)
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		thesis, err := theses.Get(id)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, thesis)
	})

	rg.PUT("/:id", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		var payload thesisPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		thesis := payload.thesis()
		updated, err := theses.Update(id, &thesis)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	})

	rg.POST("/:id/deactivate", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		if err := theses.Deactivate(id); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "thesis deactivated"})
	})

	rg.GET("/:id/matches", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		var page services.PageRequest
		if err := c.ShouldBindQuery(&page); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
			return
		}
		matches, err := theses.MatchingDeals(id, page)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, matches)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		if err := theses.Delete(id); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "thesis deleted"})
	})

	// Gegenrichtung: welche aktiven Thesen passen zu einem Deal.
	router.GET("/deals/:id/matching-theses", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		matches, err := theses.MatchingTheses(id)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, matches)
	})
}

func setupScoreRoutes(router *gin.Engine, deals *services.DealService, scores *services.ScoreService, jobs *services.JobService, log *zap.Logger) {
	router.POST("/deals/:id/score", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		var req struct {
			UserID  *uint                  `json:"user_id"`
			Weights *models.ScoringWeights `json:"weights"`
		}
		if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		startup, err := deals.Get(id)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		score, err := scores.RequestScore(c.Request.Context(), startup, req.UserID, req.Weights)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		scoresComputedCounter.Inc()
		c.JSON(http.StatusCreated, models.NewScoreView(*score))
	})

	router.GET("/deals/:id/scores", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		history, err := scores.History(id, limit)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, history)
	})

	router.GET("/deals/:id/scores/latest", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		latest, err := scores.Latest(id)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, latest)
	})

	rg := router.Group("/scores")

	rg.POST("/batch", func(c *gin.Context) {
		var req struct {
			DealIDs []uint                 `json:"deal_ids" binding:"required"`
			UserID  *uint                  `json:"user_id"`
			Weights *models.ScoringWeights `json:"weights"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || len(req.DealIDs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'deal_ids' field is required."})
			return
		}
		job := jobs.EnqueueBatchScore(req.DealIDs, req.UserID, req.Weights)
		c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID, "state": job.State})
	})

	rg.GET("/jobs/:id", func(c *gin.Context) {
		job, err := jobs.GetJob(c.Param("id"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, job)
	})

	rg.POST("/compare", func(c *gin.Context) {
		var req struct {
			DealIDs []uint `json:"deal_ids" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || len(req.DealIDs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'deal_ids' field is required."})
			return
		}
		cmp, err := scores.Compare(req.DealIDs)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, cmp)
	})
}

func setupPortfolioRoutes(router *gin.Engine, portfolios *services.PortfolioService, log *zap.Logger) {
	rg := router.Group("/portfolios")

	rg.POST("/", func(c *gin.Context) {
		var position models.Portfolio
		if err := c.ShouldBindJSON(&position); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if err := portfolios.Create(&position); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, position)
	})

	rg.GET("/", func(c *gin.Context) {
		investorID, err := strconv.ParseUint(c.Query("investor_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "investor_id query parameter is required"})
			return
		}
		var page services.PageRequest
		if err := c.ShouldBindQuery(&page); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
			return
		}
		result, err := portfolios.ListByInvestor(uint(investorID), c.Query("status"), page)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})

	rg.GET("/analytics", func(c *gin.Context) {
		investorID, err := strconv.ParseUint(c.Query("investor_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "investor_id query parameter is required"})
			return
		}
		analytics, err := portfolios.Analytics(uint(investorID))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, analytics)
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		position, err := portfolios.Get(id)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, position)
	})

	rg.PUT("/:id/metrics", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		var metrics models.PerformanceMetrics
		if err := c.ShouldBindJSON(&metrics); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		position, err := portfolios.UpdateMetrics(id, metrics)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, position)
	})

	rg.POST("/:id/exit", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		var details models.ExitDetails
		if err := c.ShouldBindJSON(&details); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		position, err := portfolios.Exit(id, details)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, position)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		if err := portfolios.Delete(id); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "portfolio position deleted"})
	})
}

func setupSyncRoutes(router *gin.Engine, sync *services.SyncService) {
	rg := router.Group("/sync")

	rg.POST("/all", func(c *gin.Context) {
		go func() {
			results, err := sync.RunAll(context.Background())
			if err != nil {
				sync.Logger.Error("Async sync failed", zap.Error(err))
				return
			}
			total := 0
			for _, r := range results {
				total += r.Upserted
			}
			sync.Logger.Info("Async sync completed", zap.Int("deals_upserted", total))
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Sync for all providers triggered."})
	})

	rg.POST("/:provider", func(c *gin.Context) {
		name := c.Param("provider")
		var target providers.Provider
		for _, p := range sync.Providers {
			if p.Name() == name {
				target = p
				break
			}
		}
		if target == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "provider not found"})
			return
		}
		go func() {
			result, err := sync.RunProvider(context.Background(), target)
			if err != nil {
				sync.Logger.Error("Async provider sync failed", zap.String("provider", name), zap.Error(err))
				return
			}
			sync.Logger.Info("Async provider sync completed",
				zap.String("provider", name), zap.Int("deals_upserted", result.Upserted))
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Sync for provider " + name + " triggered."})
	})
}
