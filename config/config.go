package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Externer ML-Scoring-Service (opaque Abhängigkeit)
	MLServiceURL     string `envconfig:"ML_SERVICE_URL" default:"http://localhost:8000"`
	MLRequestTimeout int    `envconfig:"ML_REQUEST_TIMEOUT_SECONDS" default:"15"`

	// Externe Deal-Quellen
	DealroomBaseURL   string `envconfig:"DEALROOM_BASE_URL" default:"https://api.dealroom.co/api"`
	DealroomAPIKey    string `envconfig:"DEALROOM_API_KEY"`
	CrunchbaseBaseURL string `envconfig:"CRUNCHBASE_BASE_URL" default:"https://api.crunchbase.com/api/v4"`
	CrunchbaseAPIKey  string `envconfig:"CRUNCHBASE_API_KEY"`
	SyncPageSize      int    `envconfig:"SYNC_PAGE_SIZE" default:"100"`
	EnabledProviders  string `envconfig:"ENABLED_PROVIDERS" default:"dealroom,crunchbase"`

	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 2 * * *"`

	ExportS3Key    string `envconfig:"EXPORT_S3_KEY" required:"true"`
	ExportS3Secret string `envconfig:"EXPORT_S3_SECRET" required:"true"`
	ExportS3URL    string `envconfig:"EXPORT_S3_URL" required:"true"`
	ExportS3Region string `envconfig:"EXPORT_S3_REGION" required:"true"`
	ExportS3Bucket string `envconfig:"EXPORT_S3_BUCKET" required:"true"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
