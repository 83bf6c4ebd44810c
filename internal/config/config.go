package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	MongoDB   MongoDBConfig
	Catalog   CatalogConfig
	Recommend RecommendConfig
	Optimizer OptimizerConfig
	Sheets    SheetsConfig
	Supplier  SupplierConfig
	Schedule  ScheduleConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig selects the minimum log level.
type LogConfig struct {
	Level string
}

// MongoDBConfig holds settings for MongoDB. An empty URI keeps all state in memory.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether a MongoDB mirror is configured.
func (c MongoDBConfig) Enabled() bool { return c.URI != "" }

// CatalogConfig controls catalog bootstrap.
type CatalogConfig struct {
	SeedSample bool
}

// RecommendConfig tunes the recommendation service.
type RecommendConfig struct {
	DefaultLimit int
	Workers      int
}

// OptimizerConfig holds the default substitution policy knobs.
type OptimizerConfig struct {
	MinRetainedFraction decimal.Decimal
	Precision           int32
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the spreadsheet export is configured.
func (c SheetsConfig) Enabled() bool { return c.CredentialsPath != "" && c.SpreadsheetID != "" }

// SupplierConfig points at the supplier price feed.
type SupplierConfig struct {
	FeedURL string
	Token   string
}

// Enabled reports whether a supplier feed is configured.
func (c SupplierConfig) Enabled() bool { return c.FeedURL != "" }

// ScheduleConfig holds scheduler-related settings.
type ScheduleConfig struct {
	PriceSyncCron     string
	CatalogExportCron string
	Timezone          string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	seed, err := getenvBool("SEED_SAMPLE_CATALOG", true)
	if err != nil {
		return nil, err
	}
	limit, err := getenvInt("RECOMMEND_DEFAULT_LIMIT", 10)
	if err != nil {
		return nil, err
	}
	workers, err := getenvInt("RECOMMEND_WORKERS", 0)
	if err != nil {
		return nil, err
	}
	precision, err := getenvInt("OPTIMIZER_PRECISION", 2)
	if err != nil {
		return nil, err
	}
	fraction, err := decimal.NewFromString(getenvWithDefault("OPTIMIZER_MIN_RETAINED_FRACTION", "0.5"))
	if err != nil {
		return nil, fmt.Errorf("OPTIMIZER_MIN_RETAINED_FRACTION: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "buildmat"),
		},
		Catalog: CatalogConfig{
			SeedSample: seed,
		},
		Recommend: RecommendConfig{
			DefaultLimit: limit,
			Workers:      workers,
		},
		Optimizer: OptimizerConfig{
			MinRetainedFraction: fraction,
			Precision:           int32(precision),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_EXPORT_ID"),
		},
		Supplier: SupplierConfig{
			FeedURL: os.Getenv("SUPPLIER_FEED_URL"),
			Token:   os.Getenv("SUPPLIER_FEED_TOKEN"),
		},
		Schedule: ScheduleConfig{
			PriceSyncCron:     getenvWithDefault("PRICE_SYNC_CRON", "0 6 * * *"),
			CatalogExportCron: getenvWithDefault("CATALOG_EXPORT_CRON", "0 20 * * 5"),
			Timezone:          getenvWithDefault("TIMEZONE", "UTC"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that configuration fields are populated and consistent.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.Enabled() && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided when MONGODB_URI is set")
	}

	if c.Recommend.DefaultLimit <= 0 {
		return errors.New("RECOMMEND_DEFAULT_LIMIT must be positive")
	}
	if c.Recommend.Workers < 0 {
		return errors.New("RECOMMEND_WORKERS must not be negative")
	}

	if c.Optimizer.MinRetainedFraction.IsNegative() || c.Optimizer.MinRetainedFraction.GreaterThan(decimal.NewFromInt(1)) {
		return errors.New("OPTIMIZER_MIN_RETAINED_FRACTION must be within [0,1]")
	}
	if c.Optimizer.Precision < 0 {
		return errors.New("OPTIMIZER_PRECISION must not be negative")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_EXPORT_ID must be provided together")
	}

	if c.Schedule.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}
	for key, spec := range map[string]string{
		"PRICE_SYNC_CRON":     c.Schedule.PriceSyncCron,
		"CATALOG_EXPORT_CRON": c.Schedule.CatalogExportCron,
	} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("%s is invalid: %w", key, err)
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}
