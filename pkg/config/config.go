package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/valuehunter/hunter/internal/contracts"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production, test

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Data sources
	Yahoo    YahooConfig
	Universe UniverseConfig

	// Pipeline
	Thresholds contracts.Thresholds
	Output     OutputConfig
	Timezone   string // business-date timezone for as_of_date
	Workers    int    // fundamentals fetch workers
	Schedule   string // cron spec (with seconds) for the daily run

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration. Persistence is
// optional: with Enabled false the pipeline only writes CSV.
type DatabaseConfig struct {
	URL     string
	Enabled bool

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds the snapshot cache configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	TTL      time.Duration // fundamentals snapshot TTL
}

// YahooConfig holds the fundamentals source configuration.
type YahooConfig struct {
	BaseURL    string
	UserAgent  string
	RatePerSec float64 // request rate limit
	Burst      int
}

// UniverseConfig holds ticker universe acquisition settings.
type UniverseConfig struct {
	UseWikipedia bool
	WikipediaURL string
	FallbackFile string
}

// OutputConfig holds CSV output settings.
type OutputConfig struct {
	Dir            string
	Basename       string
	WriteDatedCopy bool
}

// Load reads configuration from environment variables, after loading
// a .env file when one is present. Only this function calls os.Getenv.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8088"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Enabled:         getEnvAsBool("DB_ENABLED", false),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			TTL:      getEnvAsDuration("REDIS_SNAPSHOT_TTL", "6h"),
		},

		Yahoo: YahooConfig{
			BaseURL:    getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			UserAgent:  getEnv("YAHOO_USER_AGENT", "Mozilla/5.0 (compatible; value-hunter/1.0)"),
			RatePerSec: getEnvAsFloat("YAHOO_RATE_PER_SEC", 4.0),
			Burst:      getEnvAsInt("YAHOO_RATE_BURST", 2),
		},

		Universe: UniverseConfig{
			UseWikipedia: getEnvAsBool("USE_WIKIPEDIA_TICKERS", true),
			WikipediaURL: getEnv("WIKIPEDIA_URL", "https://en.wikipedia.org/wiki/Nasdaq-100"),
			FallbackFile: getEnv("TICKER_FALLBACK_FILE", "data/nasdaq100_tickers.csv"),
		},

		Thresholds: contracts.Thresholds{
			Undervalued:       getEnvAsFloat("UNDERVALUED_THRESHOLD", 0.90),
			Overvalued:        getEnvAsFloat("OVERVALUED_THRESHOLD", 1.10),
			PEGMax:            getEnvAsFloat("PEG_MAX", 1.0),
			PESectorMaxMult:   getEnvAsFloat("PE_SECTOR_MAX_MULT", 1.0),
			MarginOfSafetyMin: getEnvAsFloat("MARGIN_OF_SAFETY_MIN", 0.0),
		},

		Output: OutputConfig{
			Dir:            getEnv("OUTPUT_DIR", "data"),
			Basename:       getEnv("OUTPUT_BASENAME", "nasdaq100_latest.csv"),
			WriteDatedCopy: getEnvAsBool("WRITE_DATED_COPY", true),
		},

		Timezone: getEnv("PIPELINE_TIMEZONE", "America/New_York"),
		Workers:  getEnvAsInt("FETCH_WORKERS", 4),
		Schedule: getEnv("VALUATION_SCHEDULE", "0 30 17 * * MON-FRI"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.Enabled && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when DB_ENABLED is true")
	}

	switch c.Env {
	case "development", "staging", "production", "test":
	default:
		return fmt.Errorf("ENV must be one of: development, staging, production, test")
	}

	if c.Thresholds.Undervalued <= 0 || c.Thresholds.Overvalued <= 0 {
		return fmt.Errorf("valuation thresholds must be positive")
	}
	if c.Thresholds.Undervalued > c.Thresholds.Overvalued {
		return fmt.Errorf("UNDERVALUED_THRESHOLD must not exceed OVERVALUED_THRESHOLD")
	}

	if c.Workers <= 0 {
		return fmt.Errorf("FETCH_WORKERS must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"config/.env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
