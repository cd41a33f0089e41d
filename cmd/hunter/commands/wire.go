package commands

import (
	"fmt"
	"time"

	"github.com/valuehunter/hunter/internal/external/yahoo"
	"github.com/valuehunter/hunter/internal/fundamentals"
	"github.com/valuehunter/hunter/internal/pipeline"
	"github.com/valuehunter/hunter/internal/report"
	"github.com/valuehunter/hunter/internal/universe"
	"github.com/valuehunter/hunter/internal/valuation"
	"github.com/valuehunter/hunter/pkg/config"
	"github.com/valuehunter/hunter/pkg/database"
	"github.com/valuehunter/hunter/pkg/httputil"
	"github.com/valuehunter/hunter/pkg/logger"
	"github.com/valuehunter/hunter/pkg/redis"
)

// app bundles the wired dependencies shared by the CLI commands.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *database.DB  // nil when persistence is disabled
	redis  *redis.Client // disabled no-op client when not configured
	repo   *report.Repository
	runner *pipeline.Runner
}

// buildApp wires the full pipeline from configuration.
func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	tz, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	// Universe: Wikipedia with a CSV fallback.
	wikiSource := universe.NewWikipediaSource(httputil.New(log), log, cfg.Universe.WikipediaURL)
	fileSource := universe.NewFileSource(cfg.Universe.FallbackFile, log)
	provider := universe.NewProvider(wikiSource, fileSource, cfg.Universe.UseWikipedia, log)

	// Fundamentals: rate-limited Yahoo client behind a Redis cache.
	yahooHTTP := httputil.New(log).
		WithUserAgent(cfg.Yahoo.UserAgent).
		WithRateLimit(cfg.Yahoo.RatePerSec, cfg.Yahoo.Burst)
	yahooClient := yahoo.NewClient(yahooHTTP, log, cfg.Yahoo.BaseURL)

	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(redisClient, "hunter")
	collector := fundamentals.NewCollector(yahooClient, cache, cfg.Redis.TTL, cfg.Workers, log)

	engine := valuation.NewEngine(cfg.Thresholds, log)
	writer := report.NewCSVWriter(cfg.Output.Dir, cfg.Output.Basename, cfg.Output.WriteDatedCopy, log)

	a := &app{
		cfg:   cfg,
		log:   log,
		redis: redisClient,
	}

	if cfg.Database.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			redisClient.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		a.repo = report.NewRepository(db.Pool)
	}

	broker := pipeline.NewBroker()
	if a.repo != nil {
		a.runner = pipeline.NewRunner(provider, collector, engine, writer, a.repo, broker, tz, log)
	} else {
		a.runner = pipeline.NewRunner(provider, collector, engine, writer, nil, broker, tz, log)
	}

	return a, nil
}

// close releases database and cache connections.
func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
