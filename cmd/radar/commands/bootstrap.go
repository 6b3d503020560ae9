package commands

import (
	"fmt"
	"os"

	"github.com/radarinvest/backend/internal/alerting"
	"github.com/radarinvest/backend/internal/engineconfig"
	"github.com/radarinvest/backend/internal/etl"
	"github.com/radarinvest/backend/internal/scoring"
	"github.com/radarinvest/backend/internal/strategy"
	"github.com/radarinvest/backend/internal/users"
	"github.com/radarinvest/backend/pkg/config"
	"github.com/radarinvest/backend/pkg/database"
	"github.com/radarinvest/backend/pkg/logger"
	"github.com/radarinvest/backend/pkg/redis"
)

// core bundles the wiring every command needs: config, logging, storage
// and the domain services built on top of them.
type core struct {
	cfg       *config.Config
	engineCfg *engineconfig.Config
	log       *logger.Logger
	db        *database.DB
	redis     *redis.Client

	stockRepo    *scoring.Repository
	strategyRepo *strategy.Repository
	alertRepo    *alerting.Repository
	userRepo     *users.Repository

	engine    *scoring.Engine
	evaluator *strategy.Evaluator
	generator *alerting.Generator
	processor *etl.Processor
}

// buildCore loads configuration, connects storage and wires the domain
// services. Callers must defer c.close().
func buildCore() (*core, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	engineCfg, err := loadEngineConfig(cfg, log)
	if err != nil {
		return nil, err
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	c := &core{
		cfg:       cfg,
		engineCfg: engineCfg,
		log:       log,
		db:        db,
		redis:     redisClient,

		stockRepo:    scoring.NewRepository(db.Pool),
		strategyRepo: strategy.NewRepository(db.Pool),
		alertRepo:    alerting.NewRepository(db.Pool),
		userRepo:     users.NewRepository(db.Pool),
	}

	gate := scoring.NewGrossFilter(engineCfg.Gate, log)
	c.engine = scoring.NewEngine(gate, engineCfg.Weights, log)
	c.evaluator = strategy.NewEvaluator(log)
	c.generator = alerting.NewGenerator(
		c.stockRepo, c.strategyRepo, c.alertRepo, c.evaluator, engineCfg.Alerts, log,
	)
	c.processor = etl.NewProcessor(c.stockRepo, gate, c.engine, log)

	return c, nil
}

func (c *core) close() {
	if c.redis != nil {
		c.redis.Close()
	}
	if c.db != nil {
		c.db.Close()
	}
}

// loadEngineConfig reads the engine tuning file, falling back to built-in
// defaults when no file exists.
func loadEngineConfig(cfg *config.Config, log *logger.Logger) (*engineconfig.Config, error) {
	path := engineConfigPath
	if path == "" {
		path = cfg.Engine.ConfigPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.WithField("path", path).Info("Engine config file not found, using defaults")
		return engineconfig.Default(), nil
	}

	engineCfg, err := engineconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load engine config: %w", err)
	}

	hash, err := engineconfig.Hash(engineCfg)
	if err != nil {
		return nil, fmt.Errorf("hash engine config: %w", err)
	}
	log.WithFields(map[string]interface{}{
		"path":        path,
		"engine_id":   engineCfg.Meta.EngineID,
		"config_hash": hash[:12],
	}).Info("Engine config loaded")

	return engineCfg, nil
}
