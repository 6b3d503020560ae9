package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/radarinvest/backend/internal/api"
	"github.com/radarinvest/backend/internal/api/handlers"
	"github.com/radarinvest/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Starts the REST API server.

Endpoints:
  GET    /health                       - Health check
  GET    /api/recommendations          - Ranked recommendations per archetype
  GET    /api/stocks                   - Snapshot catalogue
  GET    /api/stocks/{ticker}          - One snapshot
  GET    /api/strategies               - Caller's strategies
  POST   /api/strategies               - Create strategy
  GET    /api/strategies/{id}/matches  - Evaluate strategy now
  GET    /api/alerts                   - Caller's alerts
  POST   /api/alerts/generate          - Run alert checks now

Example:
  go run ./cmd/radar api
  go run ./cmd/radar api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	c, err := buildCore()
	if err != nil {
		return err
	}
	defer c.close()

	if apiPort != "" {
		c.cfg.Port = apiPort
	}

	cache := redis.NewCache(c.redis, "radar")
	limiter := redis.NewRateLimiter(c.redis, "radar")

	recHandler := handlers.NewRecommendationsHandler(
		c.stockRepo,
		c.engine,
		cache,
		c.cfg.Engine.CacheTTL,
		c.engineCfg.Recommendations.DefaultLimit,
		c.engineCfg.Recommendations.MaxLimit,
		c.log,
	)
	stockHandler := handlers.NewStocksHandler(c.stockRepo, c.log)
	stratHandler := handlers.NewStrategiesHandler(c.strategyRepo, c.stockRepo, c.evaluator, c.log)
	alertHandler := handlers.NewAlertsHandler(c.alertRepo, c.userRepo, c.generator, limiter, c.log)

	router := api.NewRouter(recHandler, stockHandler, stratHandler, alertHandler, c.log)
	server := api.New(c.cfg, c.log, router)

	go func() {
		if err := server.Start(); err != nil {
			c.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s (Ctrl+C to stop)\n", c.cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
