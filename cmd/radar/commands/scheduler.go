package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/radarinvest/backend/internal/scheduler"
	"github.com/radarinvest/backend/internal/scheduler/jobs"
	"github.com/radarinvest/backend/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the background job scheduler",
	Long: `Runs the background scheduler.

Jobs:
  cohort_rescore  - daily full rescore after the market data refresh
  alert_sweep     - daily alert generation for all notifiable users

Example:
  go run ./cmd/radar scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	c, err := buildCore()
	if err != nil {
		return err
	}
	defer c.close()

	cache := redis.NewCache(c.redis, "radar")

	sched := scheduler.New(c.log)
	if err := sched.AddJob(jobs.NewRescoreJob(c.processor, cache, c.log)); err != nil {
		return fmt.Errorf("add rescore job: %w", err)
	}
	if err := sched.AddJob(jobs.NewAlertSweepJob(c.userRepo, c.generator, c.log)); err != nil {
		return fmt.Errorf("add alert sweep job: %w", err)
	}

	sched.Start()
	fmt.Println("Scheduler running (Ctrl+C to stop)")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
