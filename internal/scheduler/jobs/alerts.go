package jobs

import (
	"context"
	"fmt"

	"github.com/radarinvest/backend/internal/contracts"
	"github.com/radarinvest/backend/pkg/logger"
)

// AlertSweepJob runs the alert checks for every user who opted into
// notifications. Dedup windows make the sweep idempotent, so overlapping
// runs or restarts cannot double-notify anyone.
type AlertSweepJob struct {
	users     contracts.UserRepository
	generator contracts.AlertGenerator
	logger    *logger.Logger
}

// NewAlertSweepJob creates an alert sweep job.
func NewAlertSweepJob(users contracts.UserRepository, generator contracts.AlertGenerator, log *logger.Logger) *AlertSweepJob {
	return &AlertSweepJob{
		users:     users,
		generator: generator,
		logger:    log,
	}
}

// Name returns the job name.
func (j *AlertSweepJob) Name() string {
	return "alert_sweep"
}

// Schedule runs every day at 8 PM, after the rescore.
func (j *AlertSweepJob) Schedule() string {
	return "0 0 20 * * *"
}

// Run executes the sweep. One failing user does not stop the rest; the
// job fails only when every user errored or the user list cannot load.
func (j *AlertSweepJob) Run(ctx context.Context) error {
	notifiable, err := j.users.ListNotifiable(ctx)
	if err != nil {
		return fmt.Errorf("list notifiable users: %w", err)
	}
	if len(notifiable) == 0 {
		j.logger.Info("No notifiable users, skipping alert sweep")
		return nil
	}

	var created, failed int
	for _, user := range notifiable {
		alerts, err := j.generator.GenerateAll(ctx, user)
		if err != nil {
			failed++
			j.logger.WithError(err).WithField("user", user.ID).Warn("Alert generation failed for user")
			continue
		}
		created += len(alerts)
	}

	j.logger.WithFields(map[string]interface{}{
		"users":   len(notifiable),
		"created": created,
		"failed":  failed,
	}).Info("Alert sweep completed")

	if failed == len(notifiable) {
		return fmt.Errorf("alert generation failed for all %d users", failed)
	}
	return nil
}
