package jobs

import (
	"context"
	"fmt"

	"github.com/radarinvest/backend/internal/etl"
	"github.com/radarinvest/backend/pkg/logger"
	"github.com/radarinvest/backend/pkg/redis"
)

// RescoreJob recomputes derived metrics and scores for the whole cohort
// once per day, after the market data refresh. It invalidates the
// recommendation cache so the next request reflects the new scores.
type RescoreJob struct {
	processor *etl.Processor
	cache     *redis.Cache
	logger    *logger.Logger
}

// NewRescoreJob creates a rescore job.
func NewRescoreJob(processor *etl.Processor, cache *redis.Cache, log *logger.Logger) *RescoreJob {
	return &RescoreJob{
		processor: processor,
		cache:     cache,
		logger:    log,
	}
}

// Name returns the job name.
func (j *RescoreJob) Name() string {
	return "cohort_rescore"
}

// Schedule runs every day at 7 PM, after the close-of-day data load.
func (j *RescoreJob) Schedule() string {
	return "0 0 19 * * *"
}

// Run executes the rescore.
func (j *RescoreJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled cohort rescore")

	if err := j.processor.RescoreAll(ctx); err != nil {
		return fmt.Errorf("rescore cohort: %w", err)
	}

	// Cached recommendation lists are stale now. TTLs would age them out
	// anyway; dropping the known keys shortens the window.
	for _, key := range recommendationCacheKeys() {
		if err := j.cache.Delete(ctx, key); err != nil {
			j.logger.WithError(err).Warn("Failed to drop stale recommendation cache entry")
		}
	}

	j.logger.Info("Cohort rescore completed")
	return nil
}

func recommendationCacheKeys() []string {
	archetypes := []string{"income_builder", "value_hunter", "patient_partner"}
	limits := []int{5, 10, 20, 50}

	keys := make([]string, 0, len(archetypes)*len(limits))
	for _, a := range archetypes {
		for _, l := range limits {
			keys = append(keys, fmt.Sprintf("recommendations:%s:%d", a, l))
		}
	}
	return keys
}
