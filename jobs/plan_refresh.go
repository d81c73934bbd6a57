package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/atelier-erp/atelier-erp/internal/fulfillment"
	"github.com/atelier-erp/atelier-erp/internal/shared"
)

// PlanRefreshJob rebuilds the cached fulfillment plan for a quote after its
// underlying data changed. Running through the service repopulates the
// versioned cache so the next interactive read is warm.
type PlanRefreshJob struct {
	service *fulfillment.Service
	logger  *slog.Logger
}

// NewPlanRefreshJob constructs the job.
func NewPlanRefreshJob(service *fulfillment.Service, logger *slog.Logger) *PlanRefreshJob {
	return &PlanRefreshJob{service: service, logger: logger}
}

// Handle processes TaskPlanRefresh tasks.
func (j *PlanRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload PlanRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.QuoteID == 0 {
		return asynq.SkipRetry
	}
	_, err := j.service.ComputePlan(ctx, fulfillment.PlanInput{QuoteIDs: []int64{payload.QuoteID}})
	if errors.Is(err, fulfillment.ErrNoQuotes) {
		// Quote deleted since enqueue; nothing to warm.
		j.logger.Info("plan refresh skipped", slog.Int64("quote_id", payload.QuoteID))
		return nil
	}
	if err != nil {
		j.logger.Error("plan refresh", slog.Any("error", err), slog.Int64("quote_id", payload.QuoteID))
		return err
	}
	j.logger.Info("plan refreshed", slog.Int64("quote_id", payload.QuoteID))
	return nil
}

// IdempotencyCleanupJob purges idempotency keys past their retention window.
type IdempotencyCleanupJob struct {
	store     *shared.IdempotencyStore
	retention time.Duration
	logger    *slog.Logger
}

// NewIdempotencyCleanupJob constructs the job. Zero retention defaults to
// seven days.
func NewIdempotencyCleanupJob(store *shared.IdempotencyStore, retention time.Duration, logger *slog.Logger) *IdempotencyCleanupJob {
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	return &IdempotencyCleanupJob{store: store, retention: retention, logger: logger}
}

// Handle processes TaskIdempotencyCleanup tasks.
func (j *IdempotencyCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if err := j.store.Cleanup(ctx, j.retention); err != nil {
		j.logger.Error("idempotency cleanup", slog.Any("error", err))
		return err
	}
	return nil
}
