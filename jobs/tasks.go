package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPlanRefresh recomputes and re-caches the fulfillment plan for a quote.
	TaskPlanRefresh = "fulfillment:plan_refresh"
	// TaskIdempotencyCleanup purges expired idempotency keys.
	TaskIdempotencyCleanup = "shared:idempotency_cleanup"
)

// PlanRefreshPayload identifies the quote whose plan should be rebuilt.
type PlanRefreshPayload struct {
	QuoteID int64 `json:"quote_id"`
}

// NewPlanRefreshTask constructs an Asynq task.
func NewPlanRefreshTask(payload PlanRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPlanRefresh, data), nil
}

// NewIdempotencyCleanupTask constructs the cleanup task, carrying no payload.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyCleanup, nil)
}
