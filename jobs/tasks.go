// Package jobs holds the Asynq background worker: task definitions, the
// server wrapper and the summary warmup handler that keeps the records
// cache hot.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSummaryWarmup pre-computes record summaries into the cache.
	TaskSummaryWarmup = "records:summary_warmup"
)

// SummaryWarmupPayload selects whose summaries to warm. A zero OwnerID means
// every active account.
type SummaryWarmupPayload struct {
	OwnerID int64 `json:"owner_id"`
}

// NewSummaryWarmupTask constructs an Asynq task.
func NewSummaryWarmupTask(payload SummaryWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSummaryWarmup, data), nil
}
