package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentalog/dentalog/internal/records"
)

// SummaryWarmupJob pre-populates the summary cache so the dashboard's first
// request after a quiet period does not pay the aggregation cost.
type SummaryWarmupJob struct {
	Records *records.Service
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewSummaryWarmupJob wires dependencies for the warmup handler.
func NewSummaryWarmupJob(recordSvc *records.Service, pool *pgxpool.Pool, logger *slog.Logger) *SummaryWarmupJob {
	return &SummaryWarmupJob{
		Records: recordSvc,
		Pool:    pool,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes summary warmup tasks.
func (j *SummaryWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("summary warmup: handler not configured")
	}
	var payload SummaryWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	owners, err := j.resolveOwners(ctx, payload.OwnerID)
	if err != nil {
		j.logger().Error("load warmup owners", slog.Any("error", err))
		return err
	}
	if len(owners) == 0 {
		j.logger().Info("no accounts to warm")
		return nil
	}

	warmed := 0
	for _, ownerID := range owners {
		for _, state := range j.warmupStates() {
			if _, err := j.Records.Summary(ctx, ownerID, state); err != nil {
				j.logger().Error("warm summary", slog.Int64("owner_id", ownerID), slog.Any("error", err))
				return err
			}
			warmed++
		}
	}
	j.logger().Info("summary warmup complete", slog.Int("summaries", warmed), slog.Int("owners", len(owners)))
	return nil
}

// warmupStates covers the views the dashboard opens with: the unfiltered set
// and the current-month shortcut.
func (j *SummaryWarmupJob) warmupStates() []records.FilterState {
	from, to := records.ResolveQuickRange(records.QuickRangeMonth, j.clock())
	return []records.FilterState{
		{},
		{DateFrom: from, DateTo: to},
	}
}

func (j *SummaryWarmupJob) resolveOwners(ctx context.Context, ownerID int64) ([]int64, error) {
	if ownerID != 0 {
		return []int64{ownerID}, nil
	}
	rows, err := j.Pool.Query(ctx, `SELECT id FROM users WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		owners = append(owners, id)
	}
	return owners, rows.Err()
}

func (j *SummaryWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
