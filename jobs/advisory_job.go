package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ccube-expense/ccube-expense/internal/advisory"
)

// AdvisoryJob runs the oracle for one claim and caches the result.
type AdvisoryJob struct {
	oracle advisory.Oracle
	cache  *advisory.Cache
	logger *slog.Logger
}

// NewAdvisoryJob constructs the job handler.
func NewAdvisoryJob(oracle advisory.Oracle, cache *advisory.Cache, logger *slog.Logger) *AdvisoryJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdvisoryJob{oracle: oracle, cache: cache, logger: logger}
}

// Handle processes TaskTypeAdvisoryAnalyze tasks. The oracle itself never
// fails (it degrades to fallback text); only a cache write problem is
// retried.
func (j *AdvisoryJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload AdvisoryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	items := make([]advisory.Item, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, advisory.Item{Name: item.Name, UnitPrice: item.UnitPrice, Quantity: item.Quantity})
	}
	text := j.oracle.Analyze(ctx, advisory.Request{
		Items:        items,
		TotalAmount:  payload.TotalAmount,
		ProjectName:  payload.ProjectName,
		ProjectType:  payload.ProjectType,
		CategoryName: payload.CategoryName,
	})

	if err := j.cache.Put(ctx, payload.ExpenseID, text); err != nil {
		j.logger.Warn("cache advisory", slog.String("expense_id", payload.ExpenseID), slog.Any("error", err))
		return err
	}
	j.logger.Info("advisory cached", slog.String("expense_id", payload.ExpenseID))
	return nil
}
