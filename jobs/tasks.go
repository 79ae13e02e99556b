// Package jobs runs background work over Asynq. The only task today is the
// advisory analysis: it is enqueued best-effort after claim creation so
// oracle latency can never block a mutation.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/ccube-expense/ccube-expense/internal/expense"
	"github.com/ccube-expense/ccube-expense/internal/project"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAdvisoryAnalyze asks the oracle to review one claim.
	TaskTypeAdvisoryAnalyze = "advisory:analyze"
)

// AdvisoryItem mirrors one invoice line for the oracle.
type AdvisoryItem struct {
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// AdvisoryPayload carries everything the oracle needs about a claim.
type AdvisoryPayload struct {
	ExpenseID    string         `json:"expense_id"`
	ProjectName  string         `json:"project_name"`
	ProjectType  string         `json:"project_type"`
	CategoryName string         `json:"category_name"`
	TotalAmount  float64        `json:"total_amount"`
	Items        []AdvisoryItem `json:"items"`
}

// NewAdvisoryTask constructs an Asynq task for the payload.
func NewAdvisoryTask(payload AdvisoryPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAdvisoryAnalyze, data), nil
}

// Client submits jobs to the queue and satisfies the expense service's
// advisory port.
type Client struct {
	client   *asynq.Client
	projects *project.Registry
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt, projects *project.Registry) *Client {
	return &Client{client: asynq.NewClient(redisOpts), projects: projects}
}

// EnqueueAnalysis queues an advisory review for the claim.
func (c *Client) EnqueueAnalysis(ctx context.Context, claim expense.Expense) error {
	payload := AdvisoryPayload{
		ExpenseID:    claim.ID,
		CategoryName: project.CategoryName(claim.Category),
		TotalAmount:  claim.TotalAmount,
	}
	if p, err := c.projects.Get(claim.ProjectID); err == nil {
		payload.ProjectName = p.Name
		payload.ProjectType = project.TypeLabels[p.Type]
	}
	for _, item := range claim.Items {
		payload.Items = append(payload.Items, AdvisoryItem{
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	task, err := NewAdvisoryTask(payload)
	if err != nil {
		return fmt.Errorf("jobs: build advisory task: %w", err)
	}
	if _, err := c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("jobs: enqueue advisory: %w", err)
	}
	return nil
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
