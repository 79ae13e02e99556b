// Package advisory wraps the external sanity-check oracle. Its output is
// informational text only: it never affects claim state, transitions or
// budget figures, and every failure collapses into a fixed fallback string.
package advisory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Fixed fallback strings. Callers always receive usable text.
const (
	FallbackDisabled = "Advisory assistant is not enabled; please check the claim against school regulations yourself."
	FallbackError    = "Connection problem, the advisory check could not run."
	FallbackEmpty    = "Check complete, no special recommendations."
	FallbackPending  = "Advisory check pending."
)

// Item is one invoice line as seen by the oracle.
type Item struct {
	Name      string
	UnitPrice float64
	Quantity  int
}

// Request carries the claim context handed to the oracle.
type Request struct {
	Items        []Item
	TotalAmount  float64
	ProjectName  string
	ProjectType  string
	CategoryName string
}

// Oracle produces a short advisory text for a claim.
type Oracle interface {
	Analyze(ctx context.Context, req Request) string
}

// OpenAIOracle talks to an OpenAI-compatible endpoint.
type OpenAIOracle struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewOpenAIOracle constructs the oracle. An empty API key yields a disabled
// oracle that always returns FallbackDisabled.
func NewOpenAIOracle(apiKey, model string, timeout time.Duration, logger *slog.Logger) *OpenAIOracle {
	if logger == nil {
		logger = slog.Default()
	}
	o := &OpenAIOracle{model: model, timeout: timeout, logger: logger}
	if apiKey != "" {
		o.client = openai.NewClient(apiKey)
	}
	return o
}

// Analyze returns advisory text or a fallback. It never returns an error:
// oracle latency and failures are absorbed here so claim operations can
// proceed regardless.
func (o *OpenAIOracle) Analyze(ctx context.Context, req Request) string {
	if o == nil || o.client == nil {
		return FallbackDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req)},
		},
	})
	if err != nil {
		o.logger.Warn("advisory analyze", slog.Any("error", err))
		return FallbackError
	}
	if len(resp.Choices) == 0 {
		return FallbackEmpty
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return FallbackEmpty
	}
	return text
}

func buildPrompt(req Request) string {
	lines := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, fmt.Sprintf("%s (%d x $%.0f)", item.Name, item.Quantity, item.UnitPrice))
	}
	return fmt.Sprintf(`You are a professional accounting reviewer at a national university. Review this reimbursement claim.

Project type: %s
Project name: %s
Expense category: %s
Invoice total: %.0f
Invoice lines: %s

Based on typical national-university reimbursement rules, give one short, gentle and professional reminder or suggestion. Pay attention to: amount reasonableness, whether the lines fit the category, meal-count limits for meal claims, whether a quotation is needed above 2000, and whether a purchase request is needed above 15000. Limit the answer to 60 words.`,
		req.ProjectType, req.ProjectName, req.CategoryName, req.TotalAmount, strings.Join(lines, ", "))
}
