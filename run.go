package altair

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/everydev1618/goaltair/llm"
)

// RetryPolicy configures retry behavior for transient LLM failures.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first
	MaxAttempts int

	// Backoff configures delay between retries
	Backoff BackoffConfig

	// RetryOn restricts retries to these error classes.
	// Empty means retry any error llm.Retryable considers transient.
	RetryOn []llm.ErrorClass
}

// BackoffConfig configures exponential retry delays.
type BackoffConfig struct {
	// Initial delay before the first retry
	Initial time.Duration

	// Multiplier for exponential growth (default 2.0)
	Multiplier float64

	// Max caps the delay between retries
	Max time.Duration

	// Jitter adds randomness in the range (0.0-1.0)
	Jitter float64
}

// DefaultRetryPolicy retries transient failures twice with exponential backoff.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: 3,
		Backoff: BackoffConfig{
			Initial:    2 * time.Second,
			Multiplier: 2.0,
			Max:        30 * time.Second,
			Jitter:     0.2,
		},
	}
}

// runAgent executes one agent against a prompt, looping through tool calls
// until the model produces a final answer. depth tracks delegation nesting.
func (c *Crew) runAgent(ctx context.Context, agent *Agent, prompt string, depth int, usage *Usage) (string, error) {
	reg := c.agentTools(agent, depth, usage)
	var schemas []llm.ToolSchema
	if reg != nil {
		schemas = reg.Schema()
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: c.systemPrompt(agent, depth)},
		{Role: llm.RoleUser, Content: prompt},
	}

	maxIterations := c.maxIterations
	if agent.MaxIterations > 0 {
		maxIterations = agent.MaxIterations
	}

	for i := 0; i < maxIterations; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		resp, err := c.callWithRetry(ctx, agent, messages, schemas)
		if err != nil {
			return "", err
		}

		usage.InputTokens += resp.InputTokens
		usage.OutputTokens += resp.OutputTokens
		usage.CostUSD += resp.CostUSD
		usage.LLMCalls++

		if len(resp.ToolCalls) == 0 {
			content := strings.TrimSpace(resp.Content)
			if content == "" {
				return "", ErrEmptyResult
			}
			return content, nil
		}

		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		results := make([]llm.ToolResult, 0, len(resp.ToolCalls))
		for _, tc := range resp.ToolCalls {
			usage.ToolCalls = append(usage.ToolCalls, tc.Name)

			out, err := reg.Execute(ctx, tc.Name, tc.Arguments)
			if err != nil {
				c.logger.Warn("tool call failed",
					"crew", c.name,
					"agent", agent.Name,
					"tool", tc.Name,
					"error", err,
				)
				results = append(results, llm.ToolResult{
					ID:      tc.ID,
					Content: "Error: " + err.Error(),
					IsError: true,
				})
				continue
			}

			c.logger.Debug("tool call succeeded",
				"crew", c.name,
				"agent", agent.Name,
				"tool", tc.Name,
			)
			results = append(results, llm.ToolResult{ID: tc.ID, Content: out})
		}
		messages = append(messages, llm.Message{Role: llm.RoleTool, ToolResults: results})
	}

	return "", ErrMaxIterationsExceeded
}

// callWithRetry calls the LLM, retrying transient failures per the crew's
// retry policy.
func (c *Crew) callWithRetry(ctx context.Context, agent *Agent, messages []llm.Message, schemas []llm.ToolSchema) (*llm.Response, error) {
	policy := c.retry
	maxAttempts := 1
	if policy != nil && policy.MaxAttempts > 0 {
		maxAttempts = policy.MaxAttempts
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		start := time.Now()
		resp, err := c.llm.Generate(ctx, messages, schemas)
		latency := time.Since(start)

		if err == nil {
			c.logger.Debug("llm call succeeded",
				"crew", c.name,
				"agent", agent.Name,
				"attempt", attempt+1,
				"latency_ms", latency.Milliseconds(),
				"input_tokens", resp.InputTokens,
				"output_tokens", resp.OutputTokens,
			)
			return resp, nil
		}

		lastErr = err
		c.logger.Warn("llm call failed",
			"crew", c.name,
			"agent", agent.Name,
			"attempt", attempt+1,
			"max_attempts", maxAttempts,
			"error", err,
			"error_class", llm.ClassifyError(err),
			"latency_ms", latency.Milliseconds(),
		)

		if !shouldRetry(err, policy, attempt, maxAttempts) {
			return nil, err
		}

		if delay := retryDelay(policy, attempt); delay > 0 {
			c.logger.Debug("retrying after backoff",
				"crew", c.name,
				"delay_ms", delay.Milliseconds(),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, lastErr
}

func shouldRetry(err error, policy *RetryPolicy, attempt, maxAttempts int) bool {
	if attempt+1 >= maxAttempts {
		return false
	}
	if policy != nil && len(policy.RetryOn) > 0 {
		class := llm.ClassifyError(err)
		for _, rc := range policy.RetryOn {
			if class == rc {
				return true
			}
		}
		return false
	}
	return llm.Retryable(err)
}

// retryDelay computes the delay before the next retry attempt.
func retryDelay(policy *RetryPolicy, attempt int) time.Duration {
	if policy == nil || policy.Backoff.Initial == 0 {
		return 0
	}

	multiplier := policy.Backoff.Multiplier
	if multiplier == 0 {
		multiplier = 2.0
	}
	delay := time.Duration(float64(policy.Backoff.Initial) * math.Pow(multiplier, float64(attempt)))

	if policy.Backoff.Max > 0 && delay > policy.Backoff.Max {
		delay = policy.Backoff.Max
	}
	if policy.Backoff.Jitter > 0 {
		jitterRange := float64(delay) * policy.Backoff.Jitter
		delay = time.Duration(float64(delay) + (rand.Float64()*2-1)*jitterRange)
		if delay < 0 {
			delay = 0
		}
	}
	return delay
}
