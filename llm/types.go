package llm

import "context"

// LLM is the interface for language model backends.
type LLM interface {
	// Generate sends a conversation and returns the complete response.
	Generate(ctx context.Context, messages []Message, tools []ToolSchema) (*Response, error)

	// Name identifies the backend, e.g. "anthropic" or "openai".
	Name() string
}

// Role identifies the message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message represents a conversation message.
//
// Plain text messages set Content only. Assistant messages that requested
// tools carry ToolCalls; the matching results come back as a RoleTool
// message carrying ToolResults. Each backend maps these onto its own wire
// format (Anthropic embeds tool results in user messages, OpenAI uses
// dedicated tool messages).
type Message struct {
	Role        Role
	Content     string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// ToolCall represents a tool invocation requested by the model.
type ToolCall struct {
	// ID is the unique identifier for this tool call
	ID string

	// Name is the tool being called
	Name string

	// Arguments are the parameters passed to the tool
	Arguments map[string]any
}

// ToolResult carries the outcome of an executed tool call.
type ToolResult struct {
	// ID matches the ToolCall that produced this result
	ID string

	// Content is the tool output, or the error text when IsError is set
	Content string

	// IsError marks a failed execution
	IsError bool
}

// Response is the response from an LLM call.
type Response struct {
	// Content is the text response
	Content string

	// ToolCalls are any tool calls the model wants to make
	ToolCalls []ToolCall

	// Token counts
	InputTokens  int
	OutputTokens int

	// Cost in USD
	CostUSD float64

	// Latency in milliseconds
	LatencyMs int64

	// Model that produced the response
	Model string

	// StopReason indicates why generation stopped
	StopReason StopReason
}

// StopReason indicates why the LLM stopped generating.
type StopReason string

const (
	StopReasonEnd     StopReason = "end_turn"
	StopReasonToolUse StopReason = "tool_use"
	StopReasonLength  StopReason = "max_tokens"
	StopReasonStop    StopReason = "stop_sequence"
)

// ToolSchema describes a tool for the LLM.
type ToolSchema struct {
	// Name of the tool
	Name string `json:"name"`

	// Description of what the tool does
	Description string `json:"description"`

	// InputSchema is the JSON Schema for parameters
	InputSchema map[string]any `json:"input_schema"`
}

// Model pricing for cost calculation (USD per 1M tokens)
var modelPricing = map[string]struct {
	InputPer1M  float64
	OutputPer1M float64
}{
	"claude-sonnet-4-20250514":   {3.00, 15.00},
	"claude-opus-4-20250514":     {15.00, 75.00},
	"claude-3-5-sonnet-20241022": {3.00, 15.00},
	"claude-3-5-haiku-20241022":  {0.80, 4.00},
	"claude-3-haiku-20240307":    {0.25, 1.25},
	"gpt-4o":                     {2.50, 10.00},
	"gpt-4o-mini":                {0.15, 0.60},
	"gpt-4.1":                    {2.00, 8.00},
	"gpt-4.1-mini":               {0.40, 1.60},
}

// CalculateCost calculates the cost of a request for a known model.
// Unknown models cost zero rather than guessing.
func CalculateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		return 0
	}

	inputCost := float64(inputTokens) / 1_000_000 * pricing.InputPer1M
	outputCost := float64(outputTokens) / 1_000_000 * pricing.OutputPer1M

	return inputCost + outputCost
}
