// Package llm provides LLM backend implementations.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
)

// Default configuration values
const (
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultMaxTokens      = 4096
)

// Options configure a backend client. The zero value uses the provider's
// default model, the provider SDK's environment credentials, and
// DefaultMaxTokens.
type Options struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int64
	Temperature *float64
}

// Option configures a backend client.
type Option func(*Options)

// WithAPIKey sets the API key. When empty, the provider SDK falls back to
// its own environment variable (ANTHROPIC_API_KEY or OPENAI_API_KEY).
func WithAPIKey(key string) Option {
	return func(o *Options) {
		o.APIKey = key
	}
}

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

// WithMaxTokens sets the response token budget.
func WithMaxTokens(n int64) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.Temperature = &t
	}
}

// AnthropicLLM is an LLM implementation using the Anthropic Messages API.
type AnthropicLLM struct {
	client anthropic.Client
	opts   Options
}

// NewAnthropic creates a new Anthropic backend.
func NewAnthropic(opts ...Option) *AnthropicLLM {
	o := Options{
		Model:     DefaultAnthropicModel,
		MaxTokens: DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var clientOpts []option.RequestOption
	if o.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(o.APIKey))
	}
	if o.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(o.BaseURL))
	}

	return &AnthropicLLM{
		client: anthropic.NewClient(clientOpts...),
		opts:   o,
	}
}

// Name identifies the backend.
func (a *AnthropicLLM) Name() string {
	return ProviderAnthropic
}

// Generate sends a conversation and returns the complete response.
func (a *AnthropicLLM) Generate(ctx context.Context, messages []Message, tools []ToolSchema) (*Response, error) {
	start := time.Now()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.opts.Model),
		Messages:  buildAnthropicMessages(messages),
		MaxTokens: a.opts.MaxTokens,
	}
	if a.opts.Temperature != nil {
		params.Temperature = anthropic.Float(*a.opts.Temperature)
	}
	if system := systemText(messages); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if len(tools) > 0 {
		params.Tools = buildAnthropicTools(tools)
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api: %w", err)
	}

	return parseAnthropicResponse(resp, time.Since(start)), nil
}

// buildAnthropicMessages converts conversation messages to the Anthropic
// format. System messages are handled separately; tool results are embedded
// in user messages as the Messages API requires.
func buildAnthropicMessages(messages []Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			continue
		case RoleUser:
			if msg.Content != "" {
				out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
			}
		case RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				input := tc.Arguments
				if input == nil {
					input = map[string]any{}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		case RoleTool:
			var blocks []anthropic.ContentBlockParamUnion
			for _, tr := range msg.ToolResults {
				blocks = append(blocks, anthropic.NewToolResultBlock(tr.ID, tr.Content, tr.IsError))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewUserMessage(blocks...))
			}
		default:
			if msg.Content != "" {
				out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
			}
		}
	}

	return out
}

// systemText joins the content of system messages.
func systemText(messages []Message) string {
	var system string
	for _, msg := range messages {
		if msg.Role != RoleSystem || msg.Content == "" {
			continue
		}
		if system != "" {
			system += "\n\n"
		}
		system += msg.Content
	}
	return system
}

// buildAnthropicTools converts tool schemas to the Anthropic tool format.
func buildAnthropicTools(tools []ToolSchema) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))

	for i, t := range tools {
		schema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if props, ok := t.InputSchema["properties"]; ok {
			schema.Properties = props
		}
		if req, ok := t.InputSchema["required"]; ok {
			schema.Required = toStringSlice(req)
		}

		tool := anthropic.ToolUnionParamOfTool(schema, t.Name)
		if tool.OfTool != nil && t.Description != "" {
			tool.OfTool.Description = anthropic.String(t.Description)
		}
		out[i] = tool
	}

	return out
}

// toStringSlice normalizes the JSON-schema "required" field, which may be
// []string or []any depending on where the schema came from.
func toStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

func parseAnthropicResponse(resp *anthropic.Message, latency time.Duration) *Response {
	result := &Response{
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
		LatencyMs:    latency.Milliseconds(),
		Model:        string(resp.Model),
	}

	result.CostUSD = CalculateCost(result.Model, result.InputTokens, result.OutputTokens)

	switch resp.StopReason {
	case "end_turn":
		result.StopReason = StopReasonEnd
	case "tool_use":
		result.StopReason = StopReasonToolUse
	case "max_tokens":
		result.StopReason = StopReasonLength
	case "stop_sequence":
		result.StopReason = StopReasonStop
	}

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			result.Content += block.AsText().Text
		case "tool_use":
			tu := block.AsToolUse()
			args := map[string]any{}
			if raw, err := json.Marshal(tu.Input); err == nil {
				json.Unmarshal(raw, &args)
			}
			result.ToolCalls = append(result.ToolCalls, ToolCall{
				ID:        tu.ID,
				Name:      tu.Name,
				Arguments: args,
			})
		}
	}

	return result
}
