package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAILLM is an LLM implementation using the OpenAI Chat Completions API.
type OpenAILLM struct {
	client openai.Client
	opts   Options
}

// NewOpenAI creates a new OpenAI backend.
func NewOpenAI(opts ...Option) *OpenAILLM {
	o := Options{
		Model:     DefaultOpenAIModel,
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

	return &OpenAILLM{
		client: openai.NewClient(clientOpts...),
		opts:   o,
	}
}

// Name identifies the backend.
func (o *OpenAILLM) Name() string {
	return ProviderOpenAI
}

// Generate sends a conversation and returns the complete response.
func (o *OpenAILLM) Generate(ctx context.Context, messages []Message, tools []ToolSchema) (*Response, error) {
	start := time.Now()

	params := openai.ChatCompletionNewParams{
		Messages:            buildOpenAIMessages(messages),
		Model:               o.opts.Model,
		MaxCompletionTokens: openai.Int(o.opts.MaxTokens),
	}
	if o.opts.Temperature != nil {
		params.Temperature = openai.Float(*o.opts.Temperature)
	}
	if len(tools) > 0 {
		params.Tools = buildOpenAITools(tools)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai api: no choices returned")
	}

	return parseOpenAIResponse(resp, time.Since(start)), nil
}

// buildOpenAIMessages converts conversation messages to the OpenAI chat
// format. Tool results become dedicated tool messages keyed by call ID.
func buildOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	var out []openai.ChatCompletionMessageParamUnion

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			if msg.Content != "" {
				out = append(out, openai.SystemMessage(msg.Content))
			}
		case RoleUser:
			if msg.Content != "" {
				out = append(out, openai.UserMessage(msg.Content))
			}
		case RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				if msg.Content != "" {
					out = append(out, openai.AssistantMessage(msg.Content))
				}
				continue
			}
			toolCalls := make([]openai.ChatCompletionMessageToolCallParam, 0, len(msg.ToolCalls))
			for _, tc := range msg.ToolCalls {
				args := "{}"
				if tc.Arguments != nil {
					if b, err := json.Marshal(tc.Arguments); err == nil {
						args = string(b)
					}
				}
				toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
					ID:   tc.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: args,
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: toolCalls,
				},
			})
		case RoleTool:
			for _, tr := range msg.ToolResults {
				out = append(out, openai.ToolMessage(tr.Content, tr.ID))
			}
		default:
			if msg.Content != "" {
				out = append(out, openai.UserMessage(msg.Content))
			}
		}
	}

	return out
}

// buildOpenAITools converts tool schemas to the OpenAI function format.
func buildOpenAITools(tools []ToolSchema) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, len(tools))

	for i, t := range tools {
		out[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  t.InputSchema,
			},
		}
	}

	return out
}

func parseOpenAIResponse(resp *openai.ChatCompletion, latency time.Duration) *Response {
	choice := resp.Choices[0]

	result := &Response{
		Content:      choice.Message.Content,
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
		LatencyMs:    latency.Milliseconds(),
		Model:        resp.Model,
	}

	result.CostUSD = CalculateCost(result.Model, result.InputTokens, result.OutputTokens)

	switch choice.FinishReason {
	case "stop":
		result.StopReason = StopReasonEnd
	case "tool_calls":
		result.StopReason = StopReasonToolUse
	case "length":
		result.StopReason = StopReasonLength
	}

	for _, tc := range choice.Message.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			json.Unmarshal([]byte(tc.Function.Arguments), &args)
		}
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}

	return result
}
