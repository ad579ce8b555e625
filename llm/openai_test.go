package llm

import (
	"testing"

	"github.com/openai/openai-go"
)

func TestBuildOpenAIMessages(t *testing.T) {
	messages := []Message{
		{Role: RoleSystem, Content: "system prompt"},
		{Role: RoleUser, Content: "search for AI news"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{
			{ID: "call_1", Name: "web_search", Arguments: map[string]any{"query": "AI news"}},
		}},
		{Role: RoleTool, ToolResults: []ToolResult{
			{ID: "call_1", Content: "top stories..."},
		}},
	}

	out := buildOpenAIMessages(messages)

	if len(out) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(out))
	}
	if out[0].OfSystem == nil {
		t.Error("message[0] should be a system message")
	}
	if out[1].OfUser == nil {
		t.Error("message[1] should be a user message")
	}
	if out[2].OfAssistant == nil {
		t.Fatal("message[2] should be an assistant message")
	}
	if len(out[2].OfAssistant.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(out[2].OfAssistant.ToolCalls))
	}
	if out[2].OfAssistant.ToolCalls[0].ID != "call_1" {
		t.Errorf("tool call ID = %q, want call_1", out[2].OfAssistant.ToolCalls[0].ID)
	}
	if out[3].OfTool == nil {
		t.Error("message[3] should be a tool message")
	}
}

func TestBuildOpenAITools(t *testing.T) {
	tools := []ToolSchema{
		{Name: "delegate", Description: "Delegate work", InputSchema: map[string]any{"type": "object"}},
		{Name: "web_search", Description: "Search", InputSchema: map[string]any{"type": "object"}},
	}

	out := buildOpenAITools(tools)

	if len(out) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(out))
	}
	if out[0].Function.Name != "delegate" || out[1].Function.Name != "web_search" {
		t.Errorf("tool names = %q, %q", out[0].Function.Name, out[1].Function.Name)
	}
}

func TestParseOpenAIResponse(t *testing.T) {
	resp := &openai.ChatCompletion{
		Model: "gpt-4o-mini",
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					Content: "done",
					ToolCalls: []openai.ChatCompletionMessageToolCall{
						{
							ID: "call_9",
							Function: openai.ChatCompletionMessageToolCallFunction{
								Name:      "current_time",
								Arguments: `{"timezone":"UTC"}`,
							},
						},
					},
				},
				FinishReason: "tool_calls",
			},
		},
		Usage: openai.CompletionUsage{PromptTokens: 100, CompletionTokens: 20},
	}

	got := parseOpenAIResponse(resp, 0)

	if got.Content != "done" {
		t.Errorf("Content = %q, want done", got.Content)
	}
	if got.StopReason != StopReasonToolUse {
		t.Errorf("StopReason = %q, want %q", got.StopReason, StopReasonToolUse)
	}
	if got.InputTokens != 100 || got.OutputTokens != 20 {
		t.Errorf("tokens = %d/%d, want 100/20", got.InputTokens, got.OutputTokens)
	}
	if len(got.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(got.ToolCalls))
	}
	tc := got.ToolCalls[0]
	if tc.ID != "call_9" || tc.Name != "current_time" {
		t.Errorf("tool call = %+v", tc)
	}
	if tc.Arguments["timezone"] != "UTC" {
		t.Errorf("arguments = %v", tc.Arguments)
	}
}
