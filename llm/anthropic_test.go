package llm

import (
	"testing"
)

func TestSystemText(t *testing.T) {
	messages := []Message{
		{Role: RoleSystem, Content: "You are a helpful assistant."},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleSystem, Content: "Answer briefly."},
	}

	got := systemText(messages)
	want := "You are a helpful assistant.\n\nAnswer briefly."
	if got != want {
		t.Errorf("systemText() = %q, want %q", got, want)
	}

	if got := systemText([]Message{{Role: RoleUser, Content: "hi"}}); got != "" {
		t.Errorf("systemText() = %q, want empty", got)
	}
}

func TestBuildAnthropicMessages(t *testing.T) {
	messages := []Message{
		{Role: RoleSystem, Content: "system prompt"},
		{Role: RoleUser, Content: "what time is it?"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{
			{ID: "toolu_1", Name: "current_time", Arguments: map[string]any{"timezone": "UTC"}},
		}},
		{Role: RoleTool, ToolResults: []ToolResult{
			{ID: "toolu_1", Content: "12:00 UTC"},
		}},
		{Role: RoleAssistant, Content: "It is noon in UTC."},
	}

	out := buildAnthropicMessages(messages)

	// System is extracted separately; tool results ride in a user message.
	if len(out) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(out))
	}

	roles := []string{"user", "assistant", "user", "assistant"}
	for i, want := range roles {
		if got := string(out[i].Role); got != want {
			t.Errorf("message[%d] role = %q, want %q", i, got, want)
		}
	}
}

func TestBuildAnthropicMessagesSkipsEmpty(t *testing.T) {
	messages := []Message{
		{Role: RoleUser, Content: ""},
		{Role: RoleAssistant, Content: ""},
		{Role: RoleTool},
	}

	if out := buildAnthropicMessages(messages); len(out) != 0 {
		t.Errorf("expected no messages, got %d", len(out))
	}
}

func TestBuildAnthropicTools(t *testing.T) {
	tools := []ToolSchema{
		{
			Name:        "web_search",
			Description: "Search the web",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": "string"},
				},
				"required": []string{"query"},
			},
		},
	}

	out := buildAnthropicTools(tools)

	if len(out) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(out))
	}
	if out[0].OfTool == nil {
		t.Fatal("expected OfTool to be set")
	}
	if out[0].OfTool.Name != "web_search" {
		t.Errorf("tool name = %q, want web_search", out[0].OfTool.Name)
	}
	if len(out[0].OfTool.InputSchema.Required) != 1 || out[0].OfTool.InputSchema.Required[0] != "query" {
		t.Errorf("required = %v, want [query]", out[0].OfTool.InputSchema.Required)
	}
}

func TestToStringSlice(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"string slice", []string{"a", "b"}, 2},
		{"any slice", []any{"a", "b", "c"}, 3},
		{"mixed any slice", []any{"a", 42}, 1},
		{"not a slice", "a", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toStringSlice(tt.in); len(got) != tt.want {
				t.Errorf("toStringSlice(%v) has %d entries, want %d", tt.in, len(got), tt.want)
			}
		})
	}
}
