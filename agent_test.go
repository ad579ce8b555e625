package altair

import (
	"strings"
	"testing"
)

func TestAgentSystemPrompt(t *testing.T) {
	agent := &Agent{
		Name:      "researcher",
		Role:      "Research Analyst",
		Goal:      "Find accurate information quickly",
		Backstory: "You are a meticulous analyst with a knack for sources.",
	}

	want := "You are Research Analyst.\n\n" +
		"You are a meticulous analyst with a knack for sources.\n\n" +
		"Your goal: Find accurate information quickly"
	if got := agent.SystemPrompt(); got != want {
		t.Errorf("SystemPrompt mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestAgentSystemPromptRoleOnly(t *testing.T) {
	agent := &Agent{Name: "a", Role: "Helpful Assistant"}

	if got := agent.SystemPrompt(); got != "You are Helpful Assistant." {
		t.Errorf("SystemPrompt = %q", got)
	}
}

func TestAgentValidate(t *testing.T) {
	tests := []struct {
		name    string
		agent   Agent
		wantErr bool
	}{
		{"valid", Agent{Name: "a", Role: "Assistant"}, false},
		{"missing name", Agent{Role: "Assistant"}, true},
		{"missing role", Agent{Name: "a"}, true},
		{"whitespace role", Agent{Name: "a", Role: "   "}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.agent.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr && err != nil && !strings.HasPrefix(err.Error(), "invalid agent.") {
				t.Errorf("unexpected error message: %v", err)
			}
		})
	}
}
