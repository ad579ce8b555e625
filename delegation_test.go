package altair

import (
	"context"
	"strings"
	"testing"

	"github.com/everydev1618/goaltair/llm"
)

func delegationCrew(backend llm.LLM) *Crew {
	return NewCrew("team",
		WithAgents(
			&Agent{Name: "lead", Role: "Team Lead", AllowDelegation: true},
			&Agent{Name: "helper", Role: "Research Helper"},
		),
		WithTasks(&Task{Name: "t", Description: "handle: {message}", Agent: "lead"}),
		WithLLM(backend),
		WithLogger(quietLogger()),
	)
}

func TestTeamPrompt(t *testing.T) {
	crew := delegationCrew(&scriptedLLM{})
	lead, _ := crew.Agent("lead")

	prompt := crew.systemPrompt(lead, 0)
	if !strings.Contains(prompt, "## Your Team") {
		t.Errorf("missing team section:\n%s", prompt)
	}
	if !strings.Contains(prompt, "- **helper**: Research Helper") {
		t.Errorf("missing roster line:\n%s", prompt)
	}
	if strings.Contains(prompt, "- **lead**") {
		t.Errorf("roster should not list the agent itself:\n%s", prompt)
	}
}

func TestSystemPromptWithoutDelegation(t *testing.T) {
	crew := delegationCrew(&scriptedLLM{})
	helper, _ := crew.Agent("helper")

	if prompt := crew.systemPrompt(helper, 0); strings.Contains(prompt, "## Your Team") {
		t.Errorf("non-delegating agent got a roster:\n%s", prompt)
	}

	lead, _ := crew.Agent("lead")
	if prompt := crew.systemPrompt(lead, DefaultMaxDelegationDepth); strings.Contains(prompt, "## Your Team") {
		t.Errorf("agent at max depth got a roster:\n%s", prompt)
	}
}

func TestDelegateToolOffered(t *testing.T) {
	crew := delegationCrew(&scriptedLLM{})
	lead, _ := crew.Agent("lead")
	helper, _ := crew.Agent("helper")

	var usage Usage
	if reg := crew.agentTools(lead, 0, &usage); !reg.Has("delegate") {
		t.Error("lead should have the delegate tool")
	}
	if reg := crew.agentTools(helper, 0, &usage); reg.Has("delegate") {
		t.Error("helper should not have the delegate tool")
	}
	if reg := crew.agentTools(lead, DefaultMaxDelegationDepth, &usage); reg.Has("delegate") {
		t.Error("delegate tool offered past max depth")
	}
}

func TestDelegation(t *testing.T) {
	backend := &scriptedLLM{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{
			{ID: "d1", Name: "delegate", Arguments: map[string]any{"agent": "helper", "message": "look into this"}},
		}},
		textResponse("helper findings"),
		textResponse("final answer based on findings"),
	}}
	crew := delegationCrew(backend)

	result, err := crew.Kickoff(context.Background(), map[string]string{"message": "question"})
	if err != nil {
		t.Fatalf("Kickoff failed: %v", err)
	}
	if result.Raw != "final answer based on findings" {
		t.Errorf("Raw = %q", result.Raw)
	}
	if len(backend.calls) != 3 {
		t.Fatalf("llm calls = %d, want 3", len(backend.calls))
	}

	helperCall := backend.calls[1]
	if !strings.Contains(helperCall[0].Content, "You are Research Helper.") {
		t.Errorf("delegated call system prompt = %q", helperCall[0].Content)
	}
	if helperCall[1].Content != "look into this" {
		t.Errorf("delegated prompt = %q", helperCall[1].Content)
	}

	leadFollowup := backend.calls[2]
	tr := leadFollowup[len(leadFollowup)-1].ToolResults[0]
	if tr.IsError || tr.Content != "helper findings" {
		t.Errorf("delegate tool result = %+v", tr)
	}

	if result.Usage.LLMCalls != 3 {
		t.Errorf("usage llm calls = %d, want 3", result.Usage.LLMCalls)
	}
	found := false
	for _, name := range result.Usage.ToolCalls {
		if name == "delegate" {
			found = true
		}
	}
	if !found {
		t.Errorf("usage tool calls = %v, want delegate recorded", result.Usage.ToolCalls)
	}
}

func TestDelegateUnknownAgent(t *testing.T) {
	backend := &scriptedLLM{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{
			{ID: "d1", Name: "delegate", Arguments: map[string]any{"agent": "ghost", "message": "hi"}},
		}},
		textResponse("recovered"),
	}}
	crew := delegationCrew(backend)

	result, err := crew.Kickoff(context.Background(), nil)
	if err != nil {
		t.Fatalf("Kickoff failed: %v", err)
	}
	if result.Raw != "recovered" {
		t.Errorf("Raw = %q", result.Raw)
	}

	second := backend.calls[1]
	tr := second[len(second)-1].ToolResults[0]
	if !tr.IsError || !strings.Contains(tr.Content, "agent not found") {
		t.Errorf("unknown agent result = %+v", tr)
	}
}

func TestDelegateMissingParams(t *testing.T) {
	backend := &scriptedLLM{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{
			{ID: "d1", Name: "delegate", Arguments: map[string]any{"agent": "helper"}},
		}},
		textResponse("ok"),
	}}
	crew := delegationCrew(backend)

	if _, err := crew.Kickoff(context.Background(), nil); err != nil {
		t.Fatalf("Kickoff failed: %v", err)
	}

	second := backend.calls[1]
	tr := second[len(second)-1].ToolResults[0]
	if !tr.IsError || !strings.Contains(tr.Content, "both agent and message are required") {
		t.Errorf("missing params result = %+v", tr)
	}
}

func TestDelegateSchemaListsTeammates(t *testing.T) {
	crew := delegationCrew(&scriptedLLM{})
	lead, _ := crew.Agent("lead")

	var usage Usage
	reg := crew.agentTools(lead, 0, &usage)
	for _, schema := range reg.Schema() {
		if schema.Name != "delegate" {
			continue
		}
		props := schema.InputSchema["properties"].(map[string]any)
		agentProp := props["agent"].(map[string]any)
		enum, ok := agentProp["enum"].([]string)
		if !ok || len(enum) != 1 || enum[0] != "helper" {
			t.Errorf("delegate agent enum = %v, want [helper]", agentProp["enum"])
		}
		return
	}
	t.Fatal("delegate schema not found")
}
