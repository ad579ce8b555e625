// Package llm provides LLM backend implementations for the altair package.
//
// # Backends
//
// Two backends are available, selected by provider name:
//
//	backend, err := llm.New("anthropic")  // Uses ANTHROPIC_API_KEY env var
//	backend, err := llm.New("openai")     // Uses OPENAI_API_KEY env var
//
// Or construct one directly with options:
//
//	backend := llm.NewAnthropic(
//	    llm.WithAPIKey("sk-..."),
//	    llm.WithModel("claude-opus-4-20250514"),
//	)
//
// # Tool Support
//
// Tool schemas are converted to each provider's native tool format. When
// the model requests tool calls, they come back on Response.ToolCalls; the
// caller executes them and sends the results back as a RoleTool message:
//
//	resp, err := backend.Generate(ctx, messages, tools.Schema())
//	for _, tc := range resp.ToolCalls {
//	    out, err := tools.Execute(ctx, tc.Name, tc.Arguments)
//	    // append a RoleTool message with the result
//	}
//
// # Retry Classification
//
// ClassifyError and Retryable categorize provider failures so callers can
// retry rate limits and transient faults while failing fast on
// authentication and invalid-request errors.
//
// # Implementing Custom Backends
//
// To implement a custom backend, implement the LLM interface:
//
//	type LLM interface {
//	    Generate(ctx context.Context, messages []Message, tools []ToolSchema) (*Response, error)
//	    Name() string
//	}
package llm
