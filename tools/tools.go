// Package tools provides the tool registry exposed to agents along with
// the built-in web search, calendar, and clock tools.
//
// Tools are registered with an explicit ToolDef describing their parameters
// and handler. The registry renders a JSON Schema for each tool so language
// models can invoke them through the provider tool-calling protocols.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/everydev1618/goaltair/llm"
)

var (
	// ErrToolNotFound is returned when executing a tool that was never registered.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolAlreadyRegistered is returned when registering a duplicate tool name.
	ErrToolAlreadyRegistered = errors.New("tool already registered")
)

// ToolError wraps an error from a named tool.
type ToolError struct {
	ToolName string
	Err      error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s: %v", e.ToolName, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// ToolFunc is the handler signature for a registered tool. Params carry the
// decoded JSON arguments from the model's tool call.
type ToolFunc func(ctx context.Context, params map[string]any) (string, error)

// Middleware wraps tool execution. Middleware registered with Use runs in
// registration order around every tool call.
type Middleware func(next ToolFunc) ToolFunc

// ParamDef describes one tool parameter for schema generation.
type ParamDef struct {
	Type        string
	Description string
	Required    bool
	Default     any
	Enum        []string
}

// ToolDef describes a tool: what it does, how to call it, and its parameters.
type ToolDef struct {
	Description string
	Fn          ToolFunc
	Params      map[string]ParamDef
}

type tool struct {
	name   string
	def    ToolDef
	schema llm.ToolSchema
}

// Tools is a registry of callable tools. It is safe for concurrent use.
type Tools struct {
	mu         sync.RWMutex
	tools      map[string]*tool
	middleware []Middleware
}

// NewTools creates an empty tool registry.
func NewTools() *Tools {
	return &Tools{tools: make(map[string]*tool)}
}

// Register adds a tool under the given name. The name is what models see in
// the tool schema and what they use to invoke it.
func (t *Tools) Register(name string, def ToolDef) error {
	if name == "" {
		return errors.New("tool name is empty")
	}
	if def.Fn == nil {
		return fmt.Errorf("tool %s: handler is nil", name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.tools[name]; ok {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, name)
	}
	t.tools[name] = &tool{name: name, def: def, schema: buildSchema(name, def)}
	return nil
}

// MustRegister is Register that panics on error, for static tool sets
// assembled at startup.
func (t *Tools) MustRegister(name string, def ToolDef) {
	if err := t.Register(name, def); err != nil {
		panic(err)
	}
}

// Use appends middleware applied to every tool execution.
func (t *Tools) Use(mw Middleware) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.middleware = append(t.middleware, mw)
}

// Execute runs the named tool with the given params. Errors from the tool
// are wrapped in a *ToolError carrying the tool name.
func (t *Tools) Execute(ctx context.Context, name string, params map[string]any) (string, error) {
	t.mu.RLock()
	tl, ok := t.tools[name]
	mws := make([]Middleware, len(t.middleware))
	copy(mws, t.middleware)
	t.mu.RUnlock()

	if !ok {
		return "", &ToolError{ToolName: name, Err: ErrToolNotFound}
	}
	if params == nil {
		params = make(map[string]any)
	}

	fn := tl.def.Fn
	for i := len(mws) - 1; i >= 0; i-- {
		fn = mws[i](fn)
	}

	out, err := fn(ctx, params)
	if err != nil {
		return "", &ToolError{ToolName: name, Err: err}
	}
	return out, nil
}

// Has reports whether a tool is registered under the given name.
func (t *Tools) Has(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.tools[name]
	return ok
}

// Names returns the registered tool names in sorted order.
func (t *Tools) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.tools))
	for name := range t.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schema returns the tool schemas in sorted name order, ready to hand to an
// llm.LLM. Deterministic ordering keeps prompts stable across runs.
func (t *Tools) Schema() []llm.ToolSchema {
	t.mu.RLock()
	defer t.mu.RUnlock()

	schemas := make([]llm.ToolSchema, 0, len(t.tools))
	for _, tl := range t.tools {
		schemas = append(schemas, tl.schema)
	}
	sort.Slice(schemas, func(i, j int) bool { return schemas[i].Name < schemas[j].Name })
	return schemas
}

// Filter returns a new registry restricted to the named tools. Unknown names
// are skipped. The filtered registry shares handlers and middleware with the
// parent but has an independent tool set.
func (t *Tools) Filter(names ...string) *Tools {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ft := NewTools()
	ft.middleware = append(ft.middleware, t.middleware...)
	for _, name := range names {
		if tl, ok := t.tools[name]; ok {
			ft.tools[name] = tl
		}
	}
	return ft
}

func buildSchema(name string, def ToolDef) llm.ToolSchema {
	properties := make(map[string]any)
	var required []string

	for pname, p := range def.Params {
		prop := map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		properties[pname] = prop
		if p.Required {
			required = append(required, pname)
		}
	}
	sort.Strings(required)

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}

	return llm.ToolSchema{
		Name:        name,
		Description: def.Description,
		InputSchema: schema,
	}
}

// stringParam reads an optional string parameter, returning fallback when the
// key is absent or not a string.
func stringParam(params map[string]any, key, fallback string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// intParam reads an optional integer parameter. JSON numbers decode as
// float64, so both forms are accepted.
func intParam(params map[string]any, key string, fallback int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

// floatParam reads a required numeric parameter, accepting numeric strings
// since models sometimes quote coordinates.
func floatParam(params map[string]any, key string) (float64, error) {
	switch v := params[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("parameter %s: %w", key, err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("parameter %s is required", key)
}
