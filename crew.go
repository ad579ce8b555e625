package altair

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/everydev1618/goaltair/llm"
	"github.com/everydev1618/goaltair/tools"
)

// Crew is a named team of agents working through a list of tasks.
// Build one with NewCrew, then call Kickoff to run it.
type Crew struct {
	name   string
	agents []*Agent
	byName map[string]*Agent
	tasks  []*Task

	llm           llm.LLM
	tools         *tools.Tools
	logger        *slog.Logger
	retry         *RetryPolicy
	maxIterations int
}

// CrewOption configures a crew.
type CrewOption func(*Crew)

// WithAgents adds agents to the crew. Agent names must be unique.
func WithAgents(agents ...*Agent) CrewOption {
	return func(c *Crew) {
		c.agents = append(c.agents, agents...)
	}
}

// WithTasks adds tasks to the crew, run in the order given.
func WithTasks(tasks ...*Task) CrewOption {
	return func(c *Crew) {
		c.tasks = append(c.tasks, tasks...)
	}
}

// WithLLM sets the language model backend for the crew.
func WithLLM(backend llm.LLM) CrewOption {
	return func(c *Crew) {
		c.llm = backend
	}
}

// WithTools sets the tool registry agents draw from.
func WithTools(reg *tools.Tools) CrewOption {
	return func(c *Crew) {
		c.tools = reg
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) CrewOption {
	return func(c *Crew) {
		c.logger = logger
	}
}

// WithRetry sets the retry policy for LLM calls. Defaults to DefaultRetryPolicy.
func WithRetry(policy *RetryPolicy) CrewOption {
	return func(c *Crew) {
		c.retry = policy
	}
}

// WithMaxIterations caps tool call loop iterations for agents that don't
// set their own limit.
func WithMaxIterations(n int) CrewOption {
	return func(c *Crew) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// NewCrew creates a crew. Call Validate or Kickoff to check the definition.
func NewCrew(name string, opts ...CrewOption) *Crew {
	c := &Crew{
		name:          name,
		byName:        make(map[string]*Agent),
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, a := range c.agents {
		c.byName[a.Name] = a
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.retry == nil {
		c.retry = DefaultRetryPolicy()
	}
	return c
}

// Name returns the crew name.
func (c *Crew) Name() string {
	return c.name
}

// Agents returns the crew's agents in registration order.
func (c *Crew) Agents() []*Agent {
	return c.agents
}

// Agent looks up an agent by name.
func (c *Crew) Agent(name string) (*Agent, bool) {
	a, ok := c.byName[name]
	return a, ok
}

// Validate checks the crew definition: at least one agent and task, unique
// agent names, every task bound to a known agent, and an LLM backend.
func (c *Crew) Validate() error {
	if strings.TrimSpace(c.name) == "" {
		return &ValidationError{Field: "crew.name", Message: "must not be empty"}
	}
	if len(c.agents) == 0 {
		return &CrewError{Crew: c.name, Err: ErrNoAgents}
	}
	if len(c.tasks) == 0 {
		return &CrewError{Crew: c.name, Err: ErrNoTasks}
	}
	if c.llm == nil {
		return &CrewError{Crew: c.name, Err: ErrNoLLM}
	}

	seen := make(map[string]bool, len(c.agents))
	for _, a := range c.agents {
		if err := a.Validate(); err != nil {
			return &CrewError{Crew: c.name, Err: err}
		}
		if seen[a.Name] {
			return &CrewError{Crew: c.name, Err: &ValidationError{
				Field:   "agent.name",
				Message: "duplicate agent " + a.Name,
			}}
		}
		seen[a.Name] = true
	}

	for _, t := range c.tasks {
		if err := t.Validate(); err != nil {
			return &CrewError{Crew: c.name, Err: err}
		}
		if t.Agent != "" {
			if _, ok := c.byName[t.Agent]; !ok {
				return &CrewError{Crew: c.name, Err: fmt.Errorf("task %s: %w: %s", t.Name, ErrAgentNotFound, t.Agent)}
			}
		}
	}
	return nil
}

// Result holds the outcome of one crew run.
type Result struct {
	// RunID uniquely identifies this run
	RunID string

	// Crew is the name of the crew that ran
	Crew string

	// Raw is the final task's output
	Raw string

	// TaskOutputs holds every task's output in run order
	TaskOutputs []TaskOutput

	// Usage aggregates token and cost accounting across the run
	Usage Usage
}

// TaskOutput is the result of a single task.
type TaskOutput struct {
	Task  string
	Agent string
	Raw   string
}

// Usage aggregates LLM accounting for a run.
type Usage struct {
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	LLMCalls     int
	ToolCalls    []string
}

// Kickoff runs the crew's tasks in order. Each task's output becomes context
// for the next. Inputs fill {placeholder} slots in task descriptions.
func (c *Crew) Kickoff(ctx context.Context, inputs map[string]string) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID: uuid.NewString(),
		Crew:  c.name,
	}
	start := time.Now()

	c.logger.Info("crew kickoff",
		"crew", c.name,
		"run_id", result.RunID,
		"agents", len(c.agents),
		"tasks", len(c.tasks),
	)

	var prevOutput string
	for _, task := range c.tasks {
		agent := c.agents[0]
		if task.Agent != "" {
			agent = c.byName[task.Agent]
		}

		prompt := task.Render(inputs)
		if prevOutput != "" {
			prompt += "\n\nContext from previous work:\n" + prevOutput
		}

		output, err := c.runAgent(ctx, agent, prompt, 0, &result.Usage)
		if err != nil {
			c.logger.Error("task failed",
				"crew", c.name,
				"run_id", result.RunID,
				"task", task.Name,
				"agent", agent.Name,
				"error", err,
			)
			return nil, &CrewError{Crew: c.name, Err: fmt.Errorf("task %s: %w", task.Name, err)}
		}

		result.TaskOutputs = append(result.TaskOutputs, TaskOutput{
			Task:  task.Name,
			Agent: agent.Name,
			Raw:   output,
		})
		prevOutput = output
	}

	result.Raw = result.TaskOutputs[len(result.TaskOutputs)-1].Raw

	c.logger.Info("crew finished",
		"crew", c.name,
		"run_id", result.RunID,
		"duration_ms", time.Since(start).Milliseconds(),
		"llm_calls", result.Usage.LLMCalls,
		"input_tokens", result.Usage.InputTokens,
		"output_tokens", result.Usage.OutputTokens,
		"cost_usd", result.Usage.CostUSD,
	)
	return result, nil
}
