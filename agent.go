package altair

import (
	"strings"
)

// Agent defines a crew member. It's a blueprint describing a role, not a
// running conversation. Crews run agents against tasks via Kickoff.
type Agent struct {
	// Name identifies the agent within its crew
	Name string

	// Role is the professional role the agent plays (e.g., "Research Analyst")
	Role string

	// Goal is the agent's objective, included in the system prompt
	Goal string

	// Backstory gives the agent its persona and expertise
	Backstory string

	// Model overrides the crew's model for this agent (optional)
	Model string

	// Temperature for generation (0.0-1.0, optional)
	Temperature *float64

	// Tools names the registry tools available to this agent.
	// Empty means the agent runs without tools.
	Tools []string

	// AllowDelegation lets this agent hand work to teammates
	AllowDelegation bool

	// MaxIterations limits tool call loop iterations (default: DefaultMaxIterations)
	MaxIterations int
}

// Default configuration values
const (
	// DefaultMaxIterations is the default maximum tool call loop iterations
	DefaultMaxIterations = 10

	// DefaultMaxDelegationDepth limits how deep delegation chains can go
	DefaultMaxDelegationDepth = 2
)

// Validate checks that the agent definition is usable.
func (a *Agent) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return &ValidationError{Field: "agent.name", Message: "must not be empty"}
	}
	if strings.TrimSpace(a.Role) == "" {
		return &ValidationError{Field: "agent.role", Message: "must not be empty for agent " + a.Name}
	}
	return nil
}

// SystemPrompt renders the agent's persona as a system prompt.
func (a *Agent) SystemPrompt() string {
	var b strings.Builder
	b.WriteString("You are ")
	b.WriteString(strings.TrimSpace(a.Role))
	b.WriteString(".")

	if bs := strings.TrimSpace(a.Backstory); bs != "" {
		b.WriteString("\n\n")
		b.WriteString(bs)
	}
	if goal := strings.TrimSpace(a.Goal); goal != "" {
		b.WriteString("\n\nYour goal: ")
		b.WriteString(goal)
	}
	return b.String()
}
