package altair

import (
	"errors"
	"fmt"
)

var (
	// ErrMaxIterationsExceeded is returned when the tool call loop exceeds the limit
	ErrMaxIterationsExceeded = errors.New("maximum iterations exceeded")

	// ErrEmptyResult is returned when an agent produces no output
	ErrEmptyResult = errors.New("empty result")

	// ErrAgentNotFound is returned when looking up an unknown agent
	ErrAgentNotFound = errors.New("agent not found")

	// ErrNoAgents is returned when a crew has no agents
	ErrNoAgents = errors.New("crew has no agents")

	// ErrNoTasks is returned when a crew has no tasks
	ErrNoTasks = errors.New("crew has no tasks")

	// ErrNoLLM is returned when a crew has no language model backend
	ErrNoLLM = errors.New("crew has no llm backend")
)

// CrewError wraps an error with the crew it came from.
type CrewError struct {
	Crew string
	Err  error
}

func (e *CrewError) Error() string {
	return fmt.Sprintf("crew %s: %v", e.Crew, e.Err)
}

func (e *CrewError) Unwrap() error {
	return e.Err
}

// ValidationError reports an invalid field in a crew, agent, or task definition.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
