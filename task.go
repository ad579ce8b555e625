package altair

import (
	"strings"
)

// Task describes one unit of work for a crew. Tasks run in order, each
// feeding its output to the next as context.
type Task struct {
	// Name identifies the task in results and logs
	Name string

	// Description is the instruction given to the agent. Placeholders in
	// curly braces ({message}, {history}) are filled from Kickoff inputs.
	Description string

	// ExpectedOutput describes what a good answer looks like (optional)
	ExpectedOutput string

	// Agent names the crew member that runs this task.
	// Empty means the crew's first agent.
	Agent string
}

// Validate checks that the task definition is usable.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return &ValidationError{Field: "task.name", Message: "must not be empty"}
	}
	if strings.TrimSpace(t.Description) == "" {
		return &ValidationError{Field: "task.description", Message: "must not be empty for task " + t.Name}
	}
	return nil
}

// Render produces the task prompt with inputs interpolated. Placeholders
// with no matching input are left as-is.
func (t *Task) Render(inputs map[string]string) string {
	prompt := interpolate(t.Description, inputs)
	if eo := strings.TrimSpace(t.ExpectedOutput); eo != "" {
		prompt += "\n\nExpected output: " + interpolate(eo, inputs)
	}
	return prompt
}

func interpolate(s string, inputs map[string]string) string {
	if len(inputs) == 0 || !strings.Contains(s, "{") {
		return s
	}
	pairs := make([]string, 0, len(inputs)*2)
	for k, v := range inputs {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
