// Package config loads crew configuration and environment settings for the
// bot and assembles the orchestrator they describe.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config describes the crews the bot runs and how messages route between
// them. Load reads one from a YAML file; Default returns the built-in
// configuration used when no file is given.
type Config struct {
	// Name labels the deployment in logs.
	Name string `yaml:"name"`

	// Provider selects the LLM backend, "anthropic" or "openai".
	// Defaults to "anthropic".
	Provider string `yaml:"provider"`

	// Model is the default model for crews that do not set their own.
	// Empty uses the provider's default.
	Model string `yaml:"model"`

	// Crews maps crew names to their definitions.
	Crews map[string]*CrewConfig `yaml:"crews"`

	// Routing wires incoming messages to crews.
	Routing RoutingConfig `yaml:"routing"`
}

// CrewConfig defines one crew: its agents and the tasks they run in order.
type CrewConfig struct {
	Agents []AgentConfig `yaml:"agents"`
	Tasks  []TaskConfig  `yaml:"tasks"`
}

// AgentConfig defines an agent within a crew.
type AgentConfig struct {
	Name            string   `yaml:"name"`
	Role            string   `yaml:"role"`
	Goal            string   `yaml:"goal"`
	Backstory       string   `yaml:"backstory"`
	Model           string   `yaml:"model"`
	Temperature     *float64 `yaml:"temperature"`
	Tools           []string `yaml:"tools"`
	AllowDelegation bool     `yaml:"allow_delegation"`
	MaxIterations   int      `yaml:"max_iterations"`
}

// TaskConfig defines a task within a crew. Descriptions may reference
// {message}, {history} and {date}; the orchestrator fills them in per
// incoming message.
type TaskConfig struct {
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	ExpectedOutput string `yaml:"expected_output"`
	Agent          string `yaml:"agent"`
}

// RoutingConfig wires incoming messages to crews.
type RoutingConfig struct {
	// Classifier picks how intents are detected: "keyword", "llm" or
	// "none". Defaults to "keyword".
	Classifier string `yaml:"classifier"`

	// Gateway names the crew that handles unrouted messages. Defaults to
	// "gateway".
	Gateway string `yaml:"gateway"`

	// Specialists maps intent names to crew names.
	Specialists map[string]string `yaml:"specialists"`
}

// ValidationError describes a configuration problem and the field path that
// caused it.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// Load reads and validates a YAML crew file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML content into a validated Config with defaults applied.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "altair"
	}
	if c.Provider == "" {
		c.Provider = "anthropic"
	}
	if c.Routing.Gateway == "" {
		c.Routing.Gateway = "gateway"
	}
	if c.Routing.Classifier == "" {
		c.Routing.Classifier = "keyword"
	}
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	switch c.Provider {
	case "", "anthropic", "openai":
	default:
		return &ValidationError{
			Field:   "provider",
			Message: fmt.Sprintf("unknown provider %q", c.Provider),
			Hint:    "valid values: anthropic, openai",
		}
	}

	switch c.Routing.Classifier {
	case "", "keyword", "llm", "none":
	default:
		return &ValidationError{
			Field:   "routing.classifier",
			Message: fmt.Sprintf("unknown classifier %q", c.Routing.Classifier),
			Hint:    "valid values: keyword, llm, none",
		}
	}

	if len(c.Crews) == 0 {
		return &ValidationError{
			Field:   "crews",
			Message: "at least one crew must be defined",
		}
	}

	if _, ok := c.Crews[c.Routing.Gateway]; !ok {
		return &ValidationError{
			Field:   "routing.gateway",
			Message: fmt.Sprintf("crew %q not found", c.Routing.Gateway),
			Hint:    "available crews: " + strings.Join(c.crewNames(), ", "),
		}
	}

	for _, intent := range sortedKeys(c.Routing.Specialists) {
		crew := c.Routing.Specialists[intent]
		if _, ok := c.Crews[crew]; !ok {
			return &ValidationError{
				Field:   "routing.specialists." + intent,
				Message: fmt.Sprintf("crew %q not found", crew),
				Hint:    "available crews: " + strings.Join(c.crewNames(), ", "),
			}
		}
	}

	for _, name := range c.crewNames() {
		if err := c.Crews[name].validate(name); err != nil {
			return err
		}
	}
	return nil
}

func (cc *CrewConfig) validate(crew string) error {
	if len(cc.Agents) == 0 {
		return &ValidationError{
			Field:   "crews." + crew + ".agents",
			Message: "at least one agent must be defined",
		}
	}
	if len(cc.Tasks) == 0 {
		return &ValidationError{
			Field:   "crews." + crew + ".tasks",
			Message: "at least one task must be defined",
		}
	}

	seen := make(map[string]bool, len(cc.Agents))
	model := ""
	for i, a := range cc.Agents {
		field := fmt.Sprintf("crews.%s.agents[%d]", crew, i)
		if a.Name == "" {
			return &ValidationError{Field: field + ".name", Message: "name is required"}
		}
		if a.Role == "" {
			return &ValidationError{Field: field + ".role", Message: "role is required"}
		}
		if seen[a.Name] {
			return &ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate agent name %q", a.Name),
			}
		}
		seen[a.Name] = true

		// Agents in a crew share one backend, so they must agree on the
		// model.
		if a.Model != "" {
			if model != "" && a.Model != model {
				return &ValidationError{
					Field:   field + ".model",
					Message: fmt.Sprintf("conflicting models %q and %q in one crew", model, a.Model),
					Hint:    "set the model once per crew, or split the agents into separate crews",
				}
			}
			model = a.Model
		}
	}

	for i, task := range cc.Tasks {
		field := fmt.Sprintf("crews.%s.tasks[%d]", crew, i)
		if task.Description == "" {
			return &ValidationError{Field: field + ".description", Message: "description is required"}
		}
		if task.Agent != "" && !seen[task.Agent] {
			return &ValidationError{
				Field:   field + ".agent",
				Message: fmt.Sprintf("agent %q not found", task.Agent),
				Hint:    "agents in this crew: " + strings.Join(cc.agentNames(), ", "),
			}
		}
	}
	return nil
}

// model returns the model the crew's agents agreed on, empty when unset.
func (cc *CrewConfig) model() string {
	for _, a := range cc.Agents {
		if a.Model != "" {
			return a.Model
		}
	}
	return ""
}

// temperature returns the first temperature set by an agent, nil when unset.
func (cc *CrewConfig) temperature() *float64 {
	for _, a := range cc.Agents {
		if a.Temperature != nil {
			return a.Temperature
		}
	}
	return nil
}

func (cc *CrewConfig) agentNames() []string {
	names := make([]string, len(cc.Agents))
	for i, a := range cc.Agents {
		names[i] = a.Name
	}
	return names
}

func (c *Config) crewNames() []string {
	return sortedKeys(c.Crews)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
