package config

import (
	"fmt"
	"log/slog"

	altair "github.com/everydev1618/goaltair"
	"github.com/everydev1618/goaltair/llm"
	"github.com/everydev1618/goaltair/tools"
)

// Build assembles the orchestrator described by cfg.
//
// Each crew gets an LLM backend for the model and temperature its agents
// set, falling back to the config-wide model and then the provider default.
// Crews with identical settings share a backend. env supplies credentials
// and deploy-time overrides and may be nil; registry supplies the tools
// agents can call and may be nil.
func Build(cfg *Config, env *Env, registry *tools.Tools, logger *slog.Logger) (*altair.Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if env == nil {
		env = &Env{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	provider := cfg.Provider
	if env.Provider != "" {
		provider = env.Provider
	}

	b := &builder{
		provider: provider,
		apiKey:   env.APIKeyFor(provider),
		model:    cfg.Model,
		registry: registry,
		logger:   logger,
		backends: make(map[string]llm.LLM),
	}
	if m := env.ModelFor(provider); m != "" {
		b.model = m
	}

	crews := make(map[string]*altair.Crew, len(cfg.Crews))
	for _, name := range cfg.crewNames() {
		crew, err := b.crew(name, cfg.Crews[name])
		if err != nil {
			return nil, fmt.Errorf("build crew %s: %w", name, err)
		}
		crews[name] = crew
	}

	opts := []altair.OrchestratorOption{
		altair.WithOrchestratorLogger(logger),
	}
	for _, intent := range sortedKeys(cfg.Routing.Specialists) {
		crew := crews[cfg.Routing.Specialists[intent]]
		opts = append(opts, altair.WithSpecialist(altair.Intent(intent), crew))
	}

	classifier, err := b.classifier(cfg.Routing.Classifier)
	if err != nil {
		return nil, err
	}
	if classifier != nil {
		opts = append(opts, altair.WithClassifier(classifier))
	}

	return altair.NewOrchestrator(crews[cfg.Routing.Gateway], opts...), nil
}

type builder struct {
	provider string
	apiKey   string
	model    string
	registry *tools.Tools
	logger   *slog.Logger
	backends map[string]llm.LLM
}

func (b *builder) crew(name string, cc *CrewConfig) (*altair.Crew, error) {
	agents := make([]*altair.Agent, len(cc.Agents))
	for i, ac := range cc.Agents {
		agents[i] = &altair.Agent{
			Name:            ac.Name,
			Role:            ac.Role,
			Goal:            ac.Goal,
			Backstory:       ac.Backstory,
			Model:           ac.Model,
			Temperature:     ac.Temperature,
			Tools:           ac.Tools,
			AllowDelegation: ac.AllowDelegation,
			MaxIterations:   ac.MaxIterations,
		}
	}

	tasks := make([]*altair.Task, len(cc.Tasks))
	for i, tc := range cc.Tasks {
		tasks[i] = &altair.Task{
			Name:           tc.Name,
			Description:    tc.Description,
			ExpectedOutput: tc.ExpectedOutput,
			Agent:          tc.Agent,
		}
	}

	backend, err := b.backend(cc.model(), cc.temperature())
	if err != nil {
		return nil, err
	}

	crewOpts := []altair.CrewOption{
		altair.WithAgents(agents...),
		altair.WithTasks(tasks...),
		altair.WithLLM(backend),
		altair.WithLogger(b.logger),
	}
	if b.registry != nil {
		crewOpts = append(crewOpts, altair.WithTools(b.registry))
	}

	crew := altair.NewCrew(name, crewOpts...)
	if err := crew.Validate(); err != nil {
		return nil, err
	}
	return crew, nil
}

// backend returns a shared LLM backend for the given model and temperature.
func (b *builder) backend(model string, temp *float64) (llm.LLM, error) {
	if model == "" {
		model = b.model
	}
	key := model
	if temp != nil {
		key = fmt.Sprintf("%s@%g", model, *temp)
	}
	if backend, ok := b.backends[key]; ok {
		return backend, nil
	}

	var opts []llm.Option
	if b.apiKey != "" {
		opts = append(opts, llm.WithAPIKey(b.apiKey))
	}
	if model != "" {
		opts = append(opts, llm.WithModel(model))
	}
	if temp != nil {
		opts = append(opts, llm.WithTemperature(*temp))
	}

	backend, err := llm.New(b.provider, opts...)
	if err != nil {
		return nil, err
	}
	b.backends[key] = backend
	return backend, nil
}

func (b *builder) classifier(kind string) (altair.IntentClassifier, error) {
	switch kind {
	case "llm":
		backend, err := b.backend("", nil)
		if err != nil {
			return nil, err
		}
		return altair.NewLLMClassifier(backend), nil
	case "none":
		return nil, nil
	default:
		return altair.NewKeywordClassifier(), nil
	}
}
