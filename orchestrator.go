package altair

import (
	"context"
	"log/slog"
	"time"
)

// Orchestrator routes incoming messages to crews. Every message goes through
// intent classification; messages with a matching specialist crew go there,
// everything else goes to the gateway crew.
type Orchestrator struct {
	gateway     *Crew
	specialists map[Intent]*Crew
	classifier  IntentClassifier
	logger      *slog.Logger
	now         func() time.Time
}

// OrchestratorOption configures an orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithSpecialist routes messages of the given intent to a dedicated crew.
func WithSpecialist(intent Intent, crew *Crew) OrchestratorOption {
	return func(o *Orchestrator) {
		o.specialists[intent] = crew
	}
}

// WithClassifier sets the intent classifier. Without one, or without any
// specialists, every message goes to the gateway crew.
func WithClassifier(cl IntentClassifier) OrchestratorOption {
	return func(o *Orchestrator) {
		o.classifier = cl
	}
}

// WithOrchestratorLogger sets the structured logger. Defaults to slog.Default.
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an orchestrator with the given gateway crew.
func NewOrchestrator(gateway *Crew, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		gateway:     gateway,
		specialists: make(map[Intent]*Crew),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Validate checks the gateway and every specialist crew.
func (o *Orchestrator) Validate() error {
	if err := o.gateway.Validate(); err != nil {
		return err
	}
	for _, crew := range o.specialists {
		if err := crew.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Crews returns the gateway followed by the specialist crews.
func (o *Orchestrator) Crews() []*Crew {
	crews := []*Crew{o.gateway}
	for _, intent := range []Intent{IntentSearch, IntentTime, IntentCalendar} {
		if crew, ok := o.specialists[intent]; ok {
			crews = append(crews, crew)
		}
	}
	return crews
}

// Respond routes one message to the right crew and returns its reply.
// history is the serialized prior conversation, passed to the crew as the
// {history} input. Task descriptions may also reference {message} and {date},
// today's date in "January 02, 2006" form.
func (o *Orchestrator) Respond(ctx context.Context, message, history string) (string, error) {
	start := time.Now()
	intent := o.classify(ctx, message)

	crew := o.gateway
	if sp, ok := o.specialists[intent]; ok {
		crew = sp
	}

	o.logger.Info("routing message",
		"intent", intent,
		"crew", crew.Name(),
	)

	result, err := crew.Kickoff(ctx, map[string]string{
		"message": message,
		"history": history,
		"date":    o.now().Format("January 02, 2006"),
	})
	if err != nil {
		return "", err
	}

	o.logger.Info("message handled",
		"intent", intent,
		"crew", crew.Name(),
		"duration_ms", time.Since(start).Milliseconds(),
		"cost_usd", result.Usage.CostUSD,
	)
	return result.Raw, nil
}

func (o *Orchestrator) classify(ctx context.Context, message string) Intent {
	if o.classifier == nil || len(o.specialists) == 0 {
		return IntentGeneral
	}
	intent, err := o.classifier.Classify(ctx, message)
	if err != nil {
		o.logger.Warn("intent classification failed, using gateway",
			"error", err,
		)
		return IntentGeneral
	}
	return intent
}
