package llm

import (
	"fmt"
	"strings"
)

// Provider names accepted by New.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// New creates a backend for the named provider. An empty provider selects
// Anthropic.
func New(provider string, opts ...Option) (LLM, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderAnthropic:
		return NewAnthropic(opts...), nil
	case ProviderOpenAI:
		return NewOpenAI(opts...), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}
