package altair

import (
	"context"
	"strings"
	"unicode"

	"github.com/everydev1618/goaltair/llm"
)

// Intent labels what kind of work a message needs, deciding which crew
// handles it.
type Intent string

const (
	// IntentGeneral is conversation handled by the gateway crew
	IntentGeneral Intent = "general"

	// IntentSearch is a request for current information from the web
	IntentSearch Intent = "search"

	// IntentTime is a question about time, dates, or astronomy
	IntentTime Intent = "time"

	// IntentCalendar is a question about the user's schedule
	IntentCalendar Intent = "calendar"
)

// IntentClassifier decides which intent a message carries.
type IntentClassifier interface {
	Classify(ctx context.Context, message string) (Intent, error)
}

// ClassifierFunc adapts a function to the IntentClassifier interface.
type ClassifierFunc func(ctx context.Context, message string) (Intent, error)

// Classify calls the function.
func (f ClassifierFunc) Classify(ctx context.Context, message string) (Intent, error) {
	return f(ctx, message)
}

type intentKeywords struct {
	intent  Intent
	words   []string
	phrases []string
}

// KeywordClassifier matches messages against per-intent keyword lists.
// It is fast and free but approximate; use LLMClassifier when accuracy
// matters more than latency.
type KeywordClassifier struct {
	rules []intentKeywords
}

// NewKeywordClassifier builds a classifier with the default keyword rules.
// Rules are checked in order: calendar, time, search.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		rules: []intentKeywords{
			{
				intent:  IntentCalendar,
				words:   []string{"calendar", "schedule", "scheduled", "meeting", "meetings", "appointment", "appointments", "availability", "available", "busy", "agenda"},
				phrases: []string{"free on", "on my calendar", "any events"},
			},
			{
				intent:  IntentTime,
				words:   []string{"time", "date", "today", "timezone", "moon", "sunrise", "sunset", "clock"},
				phrases: []string{"what day is", "moon phase"},
			},
			{
				intent:  IntentSearch,
				words:   []string{"search", "news", "latest", "google", "headlines", "weather"},
				phrases: []string{"look up", "find out", "what is happening", "what's happening"},
			},
		},
	}
}

// Classify never fails; unmatched messages are general.
func (k *KeywordClassifier) Classify(ctx context.Context, message string) (Intent, error) {
	lower := strings.ToLower(message)
	tokens := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	}) {
		tokens[strings.Trim(tok, "'")] = true
	}

	for _, rule := range k.rules {
		for _, w := range rule.words {
			if tokens[w] {
				return rule.intent, nil
			}
		}
		for _, p := range rule.phrases {
			if strings.Contains(lower, p) {
				return rule.intent, nil
			}
		}
	}
	return IntentGeneral, nil
}

const classifierPrompt = `Classify the user message into exactly one category. Reply with only the category name.

Categories:
- search: web search, news, current events, facts to look up
- time: current time, dates, timezones, moon phases, sunrise or sunset
- calendar: the user's schedule, meetings, events, availability
- general: greetings, chat, and anything else

Message: `

// LLMClassifier asks a model to pick the intent. Unparseable replies fall
// back to general.
type LLMClassifier struct {
	backend llm.LLM
}

// NewLLMClassifier builds a classifier on the given backend.
func NewLLMClassifier(backend llm.LLM) *LLMClassifier {
	return &LLMClassifier{backend: backend}
}

// Classify sends the message to the model with a fixed classification prompt.
func (l *LLMClassifier) Classify(ctx context.Context, message string) (Intent, error) {
	resp, err := l.backend.Generate(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: classifierPrompt + message},
	}, nil)
	if err != nil {
		return IntentGeneral, err
	}
	return parseIntent(resp.Content), nil
}

func parseIntent(s string) Intent {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(fields) == 0 {
		return IntentGeneral
	}
	switch Intent(strings.Trim(fields[0], ".:,")) {
	case IntentSearch:
		return IntentSearch
	case IntentTime:
		return IntentTime
	case IntentCalendar:
		return IntentCalendar
	}
	return IntentGeneral
}
