package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Apology is the fixed reply sent when the engine fails. Nothing about the
// failure reaches the user.
const Apology = "I'm sorry, I encountered an error while processing your request. " +
	"Please try again or contact support if the issue persists."

// Engine produces a reply to one message given the serialized prior
// conversation. *altair.Orchestrator satisfies it.
type Engine interface {
	Respond(ctx context.Context, message, history string) (string, error)
}

// Router dispatches incoming messages to the engine and maintains one
// history per chat. Messages within a chat are handled strictly in order
// while separate chats proceed concurrently.
type Router struct {
	engine   Engine
	store    Store
	logger   *slog.Logger
	maxTurns int

	mu    sync.Mutex
	chats map[int64]*chatState
}

type chatState struct {
	mu      sync.Mutex
	history *History
	loaded  bool
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithStore persists transcripts and reloads recent history after restarts.
func WithStore(store Store) RouterOption {
	return func(r *Router) { r.store = store }
}

// WithHistoryLimit caps how many exchanges each chat retains.
func WithHistoryLimit(maxTurns int) RouterOption {
	return func(r *Router) { r.maxTurns = maxTurns }
}

// WithRouterLogger sets the logger.
func WithRouterLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) { r.logger = logger }
}

// NewRouter creates a Router in front of the given engine.
func NewRouter(engine Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:   engine,
		logger:   slog.Default(),
		maxTurns: DefaultHistoryTurns,
		chats:    make(map[int64]*chatState),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route handles one incoming message for a chat and always returns a
// non-empty reply. The engine sees the chat's serialized prior history; on
// success both turns are appended to it and the engine's reply is returned
// verbatim. Any engine failure yields Apology and leaves the history
// untouched, so the history only ever holds completed exchanges.
func (r *Router) Route(ctx context.Context, chatID int64, text string) string {
	state := r.chat(chatID)
	state.mu.Lock()
	defer state.mu.Unlock()

	r.warmLoad(state, chatID)

	reply, err := r.engine.Respond(ctx, text, state.history.Serialize())
	if err != nil {
		r.logger.Error("router: engine failure", "chat_id", chatID, "error", err)
		return Apology
	}
	if strings.TrimSpace(reply) == "" {
		r.logger.Error("router: engine returned an empty reply", "chat_id", chatID)
		return Apology
	}

	state.history.Append(SenderUser, text)
	state.history.Append(SenderAgent, reply)
	r.persist(chatID, text, reply)
	return reply
}

// History returns a copy of the retained turns for a chat, oldest first.
func (r *Router) History(chatID int64) []Turn {
	state := r.chat(chatID)
	state.mu.Lock()
	defer state.mu.Unlock()
	r.warmLoad(state, chatID)
	return state.history.Turns()
}

// Reset clears a chat's history in memory and, when a store is configured,
// on disk.
func (r *Router) Reset(chatID int64) error {
	state := r.chat(chatID)
	state.mu.Lock()
	defer state.mu.Unlock()

	state.history = NewHistory(r.maxTurns)
	state.loaded = true
	if r.store != nil {
		if err := r.store.DeleteChatMessages(chatID); err != nil {
			return fmt.Errorf("delete chat messages: %w", err)
		}
	}
	return nil
}

// chat returns the state for a chat, creating it on first contact.
func (r *Router) chat(chatID int64) *chatState {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.chats[chatID]
	if !ok {
		state = &chatState{history: NewHistory(r.maxTurns)}
		r.chats[chatID] = state
	}
	return state
}

// warmLoad fills a chat's history from the store once, so conversations
// survive restarts. Callers must hold state.mu.
func (r *Router) warmLoad(state *chatState, chatID int64) {
	if state.loaded {
		return
	}
	state.loaded = true
	if r.store == nil {
		return
	}
	msgs, err := r.store.ListChatMessages(chatID, 2*r.maxTurns)
	if err != nil {
		r.logger.Warn("router: failed to load history", "chat_id", chatID, "error", err)
		return
	}
	for _, m := range msgs {
		state.history.Append(Sender(m.Sender), m.Text)
	}
}

// persist writes a completed exchange through to the store. Failures are
// logged and never surfaced to the chat.
func (r *Router) persist(chatID int64, text, reply string) {
	if r.store == nil {
		return
	}
	if err := r.store.InsertChatMessage(chatID, string(SenderUser), text); err != nil {
		r.logger.Warn("router: failed to persist user message", "chat_id", chatID, "error", err)
	}
	if err := r.store.InsertChatMessage(chatID, string(SenderAgent), reply); err != nil {
		r.logger.Warn("router: failed to persist reply", "chat_id", chatID, "error", err)
	}
}
