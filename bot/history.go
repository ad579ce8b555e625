package bot

import "strings"

// DefaultHistoryTurns is how many exchanges a conversation retains.
const DefaultHistoryTurns = 10

// Sender identifies who produced a history turn.
type Sender string

const (
	SenderUser  Sender = "User"
	SenderAgent Sender = "Agent"
)

// Turn is one entry in a conversation history.
type Turn struct {
	Sender Sender
	Text   string
}

// History holds one conversation's retained turns, oldest first. A sliding
// window keeps the most recent exchanges and drops the oldest once the cap
// is reached.
type History struct {
	turns    []Turn
	maxTurns int
}

// NewHistory creates a history retaining at most maxTurns exchanges, where
// an exchange is one user turn plus one agent turn. Zero or negative keeps
// everything.
func NewHistory(maxTurns int) *History {
	return &History{maxTurns: maxTurns}
}

// Append adds a turn, evicting the oldest turns beyond the window.
func (h *History) Append(sender Sender, text string) {
	h.turns = append(h.turns, Turn{Sender: sender, Text: text})
	if h.maxTurns > 0 && len(h.turns) > 2*h.maxTurns {
		h.turns = h.turns[len(h.turns)-2*h.maxTurns:]
	}
}

// Len returns the number of retained turns.
func (h *History) Len() int {
	return len(h.turns)
}

// Turns returns a copy of the retained turns, oldest first.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Serialize renders the history as "User: ..." and "Agent: ..." lines,
// oldest first. Empty history serializes to the empty string.
func (h *History) Serialize() string {
	var b strings.Builder
	for i, turn := range h.turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(turn.Sender))
		b.WriteString(": ")
		b.WriteString(turn.Text)
	}
	return b.String()
}
