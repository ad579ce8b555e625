package bot

import "testing"

func TestHistorySerialize(t *testing.T) {
	h := NewHistory(0)
	if got := h.Serialize(); got != "" {
		t.Errorf("empty history serialized to %q", got)
	}

	h.Append(SenderUser, "hello")
	h.Append(SenderAgent, "Hi there!")
	h.Append(SenderUser, "how are you?")

	want := "User: hello\nAgent: Hi there!\nUser: how are you?"
	if got := h.Serialize(); got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestHistoryWindowEvictsOldest(t *testing.T) {
	h := NewHistory(2)
	for _, text := range []string{"a", "b", "c"} {
		h.Append(SenderUser, text)
		h.Append(SenderAgent, "re: "+text)
	}

	if h.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", h.Len())
	}
	turns := h.Turns()
	if turns[0].Text != "b" || turns[3].Text != "re: c" {
		t.Errorf("window = %v", turns)
	}
}

func TestHistoryUnlimited(t *testing.T) {
	h := NewHistory(0)
	for i := 0; i < 50; i++ {
		h.Append(SenderUser, "q")
		h.Append(SenderAgent, "a")
	}
	if h.Len() != 100 {
		t.Errorf("Len() = %d, want 100", h.Len())
	}
}

func TestHistoryTurnsIsACopy(t *testing.T) {
	h := NewHistory(0)
	h.Append(SenderUser, "original")

	turns := h.Turns()
	turns[0].Text = "mutated"
	if h.Turns()[0].Text != "original" {
		t.Error("Turns() exposed internal state")
	}
}
