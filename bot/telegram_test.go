package bot

import "testing"

func TestCommandReply(t *testing.T) {
	tests := []struct {
		command string
		want    string
		ok      bool
	}{
		{"start", WelcomeText, true},
		{"help", HelpText, true},
		{"settings", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := commandReply(tt.command)
		if got != tt.want || ok != tt.ok {
			t.Errorf("commandReply(%q) = %q, %v", tt.command, got, ok)
		}
	}
}

func TestCommandRepliesAreFixed(t *testing.T) {
	for _, command := range []string{"start", "help"} {
		first, _ := commandReply(command)
		second, _ := commandReply(command)
		if first == "" {
			t.Errorf("commandReply(%q) is empty", command)
		}
		if first != second {
			t.Errorf("commandReply(%q) changed between calls", command)
		}
	}
}

func TestAllowedChat(t *testing.T) {
	open := &Bot{}
	if !open.allowedChat(12345) {
		t.Error("a bot without an allow list should admit everyone")
	}

	restricted := &Bot{allowed: map[int64]bool{42: true, 1001: true}}
	if !restricted.allowedChat(42) {
		t.Error("listed chat was rejected")
	}
	if restricted.allowedChat(7) {
		t.Error("unlisted chat was admitted")
	}
}

func TestWithAllowedChats(t *testing.T) {
	b := &Bot{}
	WithAllowedChats(1, 2, 3)(b)
	if len(b.allowed) != 3 || !b.allowed[2] {
		t.Errorf("allowed = %v", b.allowed)
	}
}
