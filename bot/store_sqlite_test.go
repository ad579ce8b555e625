package bot

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bot.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return store, path
}

func TestSQLiteStoreInitIsIdempotent(t *testing.T) {
	store, _ := openTestStore(t)
	if err := store.Init(); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
}

func TestSQLiteStoreChatMessages(t *testing.T) {
	store, _ := openTestStore(t)

	for _, m := range []struct {
		chatID int64
		sender string
		text   string
	}{
		{1, "User", "first"},
		{1, "Agent", "reply one"},
		{2, "User", "other chat"},
		{1, "User", "second"},
		{1, "Agent", "reply two"},
	} {
		if err := store.InsertChatMessage(m.chatID, m.sender, m.text); err != nil {
			t.Fatalf("InsertChatMessage failed: %v", err)
		}
	}

	all, err := store.ListChatMessages(1, 0)
	if err != nil {
		t.Fatalf("ListChatMessages failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("messages = %d, want 4", len(all))
	}
	if all[0].Text != "first" || all[3].Text != "reply two" {
		t.Errorf("messages out of order: %v", all)
	}

	recent, err := store.ListChatMessages(1, 2)
	if err != nil {
		t.Fatalf("ListChatMessages with limit failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("limited messages = %d, want 2", len(recent))
	}
	if recent[0].Text != "second" || recent[1].Text != "reply two" {
		t.Errorf("limit kept %v, want the newest entries oldest first", recent)
	}

	if err := store.DeleteChatMessages(1); err != nil {
		t.Fatalf("DeleteChatMessages failed: %v", err)
	}
	gone, err := store.ListChatMessages(1, 0)
	if err != nil {
		t.Fatalf("ListChatMessages after delete failed: %v", err)
	}
	if len(gone) != 0 {
		t.Errorf("messages after delete = %d, want 0", len(gone))
	}

	other, err := store.ListChatMessages(2, 0)
	if err != nil {
		t.Fatalf("ListChatMessages for other chat failed: %v", err)
	}
	if len(other) != 1 {
		t.Errorf("other chat messages = %d, want 1", len(other))
	}
}

func TestSQLiteStoreDigests(t *testing.T) {
	store, _ := openTestStore(t)

	morning := Digest{
		Name:      "morning-agenda",
		Cron:      "0 8 * * *",
		ChatID:    42,
		Prompt:    "What is on my calendar today?",
		Enabled:   true,
		CreatedAt: time.Now(),
	}
	news := Digest{
		Name:      "evening-news",
		Cron:      "0 19 * * *",
		ChatID:    42,
		Prompt:    "search for today's top news",
		Enabled:   false,
		CreatedAt: time.Now(),
	}
	for _, d := range []Digest{news, morning} {
		if err := store.UpsertDigest(d); err != nil {
			t.Fatalf("UpsertDigest failed: %v", err)
		}
	}

	digests, err := store.ListDigests()
	if err != nil {
		t.Fatalf("ListDigests failed: %v", err)
	}
	if len(digests) != 2 {
		t.Fatalf("digests = %d, want 2", len(digests))
	}
	if digests[0].Name != "evening-news" || digests[1].Name != "morning-agenda" {
		t.Errorf("digests not ordered by name: %v", digests)
	}
	got := digests[1]
	if got.Cron != morning.Cron || got.ChatID != morning.ChatID || got.Prompt != morning.Prompt || !got.Enabled {
		t.Errorf("digest round trip = %+v", got)
	}
	if got.CreatedAt.Unix() != morning.CreatedAt.Unix() {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, morning.CreatedAt)
	}

	morning.Cron = "30 7 * * *"
	if err := store.UpsertDigest(morning); err != nil {
		t.Fatalf("UpsertDigest replace failed: %v", err)
	}
	digests, err = store.ListDigests()
	if err != nil {
		t.Fatalf("ListDigests failed: %v", err)
	}
	if len(digests) != 2 {
		t.Fatalf("digests after replace = %d, want 2", len(digests))
	}
	if digests[1].Cron != "30 7 * * *" {
		t.Errorf("replaced cron = %q", digests[1].Cron)
	}

	if err := store.DeleteDigest("evening-news"); err != nil {
		t.Fatalf("DeleteDigest failed: %v", err)
	}
	if err := store.DeleteDigest("evening-news"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("deleting a missing digest = %v, want sql.ErrNoRows", err)
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	store, path := openTestStore(t)

	if err := store.InsertChatMessage(1, "User", "persist me"); err != nil {
		t.Fatalf("InsertChatMessage failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	if err := reopened.Init(); err != nil {
		t.Fatalf("Init after reopen failed: %v", err)
	}

	msgs, err := reopened.ListChatMessages(1, 0)
	if err != nil {
		t.Fatalf("ListChatMessages failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Text != "persist me" {
		t.Errorf("messages after reopen = %v", msgs)
	}
}
