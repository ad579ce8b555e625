package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type engineCall struct {
	message string
	history string
}

// scriptedEngine replays canned replies and records every call.
type scriptedEngine struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   []engineCall
}

func (e *scriptedEngine) Respond(ctx context.Context, message, history string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, engineCall{message: message, history: history})
	if e.err != nil {
		return "", e.err
	}
	if len(e.replies) == 0 {
		return "ok", nil
	}
	reply := e.replies[0]
	e.replies = e.replies[1:]
	return reply, nil
}

func (e *scriptedEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func (e *scriptedEngine) call(i int) engineCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[i]
}

// blockingEngine parks every call until the test releases it.
type blockingEngine struct {
	entered chan string
	release chan struct{}
}

func (e *blockingEngine) Respond(ctx context.Context, message, history string) (string, error) {
	e.entered <- message
	<-e.release
	return "done: " + message, nil
}

// fakeStore is an in-memory Store.
type fakeStore struct {
	mu        sync.Mutex
	messages  map[int64][]StoredMessage
	digests   map[string]Digest
	insertErr error
	listErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		messages: make(map[int64][]StoredMessage),
		digests:  make(map[string]Digest),
	}
}

func (s *fakeStore) Init() error  { return nil }
func (s *fakeStore) Close() error { return nil }

func (s *fakeStore) InsertChatMessage(chatID int64, sender, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.messages[chatID] = append(s.messages[chatID], StoredMessage{Sender: sender, Text: text})
	return nil
}

func (s *fakeStore) ListChatMessages(chatID int64, limit int) ([]StoredMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	msgs := s.messages[chatID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]StoredMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *fakeStore) DeleteChatMessages(chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, chatID)
	return nil
}

func (s *fakeStore) UpsertDigest(d Digest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.digests[d.Name] = d
	return nil
}

func (s *fakeStore) ListDigests() ([]Digest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Digest
	for _, d := range s.digests {
		out = append(out, d)
	}
	return out, nil
}

func (s *fakeStore) DeleteDigest(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.digests[name]; !ok {
		return fmt.Errorf("digest %q not found", name)
	}
	delete(s.digests, name)
	return nil
}

func (s *fakeStore) chatMessages(chatID int64) []StoredMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StoredMessage, len(s.messages[chatID]))
	copy(out, s.messages[chatID])
	return out
}

func TestRouteReturnsReplyVerbatim(t *testing.T) {
	reply := "The capital of France is Paris.\n\nAnything else?"
	engine := &scriptedEngine{replies: []string{reply}}
	r := NewRouter(engine, WithRouterLogger(quietLogger()))

	got := r.Route(context.Background(), 1, "capital of France?")
	if got != reply {
		t.Errorf("reply = %q, want %q", got, reply)
	}

	turns := r.History(1)
	if len(turns) != 2 {
		t.Fatalf("history turns = %d, want 2", len(turns))
	}
	if turns[0].Sender != SenderUser || turns[0].Text != "capital of France?" {
		t.Errorf("first turn = %+v", turns[0])
	}
	if turns[1].Sender != SenderAgent || turns[1].Text != reply {
		t.Errorf("second turn = %+v", turns[1])
	}
}

func TestRouteEngineErrorYieldsApology(t *testing.T) {
	engine := &scriptedEngine{err: errors.New("model overloaded")}
	r := NewRouter(engine, WithRouterLogger(quietLogger()))

	got := r.Route(context.Background(), 1, "hello")
	if got != Apology {
		t.Errorf("reply = %q, want the apology", got)
	}
	if strings.Contains(got, "overloaded") {
		t.Error("failure detail leaked into the reply")
	}
	if len(r.History(1)) != 0 {
		t.Error("failed exchange was recorded in history")
	}
}

func TestRouteEmptyReplyYieldsApology(t *testing.T) {
	engine := &scriptedEngine{replies: []string{"  \n\t "}}
	r := NewRouter(engine, WithRouterLogger(quietLogger()))

	if got := r.Route(context.Background(), 1, "hello"); got != Apology {
		t.Errorf("reply = %q, want the apology", got)
	}
	if len(r.History(1)) != 0 {
		t.Error("failed exchange was recorded in history")
	}
}

func TestRouteHistoryGrowsPerExchange(t *testing.T) {
	engine := &scriptedEngine{}
	r := NewRouter(engine, WithRouterLogger(quietLogger()))

	for i := 0; i < 3; i++ {
		r.Route(context.Background(), 1, fmt.Sprintf("message %d", i))
	}
	if got := len(r.History(1)); got != 6 {
		t.Errorf("history turns after 3 exchanges = %d, want 6", got)
	}

	engine.err = errors.New("down")
	r.Route(context.Background(), 1, "one more")
	if got := len(r.History(1)); got != 6 {
		t.Errorf("history turns after a failure = %d, want 6", got)
	}

	engine.err = nil
	r.Route(context.Background(), 1, "recovered")
	if got := len(r.History(1)); got != 8 {
		t.Errorf("history turns after recovery = %d, want 8", got)
	}
}

func TestRouteSecondExchangeSeesFirst(t *testing.T) {
	engine := &scriptedEngine{replies: []string{"Hi there!", "Yesterday was Monday."}}
	r := NewRouter(engine, WithRouterLogger(quietLogger()))

	r.Route(context.Background(), 42, "hello")
	r.Route(context.Background(), 42, "what about yesterday?")

	if engine.callCount() != 2 {
		t.Fatalf("engine calls = %d, want 2", engine.callCount())
	}
	if first := engine.call(0); first.history != "" {
		t.Errorf("first call history = %q, want empty", first.history)
	}
	second := engine.call(1)
	if second.message != "what about yesterday?" {
		t.Errorf("second call message = %q", second.message)
	}
	if !strings.Contains(second.history, "User: hello\nAgent: Hi there!") {
		t.Errorf("second call history = %q, missing first exchange", second.history)
	}
}

func TestRouteHistoryWindow(t *testing.T) {
	engine := &scriptedEngine{replies: []string{"one", "two", "three"}}
	r := NewRouter(engine, WithRouterLogger(quietLogger()), WithHistoryLimit(1))

	r.Route(context.Background(), 1, "first")
	r.Route(context.Background(), 1, "second")
	r.Route(context.Background(), 1, "third")

	turns := r.History(1)
	if len(turns) != 2 {
		t.Fatalf("history turns = %d, want 2", len(turns))
	}
	if turns[0].Text != "third" || turns[1].Text != "three" {
		t.Errorf("window kept %q / %q, want the latest exchange", turns[0].Text, turns[1].Text)
	}
	if hist := engine.call(2).history; hist != "User: second\nAgent: two" {
		t.Errorf("third call history = %q", hist)
	}
}

func TestRouteWritesThroughStore(t *testing.T) {
	store := newFakeStore()
	engine := &scriptedEngine{replies: []string{"sure", "done"}}
	r := NewRouter(engine, WithStore(store), WithRouterLogger(quietLogger()))

	r.Route(context.Background(), 5, "first")
	r.Route(context.Background(), 5, "second")

	msgs := store.chatMessages(5)
	if len(msgs) != 4 {
		t.Fatalf("stored messages = %d, want 4", len(msgs))
	}
	want := []StoredMessage{
		{Sender: "User", Text: "first"},
		{Sender: "Agent", Text: "sure"},
		{Sender: "User", Text: "second"},
		{Sender: "Agent", Text: "done"},
	}
	for i, m := range msgs {
		if m != want[i] {
			t.Errorf("stored[%d] = %+v, want %+v", i, m, want[i])
		}
	}
}

func TestRouteStoreFailureDoesNotAffectReply(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("disk full")
	engine := &scriptedEngine{replies: []string{"fine"}}
	r := NewRouter(engine, WithStore(store), WithRouterLogger(quietLogger()))

	if got := r.Route(context.Background(), 1, "hello"); got != "fine" {
		t.Errorf("reply = %q, want %q", got, "fine")
	}
	if len(r.History(1)) != 2 {
		t.Error("in-memory history should survive a store failure")
	}
}

func TestRouteWarmLoadsStoredHistory(t *testing.T) {
	store := newFakeStore()
	store.InsertChatMessage(7, "User", "remember the milk")
	store.InsertChatMessage(7, "Agent", "Noted, milk it is.")

	engine := &scriptedEngine{replies: []string{"still noted"}}
	r := NewRouter(engine, WithStore(store), WithRouterLogger(quietLogger()))

	r.Route(context.Background(), 7, "what did I ask you?")
	if hist := engine.call(0).history; !strings.Contains(hist, "User: remember the milk\nAgent: Noted, milk it is.") {
		t.Errorf("engine history = %q, missing stored exchange", hist)
	}
	if got := len(r.History(7)); got != 4 {
		t.Errorf("history turns = %d, want 4", got)
	}
}

func TestRouteWarmLoadRespectsWindow(t *testing.T) {
	store := newFakeStore()
	store.InsertChatMessage(3, "User", "old question")
	store.InsertChatMessage(3, "Agent", "old answer")
	store.InsertChatMessage(3, "User", "recent question")
	store.InsertChatMessage(3, "Agent", "recent answer")

	engine := &scriptedEngine{}
	r := NewRouter(engine, WithStore(store), WithRouterLogger(quietLogger()), WithHistoryLimit(1))

	r.Route(context.Background(), 3, "and now?")
	hist := engine.call(0).history
	if strings.Contains(hist, "old question") {
		t.Errorf("engine history = %q, should only hold the latest exchange", hist)
	}
	if !strings.Contains(hist, "User: recent question\nAgent: recent answer") {
		t.Errorf("engine history = %q, missing latest exchange", hist)
	}
}

func TestRouteWarmLoadFailureStartsEmpty(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("corrupt table")
	engine := &scriptedEngine{replies: []string{"hello"}}
	r := NewRouter(engine, WithStore(store), WithRouterLogger(quietLogger()))

	if got := r.Route(context.Background(), 1, "hi"); got != "hello" {
		t.Errorf("reply = %q, want %q", got, "hello")
	}
	if hist := engine.call(0).history; hist != "" {
		t.Errorf("engine history = %q, want empty", hist)
	}
}

func TestRouteSerializesPerChat(t *testing.T) {
	engine := &blockingEngine{entered: make(chan string), release: make(chan struct{})}
	r := NewRouter(engine, WithRouterLogger(quietLogger()))

	done := make(chan string, 2)
	go func() { done <- r.Route(context.Background(), 1, "first") }()

	select {
	case msg := <-engine.entered:
		if msg != "first" {
			t.Fatalf("unexpected message %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first call never reached the engine")
	}

	go func() { done <- r.Route(context.Background(), 1, "second") }()

	// The second message for the same chat must wait its turn.
	select {
	case msg := <-engine.entered:
		t.Fatalf("second call reached the engine early: %q", msg)
	case <-time.After(100 * time.Millisecond):
	}

	engine.release <- struct{}{}
	select {
	case msg := <-engine.entered:
		if msg != "second" {
			t.Fatalf("unexpected message %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second call never reached the engine")
	}
	engine.release <- struct{}{}

	<-done
	<-done

	turns := r.History(1)
	if len(turns) != 4 {
		t.Fatalf("history turns = %d, want 4", len(turns))
	}
	if turns[0].Text != "first" || turns[2].Text != "second" {
		t.Errorf("exchanges out of order: %q then %q", turns[0].Text, turns[2].Text)
	}
}

func TestRouteChatsProceedIndependently(t *testing.T) {
	engine := &blockingEngine{entered: make(chan string), release: make(chan struct{})}
	r := NewRouter(engine, WithRouterLogger(quietLogger()))

	done := make(chan string, 2)
	go func() { done <- r.Route(context.Background(), 1, "slow") }()

	select {
	case <-engine.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first chat never reached the engine")
	}

	go func() { done <- r.Route(context.Background(), 2, "quick") }()

	// A different chat must not queue behind the first one.
	select {
	case msg := <-engine.entered:
		if msg != "quick" {
			t.Fatalf("unexpected message %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second chat was blocked behind the first")
	}

	engine.release <- struct{}{}
	engine.release <- struct{}{}
	<-done
	<-done
}

func TestRouterReset(t *testing.T) {
	store := newFakeStore()
	engine := &scriptedEngine{replies: []string{"hi", "fresh start"}}
	r := NewRouter(engine, WithStore(store), WithRouterLogger(quietLogger()))

	r.Route(context.Background(), 9, "hello")
	if err := r.Reset(9); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if len(r.History(9)) != 0 {
		t.Error("history should be empty after reset")
	}
	if len(store.chatMessages(9)) != 0 {
		t.Error("stored messages should be gone after reset")
	}

	r.Route(context.Background(), 9, "who am I?")
	if hist := engine.call(1).history; hist != "" {
		t.Errorf("engine history after reset = %q, want empty", hist)
	}
}
