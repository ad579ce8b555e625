package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// SendFunc delivers a digest reply to a chat, normally (*Bot).Send.
type SendFunc func(chatID int64, text string)

// Scheduler fires digests on cron schedules. Each digest's prompt goes
// through the Router like any user message and the reply is delivered to
// the digest's chat.
type Scheduler struct {
	c      *cron.Cron
	router *Router
	send   SendFunc
	store  Store
	logger *slog.Logger

	mu      sync.Mutex
	digests []Digest
	entries map[string]cron.EntryID // digest name → cron entry ID
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerStore persists digests and restores them on Start.
func WithSchedulerStore(store Store) SchedulerOption {
	return func(s *Scheduler) { s.store = store }
}

// WithSchedulerLogger sets the logger.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = logger }
}

// NewScheduler creates a Scheduler that routes digest prompts through the
// given Router and delivers the replies with send.
func NewScheduler(router *Router, send SendFunc, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		c:       cron.New(),
		router:  router,
		send:    send,
		logger:  slog.Default(),
		entries: make(map[string]cron.EntryID),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start restores persisted digests, begins the cron runner and blocks
// until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.restore()
	s.c.Start()
	s.logger.Info("scheduler started", "digests", len(s.List()))
	<-ctx.Done()
	s.c.Stop()
	s.logger.Info("scheduler stopped")
}

// Add schedules a digest and persists it. A digest already registered
// under the same name is replaced. Disabled digests are kept and persisted
// without a cron entry so they can be turned back on later.
func (s *Scheduler) Add(d Digest) error {
	return s.add(d, true)
}

// Remove unschedules a digest and deletes it from the store.
func (s *Scheduler) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entries[name]
	if !ok {
		// May exist as a disabled digest with no cron entry.
		found := false
		for _, d := range s.digests {
			if d.Name == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("digest %q not found", name)
		}
	} else {
		s.c.Remove(id)
		delete(s.entries, name)
	}

	s.digests = removeDigestByName(s.digests, name)

	if s.store != nil {
		if err := s.store.DeleteDigest(name); err != nil {
			s.logger.Warn("scheduler: failed to delete digest from store", "name", name, "error", err)
		}
	}

	s.logger.Info("scheduler: digest removed", "name", name)
	return nil
}

// List returns a snapshot of the registered digests.
func (s *Scheduler) List() []Digest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Digest, len(s.digests))
	copy(out, s.digests)
	return out
}

func (s *Scheduler) add(d Digest, persist bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	// Replace any digest already registered under this name.
	if id, ok := s.entries[d.Name]; ok {
		s.c.Remove(id)
		delete(s.entries, d.Name)
	}
	s.digests = removeDigestByName(s.digests, d.Name)

	if d.Enabled {
		entryID, err := s.c.AddFunc(d.Cron, s.makeFunc(d))
		if err != nil {
			return fmt.Errorf("invalid cron expression %q: %w", d.Cron, err)
		}
		s.entries[d.Name] = entryID
	}
	s.digests = append(s.digests, d)

	if persist && s.store != nil {
		if err := s.store.UpsertDigest(d); err != nil {
			s.logger.Warn("scheduler: failed to persist digest", "name", d.Name, "error", err)
		}
	}

	s.logger.Info("scheduler: digest added",
		"name", d.Name, "cron", d.Cron, "chat_id", d.ChatID, "enabled", d.Enabled)
	return nil
}

// restore loads digests from the store into the cron runner. A bad entry
// is skipped so it cannot block startup.
func (s *Scheduler) restore() {
	if s.store == nil {
		return
	}
	digests, err := s.store.ListDigests()
	if err != nil {
		s.logger.Warn("scheduler: failed to load digests", "error", err)
		return
	}
	for _, d := range digests {
		if err := s.add(d, false); err != nil {
			s.logger.Warn("scheduler: failed to restore digest", "name", d.Name, "error", err)
		}
	}
}

// makeFunc returns the cron callback for a digest.
func (s *Scheduler) makeFunc(d Digest) func() {
	return func() {
		s.logger.Info("scheduler: firing digest", "name", d.Name, "chat_id", d.ChatID)
		reply := s.router.Route(context.Background(), d.ChatID, d.Prompt)
		s.send(d.ChatID, reply)
	}
}

func removeDigestByName(digests []Digest, name string) []Digest {
	out := digests[:0]
	for _, d := range digests {
		if d.Name != name {
			out = append(out, d)
		}
	}
	return out
}
