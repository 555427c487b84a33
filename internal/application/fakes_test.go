package application

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/taskguard/internal/domain"
)

type inMemoryRecordStore struct {
	mu      sync.Mutex
	records map[string]string
	putErr  error
}

func newInMemoryRecordStore() *inMemoryRecordStore {
	return &inMemoryRecordStore{records: map[string]string{}}
}

func (s *inMemoryRecordStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.records[key]
	if !ok {
		return "", domain.ErrRecordNotFound
	}
	return value, nil
}

func (s *inMemoryRecordStore) Put(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.putErr != nil {
		return s.putErr
	}
	s.records[key] = value
	return nil
}

func (s *inMemoryRecordStore) Create(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.putErr != nil {
		return s.putErr
	}
	if _, ok := s.records[key]; ok {
		return domain.ErrRecordExists
	}
	s.records[key] = value
	return nil
}

func (s *inMemoryRecordStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

func (s *inMemoryRecordStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.records[key]
	return ok
}

type fakeProbe struct {
	self  int
	alive map[int]bool
}

func (p fakeProbe) Self() int { return p.self }

func (p fakeProbe) Alive(pid int) bool { return p.alive[pid] }

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *manualClock) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.Advance(d)
	return nil
}

type fakeCounter struct {
	mu     sync.Mutex
	count  int
	calls  int
	onCall func(call int)
}

func (c *fakeCounter) CountActionable(_ context.Context, _ time.Duration) int {
	c.mu.Lock()
	c.calls++
	call := c.calls
	hook := c.onCall
	c.mu.Unlock()

	if hook != nil {
		hook(call)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *fakeCounter) set(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count = count
}

type fakeLauncher struct {
	mu       sync.Mutex
	launches int
	requests []domain.DialogRequest
	round    func(round int) error
}

func (l *fakeLauncher) Launch(_ context.Context, req domain.DialogRequest) error {
	l.mu.Lock()
	l.launches++
	round := l.launches
	l.requests = append(l.requests, req)
	l.mu.Unlock()

	if l.round == nil {
		return nil
	}
	return l.round(round)
}

func (l *fakeLauncher) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launches
}

type fakeWindow struct {
	mu     sync.Mutex
	titles []string
}

func (w *fakeWindow) TryBringToFront(_ context.Context, title string) domain.EmphasisResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.titles = append(w.titles, title)
	return domain.EmphasisRefused
}

type fakeEpisodes struct {
	runs    int
	outcome domain.EpisodeOutcome
	run     func(ctx context.Context) (domain.EpisodeOutcome, error)
}

func (e *fakeEpisodes) Run(ctx context.Context) (domain.EpisodeOutcome, error) {
	e.runs++
	if e.run != nil {
		return e.run(ctx)
	}
	return e.outcome, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
