package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/bnema/taskguard/internal/domain"
	"github.com/bnema/taskguard/internal/ports"
)

type EpisodeRunner interface {
	Run(ctx context.Context) (domain.EpisodeOutcome, error)
}

type TickDecision string

const (
	TickSatisfied  TickDecision = "satisfied"
	TickSuppressed TickDecision = "suppressed"
	TickEpisode    TickDecision = "episode"
)

type TickReport struct {
	Decision TickDecision
	Count    int
	Outcome  domain.EpisodeOutcome
}

type SchedulerConfig struct {
	PollInterval      time.Duration
	SuppressionWindow time.Duration
	Horizon           time.Duration
}

type Scheduler struct {
	counter     ports.TaskCounter
	suppression *SuppressionClock
	episodes    EpisodeRunner
	clock       ports.Clock
	logger      *slog.Logger
	cfg         SchedulerConfig
	wake        <-chan struct{}

	// lastEpisodeStart keeps backpressure after an abandoned episode has
	// cleared the persisted marker. A satisfied episode resets it.
	lastEpisodeStart time.Time
}

type SchedulerOption func(*Scheduler)

func WithSchedulerClock(clock ports.Clock) SchedulerOption {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWake adds an extra trigger: every receive runs a tick ahead of the
// poll interval.
func WithWake(wake <-chan struct{}) SchedulerOption {
	return func(s *Scheduler) {
		s.wake = wake
	}
}

func NewScheduler(counter ports.TaskCounter, suppression *SuppressionClock, episodes EpisodeRunner, cfg SchedulerConfig, opts ...SchedulerOption) *Scheduler {
	if cfg.SuppressionWindow <= 0 {
		cfg.SuppressionWindow = cfg.PollInterval
	}

	s := &Scheduler{
		counter:     counter,
		suppression: suppression,
		episodes:    episodes,
		clock:       ports.SystemClock{},
		logger:      slog.Default(),
		cfg:         cfg,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Scheduler) Tick(ctx context.Context) (TickReport, error) {
	count := s.counter.CountActionable(ctx, s.cfg.Horizon)
	if count > 0 {
		if err := s.suppression.Clear(ctx); err != nil {
			s.logger.Warn("episode marker not cleared", "error", err)
		}
		s.lastEpisodeStart = time.Time{}
		s.logger.Debug("invariant holds", "count", count)
		return TickReport{Decision: TickSatisfied, Count: count}, nil
	}

	if s.suppressed(ctx) {
		s.logger.Debug("episode suppressed", "window", s.cfg.SuppressionWindow.String())
		return TickReport{Decision: TickSuppressed}, nil
	}

	s.lastEpisodeStart = s.clock.Now()
	outcome, err := s.episodes.Run(ctx)
	if outcome == domain.OutcomeSatisfied {
		s.lastEpisodeStart = time.Time{}
	}

	return TickReport{Decision: TickEpisode, Outcome: outcome}, err
}

func (s *Scheduler) suppressed(ctx context.Context) bool {
	if s.suppression.IsEpisodeRecent(ctx, s.cfg.SuppressionWindow) {
		return true
	}
	if s.lastEpisodeStart.IsZero() {
		return false
	}

	return s.clock.Now().Sub(s.lastEpisodeStart) < s.cfg.SuppressionWindow
}

// Run ticks immediately and then on every poll interval until ctx ends.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	s.logger.Info("scheduler started",
		"poll_interval", s.cfg.PollInterval.String(),
		"horizon", s.cfg.Horizon.String(),
		"suppression_window", s.cfg.SuppressionWindow.String(),
	)

	for {
		report, err := s.Tick(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			s.logger.Warn("tick failed", "error", err)
		} else if report.Decision == TickEpisode {
			s.logger.Info("tick ran episode", "outcome", string(report.Outcome))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-s.wake:
			s.logger.Debug("woken early")
		}
	}
}
