package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/taskguard/internal/domain"
	"github.com/bnema/taskguard/internal/ports"
)

type CoordinatorConfig struct {
	Horizon           time.Duration
	InactivityTimeout time.Duration
	RetryPause        time.Duration
	Dialog            domain.DialogRequest
}

// EpisodeCoordinator reopens the interactive surface until an actionable
// task exists or the user has been inactive for InactivityTimeout.
type EpisodeCoordinator struct {
	counter     ports.TaskCounter
	launcher    ports.DialogLauncher
	window      ports.WindowEmphasizer
	suppression *SuppressionClock
	clock       ports.Clock
	sleep       ports.SleepFunc
	logger      *slog.Logger
	cfg         CoordinatorConfig
}

type CoordinatorOption func(*EpisodeCoordinator)

func WithCoordinatorClock(clock ports.Clock) CoordinatorOption {
	return func(c *EpisodeCoordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func WithCoordinatorSleep(sleep ports.SleepFunc) CoordinatorOption {
	return func(c *EpisodeCoordinator) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *EpisodeCoordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewEpisodeCoordinator(
	counter ports.TaskCounter,
	launcher ports.DialogLauncher,
	window ports.WindowEmphasizer,
	suppression *SuppressionClock,
	cfg CoordinatorConfig,
	opts ...CoordinatorOption,
) *EpisodeCoordinator {
	c := &EpisodeCoordinator{
		counter:     counter,
		launcher:    launcher,
		window:      window,
		suppression: suppression,
		clock:       ports.SystemClock{},
		sleep:       ports.Sleep,
		logger:      slog.Default(),
		cfg:         cfg,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run drives one episode to a terminal outcome. It returns OutcomeCanceled
// together with the context error when ctx ends first.
func (c *EpisodeCoordinator) Run(ctx context.Context) (domain.EpisodeOutcome, error) {
	start, err := c.suppression.MarkEpisodeStart(ctx)
	if err != nil {
		c.logger.Warn("episode start not persisted", "error", err)
	}
	c.logger.Info("episode started", "at", start.Format(time.RFC3339))

	lastInteraction := start
	rounds := 0
	for {
		if err := ctx.Err(); err != nil {
			return domain.OutcomeCanceled, err
		}

		if c.counter.CountActionable(ctx, c.cfg.Horizon) > 0 {
			return c.finish(ctx, domain.OutcomeSatisfied, rounds), nil
		}

		idle := c.clock.Now().Sub(lastInteraction)
		if idle >= c.cfg.InactivityTimeout {
			return c.finish(ctx, domain.OutcomeAbandoned, rounds), nil
		}

		rounds++
		interacted := c.runRound(ctx, rounds, c.cfg.InactivityTimeout-idle)
		if interacted {
			lastInteraction = c.clock.Now()
		}

		if err := ctx.Err(); err != nil {
			return domain.OutcomeCanceled, err
		}
		if c.counter.CountActionable(ctx, c.cfg.Horizon) > 0 {
			return c.finish(ctx, domain.OutcomeSatisfied, rounds), nil
		}

		if err := c.sleep(ctx, c.cfg.RetryPause); err != nil {
			return domain.OutcomeCanceled, err
		}
	}
}

// runRound opens the surface once, bounded by the remaining inactivity
// budget. A surface still open at the deadline is terminated. It reports
// whether the surface returned on its own, which counts as an interaction
// whatever its exit status.
func (c *EpisodeCoordinator) runRound(ctx context.Context, round int, budget time.Duration) bool {
	roundCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	emphasisCtx, stopEmphasis := context.WithCancel(roundCtx)
	var wg sync.WaitGroup
	if c.window != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := c.window.TryBringToFront(emphasisCtx, c.cfg.Dialog.Title)
			c.logger.Debug("window emphasis", "result", string(result))
		}()
	}

	err := c.launcher.Launch(roundCtx, c.cfg.Dialog)
	stopEmphasis()
	wg.Wait()

	switch {
	case err == nil:
		return true
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(roundCtx.Err(), context.DeadlineExceeded):
		c.logger.Info("dialog terminated after inactivity", "round", round, "budget", budget.String())
		return false
	case errors.Is(err, domain.ErrDialogUnavailable):
		c.logger.Warn("dialog could not be started", "round", round, "error", err)
		return false
	case ctx.Err() != nil:
		return false
	default:
		c.logger.Warn("dialog exited abnormally", "round", round, "error", err)
		return true
	}
}

func (c *EpisodeCoordinator) finish(ctx context.Context, outcome domain.EpisodeOutcome, rounds int) domain.EpisodeOutcome {
	if err := c.suppression.Clear(ctx); err != nil {
		c.logger.Warn("episode marker not cleared", "error", err)
	}
	c.logger.Info("episode finished", "outcome", string(outcome), "rounds", rounds)

	return outcome
}
