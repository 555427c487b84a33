package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/taskguard/internal/domain"
	"github.com/bnema/taskguard/internal/ports"
)

// Service backs the one-shot commands (add, check, status) with the same
// ports the daemon uses.
type Service struct {
	counter     ports.TaskCounter
	submitter   ports.TaskSubmitter
	guard       *InstanceGuard
	suppression *SuppressionClock
	cfg         domain.Config
}

func NewService(counter ports.TaskCounter, submitter ports.TaskSubmitter, guard *InstanceGuard, suppression *SuppressionClock, cfg domain.Config) *Service {
	return &Service{
		counter:     counter,
		submitter:   submitter,
		guard:       guard,
		suppression: suppression,
		cfg:         cfg,
	}
}

func (s *Service) Count(ctx context.Context) int {
	return s.counter.CountActionable(ctx, s.cfg.Horizon)
}

// AddTask submits free-form text and returns the actionable count observed
// afterwards. A zero count after a successful submit means the task is
// outside the horizon or already overdue.
func (s *Service) AddTask(ctx context.Context, text string) (int, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, domain.ErrEmptyTask
	}

	if err := s.submitter.Submit(ctx, trimmed); err != nil {
		return 0, fmt.Errorf("submit task: %w", err)
	}

	count := s.Count(ctx)
	if count > 0 {
		if err := s.suppression.Clear(ctx); err != nil {
			return count, err
		}
	}

	return count, nil
}

func (s *Service) Snapshot(ctx context.Context) domain.Snapshot {
	snapshot := domain.Snapshot{
		ActionableCount: s.Count(ctx),
		Horizon:         s.cfg.Horizon,
		PollInterval:    s.cfg.PollInterval,
	}

	if pid, alive := s.guard.OwnerAlive(ctx); pid > 0 {
		snapshot.LockOwner = pid
		snapshot.LockOwnerAlive = alive
	}
	if start, ok := s.suppression.StartedAt(ctx); ok {
		snapshot.EpisodeStart = start
	}

	return snapshot
}
