package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bnema/taskguard/internal/domain"
	"github.com/bnema/taskguard/internal/ports"
)

const acquireAttempts = 3

// InstanceGuard keeps a single daemon per session through a lock record
// holding the owner's pid. A record naming a dead process is reclaimed.
type InstanceGuard struct {
	store  ports.RecordStore
	probe  ports.ProcessProbe
	logger *slog.Logger
}

func NewInstanceGuard(store ports.RecordStore, probe ports.ProcessProbe, logger *slog.Logger) *InstanceGuard {
	if logger == nil {
		logger = slog.Default()
	}

	return &InstanceGuard{store: store, probe: probe, logger: logger}
}

// Acquire creates the lock record exclusively. An existing record naming a
// live process other than this one fails with domain.ErrAlreadyRunning; a
// dead or unreadable one is removed and creation retried.
func (g *InstanceGuard) Acquire(ctx context.Context) error {
	self := g.probe.Self()
	for attempt := 1; attempt <= acquireAttempts; attempt++ {
		err := g.store.Create(ctx, domain.LockRecordKey, strconv.Itoa(self))
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrRecordExists) {
			return fmt.Errorf("write lock record: %w", err)
		}

		owner, ok := g.Owner(ctx)
		switch {
		case ok && owner == self:
			return nil
		case ok && g.probe.Alive(owner):
			return fmt.Errorf("%w (pid %d)", domain.ErrAlreadyRunning, owner)
		}

		g.logger.Info("reclaiming stale lock", "pid", owner, "attempt", attempt)
		if err := g.Release(ctx); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w: lock record contended", domain.ErrAlreadyRunning)
}

// Release deletes the lock record unconditionally.
func (g *InstanceGuard) Release(ctx context.Context) error {
	if err := g.store.Delete(ctx, domain.LockRecordKey); err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return fmt.Errorf("delete lock record: %w", err)
	}

	return nil
}

// Owner returns the pid named by the lock record. Absent or unreadable
// records report ok=false.
func (g *InstanceGuard) Owner(ctx context.Context) (int, bool) {
	raw, err := g.store.Get(ctx, domain.LockRecordKey)
	if err != nil {
		return 0, false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || pid <= 0 {
		return 0, false
	}

	return pid, true
}

func (g *InstanceGuard) OwnerAlive(ctx context.Context) (int, bool) {
	pid, ok := g.Owner(ctx)
	if !ok {
		return 0, false
	}

	return pid, g.probe.Alive(pid)
}
