package application

import (
	"context"
	"errors"
	"log/slog"
)

type Daemon struct {
	guard       *InstanceGuard
	suppression *SuppressionClock
	scheduler   *Scheduler
	logger      *slog.Logger
}

func NewDaemon(guard *InstanceGuard, suppression *SuppressionClock, scheduler *Scheduler, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}

	return &Daemon{guard: guard, suppression: suppression, scheduler: scheduler, logger: logger}
}

// Run acquires the instance lock and runs the scheduler until ctx ends. The
// episode marker and lock record are removed on every exit route once the
// lock is held, including panics.
func (d *Daemon) Run(ctx context.Context) (err error) {
	if err := d.guard.Acquire(ctx); err != nil {
		return err
	}
	d.logger.Info("daemon started")

	defer func() {
		recovered := recover()
		cleanupErr := d.cleanup(context.WithoutCancel(ctx))
		if recovered != nil {
			panic(recovered)
		}
		err = errors.Join(err, cleanupErr)
		d.logger.Info("daemon stopped")
	}()

	return d.scheduler.Run(ctx)
}

func (d *Daemon) cleanup(ctx context.Context) error {
	var errs []error
	if err := d.suppression.Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := d.guard.Release(ctx); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
