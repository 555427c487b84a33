package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	dialogcommand "github.com/bnema/taskguard/internal/adapters/dialog/command"
	"github.com/bnema/taskguard/internal/adapters/screen"
	watchfs "github.com/bnema/taskguard/internal/adapters/watch/fsnotify"
	"github.com/bnema/taskguard/internal/adapters/window"
	"github.com/bnema/taskguard/internal/application"
	"github.com/bnema/taskguard/internal/domain"
	"github.com/spf13/cobra"
)

const screenDetectTimeout = 5 * time.Second

func newDaemonCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the background enforcement loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()

			daemon, err := buildDaemon(ctx, app)
			if err != nil {
				return err
			}

			if err := daemon.Run(ctx); err != nil {
				if errors.Is(err, domain.ErrAlreadyRunning) {
					return err
				}
				return fmt.Errorf("daemon: %w", err)
			}

			return nil
		},
	}
}

func buildDaemon(ctx context.Context, app *app) (*application.Daemon, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve own executable: %w", err)
	}

	request := domain.DialogRequest{
		Title:      app.cfg.DialogTitle,
		Dimensions: detectDialogDimensions(ctx, app),
	}

	backend := window.DetectBackend(os.Getenv)
	app.logger.Info("display backend detected", "backend", string(backend),
		"dialog_width", request.Dimensions.Width, "dialog_height", request.Dimensions.Height)

	coordinator := application.NewEpisodeCoordinator(
		app.tasks,
		dialogcommand.NewLauncher(app.cfg.DialogCommand, self),
		window.Select(backend, app.logger),
		app.suppression,
		application.CoordinatorConfig{
			Horizon:           app.cfg.Horizon,
			InactivityTimeout: app.cfg.InactivityTimeout,
			RetryPause:        app.cfg.RetryPause,
			Dialog:            request,
		},
		application.WithCoordinatorLogger(app.logger),
	)

	schedulerOpts := []application.SchedulerOption{application.WithSchedulerLogger(app.logger)}
	if app.cfg.WatchTaskData {
		wake, err := watchfs.Watch(ctx, app.cfg.TaskDataDir, watchfs.DefaultDebounce, app.logger)
		if err != nil {
			app.logger.Warn("task data not watched, relying on polling", "dir", app.cfg.TaskDataDir, "error", err)
		} else {
			schedulerOpts = append(schedulerOpts, application.WithWake(wake))
		}
	}

	scheduler := application.NewScheduler(app.tasks, app.suppression, coordinator, application.SchedulerConfig{
		PollInterval:      app.cfg.PollInterval,
		SuppressionWindow: app.cfg.SuppressionWindow,
		Horizon:           app.cfg.Horizon,
	}, schedulerOpts...)

	return application.NewDaemon(app.guard, app.suppression, scheduler, app.logger), nil
}

func detectDialogDimensions(ctx context.Context, app *app) domain.DialogDimensions {
	detectCtx, cancel := context.WithTimeout(ctx, screenDetectTimeout)
	defer cancel()

	width, height, err := screen.NewDetector().Detect(detectCtx)
	if err != nil {
		app.logger.Debug("screen size unknown, using fallback dialog size", "error", err)
	}

	return domain.DialogDimensionsFor(width, height)
}
