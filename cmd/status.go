package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	statusadapter "github.com/bnema/taskguard/internal/adapters/render/status"
	"github.com/bnema/taskguard/internal/domain"
	"github.com/spf13/cobra"
)

type statusJSON struct {
	ActionableCount int        `json:"actionable_count"`
	Satisfied       bool       `json:"satisfied"`
	Horizon         string     `json:"horizon"`
	PollInterval    string     `json:"poll_interval"`
	DaemonPID       int        `json:"daemon_pid,omitempty"`
	DaemonRunning   bool       `json:"daemon_running"`
	EpisodeStart    *time.Time `json:"episode_start,omitempty"`
	RuntimeDir      string     `json:"runtime_dir"`
}

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show task coverage, daemon and episode state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshot := app.service.Snapshot(cmd.Context())
			return writeStatusOutput(cmd, app, snapshot, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print status as JSON")
	return cmd
}

func writeStatusOutput(cmd *cobra.Command, app *app, snapshot domain.Snapshot, asJSON bool) error {
	if asJSON {
		payload := statusJSON{
			ActionableCount: snapshot.ActionableCount,
			Satisfied:       snapshot.Satisfied(),
			Horizon:         snapshot.Horizon.String(),
			PollInterval:    snapshot.PollInterval.String(),
			DaemonPID:       snapshot.LockOwner,
			DaemonRunning:   snapshot.LockOwnerAlive,
			RuntimeDir:      app.cfg.RuntimeDir,
		}
		if !snapshot.EpisodeStart.IsZero() {
			start := snapshot.EpisodeStart.UTC()
			payload.EpisodeStart = &start
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	rendered, err := app.statusRenderer(snapshot, statusadapter.RenderOptions{
		Now:               app.now(),
		RuntimeDir:        app.cfg.RuntimeDir,
		SuppressionWindow: app.cfg.SuppressionWindow,
		InactivityTimeout: app.cfg.InactivityTimeout,
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
