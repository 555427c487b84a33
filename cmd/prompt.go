package cmd

import (
	"fmt"
	"os"

	"github.com/bnema/taskguard/internal/adapters/prompt"
	"github.com/spf13/cobra"
)

func newPromptCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Ask for a task interactively",
		Long:  "Open the task form in the current terminal. This is what the daemon runs inside the dialog window.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count := app.service.Count(cmd.Context()); count > 0 {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%d actionable task(s), nothing to add\n", count)
				return err
			}

			result, err := prompt.Run(cmd.Context(), app.service.AddTask, prompt.Options{
				Title:   envOrDefault("TASKGUARD_DIALOG_TITLE", app.cfg.DialogTitle),
				Horizon: app.cfg.Horizon,
				Input:   cmd.InOrStdin(),
				Output:  os.Stderr,
				Count:   app.service.Count,
			})
			if err != nil {
				return fmt.Errorf("prompt: %w", err)
			}

			return writePromptResult(cmd, result)
		},
	}
}

func writePromptResult(cmd *cobra.Command, result prompt.Result) error {
	var err error
	switch result.Outcome {
	case prompt.OutcomeAdded:
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %q (%d actionable)\n", result.Text, result.Count)
	case prompt.OutcomeOutOfHorizon:
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %q, but it is not due within the horizon\n", result.Text)
	case prompt.OutcomeSatisfied:
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d actionable task(s) added elsewhere, closing\n", result.Count)
	default:
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "dismissed")
	}
	return err
}
