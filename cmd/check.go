package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errNoActionableTask = errors.New("no pending task due within the horizon")

func newCheckCmd(app *app) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether a task is due within the horizon",
		Long:  "Print the number of actionable tasks. Exits non-zero when there are none.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			count := app.service.Count(cmd.Context())
			if !quiet {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), count); err != nil {
					return err
				}
			}

			if count == 0 {
				return errNoActionableTask
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only set the exit status")
	return cmd
}
