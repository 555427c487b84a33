package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAddCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <description...>",
		Short: "Add a task without the interactive form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			count, err := app.service.AddTask(cmd.Context(), text)
			if err != nil {
				return err
			}

			if count == 0 {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "task added, but none is due within %s\n", app.cfg.Horizon)
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "task added (%d actionable)\n", count)
			return err
		},
	}
}
