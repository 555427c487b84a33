package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "taskguard",
		Short:         "taskguard: keep at least one task due soon",
		Long:          "taskguard watches your task list and, whenever no pending task is due within the horizon, keeps asking you to add one until you do.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp(os.Stderr)
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newDaemonCmd(app),
		newPromptCmd(app),
		newAddCmd(app),
		newCheckCmd(app),
		newStatusCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}
