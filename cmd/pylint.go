package cmd

import (
	"github.com/spf13/cobra"

	"github.com/captainhammy/houdini-package-runner/internal/runners"
)

func newPylintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pylint",
		Short: "Lint package Python code with pylint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRunner(cmd, args, false, func(options runners.Options) (toolRunner, error) {
				runner, err := runners.NewPylintRunner(options)
				if err != nil {
					return nil, err
				}

				return runner, nil
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(newPylintCommand())
}
