package cmd

import (
	"github.com/spf13/cobra"

	"github.com/captainhammy/houdini-package-runner/internal/runners"
)

func newFlake8Command() *cobra.Command {
	return &cobra.Command{
		Use:   "flake8",
		Short: "Lint package Python code with flake8",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRunner(cmd, args, false, func(options runners.Options) (toolRunner, error) {
				runner, err := runners.NewFlake8Runner(options)
				if err != nil {
					return nil, err
				}

				return runner, nil
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(newFlake8Command())
}
