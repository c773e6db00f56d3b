package cmd

import (
	"github.com/spf13/cobra"

	"github.com/captainhammy/houdini-package-runner/internal/runners"
)

func newModernizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "modernize",
		Short: "Upgrade Python 2 idioms with python-modernize",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRunner(cmd, args, true, func(options runners.Options) (toolRunner, error) {
				runner, err := runners.NewModernizeRunner(options)
				if err != nil {
					return nil, err
				}

				return runner, nil
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(newModernizeCommand())
}
