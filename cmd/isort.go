package cmd

import (
	"github.com/spf13/cobra"

	"github.com/captainhammy/houdini-package-runner/internal/runners"
)

func newIsortCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "isort",
		Short: "Sort package Python imports with isort",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRunner(cmd, args, !check, func(options runners.Options) (toolRunner, error) {
				runner, err := runners.NewIsortRunner(options)
				if err != nil {
					return nil, err
				}

				return runner, nil
			})
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Report import order changes without writing them")

	return cmd
}

func init() {
	rootCmd.AddCommand(newIsortCommand())
}
