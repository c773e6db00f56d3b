package cmd

import (
	"github.com/spf13/cobra"

	"github.com/captainhammy/houdini-package-runner/internal/runners"
)

func newBlackCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "black",
		Short: "Format package Python code with black",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRunner(cmd, args, !check, func(options runners.Options) (toolRunner, error) {
				runner, err := runners.NewBlackRunner(options)
				if err != nil {
					return nil, err
				}

				return runner, nil
			})
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Report formatting changes without writing them")

	return cmd
}

func init() {
	rootCmd.AddCommand(newBlackCommand())
}
