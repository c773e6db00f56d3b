package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/captainhammy/houdini-package-runner/pkg/buildinfo"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("houdini-package-runner %s (%s)\n", buildinfo.BinaryVersion, buildinfo.ModuleVersion())
		},
	}
}

func init() {
	rootCmd.AddCommand(newVersionCommand())
}
