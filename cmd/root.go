// Package cmd implements the houdini-package-runner command line interface.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/captainhammy/houdini-package-runner/internal/runners"
	"github.com/captainhammy/houdini-package-runner/pkg/config"
	"github.com/captainhammy/houdini-package-runner/pkg/discoverers"
	"github.com/captainhammy/houdini-package-runner/pkg/exitcode"
	"github.com/captainhammy/houdini-package-runner/pkg/items"
	_ "github.com/captainhammy/houdini-package-runner/pkg/items/dialogscript"
	"github.com/captainhammy/houdini-package-runner/pkg/logger"
)

// defaultHoudiniItems are the houdini directory item types discovered when
// --houdini-items is not given.
const defaultHoudiniItems = "otls,toolbar,python_panels,pythonXlibs,scripts,soho,menus"

var rootCmd = newRootCommand()

// discoveryFlags are the package discovery options shared by all runner
// subcommands.
type discoveryFlags struct {
	addDirs      []string
	addFiles     []string
	houdiniItems string
	houdiniRoot  string
	pythonRoot   string
	root         string
	skipTests    bool
	listItems    bool
	hotlCommand  string
	verbose      bool
}

type loggingFlags struct {
	logLevel string
	jsonLogs bool
	noColor  bool
}

var (
	discovery discoveryFlags
	logging   loggingFlags

	// exitStatus aggregates tool exit codes across the executed subcommand.
	exitStatus int
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "houdini-package-runner",
		Short: "Run Python tools against Houdini package files",
		Long: `houdini-package-runner discovers the Python code of a Houdini package,
including code embedded in digital assets, menus, shelves and python panels,
and runs formatting and linting tools against it.

Arguments after -- are passed through to the underlying tool.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initializeLogger()
		},
	}

	flags := cmd.PersistentFlags()

	flags.StringSliceVar(&discovery.addDirs, "add-dir", nil, "Additional directory to process")
	flags.StringSliceVar(&discovery.addFiles, "add-file", nil, "Additional file to process")
	flags.StringVar(&discovery.houdiniItems, "houdini-items", defaultHoudiniItems, "Houdini item types to discover")
	flags.StringVar(&discovery.houdiniRoot, "houdini-root", "", "The houdini directory of the package (default \"houdini\" under root)")
	flags.StringVar(&discovery.pythonRoot, "python-root", "python", "The Python package directory under the root")
	flags.StringVar(&discovery.root, "root", "", "The package root (default current directory)")
	flags.BoolVar(&discovery.skipTests, "skip-tests", false, "Skip the package tests directory")
	flags.BoolVar(&discovery.listItems, "list-items", false, "List the discovered items instead of processing them")
	flags.StringVar(&discovery.hotlCommand, "hotl-command", "", "The hotl command used to expand digital assets")
	flags.BoolVarP(&discovery.verbose, "verbose", "v", false, "Stream tool output")

	flags.StringVar(&logging.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.BoolVar(&logging.jsonLogs, "json", false, "Emit logs as JSON")
	flags.BoolVar(&logging.noColor, "no-color", false, "Disable log colors")

	return cmd
}

func initializeLogger() {
	logger.Initialize(logger.Config{
		Level:    logger.ParseLevel(logging.logLevel),
		UseColor: !logging.noColor,
		JSON:     logging.jsonLogs,
	})
}

// toolRunner is the contract a runner subcommand drives.
type toolRunner interface {
	items.Runner

	Run(self items.Runner, discovered []items.Item) int
	Cleanup()
}

// executeRunner performs the shared subcommand flow: resolve settings,
// discover the package items, and process them with the built runner.
//
// The worst tool status is recorded in exitStatus; an error return means the
// run itself could not be performed.
func executeRunner(cmd *cobra.Command, args []string, writeBack bool,
	build func(options runners.Options) (toolRunner, error)) error {
	settings := config.NewSettings()

	root := discovery.root
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving package root: %w", err)
		}

		root = cwd
	}

	hotlCommand := discovery.hotlCommand
	if hotlCommand == "" {
		hotlCommand = settings.GetString("hotl_command")
	}

	options := runners.Options{
		ExtraArgs:      passThroughArgs(cmd, args),
		HotlCommand:    hotlCommand,
		ListItems:      discovery.listItems,
		Verbose:        discovery.verbose,
		WriteBack:      writeBack,
		RootPath:       root,
		PythonRootPath: resolveUnder(root, discovery.pythonRoot),
		HFSPath:        settings.GetString("hfs_path"),
	}

	runner, err := build(options)
	if err != nil {
		return err
	}
	defer runner.Cleanup()

	discoverer, err := discoverers.NewPackageDiscoverer(discoverers.Options{
		Root:         root,
		HoudiniRoot:  discovery.houdiniRoot,
		PythonRoot:   discovery.pythonRoot,
		HoudiniItems: strings.Split(discovery.houdiniItems, ","),
		ExtraDirs:    discovery.addDirs,
		ExtraFiles:   discovery.addFiles,
		SkipTests:    discovery.skipTests,
		WriteBack:    writeBack,
	})
	if err != nil {
		return err
	}

	exitStatus |= runner.Run(runner, discoverer.Items())

	return nil
}

// passThroughArgs returns the arguments after --, which are handed to the
// underlying tool unchanged.
func passThroughArgs(cmd *cobra.Command, args []string) []string {
	at := cmd.ArgsLenAtDash()
	if at < 0 || at >= len(args) {
		return nil
	}

	return args[at:]
}

func resolveUnder(root, path string) string {
	if path == "" {
		return ""
	}

	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(root, path)
}

// Execute runs the CLI and returns the process exit code, folding runner
// failures and tool findings into a single worst-of status.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		// Flag parse errors can arrive before the logger is configured.
		fmt.Fprintln(os.Stderr, "error:", err)

		return exitStatus | exitcode.GeneralError
	}

	return exitStatus
}
