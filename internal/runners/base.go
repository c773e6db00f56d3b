// Package runners implements the external tool runners which process
// discovered package items.
package runners

import (
	"fmt"
	"os"

	"github.com/captainhammy/houdini-package-runner/pkg/config"
	"github.com/captainhammy/houdini-package-runner/pkg/exitcode"
	"github.com/captainhammy/houdini-package-runner/pkg/items"
	"github.com/captainhammy/houdini-package-runner/pkg/logger"
)

// Options carries the settings shared by all runners, resolved by the CLI
// layer from flags and the environment.
type Options struct {
	// ExtraArgs are passed through to the underlying tool.
	ExtraArgs []string

	// HotlCommand expands and collapses binary digital assets.
	HotlCommand string

	// ListItems prints the discovered items instead of processing them.
	ListItems bool

	// Verbose streams tool output instead of capturing it.
	Verbose bool

	// WriteBack enables writing modifications back to the source containers.
	WriteBack bool

	// RootPath is the package root, used to locate tool configuration files.
	RootPath string

	// PythonRootPath is the package Python directory, used to derive
	// first-party package names.
	PythonRootPath string

	// HFSPath is the Houdini install root, used to derive Houdini module names.
	HFSPath string
}

// BaseRunner holds the state shared by all tool runners. Concrete runners
// embed it and implement ProcessPath.
type BaseRunner struct {
	name    string
	tempDir string
	config  *config.RunnerConfig
	options Options
}

// NewBaseRunner creates runner state for the named tool, loading its merged
// configuration and allocating a temp dir for materialized item code.
func NewBaseRunner(name string, options Options) (*BaseRunner, error) {
	cfg, err := config.Load(name)
	if err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp("", "houdini_package_runner_"+name+"_")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}

	return &BaseRunner{
		name:    name,
		tempDir: tempDir,
		config:  cfg,
		options: options,
	}, nil
}

// Name returns the runner name.
func (b *BaseRunner) Name() string { return b.name }

// TempDir returns the directory for materializing item code.
func (b *BaseRunner) TempDir() string { return b.tempDir }

// HotlCommand returns the command used to expand/collapse digital assets.
func (b *BaseRunner) HotlCommand() string { return b.options.HotlCommand }

// Verbose reports whether verbose tool output is enabled.
func (b *BaseRunner) Verbose() bool { return b.options.Verbose }

// WriteBack reports whether modifications are written back.
func (b *BaseRunner) WriteBack() bool { return b.options.WriteBack }

// Config returns the runner's merged configuration.
func (b *BaseRunner) Config() *config.RunnerConfig { return b.config }

// ExtraArgs returns the pass-through tool arguments.
func (b *BaseRunner) ExtraArgs() []string { return b.options.ExtraArgs }

// Cleanup removes the runner temp dir.
func (b *BaseRunner) Cleanup() {
	if err := os.RemoveAll(b.tempDir); err != nil {
		logger.Warn("Failed to remove temp dir", logger.String("path", b.tempDir), logger.Err(err))
	}
}

// Run processes every discovered item with the runner, or lists them when
// list mode is enabled. The worst status across all items is returned; a
// failing item does not stop the others.
func (b *BaseRunner) Run(runner items.Runner, discovered []items.Item) int {
	status := exitcode.Success

	for _, item := range discovered {
		if b.options.ListItems {
			fmt.Println(item)
			continue
		}

		logger.Info("Processing", logger.String("item", item.String()))

		rc, err := item.Process(runner)
		if err != nil {
			logger.Error("Failed to process item", logger.String("item", item.String()), logger.Err(err))
			rc |= exitcode.GeneralError
		}

		status |= rc
	}

	return status
}
