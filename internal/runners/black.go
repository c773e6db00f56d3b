package runners

import (
	"strings"

	"github.com/captainhammy/houdini-package-runner/pkg/command"
	"github.com/captainhammy/houdini-package-runner/pkg/items"
)

// BlackRunner formats Python code with black.
type BlackRunner struct {
	*BaseRunner
}

// NewBlackRunner creates a black runner.
func NewBlackRunner(options Options) (*BlackRunner, error) {
	base, err := NewBaseRunner("black", options)
	if err != nil {
		return nil, err
	}

	return &BlackRunner{BaseRunner: base}, nil
}

// ProcessPath runs black against the file.
//
// Without write-back black runs in check mode and reports a diff instead of
// modifying the file.
func (r *BlackRunner) ProcessPath(filePath string, item items.Item) (int, error) {
	args := buildBlackArgs(filePath, item, r.ExtraArgs(), r.WriteBack())

	return command.Run(args, r.Verbose())
}

// buildBlackArgs assembles the black command line. The target version default
// only applies when the pass-through args don't set one, since black treats
// repeated --target-version flags as additive.
func buildBlackArgs(filePath string, item items.Item, extraArgs []string, writeBack bool) []string {
	args := []string{"black", "--quiet"}

	if !hasFlag(extraArgs, "--target-version") {
		args = append(args, "--target-version=py37")
	}

	// Menu entries are re-wrapped to one statement per line, so a longer line
	// length avoids endless reflow churn.
	if _, ok := item.(*items.MenuFile); ok {
		args = append(args, "--line-length=150")
	}

	if !writeBack {
		args = append(args, "--check", "--diff")
	}

	args = append(args, extraArgs...)

	return append(args, filePath)
}

// hasFlag reports whether any arg is the named flag, in either the separate
// value or --flag=value form.
func hasFlag(args []string, name string) bool {
	for _, arg := range args {
		if arg == name || strings.HasPrefix(arg, name+"=") {
			return true
		}
	}

	return false
}
