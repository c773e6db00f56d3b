package runners

import (
	"github.com/captainhammy/houdini-package-runner/pkg/command"
	"github.com/captainhammy/houdini-package-runner/pkg/items"
)

// PylintRunner lints Python code with pylint.
type PylintRunner struct {
	*BaseRunner
}

// NewPylintRunner creates a pylint runner.
func NewPylintRunner(options Options) (*PylintRunner, error) {
	base, err := NewBaseRunner("pylint", options)
	if err != nil {
		return nil, err
	}

	return &PylintRunner{BaseRunner: base}, nil
}

// ProcessPath runs pylint against the file.
//
// The item's execution context builtins are passed via --additional-builtins
// and configured checks to disable via --disable, merging with any values
// already supplied in the pass-through args.
func (r *PylintRunner) ProcessPath(filePath string, item items.Item) (int, error) {
	flags := append([]string{}, r.ExtraArgs()...)

	builtins := append([]string{}, item.IgnoredBuiltins()...)
	builtins = append(builtins, r.Config().ConfigData("known_builtins", item, filePath)...)

	if len(builtins) > 0 {
		flags = command.AddOrAppendToFlags(flags, "--additional-builtins", builtins, ",")
	}

	if toIgnore := r.Config().ConfigData("to_ignore", item, filePath); len(toIgnore) > 0 {
		flags = command.AddOrAppendToFlags(flags, "--disable", toIgnore, ",")
	}

	args := append([]string{"pylint"}, flags...)
	args = append(args, filePath)

	return command.Run(args, r.Verbose())
}
