package runners

import (
	"github.com/captainhammy/houdini-package-runner/pkg/command"
	"github.com/captainhammy/houdini-package-runner/pkg/items"
)

// Flake8Runner lints Python code with flake8.
type Flake8Runner struct {
	*BaseRunner
}

// NewFlake8Runner creates a flake8 runner.
func NewFlake8Runner(options Options) (*Flake8Runner, error) {
	base, err := NewBaseRunner("flake8", options)
	if err != nil {
		return nil, err
	}

	return &Flake8Runner{BaseRunner: base}, nil
}

// ProcessPath runs flake8 against the file.
//
// The item's execution context builtins and any configured known builtins are
// passed via --builtins so undefined-name checks don't flag them. Configured
// checks to ignore are appended to --extend-ignore. Both flags merge with any
// values already supplied in the pass-through args.
func (r *Flake8Runner) ProcessPath(filePath string, item items.Item) (int, error) {
	flags := append([]string{}, r.ExtraArgs()...)

	builtins := append([]string{}, item.IgnoredBuiltins()...)
	builtins = append(builtins, r.Config().ConfigData("known_builtins", item, filePath)...)

	if len(builtins) > 0 {
		flags = command.AddOrAppendToFlags(flags, "--builtins", builtins, ",")
	}

	if toIgnore := r.Config().ConfigData("to_ignore", item, filePath); len(toIgnore) > 0 {
		flags = command.AddOrAppendToFlags(flags, "--extend-ignore", toIgnore, ",")
	}

	args := append([]string{"flake8"}, flags...)
	args = append(args, filePath)

	return command.Run(args, r.Verbose())
}
