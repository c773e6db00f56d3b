package runners

import (
	"github.com/captainhammy/houdini-package-runner/pkg/command"
	"github.com/captainhammy/houdini-package-runner/pkg/items"
)

// ModernizeRunner upgrades Python 2 idioms with python-modernize.
type ModernizeRunner struct {
	*BaseRunner
}

// NewModernizeRunner creates a modernize runner.
func NewModernizeRunner(options Options) (*ModernizeRunner, error) {
	base, err := NewBaseRunner("modernize", options)
	if err != nil {
		return nil, err
	}

	return &ModernizeRunner{BaseRunner: base}, nil
}

// ProcessPath runs python-modernize against the file, skipping any fixers the
// configuration disables for the item.
func (r *ModernizeRunner) ProcessPath(filePath string, item items.Item) (int, error) {
	args := []string{"python-modernize", "--write", "--nobackups"}

	for _, fixer := range r.Config().ConfigData("skip_fixers", item, filePath) {
		args = append(args, "--nofix="+fixer)
	}

	args = append(args, r.ExtraArgs()...)
	args = append(args, filePath)

	return command.Run(args, r.Verbose())
}
