// Package command executes external tool commands for package runners.
package command

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/captainhammy/houdini-package-runner/pkg/exitcode"
	"github.com/captainhammy/houdini-package-runner/pkg/logger"
)

// Run executes a command, waiting for it to complete.
//
// When verbose is true the command output streams directly to the caller's
// stdout/stderr. Otherwise output is captured and only replayed if the command
// exits non-zero. The exit code of the command is returned.
func Run(args []string, verbose bool) (int, error) {
	if len(args) == 0 {
		return exitcode.GeneralError, errors.New("empty command")
	}

	cmd := exec.Command(args[0], args[1:]...) // #nosec G204 -- tool commands are assembled by the runners
	cmd.Env = scrubEnviron(os.Environ())

	var stdout, stderr bytes.Buffer

	if verbose {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	logger.Debug("Executing command", logger.String("command", strings.Join(args, " ")))

	err := cmd.Run()
	if err == nil {
		return exitcode.Success, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Tool ran but reported issues. Replay captured output so the caller
		// can see what went wrong.
		if !verbose {
			replay(stdout.Bytes())
			replay(stderr.Bytes())
		}
		return exitErr.ExitCode(), nil
	}

	if errors.Is(err, exec.ErrNotFound) {
		return exitcode.ToolNotFound, fmt.Errorf("command not found: %s", args[0])
	}

	return exitcode.GeneralError, fmt.Errorf("executing %s: %w", args[0], err)
}

// scrubEnviron removes PYTHONHOME from the environment. A PYTHONHOME leaked
// from a Houdini session breaks the Python tools being invoked.
func scrubEnviron(environ []string) []string {
	env := make([]string, 0, len(environ))

	for _, entry := range environ {
		if strings.HasPrefix(entry, "PYTHONHOME=") {
			continue
		}
		env = append(env, entry)
	}

	return env
}

func replay(output []byte) {
	for _, line := range strings.Split(strings.TrimRight(string(output), "\n"), "\n") {
		if line != "" {
			fmt.Println(line)
		}
	}
}

// AddOrAppendToFlags adds a key/value flag pair to flags, or appends the values
// to the flag's existing value when the key is already present.
func AddOrAppendToFlags(flags []string, key string, values []string, separator string) []string {
	joined := strings.Join(values, separator)

	for i, flag := range flags {
		if flag == key && i+1 < len(flags) {
			flags[i+1] = flags[i+1] + separator + joined
			return flags
		}
	}

	return append(flags, key, joined)
}
