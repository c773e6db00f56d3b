package runners

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/captainhammy/houdini-package-runner/pkg/items"
)

func TestBuildBlackArgs(t *testing.T) {
	file := items.NewFileItem("/tmp/thing.py", false, "")

	args := buildBlackArgs("/tmp/thing.py", file, nil, true)
	assert.Equal(t, []string{"black", "--quiet", "--target-version=py37", "/tmp/thing.py"}, args)

	args = buildBlackArgs("/tmp/thing.py", file, nil, false)
	assert.Contains(t, args, "--check")
	assert.Contains(t, args, "--diff")
}

func TestBuildBlackArgsUserTargetVersion(t *testing.T) {
	file := items.NewFileItem("/tmp/thing.py", false, "")

	args := buildBlackArgs("/tmp/thing.py", file, []string{"--target-version=py310"}, true)
	assert.NotContains(t, args, "--target-version=py37")
	assert.Contains(t, args, "--target-version=py310")

	// The separate value form also suppresses the default.
	args = buildBlackArgs("/tmp/thing.py", file, []string{"--target-version", "py310"}, true)
	assert.NotContains(t, args, "--target-version=py37")
}

func TestBuildBlackArgsMenuLineLength(t *testing.T) {
	menu := items.NewMenuFile("/tmp/menu.xml", false, "")

	args := buildBlackArgs("/tmp/menu.xml", menu, nil, true)
	assert.Contains(t, args, "--line-length=150")

	file := items.NewFileItem("/tmp/thing.py", false, "")

	args = buildBlackArgs("/tmp/thing.py", file, nil, true)
	assert.NotContains(t, args, "--line-length=150")
}
