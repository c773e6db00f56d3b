package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/captainhammy/houdini-package-runner/pkg/exitcode"
)

func TestRunSuccess(t *testing.T) {
	status, err := Run([]string{"true"}, false)
	require.NoError(t, err)
	assert.Equal(t, exitcode.Success, status)
}

func TestRunToolFailure(t *testing.T) {
	status, err := Run([]string{"false"}, false)

	// A non-zero tool exit is a status, not an error.
	require.NoError(t, err)
	assert.NotEqual(t, exitcode.Success, status)
}

func TestRunNotFound(t *testing.T) {
	status, err := Run([]string{"definitely-not-a-real-tool-name"}, false)
	assert.Error(t, err)
	assert.Equal(t, exitcode.ToolNotFound, status)
}

func TestRunEmpty(t *testing.T) {
	_, err := Run(nil, false)
	assert.Error(t, err)
}

func TestScrubEnviron(t *testing.T) {
	environ := []string{"PATH=/bin", "PYTHONHOME=/hfs/python", "PYTHONPATH=/x"}

	scrubbed := scrubEnviron(environ)

	assert.Equal(t, []string{"PATH=/bin", "PYTHONPATH=/x"}, scrubbed)
}

func TestAddOrAppendToFlags(t *testing.T) {
	tests := []struct {
		name   string
		flags  []string
		key    string
		values []string
		want   []string
	}{
		{
			"new key",
			[]string{"--quiet"},
			"--builtins",
			[]string{"hou", "kwargs"},
			[]string{"--quiet", "--builtins", "hou,kwargs"},
		},
		{
			"existing key",
			[]string{"--builtins", "mat"},
			"--builtins",
			[]string{"hou"},
			[]string{"--builtins", "mat,hou"},
		},
		{
			"empty flags",
			nil,
			"--disable",
			[]string{"a"},
			[]string{"--disable", "a"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, AddOrAppendToFlags(test.flags, test.key, test.values, ","))
		})
	}
}
