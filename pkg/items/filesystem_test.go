package items

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

func TestIsPythonFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		fileName string
		contents string
		want     bool
	}{
		{"py extension", "module.py", "", true},
		{"pyc extension", "module.pyc", "", false},
		{"python shebang", "script", "#!/usr/bin/env python\n", true},
		{"other shebang", "script.sh", "#!/bin/bash\n", false},
		{"no shebang", "data.txt", "hello\n", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := writeFile(t, dir, test.fileName, test.contents)
			assert.Equal(t, test.want, IsPythonFile(path, nil))
		})
	}
}

func TestIsPythonFileCustomBins(t *testing.T) {
	dir := t.TempDir()

	path := writeFile(t, dir, "wrapper", "#!/opt/hfs/bin/hython\n")

	assert.False(t, IsPythonFile(path, nil))
	assert.True(t, IsPythonFile(path, []string{"python", "hython"}))
}

func TestComputeFileHash(t *testing.T) {
	dir := t.TempDir()

	path := writeFile(t, dir, "a.py", "x = 1\n")

	first, err := ComputeFileHash(path)
	require.NoError(t, err)

	second, err := ComputeFileHash(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, os.WriteFile(path, []byte("x = 2\n"), 0o644))

	third, err := ComputeFileHash(path)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestFileItemProcessDetectsChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.py", "x = 1\n")

	item := NewFileItem(path, true, "")

	runner := &fakeRunner{
		tempDir: t.TempDir(),
		process: func(filePath string, _ Item) (int, error) {
			return 0, os.WriteFile(filePath, []byte("x = 2\n"), 0o644)
		},
	}

	status, err := item.Process(runner)
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.True(t, item.ContentsChanged())
}

func TestFileItemProcessUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.py", "x = 1\n")

	item := NewFileItem(path, true, "")

	runner := &fakeRunner{tempDir: t.TempDir()}

	_, err := item.Process(runner)
	require.NoError(t, err)
	assert.False(t, item.ContentsChanged())
}

func TestFileItemDisplayName(t *testing.T) {
	item := NewFileItem("/some/path.py", false, "")
	assert.Equal(t, "/some/path.py", item.DisplayName())

	item.SetDisplayName("nicer")
	assert.Equal(t, "nicer", item.DisplayName())
}

func TestDirectoryItemChildItems(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "module.py", "")
	writeFile(t, dir, "notes.txt", "")
	writeFile(t, dir, ".hidden.py", "")
	writeFile(t, dir, "_private.py", "")

	packageDir := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(packageDir, 0o755))
	writeFile(t, packageDir, "__init__.py", "")

	plainDir := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(plainDir, 0o755))

	item := NewDirectoryItem(dir, true, true)

	children, err := item.childItems()
	require.NoError(t, err)
	require.Len(t, children, 3)

	var havePackage, havePlainDir, haveFile bool

	for _, child := range children {
		switch child.(type) {
		case *PythonPackageDirectoryItem:
			havePackage = true
		case *DirectoryItem:
			havePlainDir = true
		case *FileItem:
			haveFile = true
		}
	}

	assert.True(t, havePackage)
	assert.True(t, havePlainDir)
	assert.True(t, haveFile)
}

func TestDirectoryItemTestPropagation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "test_module.py", "")

	item := NewDirectoryItem(dir, false, true)
	item.SetIsTestItem(true)

	children, err := item.childItems()
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.True(t, children[0].IsTestItem())
}

func TestDirectoryItemProcessWhole(t *testing.T) {
	dir := t.TempDir()

	item := NewDirectoryItem(dir, false, false)

	runner := &fakeRunner{tempDir: t.TempDir()}

	_, err := item.Process(runner)
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, runner.processed)
}

func TestHoudiniScriptsDirectoryItemAddsKwargs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "456.py", "")
	writeFile(t, dir, "on_created.py", "")

	item := NewHoudiniScriptsDirectoryItem(dir, false, true)

	var builtins [][]string

	runner := &fakeRunner{
		tempDir: t.TempDir(),
		process: func(_ string, processed Item) (int, error) {
			builtins = append(builtins, processed.IgnoredBuiltins())
			return 0, nil
		},
	}

	_, err := item.Process(runner)
	require.NoError(t, err)

	// The leading digit file is skipped by child discovery.
	require.Len(t, builtins, 1)
	assert.Contains(t, builtins[0], "kwargs")
}

func TestWriteFilePreservePerms(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "script.py")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o755))

	require.NoError(t, WriteFilePreservePerms(path, []byte("b")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode()&0o777)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
}
