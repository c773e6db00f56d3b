package items

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/captainhammy/houdini-package-runner/pkg/exitcode"
	"github.com/captainhammy/houdini-package-runner/pkg/logger"
)

// DirectoryItem represents a directory to be processed.
type DirectoryItem struct {
	BaseFileItem
	traverseChildren bool
}

// NewDirectoryItem creates a directory item.
func NewDirectoryItem(path string, writeBack, traverseChildren bool) *DirectoryItem {
	return &DirectoryItem{
		BaseFileItem:     NewBaseFileItem(path, writeBack, "DirectoryItem"),
		traverseChildren: traverseChildren,
	}
}

func newDirectoryItemNamed(path string, writeBack, traverseChildren bool, configNames ...string) *DirectoryItem {
	return &DirectoryItem{
		BaseFileItem:     NewBaseFileItem(path, writeBack, append(configNames, "DirectoryItem")...),
		traverseChildren: traverseChildren,
	}
}

// TraverseChildren reports whether the directory's children are processed
// individually instead of handing the directory to the runner whole.
func (d *DirectoryItem) TraverseChildren() bool { return d.traverseChildren }

// childItems finds the child items to process.
func (d *DirectoryItem) childItems() ([]Item, error) {
	entries, err := os.ReadDir(d.Path())
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", d.Path(), err)
	}

	var children []Item

	for _, entry := range entries {
		// Skip hidden and generated entries.
		name := entry.Name()
		if !unicode.IsLetter(rune(name[0])) {
			continue
		}

		childPath := filepath.Join(d.Path(), name)

		if entry.IsDir() {
			// A directory with an __init__.py file is a Python package.
			if _, statErr := os.Stat(filepath.Join(childPath, "__init__.py")); statErr == nil {
				children = append(children, NewPythonPackageDirectoryItem(childPath, d.WriteBack()))
			} else {
				children = append(children, NewDirectoryItem(childPath, d.WriteBack(), true))
			}

			continue
		}

		if IsPythonFile(childPath, nil) {
			children = append(children, NewFileItem(childPath, d.WriteBack(), ""))
		}
	}

	if d.IsTestItem() {
		for _, child := range children {
			child.SetIsTestItem(true)
		}
	}

	return children, nil
}

// processChildren processes each child item with the runner.
func (d *DirectoryItem) processChildren(runner Runner) (int, error) {
	children, err := d.childItems()
	if err != nil {
		return exitcode.FileSystemError, err
	}

	status := exitcode.Success

	for _, child := range children {
		rc, processErr := child.Process(runner)
		if processErr != nil {
			logger.Error("Failed to process item", logger.String("item", child.String()), logger.Err(processErr))
			rc |= exitcode.GeneralError
		}

		status |= rc
	}

	return status, nil
}

// Process processes the directory, either by traversing its children or by
// handing the whole directory to the runner.
func (d *DirectoryItem) Process(runner Runner) (int, error) {
	if d.traverseChildren {
		return d.processChildren(runner)
	}

	return runner.ProcessPath(d.Path(), d)
}

func (d *DirectoryItem) String() string {
	return fmt.Sprintf("%s traverse_children=%t", d.Path(), d.traverseChildren)
}

// FileItem represents a single file to process.
type FileItem struct {
	BaseFileItem
	displayName string
}

// NewFileItem creates a file item. displayName may be empty, in which case the
// path is used for display.
func NewFileItem(path string, writeBack bool, displayName string) *FileItem {
	return &FileItem{
		BaseFileItem: NewBaseFileItem(path, writeBack, "FileItem"),
		displayName:  displayName,
	}
}

// DisplayName returns the display name for output, falling back to the path.
func (f *FileItem) DisplayName() string {
	if f.displayName != "" {
		return f.displayName
	}

	return f.Path()
}

// SetDisplayName sets the display name.
func (f *FileItem) SetDisplayName(name string) { f.displayName = name }

// Process hands the file to the runner and detects content changes by hashing
// the file before and after.
func (f *FileItem) Process(runner Runner) (int, error) {
	preHash, err := ComputeFileHash(f.Path())
	if err != nil {
		return exitcode.FileSystemError, err
	}

	status, err := runner.ProcessPath(f.Path(), f)
	if err != nil {
		return status, err
	}

	postHash, err := ComputeFileHash(f.Path())
	if err != nil {
		return exitcode.FileSystemError, err
	}

	f.SetContentsChanged(preHash != postHash)

	return status, nil
}

func (f *FileItem) String() string { return f.DisplayName() }

// HoudiniDirectoryItem represents a directory under a package houdini/ directory.
type HoudiniDirectoryItem struct {
	DirectoryItem
}

// NewHoudiniDirectoryItem creates a houdini directory item.
func NewHoudiniDirectoryItem(path string, writeBack, traverseChildren bool) *HoudiniDirectoryItem {
	return &HoudiniDirectoryItem{
		DirectoryItem: *newDirectoryItemNamed(path, writeBack, traverseChildren, "HoudiniDirectoryItem"),
	}
}

// HoudiniScriptsDirectoryItem represents a scripts/ directory under a package
// houdini directory. Handler scripts always have 'kwargs' available.
type HoudiniScriptsDirectoryItem struct {
	DirectoryItem
}

// NewHoudiniScriptsDirectoryItem creates a scripts directory item.
func NewHoudiniScriptsDirectoryItem(path string, writeBack, traverseChildren bool) *HoudiniScriptsDirectoryItem {
	return &HoudiniScriptsDirectoryItem{
		DirectoryItem: *newDirectoryItemNamed(path, writeBack, traverseChildren, "HoudiniScriptsDirectoryItem"),
	}
}

// Process traverses the children, marking file children as having the kwargs
// builtin before processing.
func (h *HoudiniScriptsDirectoryItem) Process(runner Runner) (int, error) {
	children, err := h.childItems()
	if err != nil {
		return exitcode.FileSystemError, err
	}

	status := exitcode.Success

	for _, child := range children {
		if _, ok := child.(*FileItem); ok {
			child.AddIgnoredBuiltins("kwargs")
		}

		rc, processErr := child.Process(runner)
		if processErr != nil {
			logger.Error("Failed to process item", logger.String("item", child.String()), logger.Err(processErr))
			rc |= exitcode.GeneralError
		}

		status |= rc
	}

	return status, nil
}

// PythonPackageDirectoryItem represents a directory which is a Python package.
type PythonPackageDirectoryItem struct {
	DirectoryItem
}

// NewPythonPackageDirectoryItem creates a Python package directory item.
func NewPythonPackageDirectoryItem(path string, writeBack bool) *PythonPackageDirectoryItem {
	return &PythonPackageDirectoryItem{
		DirectoryItem: *newDirectoryItemNamed(path, writeBack, false, "PythonPackageDirectoryItem"),
	}
}

func (p *PythonPackageDirectoryItem) String() string { return p.Path() }

// ComputeFileHash computes a hash of the file contents, used to detect whether
// a tool modified a file in place.
func ComputeFileHash(filePath string) (string, error) {
	handle, err := os.Open(filePath) // #nosec G304 -- paths come from discovery
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer func() { _ = handle.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, handle); err != nil {
		return "", fmt.Errorf("hashing %s: %w", filePath, err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// IsPythonFile checks whether a file is a Python file.
//
// A file qualifies when its extension is .py, or when its first line is a
// shebang referencing one of pythonBins (default "python").
func IsPythonFile(filePath string, pythonBins []string) bool {
	switch filepath.Ext(filePath) {
	case ".py":
		return true
	case ".pyc":
		return false
	}

	handle, err := os.Open(filePath) // #nosec G304 -- paths come from discovery
	if err != nil {
		return false
	}
	defer func() { _ = handle.Close() }()

	reader := bufio.NewReader(handle)

	firstLine, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false
	}

	if !strings.HasPrefix(firstLine, "#!") {
		return false
	}

	if pythonBins == nil {
		pythonBins = []string{"python"}
	}

	for _, bin := range pythonBins {
		if strings.Contains(firstLine, bin) {
			return true
		}
	}

	return false
}

// WriteFilePreservePerms writes data to path preserving the existing file mode
// when possible. When the file does not exist a default of 0644 is used.
func WriteFilePreservePerms(path string, data []byte) error {
	var mode os.FileMode = 0o644
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode() & 0o777
		if mode == 0 {
			mode = 0o644
		}
	}

	return os.WriteFile(path, data, mode)
}
