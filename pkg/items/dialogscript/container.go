// Package dialogscript extracts embedded Python fragments from DialogScript
// containers and splices processed results back without disturbing any
// surrounding content.
package dialogscript

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/captainhammy/houdini-package-runner/pkg/exitcode"
	"github.com/captainhammy/houdini-package-runner/pkg/items"
	"github.com/captainhammy/houdini-package-runner/pkg/logger"
)

func init() {
	// Expanded operator definitions delegate their DialogScript section here.
	items.RegisterDialogScriptItem(func(path, name string, writeBack bool) (items.Item, error) {
		return NewDialogScriptItem(path, name, writeBack)
	})
}

// DialogScriptItem represents a DialogScript section of a digital asset
// definition. It owns the whole-file text, loaded once at construction.
type DialogScriptItem struct {
	items.BaseFileItem

	name     string
	contents string
}

// NewDialogScriptItem creates an item for a DialogScript file. The name is the
// display base for all fragments extracted from the file.
func NewDialogScriptItem(path, name string, writeBack bool) (*DialogScriptItem, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- paths come from discovery
	if err != nil {
		return nil, fmt.Errorf("reading dialog script %s: %w", path, err)
	}

	return &DialogScriptItem{
		BaseFileItem: items.NewBaseFileItem(path, writeBack, "DialogScriptItem"),
		name:         name,
		contents:     string(data),
	}, nil
}

// Name returns the display name of the operator.
func (d *DialogScriptItem) Name() string { return d.name }

func (d *DialogScriptItem) String() string {
	return fmt.Sprintf("%s (%s)", d.name, d.Path())
}

// gatherFragments extracts every Python fragment from the script contents, in
// block scan order and callback -> defaults -> menu order within a block.
func (d *DialogScriptItem) gatherFragments() ([]*FragmentItem, error) {
	var fragments []*FragmentItem

	for _, block := range scanParmBlocks(d.contents) {
		blockFragments, err := extractBlockFragments(block, d.name)
		if err != nil {
			return nil, fmt.Errorf("extracting fragments from %s: %w", d.Path(), err)
		}

		fragments = append(fragments, blockFragments...)
	}

	if d.WriteBack() {
		for _, fragment := range fragments {
			fragment.SetWriteBack(true)
		}
	}

	return fragments, nil
}

// extractBlockFragments builds the fragments for a single parameter block.
func extractBlockFragments(block parmBlock, baseName string) ([]*FragmentItem, error) {
	var fragments []*FragmentItem

	if language, ok := callbackLanguage(block.text); ok && language == "python" {
		if code, span, found := scriptCallback(block.text); found {
			fragment, err := NewCallbackItem(block.text, code, block.start, span, baseName)
			if err != nil {
				return nil, err
			}

			fragments = append(fragments, fragment)
		}
	}

	for _, expression := range defaultPythonExpressions(block.text) {
		fragment, err := NewDefaultExpressionItem(block.text, expression.code, block.start, expression.span, baseName)
		if err != nil {
			return nil, err
		}

		fragments = append(fragments, fragment)
	}

	if data, ok := pythonMenuScript(block.text); ok {
		fragment, err := NewMenuScriptItem(block.text, block.start, baseName, data)
		if err != nil {
			return nil, err
		}

		fragments = append(fragments, fragment)
	}

	return fragments, nil
}

// Process extracts all fragments, dispatches each to the runner, and when
// write-back is enabled splices any changed fragments back into the file.
//
// A failing fragment does not stop processing of its siblings; the worst
// status across all fragments is returned.
func (d *DialogScriptItem) Process(runner items.Runner) (int, error) {
	fragments, err := d.gatherFragments()
	if err != nil {
		return exitcode.GeneralError, err
	}

	status := exitcode.Success

	var changed []*FragmentItem

	for _, fragment := range fragments {
		rc, processErr := fragment.Process(runner)
		if processErr != nil {
			logger.Error("Failed to process fragment",
				logger.String("fragment", fragment.DisplayName()), logger.Err(processErr))
			rc |= exitcode.GeneralError
		}

		status |= rc

		if fragment.ContentsChanged() {
			changed = append(changed, fragment)
		}
	}

	if d.WriteBack() && len(changed) > 0 {
		d.SetContentsChanged(true)

		if err := d.writeChangedContents(changed); err != nil {
			return status | exitcode.FileSystemError, err
		}
	}

	return status, nil
}

// writeChangedContents rebuilds the script text with the changed fragments
// spliced in at their original spans and writes it back to disk.
//
// Fragments are sorted by start offset so the single pass interleaves
// unchanged spans and replacements correctly regardless of extraction order.
func (d *DialogScriptItem) writeChangedContents(changed []*FragmentItem) error {
	sort.Slice(changed, func(i, j int) bool {
		return changed[i].StartOffset() < changed[j].StartOffset()
	})

	var builder strings.Builder

	cursor := 0

	for _, fragment := range changed {
		builder.WriteString(d.contents[cursor:fragment.StartOffset()])
		builder.WriteString(fragment.PostProcessedCode())
		cursor = fragment.EndOffset()
	}

	builder.WriteString(d.contents[cursor:])

	if err := items.WriteFilePreservePerms(d.Path(), []byte(builder.String())); err != nil {
		return fmt.Errorf("writing dialog script %s: %w", d.Path(), err)
	}

	return nil
}
