package items

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/captainhammy/houdini-package-runner/pkg/command"
	"github.com/captainhammy/houdini-package-runner/pkg/exitcode"
	"github.com/captainhammy/houdini-package-runner/pkg/logger"
)

// sectionsListName is the index file hotl writes into an expanded asset library.
const sectionsListName = "Sections.list"

// opNameReplacer makes an operator name usable as a file name component.
var opNameReplacer = strings.NewReplacer("::", "__", "/", "_")

// DigitalAssetPythonSection is a Python section file of an expanded operator
// definition, processed in place on disk.
type DigitalAssetPythonSection struct {
	FileItem
}

// NewDigitalAssetPythonSection creates a section item. sectionName is the raw
// section name within the definition (e.g. PythonModule, OnCreated).
func NewDigitalAssetPythonSection(path string, writeBack bool, displayName, sectionName string) *DigitalAssetPythonSection {
	section := &DigitalAssetPythonSection{
		FileItem: FileItem{
			BaseFileItem: NewBaseFileItem(path, writeBack, "DigitalAssetPythonSection", "FileItem"),
			displayName:  displayName,
		},
	}

	section.AddIgnoredBuiltins("hou")

	// Event handler sections run with kwargs; module-level sections do not.
	if sectionName != "PythonCook" && sectionName != "PythonModule" {
		section.AddIgnoredBuiltins("kwargs")
	}

	return section
}

// ExpandedOperatorType is one operator definition directory inside an expanded
// digital asset library.
type ExpandedOperatorType struct {
	BaseFileItem

	name string
}

// NewExpandedOperatorType creates an operator definition item. name is the
// operator type name from the library section list.
func NewExpandedOperatorType(path, name string, writeBack bool) *ExpandedOperatorType {
	return &ExpandedOperatorType{
		BaseFileItem: NewBaseFileItem(path, writeBack, "ExpandedOperatorType"),
		name:         name,
	}
}

// Name returns the operator type name.
func (e *ExpandedOperatorType) Name() string { return e.name }

func (e *ExpandedOperatorType) String() string {
	return fmt.Sprintf("%s (%s)", e.name, e.Path())
}

// pythonSectionNames reads the definition's ExtraFileOptions and returns the
// names of all sections flagged as Python, plus PythonCook when present.
func (e *ExpandedOperatorType) pythonSectionNames() ([]string, error) {
	var names []string

	optionsPath := filepath.Join(e.Path(), "ExtraFileOptions")

	if data, err := os.ReadFile(optionsPath); err == nil { // #nosec G304 -- paths come from discovery
		var options map[string]any

		if err := json.Unmarshal(data, &options); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", optionsPath, err)
		}

		for key, value := range options {
			if !strings.HasSuffix(key, "/IsPython") {
				continue
			}

			if isPython, ok := value.(bool); ok && isPython {
				names = append(names, strings.TrimSuffix(key, "/IsPython"))
			}
		}

		// Map iteration order is not stable; keep section processing order
		// deterministic for output and temp file reuse.
		sort.Strings(names)
	}

	if _, err := os.Stat(filepath.Join(e.Path(), "PythonCook")); err == nil {
		names = append(names, "PythonCook")
	}

	return names, nil
}

// childItems builds the processable items of the definition: Python sections,
// the DialogScript section and any embedded tool shelf.
func (e *ExpandedOperatorType) childItems() ([]Item, error) {
	sections, err := e.pythonSectionNames()
	if err != nil {
		return nil, err
	}

	safeName := opNameReplacer.Replace(e.name)

	var children []Item

	for _, section := range sections {
		sectionPath := filepath.Join(e.Path(), section)

		if _, statErr := os.Stat(sectionPath); statErr != nil {
			logger.Warn("Python section listed but missing",
				logger.String("operator", e.name), logger.String("section", section))
			continue
		}

		children = append(children, NewDigitalAssetPythonSection(
			sectionPath, e.WriteBack(), safeName+"_"+section, section))
	}

	dialogScriptPath := filepath.Join(e.Path(), "DialogScript")
	if _, statErr := os.Stat(dialogScriptPath); statErr == nil {
		item, dsErr := newDialogScriptItemFunc(dialogScriptPath, safeName+"_DialogScript", e.WriteBack())
		if dsErr != nil {
			return nil, dsErr
		}

		children = append(children, item)
	}

	shelfPath := filepath.Join(e.Path(), "Tools.shelf")
	if _, statErr := os.Stat(shelfPath); statErr == nil {
		children = append(children, NewShelfFile(shelfPath, e.WriteBack(), safeName+"_Tools.shelf", e.name))
	}

	return children, nil
}

// Process processes every Python bearing section of the definition. A failing
// section does not stop its siblings.
func (e *ExpandedOperatorType) Process(runner Runner) (int, error) {
	children, err := e.childItems()
	if err != nil {
		return exitcode.GeneralError, err
	}

	status := exitcode.Success

	for _, child := range children {
		rc, processErr := child.Process(runner)
		if processErr != nil {
			logger.Error("Failed to process section",
				logger.String("section", child.String()), logger.Err(processErr))
			rc |= exitcode.GeneralError
		}

		status |= rc

		if child.ContentsChanged() {
			e.SetContentsChanged(true)
		}
	}

	return status, nil
}

// newDialogScriptItemFunc builds the DialogScript item for a definition. It is
// a variable so the dialogscript package can register its constructor without
// an import cycle (dialogscript imports items for the base types).
var newDialogScriptItemFunc = func(path, name string, writeBack bool) (Item, error) {
	return nil, fmt.Errorf("no DialogScript item constructor registered")
}

// RegisterDialogScriptItem installs the constructor used for DialogScript
// sections of expanded operator definitions.
func RegisterDialogScriptItem(create func(path, name string, writeBack bool) (Item, error)) {
	newDialogScriptItemFunc = create
}

// DigitalAssetDirectory is an expanded digital asset library on disk.
type DigitalAssetDirectory struct {
	BaseFileItem
}

// NewDigitalAssetDirectory creates an expanded library item.
func NewDigitalAssetDirectory(path string, writeBack bool) *DigitalAssetDirectory {
	return &DigitalAssetDirectory{
		BaseFileItem: NewBaseFileItem(path, writeBack, "DigitalAssetDirectory"),
	}
}

// operators parses the library section list and builds an item per operator
// definition directory.
func (d *DigitalAssetDirectory) operators() ([]*ExpandedOperatorType, error) {
	listPath := filepath.Join(d.Path(), sectionsListName)

	data, err := os.ReadFile(listPath) // #nosec G304 -- paths come from discovery
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", listPath, err)
	}

	var operators []*ExpandedOperatorType

	for _, line := range strings.Split(string(data), "\n") {
		components := strings.Fields(line)
		if len(components) != 2 {
			continue
		}

		definitionPath := filepath.Join(d.Path(), components[0])

		info, statErr := os.Stat(definitionPath)
		if statErr != nil || !info.IsDir() {
			continue
		}

		operators = append(operators, NewExpandedOperatorType(definitionPath, components[1], d.WriteBack()))
	}

	return operators, nil
}

// Process processes every operator definition in the library.
func (d *DigitalAssetDirectory) Process(runner Runner) (int, error) {
	operators, err := d.operators()
	if err != nil {
		return exitcode.FileSystemError, err
	}

	status := exitcode.Success

	for _, operator := range operators {
		rc, processErr := operator.Process(runner)
		if processErr != nil {
			logger.Error("Failed to process operator",
				logger.String("operator", operator.String()), logger.Err(processErr))
			rc |= exitcode.GeneralError
		}

		status |= rc

		if operator.ContentsChanged() {
			d.SetContentsChanged(true)
		}
	}

	return status, nil
}

// BinaryDigitalAssetFile is a binary .otl/.hda library, processed by expanding
// it with hotl, running over the expansion, and collapsing it back when the
// contents changed.
type BinaryDigitalAssetFile struct {
	BaseFileItem
}

// NewBinaryDigitalAssetFile creates a binary asset library item.
func NewBinaryDigitalAssetFile(path string, writeBack bool) *BinaryDigitalAssetFile {
	return &BinaryDigitalAssetFile{
		BaseFileItem: NewBaseFileItem(path, writeBack, "BinaryDigitalAssetFile"),
	}
}

// Process expands the library into the runner temp dir, processes the
// expansion, and collapses it back over the original file if anything changed.
func (b *BinaryDigitalAssetFile) Process(runner Runner) (int, error) {
	hotl := runner.HotlCommand()
	if hotl == "" {
		return exitcode.ToolNotFound, fmt.Errorf("no hotl command available to expand %s", b.Path())
	}

	targetDir := filepath.Join(runner.TempDir(), filepath.Base(b.Path()))

	rc, err := command.Run([]string{hotl, "-t", targetDir, b.Path()}, runner.Verbose())
	if err != nil {
		return rc, fmt.Errorf("expanding %s: %w", b.Path(), err)
	}

	if rc != 0 {
		return rc, fmt.Errorf("hotl failed to expand %s", b.Path())
	}

	expanded := NewDigitalAssetDirectory(targetDir, b.WriteBack())

	status, err := expanded.Process(runner)
	if err != nil {
		return status, err
	}

	if expanded.ContentsChanged() {
		b.SetContentsChanged(true)

		rc, err := command.Run([]string{hotl, "-l", targetDir, b.Path()}, runner.Verbose())
		if err != nil {
			return status | rc, fmt.Errorf("collapsing %s: %w", b.Path(), err)
		}

		if rc != 0 {
			return status | rc, fmt.Errorf("hotl failed to collapse %s", b.Path())
		}
	}

	return status, nil
}

// IsExpandedDigitalAssetDir reports whether the directory is an expanded
// digital asset library.
func IsExpandedDigitalAssetDir(path string) bool {
	info, err := os.Stat(filepath.Join(path, sectionsListName))

	return err == nil && !info.IsDir()
}
