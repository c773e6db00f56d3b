package items

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/captainhammy/houdini-package-runner/pkg/exitcode"
	"github.com/captainhammy/houdini-package-runner/pkg/logger"
)

// codeSection is one XML element whose text is Python code, plus the base name
// used for its temp file.
type codeSection struct {
	element *etree.Element
	name    string
}

// xmlBase holds behavior shared by the XML based Houdini files. XML code
// sections are simpler than DialogScript fragments: the element text is
// substituted directly, no offset surgery is involved.
type xmlBase struct {
	FileItem
}

func newXMLBase(path string, writeBack bool, displayName string, configNames ...string) xmlBase {
	base := xmlBase{
		FileItem: FileItem{
			BaseFileItem: NewBaseFileItem(path, writeBack, append(configNames, "XMLBase", "FileItem")...),
			displayName:  displayName,
		},
	}

	// hou and kwargs are always available in these scripts.
	base.AddIgnoredBuiltins("hou", "kwargs")

	return base
}

// processSections parses the file and runs every collected code section
// through the runner, writing the document back if any section changed.
func (x *xmlBase) processSections(self Item, runner Runner, collect func(root *etree.Element) []codeSection) (int, error) {
	doc := etree.NewDocument()

	if err := doc.ReadFromFile(x.Path()); err != nil {
		return exitcode.FileSystemError, fmt.Errorf("parsing %s: %w", x.Path(), err)
	}

	root := doc.Root()
	if root == nil {
		return exitcode.GeneralError, fmt.Errorf("%s has no root element", x.Path())
	}

	status := exitcode.Success

	for _, section := range collect(root) {
		rc, err := x.processCodeSection(section, self, runner)
		if err != nil {
			logger.Error("Failed to process code section",
				logger.String("section", section.name), logger.Err(err))
			rc |= exitcode.GeneralError
		}

		status |= rc
	}

	if x.WriteBack() && x.ContentsChanged() {
		data, err := doc.WriteToBytes()
		if err != nil {
			return status | exitcode.GeneralError, fmt.Errorf("serializing %s: %w", x.Path(), err)
		}

		if err := WriteFilePreservePerms(x.Path(), data); err != nil {
			return status | exitcode.FileSystemError, err
		}
	}

	return status, nil
}

// processCodeSection dumps the section text to a temp file, processes it, and
// on write-back substitutes the result into the element, preserving CDATA.
func (x *xmlBase) processCodeSection(section codeSection, self Item, runner Runner) (int, error) {
	tempPath := filepath.Join(runner.TempDir(), section.name+".py")

	original := section.element.Text()

	if err := os.WriteFile(tempPath, []byte(original), 0o600); err != nil {
		return 0, fmt.Errorf("writing section %s: %w", section.name, err)
	}

	status, err := runner.ProcessPath(tempPath, self)
	if err != nil {
		return status, err
	}

	if x.WriteBack() {
		data, readErr := os.ReadFile(tempPath) // #nosec G304 -- path built from the runner temp dir
		if readErr != nil {
			return status, fmt.Errorf("reading section %s: %w", section.name, readErr)
		}

		contents := string(data)

		// Keep the code in a CDATA block if that is how it was stored.
		if hasCData(section.element) {
			section.element.SetCData(contents)
		} else {
			section.element.SetText(contents)
		}

		if contents != original {
			x.SetContentsChanged(true)
		}
	}

	return status, nil
}

// hasCData reports whether the element's text is stored as CDATA.
func hasCData(element *etree.Element) bool {
	for _, token := range element.Child {
		if charData, ok := token.(*etree.CharData); ok && charData.IsCData() {
			return true
		}
	}

	return false
}

// MenuFile is an XML menu file.
type MenuFile struct {
	xmlBase
}

// NewMenuFile creates a menu file item.
func NewMenuFile(path string, writeBack bool, displayName string) *MenuFile {
	return &MenuFile{xmlBase: newXMLBase(path, writeBack, displayName, "MenuFile")}
}

// Process processes the scriptItem entries of the menu file.
func (m *MenuFile) Process(runner Runner) (int, error) {
	return m.processSections(m, runner, menuSections)
}

// menuSections collects the scriptCode and context expression entries of
// every scriptItem in a menu file.
func menuSections(root *etree.Element) []codeSection {
	var sections []codeSection

	for _, scriptItem := range root.FindElements(".//scriptItem") {
		code := scriptItem.FindElement("scriptCode")
		if code == nil {
			continue
		}

		id := scriptItem.SelectAttrValue("id", "")

		sections = append(sections, codeSection{element: code, name: id})

		if context := scriptItem.FindElement("context/expression"); context != nil {
			sections = append(sections, codeSection{element: context, name: id + ".context"})
		}
	}

	return sections
}

// PythonPanelFile is a python panel definition file.
type PythonPanelFile struct {
	xmlBase
}

// NewPythonPanelFile creates a python panel file item.
func NewPythonPanelFile(path string, writeBack bool, displayName string) *PythonPanelFile {
	return &PythonPanelFile{xmlBase: newXMLBase(path, writeBack, displayName, "PythonPanelFile")}
}

// Process processes the interface scripts of the panel file.
func (p *PythonPanelFile) Process(runner Runner) (int, error) {
	return p.processSections(p, runner, panelSections)
}

func panelSections(root *etree.Element) []codeSection {
	var sections []codeSection

	for _, panel := range root.ChildElements() {
		script := panel.FindElement("script")
		if script == nil {
			continue
		}

		sections = append(sections, codeSection{
			element: script,
			name:    panel.SelectAttrValue("name", ""),
		})
	}

	return sections
}

// ShelfFile is a tool shelf file.
type ShelfFile struct {
	xmlBase

	toolName string
}

// NewShelfFile creates a shelf file item. toolName is the owning digital
// asset's operator name when the shelf lives inside an asset definition.
func NewShelfFile(path string, writeBack bool, displayName, toolName string) *ShelfFile {
	return &ShelfFile{
		xmlBase:  newXMLBase(path, writeBack, displayName, "ShelfFile"),
		toolName: toolName,
	}
}

// Process processes the Python tool scripts of the shelf file.
func (s *ShelfFile) Process(runner Runner) (int, error) {
	return s.processSections(s, runner, s.toolSections)
}

func (s *ShelfFile) toolSections(root *etree.Element) []codeSection {
	var sections []codeSection

	for _, tool := range root.ChildElements() {
		script := tool.FindElement("script")
		if script == nil {
			continue
		}

		if script.SelectAttrValue("scriptType", "") != "python" {
			continue
		}

		toolName := tool.SelectAttrValue("name", "")

		// Default tools inside asset definitions all share a placeholder name,
		// so substitute the operator name to keep temp files distinct.
		if toolName == "$HDA_DEFAULT_TOOL" && s.toolName != "" {
			toolName = strings.ReplaceAll(strings.ReplaceAll(s.toolName, "::", "__"), "/", "_") + "_DEFAULT_TOOL"
		}

		sections = append(sections, codeSection{element: script, name: toolName})
	}

	return sections
}
