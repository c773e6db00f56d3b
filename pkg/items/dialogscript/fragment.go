package dialogscript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/captainhammy/houdini-package-runner/pkg/items"
)

// Kind identifies which tagged sub-structure a fragment was extracted from.
type Kind int

const (
	// CallbackKind is a parameter's Python callback script.
	CallbackKind Kind = iota

	// DefaultExpressionKind is a Python default value expression.
	DefaultExpressionKind

	// MenuScriptKind is a multi-line Python menu generation script.
	MenuScriptKind
)

// suffix returns the display name suffix for the kind.
func (k Kind) suffix() string {
	switch k {
	case CallbackKind:
		return "callback"
	case DefaultExpressionKind:
		return "default"
	case MenuScriptKind:
		return "menu_script"
	default:
		return "unknown"
	}
}

func (k Kind) configName() string {
	switch k {
	case CallbackKind:
		return "DialogScriptCallbackItem"
	case DefaultExpressionKind:
		return "DialogScriptDefaultExpressionItem"
	case MenuScriptKind:
		return "DialogScriptMenuScriptItem"
	default:
		return "DialogScriptInternalItem"
	}
}

// FragmentItem is one extracted unit of embedded Python code within a
// DialogScript, with a known container-relative span.
type FragmentItem struct {
	items.BaseItem

	kind Kind
	parm string
	name string

	code          string
	postProcessed string

	startOffset int
	endOffset   int

	displayName string

	// Single-line fragments are escaped back into a quoted string context on
	// write-back; menu scripts are re-wrapped per line instead.
	isSingleLine bool

	menuData *MenuScriptResult
}

func newFragmentItem(kind Kind, parm, code string, startOffset, endOffset int, baseName string) (*FragmentItem, error) {
	name, err := parmName(parm)
	if err != nil {
		return nil, err
	}

	fragment := &FragmentItem{
		BaseItem:      items.NewBaseItem(false, kind.configName(), "DialogScriptInternalItem"),
		kind:          kind,
		parm:          parm,
		name:          name,
		code:          code,
		postProcessed: code,
		startOffset:   startOffset,
		endOffset:     endOffset,
		displayName:   baseName + "_" + name + "_" + kind.suffix(),
		isSingleLine:  kind != MenuScriptKind,
	}

	// The 'hou' module is always available to embedded code.
	fragment.AddIgnoredBuiltins("hou")

	return fragment, nil
}

// NewCallbackItem creates a fragment for a parameter's Python callback script.
// The span is quote-inclusive per the callback matcher convention.
func NewCallbackItem(parm, code string, parmStart int, span Span, baseName string) (*FragmentItem, error) {
	start, end := dsFileOffset(parmStart, span, false)

	fragment, err := newFragmentItem(CallbackKind, parm, code, start, end, baseName)
	if err != nil {
		return nil, err
	}

	// kwargs is always available in callback scripts.
	fragment.AddIgnoredBuiltins("kwargs")

	return fragment, nil
}

// NewDefaultExpressionItem creates a fragment for a Python default expression.
// The span is quote-inclusive per the default matcher convention.
func NewDefaultExpressionItem(parm, code string, parmStart int, span Span, baseName string) (*FragmentItem, error) {
	start, end := dsFileOffset(parmStart, span, false)

	return newFragmentItem(DefaultExpressionKind, parm, code, start, end, baseName)
}

// NewMenuScriptItem creates a fragment for a multi-line Python menu script.
// The menu span is structural (bracket based) so it is used as-is.
func NewMenuScriptItem(parm string, parmStart int, baseName string, data *MenuScriptResult) (*FragmentItem, error) {
	start, end := dsFileOffset(parmStart, data.Span, true)

	fragment, err := newFragmentItem(MenuScriptKind, parm, data.Script, start, end, baseName)
	if err != nil {
		return nil, err
	}

	fragment.menuData = data

	// kwargs is always available in menu scripts.
	fragment.AddIgnoredBuiltins("kwargs")

	return fragment, nil
}

// Code returns the Python code for the fragment.
func (f *FragmentItem) Code() string { return f.code }

// Kind returns the fragment kind.
func (f *FragmentItem) Kind() Kind { return f.kind }

// Name returns the parameter name the fragment derives from.
func (f *FragmentItem) Name() string { return f.name }

// DisplayName returns the fragment display name, used as the external
// identifier for the temp file and diagnostics.
func (f *FragmentItem) DisplayName() string { return f.displayName }

// StartOffset returns the container-relative start offset of the code.
func (f *FragmentItem) StartOffset() int { return f.startOffset }

// EndOffset returns the container-relative end offset of the code.
func (f *FragmentItem) EndOffset() int { return f.endOffset }

// IsSingleLine reports whether the fragment is stored on a single escaped line.
func (f *FragmentItem) IsSingleLine() bool { return f.isSingleLine }

// PostProcessedCode returns the replacement text to splice back into the
// container. Until the fragment has been processed it equals Code.
func (f *FragmentItem) PostProcessedCode() string { return f.postProcessed }

// MenuScriptData returns the menu script data, nil for non-menu fragments.
func (f *FragmentItem) MenuScriptData() *MenuScriptResult { return f.menuData }

func (f *FragmentItem) String() string { return f.displayName }

// Process materializes the fragment to a temp file, dispatches it to the
// runner and, when write-back is enabled, reloads the result and prepares the
// replacement text.
func (f *FragmentItem) Process(runner items.Runner) (int, error) {
	tempPath := filepath.Join(runner.TempDir(), f.displayName+".py")

	if err := f.writeContents(tempPath); err != nil {
		return 0, err
	}

	status, err := runner.ProcessPath(tempPath, f)
	if err != nil {
		return status, err
	}

	if f.WriteBack() {
		contents, loadErr := f.loadContents(tempPath)
		if loadErr != nil {
			return status, loadErr
		}

		if contents != f.code {
			f.SetContentsChanged(true)
			f.postProcessed = f.postProcessContents(contents)
		}
	}

	return status, nil
}

// writeContents writes the fragment code to the temp path. Code not ending in
// a newline gains one so external tools see a well formed file.
func (f *FragmentItem) writeContents(tempPath string) error {
	code := f.code

	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}

	if err := os.WriteFile(tempPath, []byte(code), 0o600); err != nil {
		return fmt.Errorf("writing fragment %s: %w", f.displayName, err)
	}

	return nil
}

// loadContents reads the possibly modified temp file back, undoing the
// newline added by writeContents and escaping single-line fragments.
func (f *FragmentItem) loadContents(tempPath string) (string, error) {
	data, err := os.ReadFile(tempPath) // #nosec G304 -- path built from the runner temp dir
	if err != nil {
		return "", fmt.Errorf("reading fragment %s: %w", f.displayName, err)
	}

	contents := strings.TrimSuffix(string(data), "\n")

	if f.isSingleLine {
		contents = escapeSingleLine(contents)
	}

	return contents, nil
}

// postProcessContents produces the final replacement text for the fragment.
// Only menu scripts need re-encoding; other kinds splice verbatim.
func (f *FragmentItem) postProcessContents(contents string) string {
	if f.kind != MenuScriptKind {
		return contents
	}

	return reencodeMenuScript(contents, f.menuData)
}

// reencodeMenuScript wraps multi-line menu script contents back into the
// container's per-line bracketed representation. Every line except the first
// is prefixed with the original indentation; the first line is spliced in
// directly after the already indented opening context.
func reencodeMenuScript(contents string, data *MenuScriptResult) string {
	indentChar := " "
	if data.UsesTabs {
		indentChar = "\t"
	}

	indent := strings.Repeat(indentChar, data.Indent)

	var builder strings.Builder

	for i, line := range splitLines(contents) {
		if i > 0 {
			builder.WriteString(indent)
		}

		builder.WriteString(`[ "` + line + `" ]` + "\n")
	}

	return builder.String()
}

// splitLines splits on newlines, dropping a trailing empty line and any
// carriage returns.
func splitLines(contents string) []string {
	if contents == "" {
		return nil
	}

	lines := strings.Split(contents, "\n")

	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}
