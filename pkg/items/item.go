// Package items defines the runnable items a package runner can process.
package items

import "fmt"

// Runner is the processing collaborator that items dispatch standalone files to.
//
// Implementations wrap a single external tool (formatter, linter, modernizer)
// and may modify the file in place.
type Runner interface {
	// Name identifies the runner, used for configuration lookup.
	Name() string

	// TempDir returns the directory for materializing item code to files.
	TempDir() string

	// HotlCommand returns the hotl command used to expand/collapse digital assets.
	HotlCommand() string

	// Verbose reports whether verbose tool output is enabled.
	Verbose() bool

	// ProcessPath runs the tool against a standalone file. The item supplies
	// policy context (ignored builtins, config name chain). The returned int
	// is the tool exit code.
	ProcessPath(filePath string, item Item) (int, error)
}

// Item is a runnable item.
type Item interface {
	fmt.Stringer

	// Process dispatches the item to the runner. The returned int aggregates
	// tool exit codes (worst-of). The error reports infrastructure failures,
	// not tool findings.
	Process(runner Runner) (int, error)

	ContentsChanged() bool
	SetContentsChanged(changed bool)

	WriteBack() bool
	SetWriteBack(writeBack bool)

	// IgnoredBuiltins lists names to exclude from undefined-name diagnostics
	// for this item's execution context.
	IgnoredBuiltins() []string
	AddIgnoredBuiltins(names ...string)

	IsTestItem() bool
	SetIsTestItem(isTest bool)

	// ConfigNames returns the item's config identity chain, most specific
	// first. Runner configuration entries are matched against these names.
	ConfigNames() []string
}

// BaseItem holds the state shared by all runnable items. Concrete items embed
// it and implement Process.
type BaseItem struct {
	contentsChanged bool
	ignoredBuiltins []string
	isTestItem      bool
	writeBack       bool
	configNames     []string
}

// NewBaseItem creates item state with the given config name chain.
func NewBaseItem(writeBack bool, configNames ...string) BaseItem {
	return BaseItem{
		writeBack:   writeBack,
		configNames: append(configNames, "BaseItem"),
	}
}

// ContentsChanged reports whether the contents of the item have changed.
func (b *BaseItem) ContentsChanged() bool { return b.contentsChanged }

// SetContentsChanged sets the changed flag.
func (b *BaseItem) SetContentsChanged(changed bool) { b.contentsChanged = changed }

// WriteBack reports whether the item should write changes back.
func (b *BaseItem) WriteBack() bool { return b.writeBack }

// SetWriteBack sets the write-back flag.
func (b *BaseItem) SetWriteBack(writeBack bool) { b.writeBack = writeBack }

// IgnoredBuiltins returns the known builtins to ignore for undefined-name checks.
func (b *BaseItem) IgnoredBuiltins() []string { return b.ignoredBuiltins }

// AddIgnoredBuiltins records additional builtins to ignore.
func (b *BaseItem) AddIgnoredBuiltins(names ...string) {
	b.ignoredBuiltins = append(b.ignoredBuiltins, names...)
}

// IsTestItem reports whether the item is test related.
func (b *BaseItem) IsTestItem() bool { return b.isTestItem }

// SetIsTestItem sets the test item flag.
func (b *BaseItem) SetIsTestItem(isTest bool) { b.isTestItem = isTest }

// ConfigNames returns the config identity chain, most specific first.
func (b *BaseItem) ConfigNames() []string { return b.configNames }

// BaseFileItem is a runnable item backed by a path on disk.
type BaseFileItem struct {
	BaseItem
	path string
}

// NewBaseFileItem creates file-backed item state.
func NewBaseFileItem(path string, writeBack bool, configNames ...string) BaseFileItem {
	return BaseFileItem{
		BaseItem: NewBaseItem(writeBack, append(configNames, "BaseFileItem")...),
		path:     path,
	}
}

// Path returns the path on disk.
func (b *BaseFileItem) Path() string { return b.path }

func (b *BaseFileItem) String() string { return b.path }
