package discoverers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/captainhammy/houdini-package-runner/pkg/items"
	"github.com/captainhammy/houdini-package-runner/pkg/logger"
)

// Options controls standard package discovery.
type Options struct {
	// Root is the package root. Empty means the current directory.
	Root string

	// HoudiniRoot is the houdini directory of the package, relative to Root
	// unless absolute. Empty tries "houdini" under Root.
	HoudiniRoot string

	// PythonRoot is the Python package directory under Root. Empty tries "python".
	PythonRoot string

	// HoudiniItems names the houdini directory item types to discover.
	HoudiniItems []string

	// ExtraDirs and ExtraFiles are processed in addition to discovered items.
	ExtraDirs  []string
	ExtraFiles []string

	// SkipTests excludes the package tests directory.
	SkipTests bool

	// WriteBack enables writing modifications back for all discovered items.
	WriteBack bool
}

// PackageItemDiscoverer discovers the items of a standard Houdini package layout.
type PackageItemDiscoverer struct {
	BaseDiscoverer
}

// NewPackageDiscoverer discovers the processable items of a package per the
// options and returns the populated discoverer.
func NewPackageDiscoverer(options Options) (*PackageItemDiscoverer, error) {
	root := options.Root
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving package root: %w", err)
		}

		root = cwd
	}

	discoverer := &PackageItemDiscoverer{
		BaseDiscoverer: *NewBaseDiscoverer(root, nil),
	}

	for _, dir := range options.ExtraDirs {
		discoverer.AddItems(items.NewDirectoryItem(resolvePath(root, dir), options.WriteBack, true))
	}

	for _, file := range options.ExtraFiles {
		discoverer.AddItems(items.NewFileItem(resolvePath(root, file), options.WriteBack, ""))
	}

	pythonRoot := options.PythonRoot
	if pythonRoot == "" {
		pythonRoot = "python"
	}

	pythonPath := resolvePath(root, pythonRoot)
	if isDir(pythonPath) {
		discoverer.AddItems(items.NewPythonPackageDirectoryItem(pythonPath, options.WriteBack))
	}

	if !options.SkipTests {
		testsPath := filepath.Join(root, "tests")
		if isDir(testsPath) {
			tests := items.NewDirectoryItem(testsPath, options.WriteBack, true)
			tests.SetIsTestItem(true)
			discoverer.AddItems(tests)
		}
	}

	houdiniRoot := options.HoudiniRoot
	if houdiniRoot == "" {
		houdiniRoot = "houdini"
	}

	houdiniPath := resolvePath(root, houdiniRoot)
	if isDir(houdiniPath) {
		houdiniItems, err := GetHoudiniItems(options.HoudiniItems, houdiniPath, options.WriteBack)
		if err != nil {
			return nil, err
		}

		discoverer.AddItems(houdiniItems...)
	} else if options.HoudiniRoot != "" {
		return nil, fmt.Errorf("houdini root %s does not exist", houdiniPath)
	}

	return discoverer, nil
}

// GetHoudiniItems builds the items for the named houdini directory item types.
//
// Recognized names: otls/hda (digital asset libraries), toolbar (shelf files),
// python_panels, pythonXlibs (versioned python*libs dirs), menus (xml menu
// files in the houdini root), and any other name naming a child directory,
// with "scripts" treated as an event script directory.
func GetHoudiniItems(names []string, houdiniRoot string, writeBack bool) ([]items.Item, error) {
	var discovered []items.Item

	for _, name := range names {
		switch name {
		case "otls", "hda":
			assetItems, err := digitalAssetItems(filepath.Join(houdiniRoot, name), writeBack)
			if err != nil {
				return nil, err
			}

			discovered = append(discovered, assetItems...)

		case "toolbar":
			matches, err := doublestar.FilepathGlob(filepath.Join(houdiniRoot, "toolbar", "*.shelf"))
			if err != nil {
				return nil, fmt.Errorf("globbing shelf files: %w", err)
			}

			for _, match := range matches {
				discovered = append(discovered, items.NewShelfFile(match, writeBack, "", ""))
			}

		case "python_panels":
			matches, err := doublestar.FilepathGlob(filepath.Join(houdiniRoot, "python_panels", "*.pypanel"))
			if err != nil {
				return nil, fmt.Errorf("globbing python panels: %w", err)
			}

			for _, match := range matches {
				discovered = append(discovered, items.NewPythonPanelFile(match, writeBack, ""))
			}

		case "pythonXlibs":
			matches, err := doublestar.FilepathGlob(filepath.Join(houdiniRoot, "python*libs"))
			if err != nil {
				return nil, fmt.Errorf("globbing python lib dirs: %w", err)
			}

			for _, match := range matches {
				if isDir(match) {
					discovered = append(discovered, items.NewDirectoryItem(match, writeBack, true))
				}
			}

		case "menus":
			matches, err := doublestar.FilepathGlob(filepath.Join(houdiniRoot, "*.xml"))
			if err != nil {
				return nil, fmt.Errorf("globbing menu files: %w", err)
			}

			for _, match := range matches {
				discovered = append(discovered, items.NewMenuFile(match, writeBack, ""))
			}

		case "scripts":
			path := filepath.Join(houdiniRoot, name)
			if isDir(path) {
				discovered = append(discovered, items.NewHoudiniScriptsDirectoryItem(path, writeBack, true))
			}

		default:
			path := filepath.Join(houdiniRoot, name)
			if isDir(path) {
				discovered = append(discovered, items.NewHoudiniDirectoryItem(path, writeBack, true))
			} else {
				logger.Warn("Skipping unknown houdini item type", logger.String("name", name))
			}
		}
	}

	return discovered, nil
}

// digitalAssetItems builds an item for each asset library under the directory,
// expanded libraries as directories and everything else as binary files.
func digitalAssetItems(assetDir string, writeBack bool) ([]items.Item, error) {
	entries, err := os.ReadDir(assetDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading asset dir %s: %w", assetDir, err)
	}

	var discovered []items.Item

	for _, entry := range entries {
		path := filepath.Join(assetDir, entry.Name())

		if entry.IsDir() {
			if items.IsExpandedDigitalAssetDir(path) {
				discovered = append(discovered, items.NewDigitalAssetDirectory(path, writeBack))
			}

			continue
		}

		switch filepath.Ext(entry.Name()) {
		case ".otl", ".hda":
			discovered = append(discovered, items.NewBinaryDigitalAssetFile(path, writeBack))
		}
	}

	return discovered, nil
}

// resolvePath joins path under root unless it is already absolute.
func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(root, path)
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
