package runners

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/captainhammy/houdini-package-runner/pkg/command"
	"github.com/captainhammy/houdini-package-runner/pkg/exitcode"
	"github.com/captainhammy/houdini-package-runner/pkg/items"
)

// IsortRunner sorts Python imports with isort.
type IsortRunner struct {
	*BaseRunner

	settingsPath string
}

// NewIsortRunner creates an isort runner.
func NewIsortRunner(options Options) (*IsortRunner, error) {
	base, err := NewBaseRunner("isort", options)
	if err != nil {
		return nil, err
	}

	return &IsortRunner{BaseRunner: base}, nil
}

// ProcessPath runs isort against the file.
//
// Without write-back isort runs in check mode and reports a diff instead of
// modifying the file.
func (r *IsortRunner) ProcessPath(filePath string, item items.Item) (int, error) {
	settings, err := r.settingsFile()
	if err != nil {
		return exitcode.ConfigError, err
	}

	args := []string{"isort", "--settings-file", settings}

	if !r.WriteBack() {
		args = append(args, "--check", "--diff")
	}

	args = append(args, r.ExtraArgs()...)
	args = append(args, filePath)

	return command.Run(args, r.Verbose())
}

// isortSettings is the [tool.isort] table of a generated settings file.
type isortSettings struct {
	Profile  string   `toml:"profile"`
	Sections []string `toml:"sections"`

	KnownHoudini    []string `toml:"known_houdini,omitempty"`
	KnownFirstParty []string `toml:"known_first_party,omitempty"`

	ImportHeadingFuture     string `toml:"import_heading_future"`
	ImportHeadingStdlib     string `toml:"import_heading_stdlib"`
	ImportHeadingThirdparty string `toml:"import_heading_thirdparty"`
	ImportHeadingFirstparty string `toml:"import_heading_firstparty,omitempty"`
	ImportHeadingHoudini    string `toml:"import_heading_houdini"`
}

type isortDocument struct {
	Tool struct {
		Isort isortSettings `toml:"isort"`
	} `toml:"tool"`
}

// settingsFile returns the settings file to run isort with. A package
// supplied .isort.cfg wins; otherwise a settings file with a Houdini import
// section is generated once into the temp dir.
func (r *IsortRunner) settingsFile() (string, error) {
	if r.settingsPath != "" {
		return r.settingsPath, nil
	}

	if r.options.RootPath != "" {
		existing := filepath.Join(r.options.RootPath, ".isort.cfg")
		if _, err := os.Stat(existing); err == nil {
			r.settingsPath = existing
			return existing, nil
		}
	}

	path := filepath.Join(r.TempDir(), "pyproject.toml")

	if err := r.generateSettings(path); err != nil {
		return "", err
	}

	r.settingsPath = path

	return path, nil
}

// generateSettings writes a settings file placing Houdini modules into their
// own import section and labeling each section.
func (r *IsortRunner) generateSettings(path string) error {
	firstParty := firstPartyPackages(r.options.PythonRootPath)

	var doc isortDocument

	doc.Tool.Isort = isortSettings{
		Profile: "black",
		Sections: []string{
			"FUTURE", "STDLIB", "THIRDPARTY", "FIRSTPARTY", "HOUDINI", "LOCALFOLDER",
		},
		KnownHoudini:            houdiniModules(r.options.HFSPath),
		KnownFirstParty:         firstParty,
		ImportHeadingFuture:     "Future",
		ImportHeadingStdlib:     "Standard Library",
		ImportHeadingThirdparty: "Third Party",
		ImportHeadingHoudini:    "Houdini",
	}

	if len(firstParty) > 0 {
		heading := strings.ReplaceAll(firstParty[0], "_", " ")
		doc.Tool.Isort.ImportHeadingFirstparty = cases.Title(language.English).String(heading)
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("generating isort settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing isort settings: %w", err)
	}

	return nil
}

// houdiniModules collects the Python modules shipped with a Houdini install,
// scanning the versioned python*libs directories under $HFS/houdini.
func houdiniModules(hfsPath string) []string {
	seen := map[string]bool{"hou": true}

	if hfsPath != "" {
		libDirs, err := doublestar.FilepathGlob(filepath.Join(hfsPath, "houdini", "python*libs"))
		if err == nil {
			for _, libDir := range libDirs {
				entries, readErr := os.ReadDir(libDir)
				if readErr != nil {
					continue
				}

				for _, entry := range entries {
					name := entry.Name()

					if entry.IsDir() {
						seen[name] = true
						continue
					}

					if strings.HasSuffix(name, ".py") {
						seen[strings.TrimSuffix(name, ".py")] = true
					}
				}
			}
		}
	}

	modules := make([]string, 0, len(seen))
	for name := range seen {
		modules = append(modules, name)
	}

	sort.Strings(modules)

	return modules
}

// firstPartyPackages returns the package names under the package Python root.
func firstPartyPackages(pythonRoot string) []string {
	if pythonRoot == "" {
		return nil
	}

	entries, err := os.ReadDir(pythonRoot)
	if err != nil {
		return nil
	}

	var packages []string

	for _, entry := range entries {
		name := entry.Name()

		if entry.IsDir() {
			if _, statErr := os.Stat(filepath.Join(pythonRoot, name, "__init__.py")); statErr == nil {
				packages = append(packages, name)
			}

			continue
		}

		if strings.HasSuffix(name, ".py") {
			packages = append(packages, strings.TrimSuffix(name, ".py"))
		}
	}

	sort.Strings(packages)

	return packages
}
