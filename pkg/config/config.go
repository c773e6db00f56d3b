// Package config loads per-runner item configuration and process settings.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/captainhammy/houdini-package-runner/pkg/logger"
)

// ConfigurableItem is the part of an item configuration lookup needs.
type ConfigurableItem interface {
	// ConfigNames returns the item's config identity chain, most specific first.
	ConfigNames() []string

	// IsTestItem reports whether the item is test related.
	IsTestItem() bool
}

// EnvConfigPath names additional configuration files, separated by the OS path
// list separator. Earlier files take priority over later ones and all of them
// take priority over the embedded baseline.
const EnvConfigPath = "HOUDINI_PACKAGE_RUNNER_CONFIG_PATH"

//go:embed runners.toml
var baselineConfig []byte

// keyEntries holds the values of one configuration key, addressable by item
// config name, by file name, or for test items.
type keyEntries struct {
	Item     map[string][]string `toml:"item"`
	File     map[string][]string `toml:"file"`
	TestItem []string            `toml:"test_item"`
}

type runnerSection map[string]keyEntries

// RunnerConfig is the merged configuration for a single runner.
type RunnerConfig struct {
	runnerName string
	section    runnerSection
}

// Load builds the configuration for the named runner by merging the embedded
// baseline with any files named in EnvConfigPath.
func Load(runnerName string) (*RunnerConfig, error) {
	merged := runnerSection{}

	// Env files first so they win over the baseline; among env files the
	// earlier one wins.
	for _, path := range configPaths() {
		data, err := os.ReadFile(path) // #nosec G304 -- paths are user supplied configuration
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}

		if err := mergeSection(merged, runnerName, data); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}

		logger.Debug("Merged runner config", logger.String("path", path))
	}

	if err := mergeSection(merged, runnerName, baselineConfig); err != nil {
		return nil, fmt.Errorf("parsing baseline config: %w", err)
	}

	return &RunnerConfig{runnerName: runnerName, section: merged}, nil
}

// configPaths returns the extra configuration file paths from the environment.
func configPaths() []string {
	value := os.Getenv(EnvConfigPath)
	if value == "" {
		return nil
	}

	var paths []string

	for _, path := range strings.Split(value, string(os.PathListSeparator)) {
		if path != "" {
			paths = append(paths, path)
		}
	}

	return paths
}

// mergeSection parses the TOML data and merges the runner's section into
// existing, without overwriting entries already present.
func mergeSection(existing runnerSection, runnerName string, data []byte) error {
	var parsed map[string]runnerSection

	if err := toml.Unmarshal(data, &parsed); err != nil {
		return err
	}

	for key, entries := range parsed[runnerName] {
		current, ok := existing[key]
		if !ok {
			existing[key] = entries
			continue
		}

		for name, values := range entries.Item {
			if _, exists := current.Item[name]; !exists {
				if current.Item == nil {
					current.Item = map[string][]string{}
				}
				current.Item[name] = values
			}
		}

		for name, values := range entries.File {
			if _, exists := current.File[name]; !exists {
				if current.File == nil {
					current.File = map[string][]string{}
				}
				current.File[name] = values
			}
		}

		if current.TestItem == nil {
			current.TestItem = entries.TestItem
		}

		existing[key] = current
	}

	return nil
}

// RunnerName returns the runner the configuration was loaded for.
func (c *RunnerConfig) RunnerName() string { return c.runnerName }

// ConfigData gathers all values for a key that apply to the item being
// processed: entries for any name in the item's config chain, test item
// entries when the item is test related, and entries for the file name.
func (c *RunnerConfig) ConfigData(key string, item ConfigurableItem, filePath string) []string {
	entries, ok := c.section[key]
	if !ok {
		return nil
	}

	var values []string

	for _, name := range item.ConfigNames() {
		values = append(values, entries.Item[name]...)
	}

	if item.IsTestItem() {
		values = append(values, entries.TestItem...)
	}

	if filePath != "" {
		values = append(values, entries.File[filepath.Base(filePath)]...)
	}

	return values
}

// NewSettings builds the process level settings, resolved from the environment
// with the HOUDINI_PACKAGE_RUNNER prefix.
func NewSettings() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("houdini_package_runner")
	v.AutomaticEnv()

	v.SetDefault("hotl_command", "hotl")
	v.SetDefault("hfs_path", os.Getenv("HFS"))

	return v
}
