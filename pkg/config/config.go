// Package config loads wraith settings from TOML, YAML or JSON files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml"

	"github.com/panbanda/wraith/pkg/deadcode"
	"github.com/panbanda/wraith/pkg/deadcode/plugins"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Formats lists the accepted output formats.
var Formats = []string{"text", "json", "markdown", "toon", "yaml"}

// Config holds all configuration options for wraith.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// Plugin selection
	Plugins PluginsConfig `koanf:"plugins" toml:"plugins"`

	// Project-specific names that are never reported
	Ignore IgnoreConfig `koanf:"ignore" toml:"ignore"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// AnalysisConfig tunes the indexing run.
type AnalysisConfig struct {
	Workers     int   `koanf:"workers" toml:"workers" comment:"Concurrent indexing workers (0 = 2x CPU count)"`
	MaxFileSize int64 `koanf:"max_file_size" toml:"max_file_size" comment:"Skip files larger than this many bytes (0 = no limit)"`
	ShowIgnored bool  `koanf:"show_ignored" toml:"show_ignored" comment:"List definitions excluded by plugins"`
}

// PluginsConfig selects built-in plugins. An empty list enables all of them
// in their default order.
type PluginsConfig struct {
	Enabled []string `koanf:"enabled" toml:"enabled" comment:"Built-in plugins in run order (empty = all)"`
}

// IgnoreConfig feeds the custom plugin. Entries wrapped in slashes are
// regular expressions.
type IgnoreConfig struct {
	Methods   []string `koanf:"methods" toml:"methods"`
	Classes   []string `koanf:"classes" toml:"classes"`
	Modules   []string `koanf:"modules" toml:"modules"`
	Constants []string `koanf:"constants" toml:"constants"`
	Inherits  []string `koanf:"inherits" toml:"inherits" comment:"Ignore classes inheriting from these"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns" comment:"gitignore-style patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl" comment:"Entry lifetime in hours (0 = no expiry)"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format" comment:"text, json, markdown, toon or yaml"`
	Color  bool   `koanf:"color" toml:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Workers:     0,
			MaxFileSize: 2 * 1024 * 1024,
		},
		Plugins: PluginsConfig{
			Enabled: []string{},
		},
		Ignore: IgnoreConfig{
			Methods:   []string{},
			Classes:   []string{},
			Modules:   []string{},
			Constants: []string{},
			Inherits:  []string{},
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.rb",
				"db/schema.rb",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".wraith",
				".bundle",
				"tmp",
				"log",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".wraith/cache",
			TTL:     24 * 7,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file over the defaults and validates it.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// configNames are searched in order inside each search directory.
var configNames = []string{
	"wraith.toml",
	"wraith.yaml",
	"wraith.yml",
	"wraith.json",
	".wraith.toml",
	".wraith.yaml",
	".wraith.yml",
	".wraith.json",
}

// Find returns the first config file under dir or dir/.wraith, or "".
func Find(dir string) string {
	for _, d := range []string{dir, filepath.Join(dir, ".wraith")} {
		for _, name := range configNames {
			path := filepath.Join(d, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault loads the config found under dir, or returns the defaults
// when there is none. The second result names the file that was loaded.
func LoadOrDefault(dir string) (*Config, string, error) {
	path := Find(dir)
	if path == "" {
		return DefaultConfig(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("%w: analysis.workers must not be negative", ErrInvalid)
	}
	if c.Analysis.MaxFileSize < 0 {
		return fmt.Errorf("%w: analysis.max_file_size must not be negative", ErrInvalid)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("%w: cache.ttl must not be negative", ErrInvalid)
	}
	if !validFormat(c.Output.Format) {
		return fmt.Errorf("%w: output.format %q (want one of %s)", ErrInvalid, c.Output.Format, strings.Join(Formats, ", "))
	}
	if _, err := c.Chain(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func validFormat(f string) bool {
	for _, known := range Formats {
		if strings.EqualFold(f, known) {
			return true
		}
	}
	return strings.EqualFold(f, "md")
}

// CustomRules converts the [ignore] section into custom plugin rules.
func (c *Config) CustomRules() plugins.CustomRules {
	return plugins.CustomRules{
		Methods:   c.Ignore.Methods,
		Classes:   c.Ignore.Classes,
		Modules:   c.Ignore.Modules,
		Constants: c.Ignore.Constants,
		Inherits:  c.Ignore.Inherits,
	}
}

// Chain builds the plugin chain: the enabled built-ins in the configured
// order, then a custom plugin when [ignore] has entries.
func (c *Config) Chain() (*deadcode.Chain, error) {
	var extra []deadcode.Plugin
	if rules := c.CustomRules(); !rules.Empty() {
		custom, err := plugins.NewCustom(rules)
		if err != nil {
			return nil, err
		}
		extra = append(extra, custom)
	}
	return plugins.Build(c.Plugins.Enabled, extra...)
}

// ExcludePatterns returns every exclusion as a gitignore-style pattern.
func (c *Config) ExcludePatterns() []string {
	patterns := make([]string, 0, len(c.Exclude.Patterns)+len(c.Exclude.Dirs))
	patterns = append(patterns, c.Exclude.Patterns...)
	for _, dir := range c.Exclude.Dirs {
		patterns = append(patterns, strings.TrimSuffix(dir, "/")+"/")
	}
	return patterns
}

// TOML renders the config as a commented TOML document.
func (c *Config) TOML() ([]byte, error) {
	content, err := gotoml.Marshal(*c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# wraith configuration\n")
	buf.WriteString("# Plugins: " + strings.Join(plugins.Names(), ", ") + "\n\n")
	buf.Write(content)
	return []byte(buf.String()), nil
}
