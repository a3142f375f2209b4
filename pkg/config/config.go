// Package config loads firebat settings from TOML, YAML or JSON files.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/parkrevil/firebat-sub000/pkg/analyzer/coupling"
	"github.com/parkrevil/firebat-sub000/pkg/analyzer/duplicates"
)

// Config holds all configuration options for firebat.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// Coupling thresholds
	Thresholds coupling.Thresholds `koanf:"thresholds" toml:"thresholds"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// AnalysisConfig controls which detectors run and how.
type AnalysisConfig struct {
	Dependencies      bool   `koanf:"dependencies" toml:"dependencies"`
	Coupling          bool   `koanf:"coupling" toml:"coupling"`
	Duplicates        bool   `koanf:"duplicates" toml:"duplicates"`
	DuplicateMode     string `koanf:"duplicate_mode" toml:"duplicate_mode"`
	DuplicateMinSize  int    `koanf:"duplicate_min_size" toml:"duplicate_min_size"`
	NormalizeLiterals bool   `koanf:"normalize_literals" toml:"normalize_literals"`
	MaxCircuits       int    `koanf:"max_circuits" toml:"max_circuits"`
	TopN              int    `koanf:"top_n" toml:"top_n"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	// Patterns are doublestar globs matched against slash paths relative to
	// the scan root.
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// Cache backends.
const (
	CacheBackendFile   = "file"
	CacheBackendBadger = "badger"
	CacheBackendMemory = "memory"
)

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours, 0 keeps entries forever
	Backend string `koanf:"backend" toml:"backend"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, toon, markdown, mermaid
	Color  bool   `koanf:"color" toml:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	dup := duplicates.DefaultConfig()
	return &Config{
		Analysis: AnalysisConfig{
			Dependencies:     true,
			Coupling:         true,
			Duplicates:       true,
			DuplicateMode:    string(dup.Mode),
			DuplicateMinSize: dup.MinSize,
			MaxCircuits:      100,
			TopN:             10,
		},
		Thresholds: coupling.DefaultThresholds(),
		Exclude: ExcludeConfig{
			Patterns: []string{
				"**/*.min.js",
			},
			Dirs: []string{
				"node_modules",
				".git",
				".firebat",
				"dist",
				"build",
				"coverage",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".firebat/cache",
			TTL:     24,
			Backend: CacheBackendFile,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Validate checks values the schema cannot express.
func (c *Config) Validate() error {
	var errs []error
	if !duplicates.Mode(c.Analysis.DuplicateMode).Valid() {
		errs = append(errs, fmt.Errorf("analysis.duplicate_mode: unknown mode %q", c.Analysis.DuplicateMode))
	}
	if c.Analysis.DuplicateMinSize < 1 {
		errs = append(errs, fmt.Errorf("analysis.duplicate_min_size: must be at least 1, got %d", c.Analysis.DuplicateMinSize))
	}
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendBadger, CacheBackendMemory:
	default:
		errs = append(errs, fmt.Errorf("cache.backend: unknown backend %q", c.Cache.Backend))
	}
	if c.Cache.Enabled && c.Cache.Backend != CacheBackendMemory && c.Cache.Dir == "" {
		errs = append(errs, errors.New("cache.dir: required for persistent cache backends"))
	}
	return errors.Join(errs...)
}

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://github.com/parkrevil/firebat/config.schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to read config schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add config schema: %w", err)
	}
	return c.Compile(schemaURL)
})

// validateRaw checks the loaded key tree against the embedded schema.
func validateRaw(k *koanf.Koanf) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}
	raw, err := k.Marshal(json.Parser())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return schema.Validate(inst)
}

// parserFor picks a koanf parser by file extension, defaulting to TOML.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}

// Load loads configuration from a file, layering it over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	if err := validateRaw(k); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	// lists replace the defaults rather than merging index by index
	if k.Exists("exclude.patterns") {
		cfg.Exclude.Patterns = k.Strings("exclude.patterns")
	}
	if k.Exists("exclude.dirs") {
		cfg.Exclude.Dirs = k.Strings("exclude.dirs")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ConfigNames are the file names searched for, in order.
var ConfigNames = []string{
	"firebat.toml",
	"firebat.yaml",
	"firebat.yml",
	"firebat.json",
	".firebat.toml",
	".firebat.yaml",
	".firebat.yml",
	".firebat.json",
}

// SearchDirs are the directories searched for config files, in order.
var SearchDirs = []string{".", ".firebat"}

// LoadResult is a loaded config and the file it came from.
type LoadResult struct {
	Config *Config
	// Source is the config file path, empty when the defaults were used.
	Source string
}

type loadOptions struct {
	path string
	root string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads exactly this file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithRoot searches relative to root instead of the working directory.
func WithRoot(root string) LoadOption {
	return func(o *loadOptions) {
		o.root = root
	}
}

// LoadConfig loads an explicit config file or the first one found in the
// standard locations. Without any file the defaults are returned.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{root: "."}
	for _, opt := range opts {
		opt(&o)
	}

	if o.path != "" {
		cfg, err := Load(o.path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: o.path}, nil
	}

	if path := Find(o.root); path != "" {
		cfg, err := Load(path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: path}, nil
	}
	return &LoadResult{Config: DefaultConfig()}, nil
}

// Find returns the first config file under root, or "".
func Find(root string) string {
	for _, dir := range SearchDirs {
		for _, name := range ConfigNames {
			path := filepath.Join(root, dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	result, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return result.Config
}
