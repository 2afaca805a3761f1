// Package config provides configuration management for gradledeps.
// It supports multi-layer configuration with precedence:
//  1. Built-in defaults (lowest priority)
//  2. Global user config (~/.config/gradledeps/config.toml)
//  3. Project config (.gradledeps/config.toml or gradledeps.toml)
//  4. Environment variables (GRADLEDEPS_*)
//  5. CLI flags (highest priority)
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/albertocavalcante/gradledeps/pkg/gradle"
	"github.com/albertocavalcante/gradledeps/pkg/treesitter"
)

// Config is the main configuration struct for gradledeps.
type Config struct {
	// Parser configures how build scripts are parsed.
	Parser ParserConfig `toml:"parser"`

	// Scan configures workspace discovery.
	Scan ScanConfig `toml:"scan"`

	// Output configures how results are printed.
	Output OutputConfig `toml:"output"`

	// Log configures diagnostics on stderr.
	Log LogConfig `toml:"log"`

	// Sources lists the config files LoadFrom applied, lowest precedence first.
	Sources []string `toml:"-"`
}

// ParserConfig selects the parser backend.
type ParserConfig struct {
	// Backend is the parsing strategy ("heuristic", "treesitter", "hybrid").
	Backend string `toml:"backend"`

	// TreeSitterRuntime is the tree-sitter runtime ("auto", "cgo").
	TreeSitterRuntime string `toml:"treesitter_runtime"`

	// HybridPrimary is the backend whose result hybrid mode returns.
	HybridPrimary string `toml:"hybrid_primary"`

	// HybridLogDiffs logs differences between backends in hybrid mode.
	HybridLogDiffs *bool `toml:"hybrid_log_diffs"`
}

// ScanConfig holds workspace scan settings.
type ScanConfig struct {
	// IgnoreDirs are directory names never descended into.
	IgnoreDirs []string `toml:"ignore_dirs"`

	// Workers bounds the number of scripts parsed concurrently.
	// Zero means one per CPU.
	Workers int `toml:"workers"`
}

// OutputConfig holds result formatting settings.
type OutputConfig struct {
	// Format is "text", "json" or "yaml".
	Format string `toml:"format"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Verbosity is 0 (errors) through 4 (trace).
	Verbosity *int `toml:"verbosity"`

	// Format is "text" or "json".
	Format string `toml:"format"`
}

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DefaultIgnoreDirs are skipped by workspace scans.
var DefaultIgnoreDirs = []string{"build", "out", "node_modules", ".gradle", ".idea", ".git", "buildSrc/build"}

// NewConfig creates a new Config with built-in defaults.
func NewConfig() *Config {
	trueVal := true
	verbosity := 1
	return &Config{
		Parser: ParserConfig{
			Backend:           string(gradle.BackendHeuristic),
			TreeSitterRuntime: string(treesitter.BackendAuto),
			HybridPrimary:     string(gradle.BackendHeuristic),
			HybridLogDiffs:    &trueVal,
		},
		Scan: ScanConfig{
			IgnoreDirs: slices.Clone(DefaultIgnoreDirs),
		},
		Output: OutputConfig{
			Format: FormatText,
		},
		Log: LogConfig{
			Verbosity: &verbosity,
			Format:    "text",
		},
	}
}

// Merge merges another config into this one (other takes precedence).
// Ignore lists accumulate.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Merge parser config
	if other.Parser.Backend != "" {
		c.Parser.Backend = other.Parser.Backend
	}
	if other.Parser.TreeSitterRuntime != "" {
		c.Parser.TreeSitterRuntime = other.Parser.TreeSitterRuntime
	}
	if other.Parser.HybridPrimary != "" {
		c.Parser.HybridPrimary = other.Parser.HybridPrimary
	}
	if other.Parser.HybridLogDiffs != nil {
		c.Parser.HybridLogDiffs = other.Parser.HybridLogDiffs
	}

	// Merge scan config
	for _, dir := range other.Scan.IgnoreDirs {
		if !slices.Contains(c.Scan.IgnoreDirs, dir) {
			c.Scan.IgnoreDirs = append(c.Scan.IgnoreDirs, dir)
		}
	}
	if other.Scan.Workers != 0 {
		c.Scan.Workers = other.Scan.Workers
	}

	// Merge output config
	if other.Output.Format != "" {
		c.Output.Format = other.Output.Format
	}

	// Merge log config
	if other.Log.Verbosity != nil {
		c.Log.Verbosity = other.Log.Verbosity
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if _, err := gradle.ParseBackendType(c.Parser.Backend); err != nil {
		errs = append(errs, fmt.Errorf("parser.backend: %w", err))
	}
	if _, err := treesitter.ParseBackendType(c.Parser.TreeSitterRuntime); err != nil {
		errs = append(errs, fmt.Errorf("parser.treesitter_runtime: %w", err))
	}
	if p, err := gradle.ParseBackendType(c.Parser.HybridPrimary); err != nil || p == gradle.BackendHybrid {
		errs = append(errs, fmt.Errorf("parser.hybrid_primary: must be heuristic or treesitter, got %q", c.Parser.HybridPrimary))
	}
	if c.Scan.Workers < 0 {
		errs = append(errs, fmt.Errorf("scan.workers: must not be negative, got %d", c.Scan.Workers))
	}
	if !slices.Contains([]string{FormatText, FormatJSON, FormatYAML}, c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format: must be text, json or yaml, got %q", c.Output.Format))
	}
	if c.Log.Verbosity != nil && (*c.Log.Verbosity < 0 || *c.Log.Verbosity > 4) {
		errs = append(errs, fmt.Errorf("log.verbosity: must be 0-4, got %d", *c.Log.Verbosity))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format: must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// BackendType returns the configured parser backend.
func (c *Config) BackendType() gradle.ParserBackendType {
	typ, err := gradle.ParseBackendType(c.Parser.Backend)
	if err != nil {
		return gradle.BackendHeuristic
	}
	return typ
}

// BackendConfig converts the parser section into gradle.BackendConfig.
func (c *Config) BackendConfig() gradle.BackendConfig {
	bc := gradle.DefaultBackendConfig()
	if rt, err := treesitter.ParseBackendType(c.Parser.TreeSitterRuntime); err == nil {
		bc.TreeSitterBackend = rt
	}
	if p, err := gradle.ParseBackendType(c.Parser.HybridPrimary); err == nil && p != gradle.BackendHybrid {
		bc.HybridPrimary = p
	}
	if c.Parser.HybridLogDiffs != nil {
		bc.HybridLogDiffs = *c.Parser.HybridLogDiffs
	}
	return bc
}

// NewBackend creates the configured parser backend.
func (c *Config) NewBackend() (gradle.ParserBackend, error) {
	return gradle.NewParserBackend(c.BackendType(), c.BackendConfig())
}
