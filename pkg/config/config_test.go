package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/albertocavalcante/gradledeps/pkg/gradle"
	"github.com/albertocavalcante/gradledeps/pkg/treesitter"
)

// isolate points the global config at an empty directory and clears
// GRADLEDEPS_* variables for the duration of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, EnvPrefix) {
			t.Setenv(name, "")
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Parser.Backend != "heuristic" {
		t.Errorf("default backend should be heuristic, got %q", cfg.Parser.Backend)
	}
	if cfg.Parser.TreeSitterRuntime != "auto" {
		t.Errorf("default tree-sitter runtime should be auto, got %q", cfg.Parser.TreeSitterRuntime)
	}
	if cfg.Output.Format != FormatText {
		t.Errorf("default output format should be text, got %q", cfg.Output.Format)
	}
	if cfg.Log.Verbosity == nil || *cfg.Log.Verbosity != 1 {
		t.Error("default verbosity should be 1")
	}
	if len(cfg.Scan.IgnoreDirs) != len(DefaultIgnoreDirs) {
		t.Errorf("expected %d default ignore dirs, got %d", len(DefaultIgnoreDirs), len(cfg.Scan.IgnoreDirs))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	// Defaults must not alias the package-level slice.
	cfg.Scan.IgnoreDirs[0] = "changed"
	if DefaultIgnoreDirs[0] == "changed" {
		t.Error("NewConfig should copy DefaultIgnoreDirs")
	}
}

func TestMerge(t *testing.T) {
	base := NewConfig()

	falseVal := false
	verbosity := 3
	override := &Config{
		Parser: ParserConfig{
			Backend:        "hybrid",
			HybridLogDiffs: &falseVal,
		},
		Scan: ScanConfig{
			IgnoreDirs: []string{"generated", "build"},
			Workers:    4,
		},
		Output: OutputConfig{Format: FormatJSON},
		Log:    LogConfig{Verbosity: &verbosity},
	}

	base.Merge(override)

	if base.Parser.Backend != "hybrid" {
		t.Errorf("backend should be hybrid after merge, got %q", base.Parser.Backend)
	}
	if base.Parser.TreeSitterRuntime != "auto" {
		t.Error("empty runtime should not override the default")
	}
	if *base.Parser.HybridLogDiffs {
		t.Error("hybrid_log_diffs should be false after merge")
	}
	if base.Scan.Workers != 4 {
		t.Errorf("workers should be 4, got %d", base.Scan.Workers)
	}
	if *base.Log.Verbosity != 3 {
		t.Errorf("verbosity should be 3, got %d", *base.Log.Verbosity)
	}
	if base.Log.Format != "text" {
		t.Error("empty log format should not override the default")
	}

	// Ignore dirs accumulate without duplicates
	count := 0
	for _, d := range base.Scan.IgnoreDirs {
		if d == "build" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("build should appear once, got %d", count)
	}
	if base.Scan.IgnoreDirs[len(base.Scan.IgnoreDirs)-1] != "generated" {
		t.Errorf("generated should be appended, got %v", base.Scan.IgnoreDirs)
	}

	base.Merge(nil)
	if base.Parser.Backend != "hybrid" {
		t.Error("merging nil should be a no-op")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"backend", func(c *Config) { c.Parser.Backend = "regex" }, "parser.backend"},
		{"runtime", func(c *Config) { c.Parser.TreeSitterRuntime = "wasm" }, "parser.treesitter_runtime"},
		{"hybrid primary", func(c *Config) { c.Parser.HybridPrimary = "hybrid" }, "parser.hybrid_primary"},
		{"workers", func(c *Config) { c.Scan.Workers = -1 }, "scan.workers"},
		{"output", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"verbosity", func(c *Config) { v := 9; c.Log.Verbosity = &v }, "log.verbosity"},
		{"log format", func(c *Config) { c.Log.Format = "logfmt" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error should name %s, got %v", tt.field, err)
			}
		})
	}

	cfg := NewConfig()
	cfg.Parser.Backend = "bad"
	cfg.Output.Format = "bad"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "parser.backend") || !strings.Contains(err.Error(), "output.format") {
		t.Errorf("all invalid fields should be reported, got %v", err)
	}
}

func TestBackendConfig(t *testing.T) {
	cfg := NewConfig()
	if cfg.BackendType() != gradle.BackendHeuristic {
		t.Errorf("expected heuristic, got %q", cfg.BackendType())
	}

	cfg.Parser.Backend = "TreeSitter"
	if cfg.BackendType() != gradle.BackendTreeSitter {
		t.Errorf("expected treesitter, got %q", cfg.BackendType())
	}
	cfg.Parser.Backend = "nonsense"
	if cfg.BackendType() != gradle.BackendHeuristic {
		t.Error("invalid backend should fall back to heuristic")
	}

	falseVal := false
	cfg.Parser.TreeSitterRuntime = "cgo"
	cfg.Parser.HybridPrimary = "treesitter"
	cfg.Parser.HybridLogDiffs = &falseVal
	bc := cfg.BackendConfig()
	if bc.TreeSitterBackend != treesitter.BackendCGO {
		t.Errorf("expected cgo runtime, got %q", bc.TreeSitterBackend)
	}
	if bc.HybridPrimary != gradle.BackendTreeSitter {
		t.Errorf("expected treesitter primary, got %q", bc.HybridPrimary)
	}
	if bc.HybridLogDiffs {
		t.Error("hybrid log diffs should be disabled")
	}

	cfg.Parser.Backend = "heuristic"
	b, err := cfg.NewBackend()
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if b.Name() != "heuristic" {
		t.Errorf("expected heuristic backend, got %q", b.Name())
	}
}

func TestLoadFrom_ProjectConfig(t *testing.T) {
	isolate(t)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "settings.gradle"), "rootProject.name = 'x'\n")
	writeFile(t, filepath.Join(root, ConfigFileName), `
[parser]
backend = "hybrid"

[scan]
ignore_dirs = ["generated"]
workers = 2

[output]
format = "yaml"
`)
	sub := filepath.Join(root, "app", "src")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := LoadFrom(sub)
	if cfg.Parser.Backend != "hybrid" {
		t.Errorf("project config should set backend, got %q", cfg.Parser.Backend)
	}
	if cfg.Scan.Workers != 2 {
		t.Errorf("workers should be 2, got %d", cfg.Scan.Workers)
	}
	if cfg.Output.Format != FormatYAML {
		t.Errorf("format should be yaml, got %q", cfg.Output.Format)
	}
	found := false
	for _, d := range cfg.Scan.IgnoreDirs {
		if d == "generated" {
			found = true
		}
	}
	if !found {
		t.Errorf("generated should be ignored, got %v", cfg.Scan.IgnoreDirs)
	}
}

func TestLoadFrom_ConfigDirWins(t *testing.T) {
	isolate(t)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/main\n")
	writeFile(t, filepath.Join(root, ConfigDirName, "config.toml"), "[output]\nformat = \"json\"\n")
	writeFile(t, filepath.Join(root, ConfigFileName), "[output]\nformat = \"yaml\"\n")

	cfg := LoadFrom(root)
	if cfg.Output.Format != FormatJSON {
		t.Errorf(".gradledeps/config.toml should take precedence, got %q", cfg.Output.Format)
	}
}

func TestLoadFrom_StopsAtWorkspaceRoot(t *testing.T) {
	isolate(t)

	outer := t.TempDir()
	writeFile(t, filepath.Join(outer, ConfigFileName), "[output]\nformat = \"json\"\n")
	inner := filepath.Join(outer, "build")
	writeFile(t, filepath.Join(inner, "settings.gradle.kts"), "")

	cfg := LoadFrom(inner)
	if cfg.Output.Format != FormatText {
		t.Errorf("search should stop at the Gradle build root, got %q", cfg.Output.Format)
	}
}

func TestLoadFrom_GlobalConfig(t *testing.T) {
	isolate(t)

	global := GlobalConfigPath()
	if global == "" {
		t.Skip("no user config dir")
	}
	writeFile(t, global, "[log]\nformat = \"json\"\n\n[parser]\nbackend = \"treesitter\"\n")

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "")
	writeFile(t, filepath.Join(root, ConfigFileName), "[parser]\nbackend = \"hybrid\"\n")

	cfg := LoadFrom(root)
	if cfg.Log.Format != "json" {
		t.Errorf("global config should set log format, got %q", cfg.Log.Format)
	}
	if cfg.Parser.Backend != "hybrid" {
		t.Errorf("project config should override global, got %q", cfg.Parser.Backend)
	}
	if len(cfg.Sources) != 2 || cfg.Sources[0] != global {
		t.Errorf("Sources = %v, want the global then the project file", cfg.Sources)
	}
}

func TestLoadFrom_InvalidFileIgnored(t *testing.T) {
	isolate(t)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "settings.gradle"), "")
	writeFile(t, filepath.Join(root, ConfigFileName), "[parser\nbackend = ")

	cfg := LoadFrom(root)
	if cfg.Parser.Backend != "heuristic" {
		t.Errorf("broken config should be skipped, got %q", cfg.Parser.Backend)
	}
	if len(cfg.Sources) != 0 {
		t.Errorf("Sources = %v, want none", cfg.Sources)
	}
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.toml")
	writeFile(t, good, "[scan]\nworkers = 8\n")
	cfg, err := DecodeFile(good)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scan.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Scan.Workers)
	}

	unknown := filepath.Join(dir, "unknown.toml")
	writeFile(t, unknown, "[parser]\nbakend = \"hybrid\"\n")
	_, err = DecodeFile(unknown)
	if err == nil || !strings.Contains(err.Error(), "parser.bakend") {
		t.Errorf("expected unknown key error, got %v", err)
	}

	_, err = DecodeFile(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestEnvironmentVariables(t *testing.T) {
	isolate(t)

	t.Setenv("GRADLEDEPS_PARSER_BACKEND", "treesitter")
	t.Setenv("GRADLEDEPS_TREESITTER_BACKEND", "cgo")
	t.Setenv("GRADLEDEPS_HYBRID_PRIMARY", "treesitter")
	t.Setenv("GRADLEDEPS_HYBRID_LOG_DIFFS", "no")
	t.Setenv("GRADLEDEPS_SCAN_IGNORE_DIRS", "vendor, generated ,")
	t.Setenv("GRADLEDEPS_SCAN_WORKERS", "3")
	t.Setenv("GRADLEDEPS_OUTPUT_FORMAT", "JSON")
	t.Setenv("GRADLEDEPS_LOG_VERBOSITY", "4")
	t.Setenv("GRADLEDEPS_LOG_FORMAT", "json")

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "")
	cfg := LoadFrom(root)

	if cfg.Parser.Backend != "treesitter" {
		t.Errorf("backend: got %q", cfg.Parser.Backend)
	}
	if cfg.Parser.TreeSitterRuntime != "cgo" {
		t.Errorf("runtime: got %q", cfg.Parser.TreeSitterRuntime)
	}
	if cfg.Parser.HybridPrimary != "treesitter" {
		t.Errorf("hybrid primary: got %q", cfg.Parser.HybridPrimary)
	}
	if *cfg.Parser.HybridLogDiffs {
		t.Error("hybrid log diffs should be false")
	}
	if cfg.Scan.Workers != 3 {
		t.Errorf("workers: got %d", cfg.Scan.Workers)
	}
	if cfg.Output.Format != FormatJSON {
		t.Errorf("output format: got %q", cfg.Output.Format)
	}
	if *cfg.Log.Verbosity != 4 {
		t.Errorf("verbosity: got %d", *cfg.Log.Verbosity)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format: got %q", cfg.Log.Format)
	}
	tail := cfg.Scan.IgnoreDirs[len(cfg.Scan.IgnoreDirs)-2:]
	if tail[0] != "vendor" || tail[1] != "generated" {
		t.Errorf("ignore dirs: got %v", cfg.Scan.IgnoreDirs)
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{"a, b, c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,b", []string{"a", "b"}},
		{"", nil},
		{"single", []string{"single"}},
	}

	for _, tt := range tests {
		result := splitAndTrim(tt.input)
		if len(result) != len(tt.expected) {
			t.Errorf("splitAndTrim(%q) = %v, want %v", tt.input, result, tt.expected)
			continue
		}
		for i := range result {
			if result[i] != tt.expected[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, result[i], tt.expected[i])
			}
		}
	}
}

func TestProjectConfigPaths(t *testing.T) {
	paths := ProjectConfigPaths("/repo")
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	if paths[0] != filepath.Join("/repo", ".gradledeps", "config.toml") {
		t.Errorf("unexpected first path %q", paths[0])
	}
	if paths[1] != filepath.Join("/repo", "gradledeps.toml") {
		t.Errorf("unexpected second path %q", paths[1])
	}
}
