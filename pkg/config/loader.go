package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/albertocavalcante/gradledeps/internal/log"
	"github.com/albertocavalcante/gradledeps/pkg/treesitter"
)

const (
	// ConfigFileName is the project config file at the workspace root.
	ConfigFileName = "gradledeps.toml"

	// ConfigDirName holds config.toml and the scan state. Its config.toml
	// wins over ConfigFileName.
	ConfigDirName = ".gradledeps"

	// GlobalConfigDir is the directory under os.UserConfigDir.
	GlobalConfigDir = "gradledeps"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "GRADLEDEPS_"
)

// workspaceMarkers end the upward search for a project config.
var workspaceMarkers = []string{".git", "settings.gradle", "settings.gradle.kts", "gradlew"}

// LoadFrom layers defaults, the global config, the nearest project config
// above dir and GRADLEDEPS_* variables, in that order. Flags are applied by
// the caller. Files that fail to decode are logged and skipped.
func LoadFrom(dir string) *Config {
	cfg := NewConfig()
	for _, path := range []string{GlobalConfigPath(), findProjectConfig(dir)} {
		if path == "" {
			continue
		}
		file, err := DecodeFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			log.Warn("ignoring config file", "path", path, "error", err)
		default:
			cfg.Merge(file)
			cfg.Sources = append(cfg.Sources, path)
		}
	}
	applyEnv(cfg)
	return cfg
}

// findProjectConfig walks up from dir and returns the first project config
// file, stopping at a repository or Gradle build root.
func findProjectConfig(dir string) string {
	for {
		for _, path := range ProjectConfigPaths(dir) {
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
		if slices.ContainsFunc(workspaceMarkers, func(m string) bool {
			_, err := os.Stat(filepath.Join(dir, m))
			return err == nil
		}) {
			return ""
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// DecodeFile reads one TOML config file. Unknown keys are an error so that
// typos do not pass silently.
func DecodeFile(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return &cfg, nil
}

// envOverrides maps each variable to the setting it replaces. Values that
// do not parse are ignored.
var envOverrides = map[string]func(*Config, string){
	EnvPrefix + "PARSER_BACKEND": func(c *Config, v string) { c.Parser.Backend = v },
	treesitter.EnvVarBackend:     func(c *Config, v string) { c.Parser.TreeSitterRuntime = v },
	EnvPrefix + "HYBRID_PRIMARY": func(c *Config, v string) { c.Parser.HybridPrimary = v },
	EnvPrefix + "OUTPUT_FORMAT":  func(c *Config, v string) { c.Output.Format = strings.ToLower(v) },
	EnvPrefix + "LOG_FORMAT":     func(c *Config, v string) { c.Log.Format = strings.ToLower(v) },

	EnvPrefix + "HYBRID_LOG_DIFFS": func(c *Config, v string) {
		if b, ok := parseBool(v); ok {
			c.Parser.HybridLogDiffs = &b
		}
	},

	// Added to the configured list, not replacing it.
	EnvPrefix + "SCAN_IGNORE_DIRS": func(c *Config, v string) {
		c.Merge(&Config{Scan: ScanConfig{IgnoreDirs: splitAndTrim(v)}})
	},

	EnvPrefix + "SCAN_WORKERS": func(c *Config, v string) {
		if n, err := strconv.Atoi(v); err == nil {
			c.Scan.Workers = n
		}
	},

	EnvPrefix + "LOG_VERBOSITY": func(c *Config, v string) {
		if n, err := strconv.Atoi(v); err == nil {
			c.Log.Verbosity = &n
		}
	},
}

func applyEnv(cfg *Config) {
	for name, apply := range envOverrides {
		if v := os.Getenv(name); v != "" {
			apply(cfg, v)
		}
	}
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

func splitAndTrim(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GlobalConfigPath returns the per-user config file, or "" when the user
// config directory is unknown.
func GlobalConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, GlobalConfigDir, "config.toml")
}

// ProjectConfigPaths lists the project config files looked for in dir, in
// order of preference.
func ProjectConfigPaths(dir string) []string {
	return []string{
		filepath.Join(dir, ConfigDirName, "config.toml"),
		filepath.Join(dir, ConfigFileName),
	}
}
