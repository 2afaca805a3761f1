package cli

import (
	"testing"

	"github.com/spf13/cobra"
)

// getCommand returns the named subcommand of a fresh root command.
func getCommand(name string) *cobra.Command {
	for _, c := range RootCmd().Commands() {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// TestNoFlagConflicts verifies that all subcommands can be initialized
// without flag shorthand conflicts, such as a subcommand defining -v while
// the root uses it for --verbosity.
func TestNoFlagConflicts(t *testing.T) {
	root := RootCmd()
	if root == nil {
		t.Fatal("RootCmd() returned nil")
	}

	subcommands := root.Commands()
	if len(subcommands) == 0 {
		t.Fatal("expected at least one subcommand")
	}

	for _, cmd := range subcommands {
		t.Run(cmd.Name(), func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("flag conflict in %q command: %v", cmd.Name(), r)
				}
			}()

			// Merges persistent flags from the root with local flags
			_ = cmd.Flags()
			_ = cmd.InheritedFlags()
		})
	}
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	root := RootCmd()

	tests := []struct {
		flagName     string
		wantDefault  string
		wantShortcut string
	}{
		{"verbosity", "1", "v"},
		{"log-format", "text", ""},
		{"backend", "", ""},
		{"format", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := root.PersistentFlags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("expected persistent %q flag on root command", tt.flagName)
			}
			if flag.DefValue != tt.wantDefault {
				t.Errorf("flag %q default = %q, want %q", tt.flagName, flag.DefValue, tt.wantDefault)
			}
			if flag.Shorthand != tt.wantShortcut {
				t.Errorf("flag %q shorthand = %q, want %q", tt.flagName, flag.Shorthand, tt.wantShortcut)
			}
		})
	}
}

func TestSubcommandsExist(t *testing.T) {
	for _, name := range []string{"version", "find", "list", "check", "scan", "status", "watch"} {
		if getCommand(name) == nil {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
	if getCommand("nonexistent") != nil {
		t.Error("getCommand should return nil for non-existent command")
	}
}

// TestVerboseFlagNoShorthand verifies that subcommand --verbose flags
// don't take root's -v shorthand.
func TestVerboseFlagNoShorthand(t *testing.T) {
	for _, name := range []string{"watch"} {
		t.Run(name, func(t *testing.T) {
			cmd := getCommand(name)
			if cmd == nil {
				t.Fatalf("command %q not found", name)
			}
			flag := cmd.Flags().Lookup("verbose")
			if flag == nil {
				t.Fatalf("command %q has no verbose flag", name)
			}
			if flag.Shorthand != "" {
				t.Errorf("command %q verbose flag should not have shorthand, got %q", name, flag.Shorthand)
			}
		})
	}
}

func TestCommands_FlagDefaults(t *testing.T) {
	tests := []struct {
		command      string
		flagName     string
		wantDefault  string
		wantShortcut string
	}{
		{"find", "file", "", "f"},
		{"find", "dialect", "", ""},
		{"find", "configuration", "", "c"},
		{"find", "project", "", ""},
		{"find", "require", "false", ""},
		{"list", "file", "", "f"},
		{"list", "project", "", ""},
		{"scan", "group", "", "g"},
		{"scan", "artifact", "", "a"},
		{"scan", "version", "", ""},
		{"scan", "no-state", "false", ""},
		{"status", "files", "false", ""},
		{"status", "reset", "false", ""},
		{"watch", "debounce", "500ms", ""},
		{"watch", "group", "", "g"},
		{"watch", "json", "false", ""},
		{"watch", "no-color", "false", ""},
	}

	for _, tt := range tests {
		t.Run(tt.command+"/"+tt.flagName, func(t *testing.T) {
			cmd := getCommand(tt.command)
			if cmd == nil {
				t.Fatalf("command %q not found", tt.command)
			}
			flag := cmd.Flags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("flag %q not found on %s command", tt.flagName, tt.command)
			}
			if flag.DefValue != tt.wantDefault {
				t.Errorf("flag %q default = %q, want %q", tt.flagName, flag.DefValue, tt.wantDefault)
			}
			if flag.Shorthand != tt.wantShortcut {
				t.Errorf("flag %q shorthand = %q, want %q", tt.flagName, flag.Shorthand, tt.wantShortcut)
			}
		})
	}
}

func TestCommands_UseAndShort(t *testing.T) {
	tests := []struct {
		name    string
		wantUse string
	}{
		{"find", "find GROUP ARTIFACT [VERSION]"},
		{"list", "list"},
		{"check", "check FILE..."},
		{"scan", "scan [DIR]"},
		{"status", "status [DIR]"},
		{"watch", "watch [DIR]"},
		{"version", "version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := getCommand(tt.name)
			if cmd == nil {
				t.Fatalf("command %q not found", tt.name)
			}
			if cmd.Use != tt.wantUse {
				t.Errorf("Use = %q, want %q", cmd.Use, tt.wantUse)
			}
			if cmd.Short == "" {
				t.Error("Short description should not be empty")
			}
		})
	}
}

func TestCommands_HaveRunE(t *testing.T) {
	for _, name := range []string{"find", "list", "check", "scan", "status", "watch"} {
		cmd := getCommand(name)
		if cmd == nil || cmd.RunE == nil {
			t.Errorf("command %q should have RunE", name)
		}
	}
}
