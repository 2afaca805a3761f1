package discover_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/albertocavalcante/gradledeps/cmd/gradledeps/internal/discover"
	"github.com/albertocavalcante/gradledeps/pkg/gradle"
)

func createFile(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("// test\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func paths(scripts []discover.Script) []string {
	out := make([]string, len(scripts))
	for i, s := range scripts {
		out[i] = s.Path
	}
	return out
}

func TestBuildScripts_Empty(t *testing.T) {
	tmpDir := t.TempDir()

	scripts, err := discover.BuildScripts(context.Background(), tmpDir, nil)
	if err != nil {
		t.Fatalf("BuildScripts() error = %v", err)
	}
	if len(scripts) != 0 {
		t.Errorf("BuildScripts() = %v, want empty", scripts)
	}
}

func TestBuildScripts_MultiProject(t *testing.T) {
	tmpDir := t.TempDir()
	createFile(t, tmpDir, "settings.gradle.kts")
	createFile(t, tmpDir, "build.gradle.kts")
	createFile(t, tmpDir, "app/build.gradle")
	createFile(t, tmpDir, "app/src/main/kotlin/Main.kt")
	createFile(t, tmpDir, "gradle/init.d/repos.gradle")
	createFile(t, tmpDir, "README.md")

	scripts, err := discover.BuildScripts(context.Background(), tmpDir, nil)
	if err != nil {
		t.Fatalf("BuildScripts() error = %v", err)
	}

	want := []string{"app/build.gradle", "build.gradle.kts", "gradle/init.d/repos.gradle", "settings.gradle.kts"}
	if got := paths(scripts); !slices.Equal(got, want) {
		t.Errorf("BuildScripts() = %v, want %v", got, want)
	}

	byPath := make(map[string]discover.Script)
	for _, s := range scripts {
		byPath[s.Path] = s
	}
	if byPath["app/build.gradle"].Dialect != gradle.Groovy {
		t.Error("app/build.gradle should be groovy")
	}
	if byPath["build.gradle.kts"].Dialect != gradle.Kotlin {
		t.Error("build.gradle.kts should be kotlin")
	}
	if !byPath["settings.gradle.kts"].Settings {
		t.Error("settings.gradle.kts should be flagged as settings")
	}
	if byPath["app/build.gradle"].Dir() != "app" {
		t.Errorf("Dir() = %q, want app", byPath["app/build.gradle"].Dir())
	}
}

func TestBuildScripts_IgnoredDirs(t *testing.T) {
	tmpDir := t.TempDir()
	createFile(t, tmpDir, "build.gradle")
	createFile(t, tmpDir, "build/tmp/build.gradle")
	createFile(t, tmpDir, ".gradle/caches/build.gradle")
	createFile(t, tmpDir, "node_modules/pkg/build.gradle")
	createFile(t, tmpDir, "buildSrc/build.gradle.kts")
	createFile(t, tmpDir, "buildSrc/build/generated/x.gradle")
	createFile(t, tmpDir, "docs/build/snippet.gradle")

	ignore := discover.NewIgnore([]string{"node_modules", "buildSrc/build", " /docs/build/ "})
	scripts, err := discover.BuildScripts(context.Background(), tmpDir, ignore)
	if err != nil {
		t.Fatalf("BuildScripts() error = %v", err)
	}

	want := []string{"build.gradle", "build/tmp/build.gradle", "buildSrc/build.gradle.kts"}
	if got := paths(scripts); !slices.Equal(got, want) {
		t.Errorf("BuildScripts() = %v, want %v", got, want)
	}
}

func TestBuildScripts_Canceled(t *testing.T) {
	tmpDir := t.TempDir()
	createFile(t, tmpDir, "build.gradle")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := discover.BuildScripts(ctx, tmpDir, nil); err == nil {
		t.Error("BuildScripts() expected error for canceled context")
	}
}

func TestBuildScripts_MissingRoot(t *testing.T) {
	if _, err := discover.BuildScripts(context.Background(), filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Error("BuildScripts() expected error for missing root")
	}
}

func TestIgnoreDir(t *testing.T) {
	ig := discover.NewIgnore([]string{"build", "a/b", "**/generated-*", "tools/{x,y}", "bad[pattern"})
	tests := []struct {
		rel  string
		want bool
	}{
		{".", false},
		{"", false},
		{"src", false},
		{"build", true},
		{"app/build", true},
		{".idea", true},
		{"app/.gradle", true},
		{"a/b", true},
		{"c/a/b", false},
		{"generated-src", true},
		{"app/src/generated-java", true},
		{"app/generated", false},
		{"tools/x", true},
		{"tools/z", false},
		{"bad[pattern", false},
	}
	for _, tt := range tests {
		if got := ig.Dir(tt.rel); got != tt.want {
			t.Errorf("Dir(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}

	var none *discover.Ignore
	if none.Dir("build") {
		t.Error("nil Ignore should only skip hidden dirs")
	}
	if !none.Dir(".git") {
		t.Error("nil Ignore should still skip hidden dirs")
	}
}

func TestIsScript(t *testing.T) {
	for name, want := range map[string]bool{
		"build.gradle":        true,
		"build.gradle.kts":    true,
		"settings.gradle":     true,
		"libs.versions.toml":  false,
		"gradle.properties":   false,
		"Main.kt":             false,
		"deploy.gradle.kts":   true,
		"notes.gradle.backup": false,
	} {
		if got := discover.IsScript(name); got != want {
			t.Errorf("IsScript(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestBuildRootsAndDialects(t *testing.T) {
	scripts := []discover.Script{
		{Path: "build.gradle", Dialect: gradle.Groovy},
		{Path: "included/settings.gradle.kts", Dialect: gradle.Kotlin, Settings: true},
		{Path: "settings.gradle", Dialect: gradle.Groovy, Settings: true},
		{Path: "app/build.gradle.kts", Dialect: gradle.Kotlin},
	}

	if got, want := discover.BuildRoots(scripts), []string{".", "included"}; !slices.Equal(got, want) {
		t.Errorf("BuildRoots() = %v, want %v", got, want)
	}
	if got, want := discover.Dialects(scripts), []gradle.Dialect{gradle.Groovy, gradle.Kotlin}; !slices.Equal(got, want) {
		t.Errorf("Dialects() = %v, want %v", got, want)
	}
}
