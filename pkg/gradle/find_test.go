package gradle_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/albertocavalcante/gradledeps/pkg/gradle"
	"github.com/albertocavalcante/gradledeps/pkg/gradle/gradletest"
)

func TestFindDependency_ImplementationMatch(t *testing.T) {
	for _, name := range []string{"lib-a-groovy", "lib-a-kotlin"} {
		t.Run(name, func(t *testing.T) {
			f := gradletest.MustGet(t, name)
			matches, err := gradle.FindDependency(f.Text, f.Dialect, "org.example", "lib-a", "")
			require.NoError(t, err)
			require.Len(t, matches, 1)
			assert.Equal(t, "implementation", matches[0].Configuration)
			assert.Equal(t, "1.2.3", matches[0].Version)
			assert.Equal(t, "dependencies", matches[0].Block)
			assert.Equal(t, 8, matches[0].Location.Line)
		})
	}
}

func TestFindDependency_AnyConfiguration(t *testing.T) {
	f := gradletest.MustGet(t, "lib-a-groovy")
	matches, err := gradle.FindDependency(f.Text, f.Dialect, "org.junit.jupiter", "junit-jupiter", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "testImplementation", matches[0].Configuration)
	assert.Equal(t, "5.9.3", matches[0].Version)
}

func TestFindDependency_Absent(t *testing.T) {
	f := gradletest.MustGet(t, "spring-boot-groovy")
	matches, err := gradle.FindDependency(f.Text, f.Dialect, "org.example", "not-declared", "")
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestFindDependency_InvalidCoordinate(t *testing.T) {
	f := gradletest.MustGet(t, "lib-a-groovy")
	tests := []struct {
		name            string
		group, artifact string
		version         string
		field           string
	}{
		{"empty group", "", "lib-a", "", "group"},
		{"blank group", "  ", "lib-a", "", "group"},
		{"empty artifact", "org.example", "", "", "artifact"},
		{"colon in group", "org:example", "lib-a", "", "group"},
		{"bad glob", "org.[example", "lib-a", "", "group"},
		{"colon in version", "org.example", "lib-a", "1:2", "version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gradle.FindDependency(f.Text, f.Dialect, tt.group, tt.artifact, tt.version)
			var cerr *gradle.InvalidCoordinateError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestFindDependency_InvalidCoordinateBeforeParse(t *testing.T) {
	_, err := gradle.FindDependency("dependencies {", gradle.Groovy, "", "lib-a", "")
	var cerr *gradle.InvalidCoordinateError
	require.ErrorAs(t, err, &cerr)
}

func TestFindDependency_ParseError(t *testing.T) {
	for _, name := range []string{"broken-groovy", "broken-kotlin"} {
		t.Run(name, func(t *testing.T) {
			f := gradletest.MustGet(t, name)
			matches, err := gradle.FindDependency(f.Text, f.Dialect, "org.example", "lib-a", "")
			var perr *gradle.ParseError
			require.ErrorAs(t, err, &perr)
			assert.Nil(t, matches)
			assert.Equal(t, f.Dialect, perr.Dialect)
			assert.Positive(t, perr.Line)
		})
	}
}

func TestFindDependency_CommentedOut(t *testing.T) {
	for _, name := range []string{"lib-a-groovy", "lib-a-kotlin"} {
		f := gradletest.MustGet(t, name)
		for _, artifact := range []string{"lib-commented", "lib-hidden"} {
			matches, err := gradle.FindDependency(f.Text, f.Dialect, "org.example", artifact, "")
			require.NoError(t, err)
			assert.Empty(t, matches, "%s: %s", name, artifact)
		}
	}

	spring := gradletest.MustGet(t, "spring-boot-groovy")
	script, err := gradle.Parse(spring.Text, spring.Dialect)
	require.NoError(t, err)
	assert.Len(t, script.Dependencies, 2, "tasks block inside /* */ is ignored")
}

func TestFindDependency_DialectParity(t *testing.T) {
	groovy := gradletest.MustGet(t, "lib-a-groovy")
	kotlin := gradletest.MustGet(t, "lib-a-kotlin")

	g, err := gradle.Parse(groovy.Text, groovy.Dialect)
	require.NoError(t, err)
	k, err := gradle.Parse(kotlin.Text, kotlin.Dialect)
	require.NoError(t, err)

	assert.Equal(t, coords(g.Dependencies), coords(k.Dependencies))
	assert.Equal(t, g.Plugins[0].ID, k.Plugins[0].ID)
	assert.False(t, gradle.CompareResults(g, k).HasDifferences())
}

func TestFindDependency_ExactVersion(t *testing.T) {
	f := gradletest.MustGet(t, "lib-a-kotlin")
	tests := []struct {
		version string
		want    int
	}{
		{"", 1},
		{"1.2.3", 1},
		{" 1.2.3 ", 1},
		{"   ", 1},
		{"1.2", 0},
		{"1.2.3.1", 0},
		{"[1.0,2.0)", 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.version), func(t *testing.T) {
			matches, err := gradle.FindDependency(f.Text, f.Dialect, "org.example", "lib-a", tt.version)
			require.NoError(t, err)
			assert.Len(t, matches, tt.want)
		})
	}

	// BOM-managed declarations carry no version and never match a version.
	spring := gradletest.MustGet(t, "spring-boot-kotlin")
	matches, err := gradle.FindDependency(spring.Text, spring.Dialect, "org.springframework.kafka", "spring-kafka", "3.0.0")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindDependency_GroovySlashyStrings(t *testing.T) {
	for _, prelude := range []string{
		"def re = /a'b(/",
		"def x = $/a'b{/$",
		"assert 'v1' ==~ /v[0-9]\"/",
	} {
		t.Run(prelude, func(t *testing.T) {
			text := prelude + "\ndependencies {\n    implementation 'a:b:1'\n}\n"
			matches, err := gradle.FindDependency(text, gradle.Groovy, "a", "b", "")
			require.NoError(t, err)
			require.Len(t, matches, 1)
			assert.Equal(t, "1", matches[0].Version)
		})
	}
}

func TestFindDependency_LiteralBrackets(t *testing.T) {
	text := "dependencies {\n    implementation 'a[1]:b:1'\n}\n"
	matches, err := gradle.FindDependency(text, gradle.Groovy, "a[1]", "b", "")
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	// As a pattern, [1] is a character class.
	matches, err = gradle.FindDependency("dependencies {\n    implementation 'a1:b:1'\n}\n", gradle.Groovy, "a[1]", "b", "")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestFindDependency_Deterministic(t *testing.T) {
	valid := gradletest.Valid()
	rapid.Check(t, func(t *rapid.T) {
		f := rapid.SampledFrom(valid).Draw(t, "fixture")
		d := rapid.SampledFrom(f.Declares).Draw(t, "declaration")

		first, err := gradle.FindDependency(f.Text, f.Dialect, d.Coordinate.Group, d.Coordinate.Artifact, "")
		if err != nil {
			t.Fatalf("first lookup: %v", err)
		}
		second, err := gradle.FindDependency(f.Text, f.Dialect, d.Coordinate.Group, d.Coordinate.Artifact, "")
		if err != nil {
			t.Fatalf("second lookup: %v", err)
		}
		if !assert.ObjectsAreEqual(first, second) {
			t.Fatalf("lookups differ:\n%v\n%v", first, second)
		}
		if len(first) == 0 {
			t.Fatalf("%s declares %s but lookup found nothing", f.Name, d.Coordinate)
		}
	})
}

func TestFindDependency_GeneratedScripts(t *testing.T) {
	ident := rapid.StringMatching(`[a-z][a-z0-9-]{0,8}`)
	rapid.Check(t, func(t *rapid.T) {
		group := rapid.StringMatching(`[a-z]{1,6}(\.[a-z]{1,6}){0,2}`).Draw(t, "group")
		artifact := ident.Draw(t, "artifact")
		version := rapid.StringMatching(`[0-9]{1,2}\.[0-9]{1,2}\.[0-9]{1,2}`).Draw(t, "version")
		conf := rapid.SampledFrom([]string{"implementation", "api", "testImplementation", "runtimeOnly"}).Draw(t, "configuration")
		dialect := rapid.SampledFrom([]gradle.Dialect{gradle.Groovy, gradle.Kotlin}).Draw(t, "dialect")

		coord := group + ":" + artifact + ":" + version
		text := fmt.Sprintf("dependencies {\n    %s '%s'\n}\n", conf, coord)
		if dialect == gradle.Kotlin {
			text = fmt.Sprintf("dependencies {\n    %s(\"%s\")\n}\n", conf, coord)
		}

		matches, err := gradle.FindDependency(text, dialect, group, artifact, "")
		if err != nil {
			t.Fatalf("lookup: %v", err)
		}
		if len(matches) != 1 || matches[0].Configuration != conf || matches[0].Version != version {
			t.Fatalf("matches = %+v, want one %s match at %s", matches, conf, version)
		}

		other, err := gradle.FindDependency(text, dialect, group, artifact+"-other", "")
		if err != nil {
			t.Fatalf("lookup: %v", err)
		}
		if len(other) != 0 {
			t.Fatalf("unexpected matches for absent artifact: %+v", other)
		}
	})
}

func TestFinder_Globs(t *testing.T) {
	f := gradletest.MustGet(t, "spring-boot-kotlin")
	finder := gradle.NewFinder(nil)
	assert.Equal(t, "heuristic", finder.Backend().Name())

	tests := []struct {
		name string
		q    gradle.Query
		want int
	}{
		{"group glob", gradle.Query{Group: "org.springframework.*", Artifact: "*"}, 4},
		{"artifact glob", gradle.Query{Group: "org.springframework.boot", Artifact: "spring-boot-*"}, 2},
		{"configuration filter", gradle.Query{Group: "*", Artifact: "*", Configuration: "test*"}, 2},
		{"exact configuration", gradle.Query{Group: "org.springframework.kafka", Artifact: "spring-kafka", Configuration: "implementation"}, 1},
		{"no match", gradle.Query{Group: "com.*", Artifact: "*"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := finder.Find(context.Background(), f.Text, f.Dialect, tt.q)
			require.NoError(t, err)
			assert.Len(t, matches, tt.want)
		})
	}
}

func TestFinder_FindFile(t *testing.T) {
	f := gradletest.MustGet(t, "lib-a-kotlin")
	path := filepath.Join(t.TempDir(), "build.gradle.kts")
	require.NoError(t, os.WriteFile(path, []byte(f.Text), 0o644))

	finder := gradle.NewFinder(gradle.NewHeuristicBackend())
	matches, err := finder.FindFile(context.Background(), path, gradle.Query{Group: "org.example", Artifact: "lib-a"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, path, matches[0].Path)

	_, err = finder.FindFile(context.Background(), filepath.Join(t.TempDir(), "missing.gradle"), gradle.Query{Group: "a", Artifact: "b"})
	assert.Error(t, err)
}

func TestFinder_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := gradle.NewFinder(nil).Find(ctx, "dependencies {}", gradle.Groovy, gradle.Query{Group: "a", Artifact: "b"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindDependency_DoesNotMutateInput(t *testing.T) {
	f := gradletest.MustGet(t, "map-notation")
	before := f.Text
	_, err := gradle.FindDependency(f.Text, f.Dialect, "org.example", "lib-a", "")
	require.NoError(t, err)
	assert.Equal(t, before, gradletest.MustGet(t, "map-notation").Text)
}
