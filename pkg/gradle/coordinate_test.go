package gradle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/albertocavalcante/gradledeps/pkg/gradle"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		in   string
		want gradle.Coordinate
	}{
		{"g:a", gradle.Coordinate{Group: "g", Artifact: "a"}},
		{"g:a:", gradle.Coordinate{Group: "g", Artifact: "a"}},
		{"g:a:1.0", gradle.Coordinate{Group: "g", Artifact: "a", Version: "1.0"}},
		{"g:a:1.0:sources", gradle.Coordinate{Group: "g", Artifact: "a", Version: "1.0", Classifier: "sources"}},
		{"g:a:1.0@zip", gradle.Coordinate{Group: "g", Artifact: "a", Version: "1.0", Extension: "zip"}},
		{" g : a : 1.0 ", gradle.Coordinate{Group: "g", Artifact: "a", Version: "1.0"}},
	}
	for _, tt := range tests {
		got, err := gradle.ParseCoordinate(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseCoordinateErrors(t *testing.T) {
	tests := []struct {
		in    string
		field string
	}{
		{"", "coordinate"},
		{"just-a-name", "coordinate"},
		{"a:b:c:d:e", "coordinate"},
		{":a:1", "group"},
		{"g::1", "artifact"},
		{"g:a::sources", "coordinate"},
		{"g:a:1@", "coordinate"},
	}
	for _, tt := range tests {
		_, err := gradle.ParseCoordinate(tt.in)
		var cerr *gradle.InvalidCoordinateError
		require.ErrorAs(t, err, &cerr, tt.in)
		assert.Equal(t, tt.field, cerr.Field, tt.in)
	}
	assert.Panics(t, func() { gradle.MustParseCoordinate("nope") })
}

func TestCoordinateStringRoundTrip(t *testing.T) {
	part := rapid.StringMatching(`[a-zA-Z0-9._-]{1,10}`)
	rapid.Check(t, func(t *rapid.T) {
		c := gradle.Coordinate{
			Group:    part.Draw(t, "group"),
			Artifact: part.Draw(t, "artifact"),
		}
		if rapid.Bool().Draw(t, "versioned") {
			c.Version = part.Draw(t, "version")
			if rapid.Bool().Draw(t, "classified") {
				c.Classifier = part.Draw(t, "classifier")
			}
		}
		if rapid.Bool().Draw(t, "extension") {
			c.Extension = part.Draw(t, "ext")
		}
		got, err := gradle.ParseCoordinate(c.String())
		if err != nil {
			t.Fatalf("ParseCoordinate(%q): %v", c.String(), err)
		}
		if got != c {
			t.Fatalf("round trip of %q = %+v, want %+v", c.String(), got, c)
		}
	})
}

func TestCoordinateHelpers(t *testing.T) {
	c := gradle.MustParseCoordinate("org.example:lib-a:1.2.3")
	assert.Equal(t, "org.example:lib-a", c.Module())
	assert.True(t, c.HasVersion())
	assert.False(t, c.IsZero())
	assert.True(t, gradle.Coordinate{}.IsZero())
}

func TestDialects(t *testing.T) {
	for in, want := range map[string]gradle.Dialect{
		"groovy": gradle.Groovy, "Gradle": gradle.Groovy, "kotlin": gradle.Kotlin, " kts ": gradle.Kotlin,
	} {
		got, err := gradle.ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := gradle.ParseDialect("maven")
	var derr gradle.ErrUnsupportedDialect
	assert.ErrorAs(t, err, &derr)

	for path, want := range map[string]gradle.Dialect{
		"build.gradle":               gradle.Groovy,
		"app/build.gradle.kts":       gradle.Kotlin,
		`C:\repo\settings.gradle`:    gradle.Groovy,
		"gradle/init.d/repos.gradle": gradle.Groovy,
	} {
		got, ok := gradle.DialectForPath(path)
		assert.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}
	_, ok := gradle.DialectForPath("pom.xml")
	assert.False(t, ok)

	assert.True(t, gradle.IsSettingsFile("a/settings.gradle.kts"))
	assert.False(t, gradle.IsSettingsFile("a/build.gradle"))
}

func TestDetectDialect(t *testing.T) {
	assert.Equal(t, gradle.Kotlin, gradle.DetectDialect(simpleKotlin))
	assert.Equal(t, gradle.Groovy, gradle.DetectDialect("dependencies {\n    implementation 'g:a:1'\n}\n"))
	assert.Equal(t, gradle.Groovy, gradle.DetectDialect(""))
	assert.Equal(t, gradle.Kotlin, gradle.DetectDialect("val v = \"1\"\nplugins { id(\"java\") }"))
}
