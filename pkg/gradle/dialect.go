// Package gradle reads Gradle build scripts without running Gradle.
//
// Both DSLs are supported: the Groovy DSL (build.gradle, settings.gradle) and
// the Kotlin DSL (build.gradle.kts, settings.gradle.kts). Scripts are lexed
// into tokens, grouped into blocks and interpreted structurally, which is
// enough to recover plugins, repositories, properties and every dependency
// declaration together with its configuration and source position.
//
// The central operation is FindDependency, a pure lookup of a
// group/artifact pair over a script's text:
//
//	matches, err := gradle.FindDependency(text, gradle.Groovy, "org.example", "lib-a", "")
//	if err != nil {
//	    return err // *ParseError or *InvalidCoordinateError
//	}
//	for _, m := range matches {
//	    fmt.Println(m.Configuration, m.Version)
//	}
//
// An empty result means the dependency is not declared; it is never an error.
package gradle

import (
	"path"
	"regexp"
	"strings"
)

// Dialect identifies the build-script DSL.
type Dialect string

const (
	// Groovy is the Groovy DSL used by build.gradle.
	Groovy Dialect = "groovy"

	// Kotlin is the Kotlin DSL used by build.gradle.kts.
	Kotlin Dialect = "kotlin"
)

// Well-known script file names.
const (
	BuildFileGroovy    = "build.gradle"
	BuildFileKotlin    = "build.gradle.kts"
	SettingsFileGroovy = "settings.gradle"
	SettingsFileKotlin = "settings.gradle.kts"
	PropertiesFile     = "gradle.properties"
	CatalogFile        = "gradle/libs.versions.toml"
)

// ParseDialect validates a dialect name. "kts" is accepted for Kotlin.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "groovy", "gradle":
		return Groovy, nil
	case "kotlin", "kts":
		return Kotlin, nil
	default:
		return "", ErrUnsupportedDialect{Dialect: s}
	}
}

// DialectForPath returns the dialect implied by a file name.
// The boolean is false when the file is not a Gradle script.
func DialectForPath(p string) (Dialect, bool) {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	switch {
	case strings.HasSuffix(base, ".gradle.kts"):
		return Kotlin, true
	case strings.HasSuffix(base, ".gradle"):
		return Groovy, true
	default:
		return "", false
	}
}

// IsSettingsFile reports whether p names a settings script.
func IsSettingsFile(p string) bool {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	return base == SettingsFileGroovy || base == SettingsFileKotlin
}

var (
	kotlinHints = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^\s*(val|var)\s+\w+`),
		regexp.MustCompile(`(?m)^\s*id\(\s*"`),
		regexp.MustCompile(`(?m)^\s*\w+\(\s*"[^"]*:[^"]*"\s*\)`),
		regexp.MustCompile(`\bwithType<\w+>`),
		regexp.MustCompile(`\bby\s+(extra|project|getting|creating)\b`),
		regexp.MustCompile("`[\\w-]+`"),
	}
	groovyHints = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^\s*def\s+\w+`),
		regexp.MustCompile(`(?m)^\s*id\s+['"]`),
		regexp.MustCompile(`(?m)^\s*\w+\s+['"][^'"]*:[^'"]*['"]`),
		regexp.MustCompile(`(?m)^\s*apply\s+plugin\s*:`),
		regexp.MustCompile(`'[^'\n]{2,}'`),
		regexp.MustCompile(`\bext\s*\{`),
	}
)

// DetectDialect guesses the dialect of a script from its content. Ties go to
// Groovy, which is what Gradle assumes for scripts without an extension.
func DetectDialect(text string) Dialect {
	score := 0
	for _, re := range kotlinHints {
		score += len(re.FindAllStringIndex(text, -1))
	}
	for _, re := range groovyHints {
		score -= len(re.FindAllStringIndex(text, -1))
	}
	if score > 0 {
		return Kotlin
	}
	return Groovy
}
