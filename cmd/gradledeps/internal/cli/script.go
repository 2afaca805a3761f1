package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"

	"github.com/albertocavalcante/gradledeps/internal/log"
	"github.com/albertocavalcante/gradledeps/pkg/gradle"
)

// stdinPath is the -f value that reads the script from standard input.
const stdinPath = "-"

// scriptSource is one build script read for a lookup or listing.
type scriptSource struct {
	path    string
	text    string
	dialect gradle.Dialect
	opts    []gradle.ParseOption
}

// readScript reads file, "-" for stdin, or the build script in the working
// directory when file is empty. dialect overrides the file-name dialect.
func readScript(cmd *cobra.Command, file, dialect string) (*scriptSource, error) {
	if file == "" {
		found, err := defaultBuildFile(".")
		if err != nil {
			return nil, err
		}
		file = found
	}

	src := &scriptSource{path: file}
	if file == stdinPath {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, zerr.Wrap(err, "failed to read stdin")
		}
		src.path = ""
		src.text = string(data)
	} else {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to read build script"), "path", file)
		}
		src.text = string(data)
		src.opts = contextOptions(filepath.Dir(file))
	}

	switch {
	case dialect != "":
		d, err := gradle.ParseDialect(dialect)
		if err != nil {
			return nil, err
		}
		src.dialect = d
	default:
		if d, ok := gradle.DialectForPath(src.path); ok {
			src.dialect = d
		} else {
			src.dialect = gradle.DetectDialect(src.text)
		}
	}

	if src.path != "" {
		src.opts = append(src.opts, gradle.WithPath(src.path))
	}
	return src, nil
}

// defaultBuildFile returns the build script in dir, preferring Kotlin DSL.
func defaultBuildFile(dir string) (string, error) {
	for _, name := range []string{gradle.BuildFileKotlin, gradle.BuildFileGroovy} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", zerr.With(zerr.New("no build script found; pass -f FILE or -f - for stdin"), "dir", dir)
}

// contextOptions loads gradle.properties and the version catalog next to a
// script. Problems are logged and the script is parsed without them.
func contextOptions(dir string) []gradle.ParseOption {
	opts, err := gradle.BuildOptions(os.DirFS(dir), ".")
	if err != nil {
		log.Warn("ignoring build context", "dir", dir, "error", err)
		return nil
	}
	return opts
}
