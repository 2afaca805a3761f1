package watch

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/albertocavalcante/gradledeps/pkg/gradle"
)

// ChangeType is the mark printed next to a changed script.
type ChangeType string

const (
	ChangeAdded    ChangeType = "+"
	ChangeModified ChangeType = "~"
	ChangeDeleted  ChangeType = "-"
)

const (
	green  = "\033[32m"
	yellow = "\033[33m"
	red    = "\033[31m"
	reset  = "\033[0m"
)

func (c ChangeType) color() string {
	switch c {
	case ChangeAdded:
		return green
	case ChangeModified:
		return yellow
	case ChangeDeleted:
		return red
	}
	return ""
}

// Stats counts what a watch session has done.
type Stats struct {
	Parsed  int
	Matches int
	Errors  int
	Started time.Time
}

// LoggerConfig configures a Logger.
type LoggerConfig struct {
	Writer  io.Writer // stdout when nil
	Verbose bool      // also print every file event
	NoColor bool
	JSON    bool // one JSON object per line
}

// Logger writes the watch session to the terminal or as JSON lines.
type Logger struct {
	cfg   LoggerConfig
	color bool

	mu    sync.Mutex
	stats Stats
}

// NewLogger creates a logger. Colors are only used on a terminal.
func NewLogger(cfg LoggerConfig) *Logger {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	color := false
	if f, ok := cfg.Writer.(*os.File); ok && !cfg.NoColor {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Logger{cfg: cfg, color: color, stats: Stats{Started: time.Now()}}
}

// Stats returns a copy of the session counters.
func (l *Logger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Ready announces the watched workspace.
func (l *Logger) Ready(scripts int, query *gradle.Query, root string) {
	fields := map[string]any{"scripts": scripts, "path": root}
	text := fmt.Sprintf("gradledeps: watching %d scripts in %s\n", scripts, root)
	if query != nil {
		fields["query"] = query
		text += "gradledeps: looking for " + describeQuery(*query) + "\n"
	}
	l.emit("ready", fields, text+"gradledeps: ready\n\n")
}

// FileChanged reports a file event. Text output shows it only when verbose.
func (l *Logger) FileChanged(path string, change ChangeType) {
	text := ""
	if l.cfg.Verbose {
		text = l.line(l.paint(string(change), change.color()) + " " + path)
	}
	l.emit("file_changed", map[string]any{"path": path, "change": change}, text)
}

// Parsing reports the start of a re-parse batch.
func (l *Logger) Parsing(paths []string) {
	what := fmt.Sprintf("%d scripts", len(paths))
	if len(paths) == 1 {
		what = paths[0]
	}
	l.emit("parsing", map[string]any{"paths": paths}, l.line("parsing "+what+"..."))
}

// Parsed reports a re-parsed script when no query is set.
func (l *Logger) Parsed(path string, script *gradle.BuildScript) {
	l.count(func(s *Stats) { s.Parsed++ })
	l.emit("parsed",
		map[string]any{"path": path, "dependencies": len(script.Dependencies), "plugins": len(script.Plugins)},
		l.line(fmt.Sprintf("%s %s: %d dependencies, %d plugins", l.paint("✓", green), path, len(script.Dependencies), len(script.Plugins))))
}

// Matched reports the query result for a re-parsed script.
func (l *Logger) Matched(path string, matches []gradle.Match) {
	l.count(func(s *Stats) { s.Parsed++; s.Matches += len(matches) })

	var text string
	if len(matches) == 0 {
		text = l.line(l.paint("∅", yellow) + " " + path + ": not declared")
	}
	for _, m := range matches {
		text += l.line(fmt.Sprintf("%s %s:%d %s %s", l.paint("✓", green), path, m.Location.Line, m.Configuration, m.Coordinate))
	}
	l.emit("matched", map[string]any{"path": path, "matches": matches}, text)
}

// Removed reports a deleted script.
func (l *Logger) Removed(path string) {
	l.emit("removed", map[string]any{"path": path}, l.line(l.paint("-", red)+" "+path+" removed"))
}

func (l *Logger) Error(err error) {
	l.count(func(s *Stats) { s.Errors++ })
	l.emit("error", map[string]any{"error": err.Error()}, l.line(l.paint("✗", red)+" error: "+err.Error()))
}

// Shutdown prints the session summary.
func (l *Logger) Shutdown() {
	s := l.Stats()
	l.emit("shutdown",
		map[string]any{"parsed": s.Parsed, "matches": s.Matches, "errors": s.Errors, "duration": time.Since(s.Started).String()},
		fmt.Sprintf("\ngradledeps: shutting down (%d parsed, %d errors)\n", s.Parsed, s.Errors))
}

func (l *Logger) count(update func(*Stats)) {
	l.mu.Lock()
	update(&l.stats)
	l.mu.Unlock()
}

// emit writes fields as a JSON line in JSON mode and text otherwise. Write
// errors are ignored.
func (l *Logger) emit(event string, fields map[string]any, text string) {
	if l.cfg.JSON {
		fields["event"] = event
		fields["time"] = time.Now().Format(time.RFC3339)
		data, err := json.Marshal(fields)
		if err != nil {
			data = fmt.Appendf(nil, `{"event":"error","error":%q}`, err.Error())
		}
		text = string(data) + "\n"
	}
	if text == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.cfg.Writer, text)
}

// line prefixes msg with the wall clock.
func (l *Logger) line(msg string) string {
	return "[" + time.Now().Format("15:04:05") + "] " + msg + "\n"
}

func (l *Logger) paint(s, color string) string {
	if !l.color || color == "" {
		return s
	}
	return color + s + reset
}

func describeQuery(q gradle.Query) string {
	s := q.Group + ":" + q.Artifact
	if q.Version != "" {
		s += ":" + q.Version
	}
	if q.Configuration != "" {
		s += " in " + q.Configuration
	}
	return s
}
