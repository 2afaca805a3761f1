package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/albertocavalcante/gradledeps/cmd/gradledeps/internal/discover"
	"github.com/albertocavalcante/gradledeps/cmd/gradledeps/internal/incremental"
	"github.com/albertocavalcante/gradledeps/internal/log"
	"github.com/albertocavalcante/gradledeps/pkg/gradle"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 500 * time.Millisecond

// Config configures the watcher.
type Config struct {
	Root       string
	IgnoreDirs []string
	Debounce   time.Duration

	// Backend parses changed scripts. Nil means the heuristic backend.
	Backend gradle.ParserBackend

	// Query, when set, reports matching declarations instead of counts.
	Query *gradle.Query

	Writer  io.Writer
	Verbose bool
	NoColor bool
	JSON    bool
}

// Watcher watches a workspace and re-parses Gradle scripts as they change.
type Watcher struct {
	config    Config
	fsWatcher *fsnotify.Watcher
	tracker   *incremental.Tracker
	finder    *gradle.Finder
	debouncer *Debouncer
	logger    *Logger
	ignore    *discover.Ignore

	// parseMu serializes re-parse batches.
	parseMu sync.Mutex
}

// New creates a new watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.Query != nil {
		if err := cfg.Query.Validate(); err != nil {
			return nil, err
		}
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	ignore := discover.NewIgnore(cfg.IgnoreDirs)
	return &Watcher{
		config:    cfg,
		fsWatcher: fsWatcher,
		tracker:   incremental.NewTracker(cfg.Root, ignore),
		finder:    gradle.NewFinder(cfg.Backend),
		logger: NewLogger(LoggerConfig{
			Writer:  cfg.Writer,
			Verbose: cfg.Verbose,
			NoColor: cfg.NoColor,
			JSON:    cfg.JSON,
		}),
		ignore: ignore,
	}, nil
}

// Logger returns the watcher's output logger.
func (w *Watcher) Logger() *Logger { return w.logger }

// Run starts the watch loop. It blocks until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	window := w.config.Debounce
	if window <= 0 {
		window = DefaultDebounce
	}
	// Pending changes are still parsed when ctx ends.
	parseCtx := context.WithoutCancel(ctx)
	w.debouncer = NewDebouncer(window, func(paths []string) {
		w.handleChanged(parseCtx, paths)
	})
	defer w.debouncer.Stop()

	if err := w.addRecursive(w.config.Root); err != nil {
		return fmt.Errorf("watch workspace: %w", err)
	}

	scripts, err := discover.BuildScripts(ctx, w.config.Root, w.ignore)
	if err != nil {
		return fmt.Errorf("discover scripts: %w", err)
	}
	w.logger.Ready(len(scripts), w.config.Query, w.config.Root)

	for {
		select {
		case <-ctx.Done():
			w.logger.Shutdown()
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error(err)
		}
	}
}

// addRecursive adds a directory and all non-ignored subdirectories.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				if w.config.Verbose {
					w.logger.Error(fmt.Errorf("permission denied: %s", path))
				}
				return nil
			}
			w.logger.Error(fmt.Errorf("walk error at %s: %w", path, err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}

		if err := w.fsWatcher.Add(path); err != nil {
			if isWatchLimitError(err) {
				return fmt.Errorf("%w at %s: %w\n"+
					"Increase limit with: sudo sysctl fs.inotify.max_user_watches=524288", ErrWatchLimitReached, path, err)
			}
			if w.config.Verbose {
				w.logger.Error(fmt.Errorf("failed to watch %s: %w", path, err))
			}
		}
		return nil
	})
}

func (w *Watcher) ignored(dir string) bool {
	rel, err := filepath.Rel(w.config.Root, dir)
	if err != nil {
		return false
	}
	return w.ignore.Dir(filepath.ToSlash(rel))
}

// isWatchLimitError checks if an error is due to inotify watch limits.
func isWatchLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "no space left on device") ||
		strings.Contains(errStr, "too many open files")
}

// handleEvent processes a single filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if w.ignored(path) {
				return
			}
			if err := w.addRecursive(path); err != nil {
				w.logger.Error(fmt.Errorf("failed to watch new directory %s: %w", path, err))
			}
			// Scripts created together with the directory produce no
			// events of their own.
			w.queueScriptsIn(path)
			return
		}
	}

	if !discover.IsScript(filepath.Base(path)) {
		return
	}

	var change ChangeType
	switch {
	case event.Has(fsnotify.Create):
		change = ChangeAdded
	case event.Has(fsnotify.Write):
		change = ChangeModified
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		change = ChangeDeleted
	default:
		return // chmod
	}

	rel, err := filepath.Rel(w.config.Root, path)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	w.logger.FileChanged(rel, change)
	w.debouncer.Add(rel)
}

func (w *Watcher) queueScriptsIn(dir string) {
	scripts, err := discover.BuildScripts(context.Background(), dir, w.ignore)
	if err != nil {
		return
	}
	for _, s := range scripts {
		rel, err := filepath.Rel(w.config.Root, filepath.Join(dir, filepath.FromSlash(s.Path)))
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		w.logger.FileChanged(rel, ChangeAdded)
		w.debouncer.Add(rel)
	}
}

// handleChanged re-parses the given scripts, relative to the root.
func (w *Watcher) handleChanged(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}

	w.parseMu.Lock()
	defer w.parseMu.Unlock()

	w.logger.Parsing(paths)
	opts := w.contextOptions()

	for _, rel := range paths {
		full := filepath.Join(w.config.Root, filepath.FromSlash(rel))
		if _, err := os.Stat(full); errors.Is(err, fs.ErrNotExist) {
			w.logger.Removed(rel)
			continue
		}

		script, err := w.finder.Backend().ParseFile(ctx, full, opts...)
		if err != nil {
			w.logger.Error(err)
			continue
		}
		if w.config.Query == nil {
			w.logger.Parsed(rel, script)
			continue
		}
		matches, err := w.finder.FindIn(script, *w.config.Query)
		if err != nil {
			w.logger.Error(err)
			continue
		}
		w.logger.Matched(rel, matches)
	}

	if _, err := w.tracker.Refresh(ctx); err != nil {
		w.logger.Error(fmt.Errorf("failed to update state: %w", err))
	}
}

// contextOptions loads gradle.properties and the version catalog at the
// root so re-parsed scripts resolve the same values a full load would. A
// broken catalog is logged and skipped.
func (w *Watcher) contextOptions() []gradle.ParseOption {
	opts, err := gradle.BuildOptions(os.DirFS(w.config.Root), ".")
	if err != nil {
		log.Component("watch").Warn("ignoring build context", "error", err)
		return nil
	}
	return opts
}

// Close closes the watcher and releases resources.
func (w *Watcher) Close() error {
	if w.fsWatcher != nil {
		return w.fsWatcher.Close()
	}
	return nil
}

// ErrWatchLimitReached is returned when the OS watch limit is exceeded.
var ErrWatchLimitReached = errors.New("filesystem watch limit reached")
