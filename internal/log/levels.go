// Package log is the process-wide structured logger of gradledeps. It sits on
// log/slog and filters records by a kubectl-style -v=N verbosity.
package log

import "log/slog"

// LevelTrace sits below slog.LevelDebug for token streams and declaration dumps.
const LevelTrace = slog.Level(-8)

// Verbosity levels accepted by -v.
const (
	VerbosityError = 0 // errors only
	VerbosityWarn  = 1 // unreadable build context, failed scripts
	VerbosityInfo  = 2 // config files, scan summaries
	VerbosityDebug = 3 // parser backends, timings, hybrid diffs
	VerbosityTrace = 4 // skipped notations
)

// levels maps -v=N to the lowest slog level it emits.
var levels = [...]slog.Level{slog.LevelError, slog.LevelWarn, slog.LevelInfo, slog.LevelDebug, LevelTrace}

// VerbosityToLevel clamps v to the known verbosities.
func VerbosityToLevel(v int) slog.Level {
	return levels[min(max(v, VerbosityError), VerbosityTrace)]
}

// LevelName renders LevelTrace as TRACE instead of DEBUG-4.
func LevelName(l slog.Level) string {
	if l <= LevelTrace {
		return "TRACE"
	}
	return l.String()
}
