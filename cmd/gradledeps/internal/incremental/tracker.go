package incremental

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/albertocavalcante/gradledeps/cmd/gradledeps/internal/discover"
)

// ErrNoState is returned by Status before the first Refresh.
var ErrNoState = errors.New("no scan has been recorded")

// Tracker compares the build scripts of a workspace against the snapshot
// recorded by the last Refresh.
type Tracker struct {
	root   string
	ignore *discover.Ignore
	store  stateStore
}

// NewTracker creates a tracker for the workspace at root. ignore may be nil.
func NewTracker(root string, ignore *discover.Ignore) *Tracker {
	return &Tracker{root: root, ignore: ignore, store: newStateStore(root)}
}

// Refresh records the current scripts with their fingerprints.
func (t *Tracker) Refresh(ctx context.Context) (*Snapshot, error) {
	snap, err := t.Snapshot(ctx, true)
	if err != nil {
		return nil, err
	}
	if err := t.store.save(snap); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}
	return snap, nil
}

// Status reports what changed since the last Refresh without recording
// anything. Only scripts whose size or mtime moved are read.
func (t *Tracker) Status(ctx context.Context) (*Changes, error) {
	prev, err := t.store.load()
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if prev == nil {
		return nil, ErrNoState
	}
	cur, err := t.Snapshot(ctx, false)
	if err != nil {
		return nil, err
	}
	return compare(prev, cur, func(r Record) (string, error) {
		return FingerprintFile(t.abs(r.Path))
	}), nil
}

// HasState reports whether a snapshot has been recorded.
func (t *Tracker) HasState() bool { return t.store.exists() }

// Reset forgets the recorded snapshot.
func (t *Tracker) Reset() error { return t.store.remove() }

// Snapshot lists the workspace's scripts. Fingerprints are only computed
// when fingerprint is set.
func (t *Tracker) Snapshot(ctx context.Context, fingerprint bool) (*Snapshot, error) {
	scripts, err := discover.BuildScripts(ctx, t.root, t.ignore)
	if err != nil {
		return nil, fmt.Errorf("discover scripts: %w", err)
	}

	snap := &Snapshot{Version: SnapshotVersion, Taken: time.Now(), Scripts: make([]Record, 0, len(scripts))}
	for _, s := range scripts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(t.abs(s.Path))
		if errors.Is(err, os.ErrNotExist) {
			continue // deleted since the walk
		}
		if err != nil {
			return nil, err
		}

		r := Record{Path: s.Path, Dialect: s.Dialect, ModTime: info.ModTime().UnixNano(), Size: info.Size()}
		if fingerprint {
			if r.Fingerprint, err = FingerprintFile(t.abs(s.Path)); err != nil {
				return nil, err
			}
		}
		snap.Scripts = append(snap.Scripts, r)
	}
	return snap, nil
}

func (t *Tracker) abs(rel string) string {
	return filepath.Join(t.root, filepath.FromSlash(rel))
}
