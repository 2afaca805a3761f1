package incremental

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/albertocavalcante/gradledeps/pkg/config"
)

// stateStore keeps the last snapshot in .gradledeps/state.json, next to the
// project configuration.
type stateStore struct {
	path string
}

func newStateStore(root string) stateStore {
	return stateStore{path: filepath.Join(root, config.ConfigDirName, "state.json")}
}

// load returns nil, nil when no scan has been recorded.
func (s stateStore) load() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if snap.Version > SnapshotVersion {
		return nil, fmt.Errorf("%s has version %d; this gradledeps reads up to %d", s.path, snap.Version, SnapshotVersion)
	}
	return &snap, nil
}

// save replaces the state file through a rename so readers never see a
// partial write.
func (s stateStore) save(snap *Snapshot) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "state-*.json")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s stateStore) exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// remove deletes only the state file; configuration in the same directory
// stays.
func (s stateStore) remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
