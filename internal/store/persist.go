package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pueued/pueue-go/internal/task"
)

// Settings is the persisted, non-task/group daemon configuration that
// survives a restart (currently just the default group's parallel slots,
// mirroring Pueue's settings.json).
type Settings struct {
	DefaultParallelSlots int `json:"default_parallel_slots"`
}

// snapshot is the on-disk representation of the whole State Store.
type snapshot struct {
	Tasks    map[int64]*task.Task   `json:"tasks"`
	Groups   map[string]*task.Group `json:"groups"`
	NextID   int64                  `json:"next_id"`
	Settings Settings               `json:"settings"`
}

// saveAtomic writes data to path by writing to a temp file in the same
// directory and renaming over the destination, so a crash mid-write never
// leaves a truncated state.json behind.
func saveAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func marshalSnapshot(snap *snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

func loadSnapshot(path string) (*snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
