package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"todo-backend/pkg/config"

	"github.com/gofrs/flock"
)

// ErrDataLocked is returned when another todo process already owns the data
var ErrDataLocked = errors.New("task data is in use by another todo process; if \"todo serve\" is running, use its API instead")

// lockPath places the lock next to the data it guards
func lockPath(cfg *config.Config) string {
	switch cfg.StorageDriver {
	case "sqlite", "":
		return cfg.SQLitePath + ".lock"
	default:
		return filepath.Join(cfg.DataDir, "todo.lock")
	}
}

// acquireLock takes an exclusive, non-blocking lock held until release.
// The memory driver shares nothing between processes and is never locked.
func acquireLock(cfg *config.Config) (*flock.Flock, error) {
	if cfg.StorageDriver == "memory" {
		return nil, nil
	}

	path := lockPath(cfg)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock %s)", ErrDataLocked, path)
	}
	return lock, nil
}

func releaseLock(lock *flock.Flock) error {
	if lock == nil {
		return nil
	}
	return lock.Unlock()
}
