package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// Backends accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// DefaultPath returns the state location for backend under the user config dir.
func DefaultPath(backend string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	name := "state.json"
	if backend == BackendSQLite {
		name = "state.db"
	}
	return filepath.Join(dir, "histwalk", name), nil
}

// Open returns the store for backend at path. An empty path uses DefaultPath.
func Open(backend, path string) (Store, error) {
	if backend == "" {
		backend = BackendFile
	}
	if path == "" {
		p, err := DefaultPath(backend)
		if err != nil {
			return nil, fmt.Errorf("resolve state path: %w", err)
		}
		path = p
	}

	switch backend {
	case BackendFile:
		return NewFileStore(path), nil
	case BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("open state database: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown state backend %q", backend)
}
