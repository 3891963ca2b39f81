// Package storage persists small client-side documents under string keys, the way a browser
// keeps local storage. The session store is its only writer.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by GetItem when nothing is stored under the key
var ErrNotFound = errors.New("storage: item not found")

// Storage is a key/value store for serialized client state
type Storage interface {
	GetItem(key string) ([]byte, error)
	SetItem(key string, value []byte) error
	RemoveItem(key string) error
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"

	configDirName = "shiplabel"
	sqliteName    = "shiplabel.sqlite"
)

// DefaultDir returns ~/.config/shiplabel
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configDirName), nil
}

// Open returns the backend named by backend, rooted at dir. An empty dir means DefaultDir.
func Open(backend, dir string) (Storage, error) {
	if backend == BackendMemory {
		return NewMemory(), nil
	}

	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	switch backend {
	case "", BackendFile:
		return NewFile(dir), nil
	case BackendSQLite:
		return NewSQLite(filepath.Join(dir, sqliteName))
	default:
		return nil, fmt.Errorf("unknown storage backend %q (expected file, sqlite or memory)", backend)
	}
}
