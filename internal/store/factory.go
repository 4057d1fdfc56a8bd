package store

import (
	"fmt"
	"log/slog"
)

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

// BackendType selects the KV adapter behind the store.
type BackendType string

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid.
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Options carries backend-specific settings for Open.
type Options struct {
	Type BackendType

	// File backend
	DataDir string

	// SQLite backend
	SQLiteDBPath string
}

// Open builds a Store for the configured backend. The caller owns the
// returned store and must Close it.
func Open(opts Options) (*Store, error) {
	if !opts.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", opts.Type)
	}

	var (
		kv  KV
		err error
	)
	switch opts.Type {
	case FileBackend:
		kv, err = NewFileKV(opts.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initialize file backend: %w", err)
		}
		slog.Info("Initialized file backend", "data_dir", opts.DataDir)
	case SQLiteBackend:
		kv, err = NewSQLiteKV(opts.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		slog.Info("Initialized sqlite backend", "db_path", opts.SQLiteDBPath)
	default:
		kv = NewMemoryKV()
		slog.Info("Initialized memory backend")
	}

	return New(kv), nil
}
