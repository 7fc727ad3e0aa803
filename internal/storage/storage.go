// Package storage provides backends for persisting column widths.
package storage

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/leg100/rtable/internal/logging"
	"github.com/leg100/rtable/internal/widths"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no widths have been saved under a key.
var ErrNotFound = widths.ErrNotFound

// Store persists column widths by key.
type Store interface {
	widths.Persister

	// Close releases any resources held by the store.
	Close() error
}

// Kind identifies a store backend.
type Kind string

const (
	Memory Kind = "memory"
	File   Kind = "file"
	SQLite Kind = "sqlite"
	Badger Kind = "badger"
)

// Kinds lists the available backends.
func Kinds() []Kind {
	return []Kind{Memory, File, SQLite, Badger}
}

// ParseKind parses a backend name.
func ParseKind(s string) (Kind, error) {
	if slices.Contains(Kinds(), Kind(s)) {
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown store: %s: must be one of %v", s, Kinds())
}

// Path returns the path used by a backend within the data directory. The
// memory backend has no path.
func Path(kind Kind, dir string) string {
	switch kind {
	case File:
		return filepath.Join(dir, "widths.yaml")
	case SQLite:
		return filepath.Join(dir, "widths.db")
	case Badger:
		return filepath.Join(dir, "badger")
	default:
		return ""
	}
}

// Open opens a store of the given kind within the data directory.
func Open(kind Kind, dir string, logger logging.Interface) (Store, error) {
	if logger == nil {
		logger = logging.Discard
	}
	path := Path(kind, dir)
	switch kind {
	case Memory:
		return NewMemory(), nil
	case File:
		return NewFileStore(path, logger)
	case SQLite:
		return OpenSQLite(path, logger)
	case Badger:
		return OpenBadger(path, logger)
	default:
		return nil, fmt.Errorf("unknown store: %s", kind)
	}
}

// encode and decode serialize widths for backends storing opaque values.
func encode(w []float64) ([]byte, error) {
	return yaml.Marshal(w)
}

func decode(b []byte) ([]float64, error) {
	var w []float64
	if err := yaml.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("decoding widths: %w", err)
	}
	return w, nil
}
