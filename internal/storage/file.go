package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/leg100/rtable/internal/logging"
	"gopkg.in/yaml.v3"
)

// FileStore keeps widths in a YAML file, mapping each key to its widths:
//
//	resizable-table-widths-people: [100, 150, 80]
type FileStore struct {
	path   string
	logger logging.Interface

	mu sync.Mutex
}

// NewFileStore constructs a store backed by the file at path, creating the
// parent directory if necessary. The file itself is created on first save.
func NewFileStore(path string, logger logging.Interface) (*FileStore, error) {
	if logger == nil {
		logger = logging.Discard
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &FileStore{path: path, logger: logger}, nil
}

// Path returns the path to the file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Save(key string, w []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}
	data[key] = slices.Clone(w)

	b, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding widths: %w", err)
	}
	// Write to a temporary file and rename it so that readers never see a
	// partial file.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".widths-*.yaml")
	if err != nil {
		return fmt.Errorf("saving widths: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("saving widths: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("saving widths: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("saving widths: %w", err)
	}
	s.logger.Debug("saved widths to file", "path", s.path, "key", key)
	return nil
}

func (s *FileStore) Load(key string) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	w, ok := data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return w, nil
}

func (s *FileStore) read() (map[string][]float64, error) {
	data := make(map[string][]float64)
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	} else if err != nil {
		return nil, fmt.Errorf("reading widths: %w", err)
	}
	if err := yaml.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if data == nil {
		// empty file
		data = make(map[string][]float64)
	}
	return data, nil
}

func (s *FileStore) Close() error { return nil }
