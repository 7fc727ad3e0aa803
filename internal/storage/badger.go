package storage

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/leg100/rtable/internal/logging"
)

// BadgerStore keeps widths in a badger key-value database.
type BadgerStore struct {
	db     *badger.DB
	logger logging.Interface
}

// OpenBadger opens the badger database in the directory dir. An empty dir
// opens an in-memory database.
func OpenBadger(dir string, logger logging.Interface) (*BadgerStore, error) {
	if logger == nil {
		logger = logging.Discard
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger database: %w", err)
	}
	return &BadgerStore{db: db, logger: logger}, nil
}

func (s *BadgerStore) Save(key string, w []float64) error {
	value, err := encode(w)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("saving widths: %w", err)
	}
	s.logger.Debug("saved widths to badger", "key", key)
	return nil
}

func (s *BadgerStore) Load(key string) ([]float64, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("loading widths: %w", err)
	}
	return decode(value)
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
