// Package widths owns the canonical width of every logical column.
package widths

import (
	"errors"
	"fmt"
	"math"

	"github.com/leg100/rtable/internal/logging"
)

var (
	ErrColumnOutOfRange = errors.New("column index out of range")
	ErrInvalidWidth     = errors.New("width must be a number")
	ErrNoWidth          = errors.New("no width recorded for column")
	// ErrNotFound is returned by a Persister when nothing has been saved under
	// a key.
	ErrNotFound = errors.New("no saved widths")
)

// Persister saves and loads width arrays by key.
type Persister interface {
	Save(key string, widths []float64) error
	Load(key string) ([]float64, error)
}

// Options for constructing a store.
type Options struct {
	// Min and Max bound every width written to the store. A zero Max is
	// unbounded.
	Min, Max float64
	// Key identifies the table when persisting.
	Key string
	// Persister, if non-nil, persists widths.
	Persister Persister
	Logger    logging.Interface
}

// Store holds a width and a collapsed flag for each logical column. Widths are
// only written through Set, which clamps them to the store's bounds.
type Store struct {
	widths    []float64
	collapsed []bool

	min, max  float64
	key       string
	persister Persister
	logger    logging.Interface
}

// New constructs a store seeded with initial widths. An initial width that is
// not a positive finite number is recorded as unknown.
func New(initial []float64, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = logging.Discard
	}
	if opts.Max == 0 {
		opts.Max = math.Inf(1)
	}
	s := &Store{
		widths:    make([]float64, len(initial)),
		collapsed: make([]bool, len(initial)),
		min:       opts.Min,
		max:       opts.Max,
		key:       opts.Key,
		persister: opts.Persister,
		logger:    opts.Logger,
	}
	for i, w := range initial {
		if !known(w) {
			s.logger.Warn("unusable initial column width", "column", i, "width", w)
			s.widths[i] = math.NaN()
			continue
		}
		s.widths[i] = s.Clamp(w)
	}
	return s
}

func known(w float64) bool {
	return !math.IsNaN(w) && !math.IsInf(w, 0) && w > 0
}

// Len returns the number of logical columns.
func (s *Store) Len() int { return len(s.widths) }

// Bounds returns the minimum and maximum permitted widths.
func (s *Store) Bounds() (min, max float64) { return s.min, s.max }

// Key returns the persistence key.
func (s *Store) Key() string { return s.key }

// Clamp bounds w to the store's minimum and maximum.
func (s *Store) Clamp(w float64) float64 {
	return math.Min(s.max, math.Max(s.min, w))
}

func (s *Store) check(col int) error {
	if col < 0 || col >= len(s.widths) {
		return fmt.Errorf("%w: %d (columns: %d)", ErrColumnOutOfRange, col, len(s.widths))
	}
	return nil
}

// Get returns the stored width of the column.
func (s *Store) Get(col int) (float64, error) {
	if err := s.check(col); err != nil {
		return 0, err
	}
	if !known(s.widths[col]) {
		return 0, ErrNoWidth
	}
	return s.widths[col], nil
}

// Lookup is like Get but reports only whether a usable width exists.
func (s *Store) Lookup(col int) (float64, bool) {
	w, err := s.Get(col)
	return w, err == nil
}

// Set clamps the width to the store's bounds and records it, returning the
// applied width.
func (s *Store) Set(col int, w float64) (float64, error) {
	if err := s.check(col); err != nil {
		return 0, err
	}
	if math.IsNaN(w) {
		return 0, ErrInvalidWidth
	}
	applied := s.Clamp(w)
	s.widths[col] = applied
	return applied, nil
}

// Collapsed reports whether the column is collapsed. Out of range columns are
// never collapsed.
func (s *Store) Collapsed(col int) bool {
	if s.check(col) != nil {
		return false
	}
	return s.collapsed[col]
}

// SetCollapsed records the column's collapsed state.
func (s *Store) SetCollapsed(col int, collapsed bool) error {
	if err := s.check(col); err != nil {
		return err
	}
	s.collapsed[col] = collapsed
	return nil
}

// Widths returns a copy of the stored widths. Unknown widths are returned as
// zero.
func (s *Store) Widths() []float64 {
	out := make([]float64, len(s.widths))
	for i, w := range s.widths {
		if known(w) {
			out[i] = w
		}
	}
	return out
}

// Persist saves the full width array under the store's key.
func (s *Store) Persist() error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(s.key, s.Widths()); err != nil {
		s.logger.Error("saving column widths", "key", s.key, "error", err)
		return fmt.Errorf("saving column widths: %w", err)
	}
	s.logger.Debug("saved column widths", "key", s.key, "widths", s.Widths())
	return nil
}

// Restore loads previously persisted widths and applies them. Saved state that
// is absent, unreadable, or whose length does not match the column count is
// treated as no saved state, in which case false is returned.
func (s *Store) Restore() bool {
	if s.persister == nil {
		return false
	}
	saved, err := s.persister.Load(s.key)
	if errors.Is(err, ErrNotFound) {
		return false
	} else if err != nil {
		s.logger.Warn("loading column widths", "key", s.key, "error", err)
		return false
	}
	if len(saved) != len(s.widths) {
		s.logger.Warn("ignoring saved column widths: column count mismatch",
			"key", s.key, "saved", len(saved), "columns", len(s.widths))
		return false
	}
	for col, w := range saved {
		if !known(w) {
			// leave current width in place
			continue
		}
		_, _ = s.Set(col, w)
	}
	s.logger.Debug("restored column widths", "key", s.key, "widths", s.Widths())
	return true
}
