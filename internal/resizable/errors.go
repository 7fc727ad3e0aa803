package resizable

import (
	"errors"
	"fmt"

	"github.com/leg100/rtable/internal/collapse"
	"github.com/leg100/rtable/internal/geometry"
	"github.com/leg100/rtable/internal/widths"
)

var (
	ErrNoTable            = errors.New("target table not found")
	ErrDestroyed          = errors.New("table has been destroyed")
	ErrNotInitialized     = errors.New("table has not been initialized")
	ErrNegativeWidth      = errors.New("width must not be negative")
	ErrInvalidWidth       = errors.New("width must be a finite number")
	ErrCollapsingDisabled = errors.New("collapsing is disabled")
	ErrColumnResizing     = collapse.ErrColumnResizing
	ErrNoHeader           = geometry.ErrNoHeader
	ErrNoColumns          = geometry.ErrNoColumns
	ErrColumnOutOfRange   = widths.ErrColumnOutOfRange
)

// IndexError is returned when a column index is out of range.
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("column index %d out of range: table has %d columns", e.Index, e.Count)
}

func (e *IndexError) Is(target error) bool {
	return target == ErrColumnOutOfRange
}
