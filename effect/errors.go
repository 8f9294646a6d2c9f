package effect

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is matched by every IndexOutOfRangeError.
var ErrIndexOutOfRange = errors.New("chain index out of range")

// ErrEntryNotFound is returned by the id-based Chain operations.
var ErrEntryNotFound = errors.New("chain entry not found")

// IndexOutOfRangeError reports a chain position outside [0, Len).
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("chain index %d out of range [0, %d)", e.Index, e.Len)
}

// Is reports whether target is ErrIndexOutOfRange.
func (e *IndexOutOfRangeError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}
