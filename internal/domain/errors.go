package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedTimestamp is matched by every *TimestampError.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrMalformedDocument marks a document missing features, properties,
	// observed or value.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrNoConvergence is matched by every *ConvergenceError.
	ErrNoConvergence = errors.New("gap fill did not converge")
)

// TimestampError reports an observed value that does not match the fixed layout.
type TimestampError struct {
	Index int // feature index, -1 when not parsed from a document
	Value string
	Err   error
}

func (e *TimestampError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v %q: %v", ErrMalformedTimestamp, e.Value, e.Err)
	}
	return fmt.Sprintf("feature %d: %v %q: %v", e.Index, ErrMalformedTimestamp, e.Value, e.Err)
}

func (e *TimestampError) Unwrap() error { return ErrMalformedTimestamp }

// ConvergenceError is returned when the pass budget runs out. Prev and Cur are
// the adjacent pair that mismatched on the last pass.
type ConvergenceError struct {
	Passes int
	Prev   string
	Cur    string
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%v after %d passes: %s is followed by %s, expected %s",
		ErrNoConvergence, e.Passes, e.Prev, e.Cur, nextHourString(e.Prev))
}

func (e *ConvergenceError) Unwrap() error { return ErrNoConvergence }

// ContiguityError reports the first adjacent pair that is not one hour apart.
type ContiguityError struct {
	Index int // index of Cur in the sorted sequence
	Prev  string
	Cur   string
}

func (e *ContiguityError) Error() string {
	return fmt.Sprintf("observation %d: %s is followed by %s, expected %s",
		e.Index, e.Prev, e.Cur, nextHourString(e.Prev))
}

func nextHourString(s string) string {
	t, err := ParseTimestamp(s)
	if err != nil {
		return "?"
	}
	return FormatTimestamp(t.Add(Cadence))
}
