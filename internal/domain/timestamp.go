package domain

import (
	"errors"
	"time"
)

// TimestampLayout is the only accepted form of properties.observed.
const TimestampLayout = "2006-01-02T15:04:05Z"

// Cadence is the step between consecutive observations.
const Cadence = time.Hour

// ParseTimestamp parses s under TimestampLayout. time.Parse tolerates a
// fractional second the layout does not mention, so the result must also
// format back to s exactly.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, &TimestampError{Index: -1, Value: s, Err: err}
	}
	if t.Format(TimestampLayout) != s {
		return time.Time{}, &TimestampError{Index: -1, Value: s, Err: errors.New("not in YYYY-MM-DDTHH:MM:SSZ form")}
	}
	return t, nil
}

// FormatTimestamp renders t in UTC under TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
