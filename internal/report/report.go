// Package report renders the human-readable summary of a fill.
package report

import (
	"fmt"
	"io"
)

// Write prints the synthesized timestamp count followed by one timestamp per
// tab-indented line, in the order given.
func Write(w io.Writer, synthesized []string) error {
	if _, err := fmt.Fprintf(w, "New Timestamps (%d)\n", len(synthesized)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	for _, ts := range synthesized {
		if _, err := fmt.Fprintf(w, "\t%s\n", ts); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}
