package model

import (
	"errors"
	"fmt"
	"time"
)

// End is the official end of a recession: either Closed or Ongoing.
type End interface {
	isEnd()
}

// Closed is a recession whose trough month has been announced.
type Closed struct {
	Date time.Time
}

// Ongoing is a recession without an announced end.
type Ongoing struct{}

func (Closed) isEnd()  {}
func (Ongoing) isEnd() {}

// RecessionDefinition is one entry of the recession calendar.
type RecessionDefinition struct {
	Label string // short year label, e.g. "1929-1933"
	Start time.Time
	End   End
}

// DisplayLabel renders "Aug 1929 - Mar 1933" or "Feb 2020 - present".
func (r RecessionDefinition) DisplayLabel() string {
	start := r.Start.Format("Jan 2006")
	if c, ok := r.End.(Closed); ok {
		return start + " - " + c.Date.Format("Jan 2006")
	}
	return start + " - present"
}

// IsOngoing reports whether the recession has no announced end.
func (r RecessionDefinition) IsOngoing() bool {
	_, ok := r.End.(Ongoing)
	return ok
}

// RecessionTable is an immutable, versioned recession calendar.
type RecessionTable struct {
	version string
	entries []RecessionDefinition
}

// NewRecessionTable copies entries and validates their ordering.
func NewRecessionTable(version string, entries ...RecessionDefinition) (RecessionTable, error) {
	t := RecessionTable{
		version: version,
		entries: append([]RecessionDefinition(nil), entries...),
	}
	if err := t.Validate(); err != nil {
		return RecessionTable{}, err
	}
	return t, nil
}

// Version returns the table's version tag.
func (t RecessionTable) Version() string { return t.version }

// Len returns the number of recessions.
func (t RecessionTable) Len() int { return len(t.entries) }

// Entries returns a copy of the recession definitions in chronological order.
func (t RecessionTable) Entries() []RecessionDefinition {
	return append([]RecessionDefinition(nil), t.entries...)
}

// Lookup finds a recession by label.
func (t RecessionTable) Lookup(label string) (RecessionDefinition, bool) {
	for _, e := range t.entries {
		if e.Label == label {
			return e, true
		}
	}
	return RecessionDefinition{}, false
}

// Validate checks that entries are labeled, ordered by start date and
// non-overlapping, and that only the last entry may be ongoing.
func (t RecessionTable) Validate() error {
	if len(t.entries) == 0 {
		return errors.New("recession table is empty")
	}
	seen := make(map[string]bool, len(t.entries))
	for i, e := range t.entries {
		if e.Label == "" {
			return fmt.Errorf("recession %d: empty label", i)
		}
		if seen[e.Label] {
			return fmt.Errorf("recession %q: duplicate label", e.Label)
		}
		seen[e.Label] = true

		switch end := e.End.(type) {
		case Closed:
			if end.Date.Before(e.Start) {
				return fmt.Errorf("recession %q: end before start", e.Label)
			}
		case Ongoing:
			if i != len(t.entries)-1 {
				return fmt.Errorf("recession %q: only the last recession may be ongoing", e.Label)
			}
		default:
			return fmt.Errorf("recession %q: missing end", e.Label)
		}

		if i == 0 {
			continue
		}
		prev := t.entries[i-1]
		if !prev.Start.Before(e.Start) {
			return fmt.Errorf("recession %q: not ordered after %q", e.Label, prev.Label)
		}
		if c, ok := prev.End.(Closed); ok && !c.Date.Before(e.Start) {
			return fmt.Errorf("recession %q overlaps %q", e.Label, prev.Label)
		}
	}
	return nil
}
