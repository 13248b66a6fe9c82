package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	dueDateLayout        = "2006-01-02T15:04"
	dueDateSecondsLayout = "2006-01-02T15:04:05"
	dueDateFracLayout    = "2006-01-02T15:04:05.999999999"
	dueDateDayLayout     = "2006-01-02"
)

// DueDate is a wall-clock timestamp as entered by the user, such as
// "2025-06-11T14:30". It carries the location it was parsed in so that
// calendar arithmetic follows local rules across DST changes.
type DueDate struct {
	time.Time
}

// NormalizeDueDate appends a midnight time to a bare date.
func NormalizeDueDate(s string) string {
	s = strings.TrimSpace(s)
	if s != "" && !strings.Contains(s, "T") {
		return s + "T00:00"
	}
	return s
}

// ParseDueDate parses a due date in loc. Naive forms are read as wall-clock
// time in loc; RFC 3339 input keeps its instant and is converted to loc.
func ParseDueDate(s string, loc *time.Location) (DueDate, error) {
	s = NormalizeDueDate(s)
	if s == "" {
		return DueDate{}, fmt.Errorf("%w: empty", ErrInvalidDueDate)
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range []string{dueDateLayout, dueDateSecondsLayout, dueDateDayLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return DueDate{Time: t}, nil
		}
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DueDate{Time: t.In(loc)}, nil
	}

	return DueDate{}, fmt.Errorf("%w: %s", ErrInvalidDueDate, s)
}

// AddDays returns the same wall-clock time n calendar days later.
func (d DueDate) AddDays(n int) DueDate {
	return DueDate{Time: d.Time.AddDate(0, 0, n)}
}

// String formats the due date the way it is persisted.
// Sub-second precision from RFC 3339 input is kept so it survives a
// save and reload.
func (d DueDate) String() string {
	if d.Time.Nanosecond() != 0 {
		return d.Time.Format(dueDateFracLayout)
	}
	if d.Time.Second() != 0 {
		return d.Time.Format(dueDateSecondsLayout)
	}
	return d.Time.Format(dueDateLayout)
}

func (d DueDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON reads naive timestamps in the process location. Stored
// snapshots are not decoded this way; the snapshot codec parses due dates
// in the configured location.
// An empty string leaves the zero DueDate, which Task.Normalize drops.
func (d *DueDate) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		*d = DueDate{}
		return nil
	}
	parsed, err := ParseDueDate(raw, time.Local)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
