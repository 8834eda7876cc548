package staff

import "strings"

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Staff is one roster entry. Name is the natural key and also the title of
// the person's timesheet.
type Staff struct {
	Name       string
	Department string
	Position   string
	HourlyWage float64
	Status     string

	// Row is the roster row the entry was read from, 0 for new entries.
	Row int
}

func (s Staff) IsActive() bool {
	return !strings.EqualFold(strings.TrimSpace(s.Status), StatusInactive)
}
