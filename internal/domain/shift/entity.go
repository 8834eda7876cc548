package shift

import "github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/clock"

// Status markers written to the dashboard's status column.
const (
	StatusWorking   = "Working"
	StatusOnBreak   = "On a Break"
	StatusFinished  = "Finished"
	StatusCompleted = "Completed" // legacy terminal marker, read only
)

// State is the derived, query-time state of a staff member.
type State string

const (
	StateClockedIn  State = "clocked-in"
	StateOnBreak    State = "on-break"
	StateClockedOut State = "clocked-out"
)

// ShiftEvent is one dashboard row: a staff member's shift on a given day.
type ShiftEvent struct {
	Row        int
	Day        clock.Date // zero when the date cell cannot be parsed
	Date       string
	StaffName  string
	Department string
	Position   string
	SignIn     string
	SignOut    string
	HourlyWage string
	Status     string
	Notes      string
}

// IsTerminal reports whether the row carries a finished marker.
func (e ShiftEvent) IsTerminal() bool {
	return e.Status == StatusFinished || e.Status == StatusCompleted
}

// IsOpen reports whether the shift has started and not finished.
func (e ShiftEvent) IsOpen() bool {
	return e.Status == StatusWorking || e.Status == StatusOnBreak
}

// State maps the raw status marker. ok is false for unrecognised text.
func (e ShiftEvent) State() (State, bool) {
	switch e.Status {
	case StatusWorking:
		return StateClockedIn, true
	case StatusOnBreak:
		return StateOnBreak, true
	case StatusFinished, StatusCompleted:
		return StateClockedOut, true
	}
	return "", false
}

// TimesheetEntry is one row of a staff member's own sheet.
type TimesheetEntry struct {
	Row        int
	Day        clock.Date
	Date       string
	SignIn     string
	SignOut    string
	HourlyWage string
	Notes      string
}

// IsOpen reports a signed-in row that has not been signed out.
func (e TimesheetEntry) IsOpen() bool {
	return e.SignIn != "" && e.SignOut == ""
}

// BreakEvent is one row of the break log.
type BreakEvent struct {
	Row             int
	Day             clock.Date
	Date            string
	StaffName       string
	Department      string
	BreakStart      string
	BreakEnd        string
	DurationMinutes string
}

func (b BreakEvent) IsOpen() bool {
	return b.BreakStart != "" && b.BreakEnd == ""
}
