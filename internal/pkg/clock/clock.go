package clock

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DateLayout is the layout written to every date cell.
	DateLayout = "2006-01-02"
	// TimeLayout is the layout written to every time-of-day cell.
	TimeLayout = "15:04:05"
)

// Clock yields the current instant in the deployment zone.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type systemClock struct {
	loc *time.Location
}

// New returns a wall clock that reports time in loc.
func New(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time           { return time.Now().In(c.loc) }
func (c systemClock) Location() *time.Location { return c.loc }

// Fixed is a settable clock for tests and replay tooling.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Location() *time.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now.Location()
}

// Set moves the clock to t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Date is a calendar day with no time-of-day or zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }

func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(DateLayout)
}

// Before reports whether d is an earlier day than u.
func (d Date) Before(u Date) bool {
	if d.Year != u.Year {
		return d.Year < u.Year
	}
	if d.Month != u.Month {
		return d.Month < u.Month
	}
	return d.Day < u.Day
}

// FormatDate renders t's calendar day for a date cell.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// FormatTime renders t's time-of-day for a time cell.
func FormatTime(t time.Time) string { return t.Format(TimeLayout) }

var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"2006/01/02",
	"1/2/06",
	"2006-01-02 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006, 3:04:05 PM",
	"1/2/2006 3:04:05 PM",
	time.RFC3339,
}

// sheetsEpoch is day zero of spreadsheet serial dates.
var sheetsEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Serial numbers outside 1954..2173 are treated as garbage rather than dates.
const (
	minSerial = 20000
	maxSerial = 100000
)

// ParseDate reads a date cell written by this service, by earlier en-US
// locale writers, or left as a spreadsheet serial day number.
func ParseDate(cell string) (Date, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= minSerial && serial < maxSerial {
		t := sheetsEpoch.AddDate(0, 0, int(math.Floor(serial)))
		return DateOf(t), true
	}
	return Date{}, false
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"3:04:05PM",
	"3:04PM",
}

// ParseTimeOfDay reads a time cell and returns the offset from midnight.
func ParseTimeOfDay(cell string) (time.Duration, bool) {
	s := strings.ToUpper(strings.TrimSpace(cell))
	if s == "" {
		return 0, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
	}
	return 0, false
}

// SinceOfDay returns the whole minutes between a time-of-day cell and now,
// ignoring the date component. Results are rounded to the nearest minute and
// never negative.
func SinceOfDay(start string, now time.Time) (int, bool) {
	from, ok := ParseTimeOfDay(start)
	if !ok {
		return 0, false
	}
	to := time.Duration(now.Hour())*time.Hour +
		time.Duration(now.Minute())*time.Minute +
		time.Duration(now.Second())*time.Second
	minutes := int(math.Round((to - from).Minutes()))
	if minutes < 0 {
		minutes = 0
	}
	return minutes, true
}
