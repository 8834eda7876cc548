package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	want := Date{Year: 2026, Month: time.October, Day: 17}
	cases := []string{
		"2026-10-17",
		"10/17/2026",
		" 10/17/2026 ",
		"2026/10/17",
		"10/17/26",
		"10/17/2026, 9:00:00 AM",
		"46312",
	}
	for _, c := range cases {
		got, ok := ParseDate(c)
		assert.True(t, ok, "ParseDate(%q)", c)
		assert.Equal(t, want, got, "ParseDate(%q)", c)
	}

	for _, bad := range []string{"", "   ", "yesterday", "17.10"} {
		_, ok := ParseDate(bad)
		assert.False(t, ok, "ParseDate(%q)", bad)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		input string
		want  time.Duration
	}{
		{"09:00:00", 9 * time.Hour},
		{"17:30", 17*time.Hour + 30*time.Minute},
		{"9:05:10 AM", 9*time.Hour + 5*time.Minute + 10*time.Second},
		{"5:00:00 pm", 17 * time.Hour},
		{"12:15 AM", 15 * time.Minute},
	}
	for _, c := range cases {
		got, ok := ParseTimeOfDay(c.input)
		assert.True(t, ok, "ParseTimeOfDay(%q)", c.input)
		assert.Equal(t, c.want, got, "ParseTimeOfDay(%q)", c.input)
	}

	_, ok := ParseTimeOfDay("noon")
	assert.False(t, ok)
}

func TestSinceOfDay(t *testing.T) {
	now := time.Date(2026, time.October, 17, 12, 30, 40, 0, time.UTC)

	minutes, ok := SinceOfDay("12:00:00", now)
	assert.True(t, ok)
	assert.Equal(t, 31, minutes)

	minutes, ok = SinceOfDay("12:30:20", now)
	assert.True(t, ok)
	assert.Equal(t, 0, minutes)

	// a start later than now (clock skew, midnight) clamps to zero
	minutes, ok = SinceOfDay("23:59:00", now)
	assert.True(t, ok)
	assert.Equal(t, 0, minutes)

	_, ok = SinceOfDay("", now)
	assert.False(t, ok)
}

func TestDate_Before(t *testing.T) {
	a := Date{Year: 2026, Month: time.October, Day: 16}
	b := Date{Year: 2026, Month: time.October, Day: 17}
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.False(t, a.Before(a))
	assert.Equal(t, "2026-10-16", a.String())
}

func TestFixed_Advance(t *testing.T) {
	start := time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)
	c := NewFixed(start)
	c.Advance(15 * time.Minute)
	assert.Equal(t, "09:15:00", FormatTime(c.Now()))
	assert.Equal(t, "2026-10-17", FormatDate(c.Now()))
}
