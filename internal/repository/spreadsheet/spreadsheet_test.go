package spreadsheet

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/rowstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkbook(t *testing.T) *rowstore.MemoryStore {
	t.Helper()
	store := rowstore.NewMemoryStore()
	require.NoError(t, EnsureWorkbook(context.Background(), store, DefaultLayout()))
	return store
}

func TestEnsureWorkbook_CreatesFixedSheetsOnce(t *testing.T) {
	ctx := context.Background()
	store := newWorkbook(t)

	assert.Equal(t, []string{"Break Log", "Dashboard", "Staff Roster"}, store.Titles())
	assert.Equal(t, [][]string{DashboardHeader}, store.Dump("Dashboard"))

	// existing content survives a second pass
	_, err := store.AppendRow(ctx, rowstore.Columns("Dashboard", 0, 10), []string{"2026-10-17", "Lisa"})
	require.NoError(t, err)
	require.NoError(t, EnsureWorkbook(ctx, store, DefaultLayout()))
	assert.Len(t, store.Dump("Dashboard"), 2)
}

func TestRosterRepository_List(t *testing.T) {
	ctx := context.Background()
	store := newWorkbook(t)
	rows := [][]string{
		{"  Lisa ", "ADMIN", "Manager", "£12.50", "Active"},
		{"", "KITCHEN"},
		{"Connor", "KITCHEN", "Chef", "abc"},
		{"Shaz", "FLOOR", "Server", "11", "Inactive"},
	}
	for _, r := range rows {
		_, err := store.AppendRow(ctx, rowstore.Columns("Staff Roster", 0, 4), r)
		require.NoError(t, err)
	}

	repo := NewRosterRepository(store, DefaultLayout())
	members, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, members, 3)

	assert.Equal(t, staff.Staff{Name: "Lisa", Department: "ADMIN", Position: "Manager", HourlyWage: 12.5, Status: "Active", Row: 2}, members[0])
	assert.Equal(t, "Connor", members[1].Name)
	assert.Equal(t, 0.0, members[1].HourlyWage)
	assert.Equal(t, staff.StatusActive, members[1].Status)
	assert.Equal(t, 4, members[1].Row)
	assert.False(t, members[2].IsActive())
}

func TestRosterRepository_AppendAndUpdate(t *testing.T) {
	ctx := context.Background()
	store := newWorkbook(t)
	repo := NewRosterRepository(store, DefaultLayout())

	require.NoError(t, repo.Append(ctx, staff.Staff{Name: "Lisa", Department: "ADMIN", Position: "Manager", HourlyWage: 12.5, Status: "Active"}))
	assert.Equal(t, []string{"Lisa", "ADMIN", "Manager", "12.50", "Active"}, store.Dump("Staff Roster")[1])

	members, err := repo.List(ctx)
	require.NoError(t, err)
	m := members[0]
	m.Name = "Lisa M"
	m.HourlyWage = 13
	require.NoError(t, repo.Update(ctx, m))
	assert.Equal(t, []string{"Lisa M", "ADMIN", "Manager", "13.00", "Active"}, store.Dump("Staff Roster")[1])

	assert.Error(t, repo.Update(ctx, staff.Staff{Name: "Nobody"}))
}

func TestParseWage(t *testing.T) {
	assert.Equal(t, 12.5, ParseWage("£12.50"))
	assert.Equal(t, 1200.0, ParseWage("1,200"))
	assert.Equal(t, 0.0, ParseWage(""))
	assert.Equal(t, 0.0, ParseWage("n/a"))
	assert.Equal(t, "9.00", FormatWage(9))
}

func TestDashboardRepository_AppendSetStatusFinish(t *testing.T) {
	ctx := context.Background()
	store := newWorkbook(t)
	repo := NewDashboardRepository(store, DefaultLayout())

	row, err := repo.Append(ctx, shift.ShiftEvent{
		Date: "2026-10-17", StaffName: "Lisa", Department: "ADMIN", Position: "Manager",
		SignIn: "09:00:00", HourlyWage: "12.50", Status: shift.StatusWorking,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, row)

	require.NoError(t, repo.SetStatus(ctx, row, shift.StatusOnBreak, ""))
	got, err := repo.Get(ctx, row)
	require.NoError(t, err)
	assert.Equal(t, shift.StatusOnBreak, got.Status)
	assert.Equal(t, clock.Date{Year: 2026, Month: 10, Day: 17}, got.Day)

	// a formula-computed hours cell must survive the finish write
	require.NoError(t, store.UpdateCells(ctx, rowstore.Cell("Dashboard", dashHours, row), [][]string{{"=F2-E2"}}))
	require.NoError(t, repo.Finish(ctx, row, "17:00:00", "Breaks: 30 min"))

	events, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, "17:00:00", e.SignOut)
	assert.Equal(t, shift.StatusFinished, e.Status)
	assert.Equal(t, "Breaks: 30 min", e.Notes)
	assert.Equal(t, "12.50", e.HourlyWage)
	assert.Equal(t, "=F2-E2", store.Dump("Dashboard")[1][dashHours])
	assert.True(t, e.IsTerminal())
}

func TestDashboardRepository_GetEmptyRow(t *testing.T) {
	repo := NewDashboardRepository(newWorkbook(t), DefaultLayout())
	got, err := repo.Get(context.Background(), 40)
	require.NoError(t, err)
	assert.Equal(t, shift.ShiftEvent{Row: 40}, got)
}

func TestTimesheetRepository(t *testing.T) {
	ctx := context.Background()
	store := newWorkbook(t)
	repo := NewTimesheetRepository(store)
	lisa := staff.Staff{Name: "Lisa", HourlyWage: 12.5}

	entries, err := repo.List(ctx, "Lisa")
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, repo.Provision(ctx, "Lisa"))
	require.NoError(t, repo.Provision(ctx, "Lisa"))
	assert.Equal(t, [][]string{TimesheetHeader}, store.Dump("Lisa"))

	row, err := repo.Append(ctx, lisa, shift.TimesheetEntry{Date: "2026-10-17", SignIn: "09:00:00"})
	require.NoError(t, err)
	assert.Equal(t, 2, row)
	assert.Equal(t, []string{"2026-10-17", "09:00:00", "", "", "12.50", "", "", ""}, store.Dump("Lisa")[1])

	entries, err = repo.List(ctx, "Lisa")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsOpen())

	require.NoError(t, repo.SetSignOut(ctx, "Lisa", row, "17:00:00"))
	entries, err = repo.List(ctx, "Lisa")
	require.NoError(t, err)
	assert.False(t, entries[0].IsOpen())
	assert.Equal(t, "17:00:00", entries[0].SignOut)

	require.NoError(t, repo.Rename(ctx, "Lisa", "Lisa M"))
	ok, err := repo.Exists(ctx, "Lisa M")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Exists(ctx, "Lisa")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBreakRepository(t *testing.T) {
	ctx := context.Background()
	store := newWorkbook(t)
	repo := NewBreakRepository(store, DefaultLayout())

	row, err := repo.Append(ctx, shift.BreakEvent{Date: "2026-10-17", StaffName: "Lisa", Department: "ADMIN", BreakStart: "12:00:00"})
	require.NoError(t, err)

	open, err := repo.Get(ctx, row)
	require.NoError(t, err)
	assert.True(t, open.IsOpen())

	require.NoError(t, repo.Close(ctx, row, "12:30:00", 30))
	events, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].IsOpen())
	assert.Equal(t, "30", events[0].DurationMinutes)
	assert.Equal(t, "12:30:00", events[0].BreakEnd)
}

func TestProbe(t *testing.T) {
	ctx := context.Background()
	store := newWorkbook(t)
	require.NoError(t, NewRosterRepository(store, DefaultLayout()).Append(ctx, staff.Staff{Name: "Lisa", Status: "Active"}))

	report, err := Probe(ctx, store, DefaultLayout(), 5)
	require.NoError(t, err)
	assert.Equal(t, "'Staff Roster'!A1:E5", report.Range)
	require.Len(t, report.Values, 2)
	assert.Equal(t, RosterHeader, report.Values[0])
}
