package shift

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/rowstore"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/spreadsheet"
	staffservice "github.com/cmlabs-hris/timeclock-backend-go/internal/service/staff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faultyStore fails writes to the named sheets.
type faultyStore struct {
	rowstore.Store
	failAppend map[string]bool
	failUpdate map[string]bool
}

func (f *faultyStore) AppendRow(ctx context.Context, rng rowstore.Range, row []string) (int, error) {
	if f.failAppend[rng.Sheet] {
		return 0, fmt.Errorf("%w: append %s: quota exceeded", rowstore.ErrUnavailable, rng.A1())
	}
	return f.Store.AppendRow(ctx, rng, row)
}

func (f *faultyStore) UpdateCells(ctx context.Context, rng rowstore.Range, values [][]string) error {
	if f.failUpdate[rng.Sheet] {
		return fmt.Errorf("%w: update %s: quota exceeded", rowstore.ErrUnavailable, rng.A1())
	}
	return f.Store.UpdateCells(ctx, rng, values)
}

// brokenStore fails every call.
type brokenStore struct{}

func (brokenStore) ReadRange(context.Context, rowstore.Range) ([][]string, error) {
	return nil, rowstore.ErrUnavailable
}

func (brokenStore) AppendRow(context.Context, rowstore.Range, []string) (int, error) {
	return 0, rowstore.ErrUnavailable
}

func (brokenStore) UpdateCells(context.Context, rowstore.Range, [][]string) error {
	return rowstore.ErrUnavailable
}

func (brokenStore) SheetExists(context.Context, string) (bool, error) {
	return false, rowstore.ErrUnavailable
}

func (brokenStore) AddSheet(context.Context, string, []string) error {
	return rowstore.ErrUnavailable
}

func (brokenStore) RenameSheet(context.Context, string, string) error {
	return rowstore.ErrUnavailable
}

func (f *faultyStore) heal() {
	f.failAppend = nil
	f.failUpdate = nil
}

type fixture struct {
	svc   shift.ShiftService
	mem   *rowstore.MemoryStore
	store *faultyStore
	clock *clock.Fixed
}

var (
	openingTime = time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)
	req       = func(name string) shift.ClockRequest { return shift.ClockRequest{StaffName: name} }
)

func newFixture(t *testing.T, roster ...[]string) *fixture {
	t.Helper()
	ctx := context.Background()
	layout := spreadsheet.DefaultLayout()

	mem := rowstore.NewMemoryStore()
	require.NoError(t, spreadsheet.EnsureWorkbook(ctx, mem, layout))
	if len(roster) == 0 {
		roster = [][]string{
			{"Lisa", "ADMIN", "Manager", "12.50", "Active"},
			{"Connor", "KITCHEN", "Chef", "10.00", "Active"},
		}
	}
	for _, r := range roster {
		_, err := mem.AppendRow(ctx, rowstore.Columns(layout.Roster, 0, 4), r)
		require.NoError(t, err)
	}

	store := &faultyStore{Store: mem}
	clk := clock.NewFixed(openingTime)
	timesheets := spreadsheet.NewTimesheetRepository(store)
	svc := NewShiftService(
		staffservice.NewStaffService(spreadsheet.NewRosterRepository(store, layout), timesheets, layout.Titles()),
		spreadsheet.NewDashboardRepository(store, layout),
		timesheets,
		spreadsheet.NewBreakRepository(store, layout),
		clk,
		Config{MaxShiftDuration: 12 * time.Hour},
	)
	return &fixture{svc: svc, mem: mem, store: store, clock: clk}
}

func (f *fixture) status(t *testing.T, name string) shift.StatusView {
	t.Helper()
	views, err := f.svc.ResolveCurrentStatus(context.Background())
	require.NoError(t, err)
	for _, v := range views {
		if v.Name == name {
			return v
		}
	}
	t.Fatalf("%s not in status list", name)
	return shift.StatusView{}
}

// dashRow builds a full dashboard row for seeding.
func dashRow(date, name, signIn, signOut, status string) []string {
	return []string{date, name, "", "", signIn, signOut, "", "", "", status, ""}
}

// ===== CLOCK IN =====

func TestShiftService_ClockIn_Success(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svc.ClockIn(ctx, req("Lisa"))
	require.NoError(t, err)
	assert.Contains(t, res.Message, "09:00")
	assert.Equal(t, "09:00:00", res.Time)
	assert.Nil(t, res.BreakDuration)

	assert.Equal(t,
		[]string{"2026-10-17", "Lisa", "ADMIN", "Manager", "09:00:00", "", "", "12.50", "", "Working", ""},
		f.mem.Dump("Dashboard")[1])
	assert.Equal(t,
		[]string{"2026-10-17", "09:00:00", "", "", "12.50", "", "", ""},
		f.mem.Dump("Lisa")[1])

	views, err := f.svc.ResolveCurrentStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, []shift.StatusView{
		{Name: "Lisa", Department: "ADMIN", SignInTime: "09:00:00", Status: shift.StateClockedIn},
		{Name: "Connor", Department: "KITCHEN", SignInTime: "", Status: shift.StateClockedOut},
	}, views)
}

func TestShiftService_ClockIn_Twice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ClockIn(ctx, req("Lisa"))
	require.NoError(t, err)
	dashboard, timesheet := f.mem.Dump("Dashboard"), f.mem.Dump("Lisa")

	f.clock.Advance(5 * time.Minute)
	_, err = f.svc.ClockIn(ctx, req("Lisa"))
	assert.ErrorIs(t, err, shift.ErrAlreadyClockedIn)

	assert.Equal(t, dashboard, f.mem.Dump("Dashboard"))
	assert.Equal(t, timesheet, f.mem.Dump("Lisa"))
	assert.Equal(t, "09:00:00", f.status(t, "Lisa").SignInTime)
}

func TestShiftService_ClockIn_UnknownStaff(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ClockIn(ctx, req("Ghost"))
	assert.ErrorIs(t, err, shift.ErrUnknownStaff)

	assert.Len(t, f.mem.Dump("Dashboard"), 1)
	assert.NotContains(t, f.mem.Titles(), "Ghost")
}

func TestShiftService_ClockIn_NameIsCaseSensitive(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ClockIn(context.Background(), req("lisa"))
	assert.ErrorIs(t, err, shift.ErrUnknownStaff)
}

func TestShiftService_ClockIn_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ClockIn(context.Background(), req("   "))
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "staffName")
}

func TestShiftService_ClockIn_AfterFinished(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ClockIn(ctx, req("Lisa"))
	require.NoError(t, err)
	f.clock.Advance(8 * time.Hour)
	_, err = f.svc.ClockOut(ctx, req("Lisa"))
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	_, err = f.svc.ClockIn(ctx, req("Lisa"))
	assert.ErrorIs(t, err, shift.ErrShiftFinished)
	assert.Len(t, f.mem.Dump("Dashboard"), 2)
}

func TestShiftService_ClockIn_NextDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ClockIn(ctx, req("Lisa"))
	require.NoError(t, err)

	// never clocked out; a new day starts clean
	f.clock.Advance(24 * time.Hour)
	assert.Equal(t, shift.StateClockedOut, f.status(t, "Lisa").Status)

	res, err := f.svc.ClockIn(ctx, req("Lisa"))
	require.NoError(t, err)
	assert.Equal(t, "09:00:00", res.Time)
	assert.Len(t, f.mem.Dump("Lisa"), 3)
	assert.Equal(t, "2026-10-18", f.mem.Dump("Dashboard")[2][0])
}

// ===== BREAKS =====

func TestShiftService_BreakRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ClockIn(ctx, req("Lisa"))
	require.NoError(t, err)

	f.clock.Set(time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC))
	res, err := f.svc.TakeBreak(ctx, req("Lisa"))
	require.NoError(t, err)
	assert.Equal(t, "Started break at 12:00:00", res.Message)
	assert.Equal(t, shift.StateOnBreak, f.status(t, "Lisa").Status)
	assert.Equal(t, "09:00:00", f.status(t, "Lisa").SignInTime)

	f.clock.Advance(30 * time.Minute)
	res, err = f.svc.ReturnFromBreak(ctx, req("Lisa"))
	require.NoError(t, err)
	require.NotNil(t, res.BreakDuration)
	assert.Equal(t, 30, *res.BreakDuration)
	assert.Equal(t, "12:30:00", res.Time)
	assert.Equal(t, shift.StateClockedIn, f.status(t, "Lisa").Status)

	assert.Equal(t,
		[]string{"2026-10-17", "Lisa", "ADMIN", "12:00:00", "12:30:00", "30"},
		f.mem.Dump("Break Log")[1])
	assert.Equal(t, "Breaks: 30 min", f.mem.Dump("Dashboard")[1][10])

	// a second break adds to the day's total
	f.clock.Set(time.Date(2026, time.October, 17, 15, 0, 0, 0, time.UTC))
	_, err = f.svc.TakeBreak(ctx, req("Lisa"))
	require.NoError(t, err)
	f.clock.Advance(10 * time.Minute)
	res, err = f.svc.ReturnFromBreak(ctx, req("Lisa"))
	require.NoError(t, err)
	assert.Equal(t, 10, *res.BreakDuration)
	assert.Equal(t, "Breaks: 40 min", f.mem.Dump("Dashboard")[1][10])
}

func TestShiftService_ReturnFromBreak_RoundsToNearestMinute(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ClockIn(ctx, req("Lisa"))
	require.NoError(t, err)
	_, err = f.svc.TakeBreak(ctx, req("Lisa"))
	require.NoError(t, err)

	f.clock.Advance(10*time.Minute + 40*time.Second)
	res, err := f.svc.ReturnFromBreak(ctx, req("Lisa"))
	require.NoError(t, err)
	assert.Equal(t, 11, *res.BreakDuration)
}

func TestShiftService_ReturnFromBreak_ClampsAtZero(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ClockIn(ctx, req("Lisa"))
	require.NoError(t, err)
	_, err = f.svc.TakeBreak(ctx, req("Lisa"))
	require.NoError(t, err)

	// a start later in the day than now clamps to zero
	require.NoError(t, f.mem.UpdateCells(ctx, rowstore.Cell("Break Log", 3, 2), [][]string{{"09:30:00"}}))
	f.clock.Advance(5 * time.Minute)
	res, err := f.svc.ReturnFromBreak(ctx, req("Lisa"))
	require.NoError(t, err)
	assert.Equal(t, 0, *res.BreakDuration)
}

func TestShiftService_TransitionErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.TakeBreak(ctx, req("Lisa"))
	assert.ErrorIs(t, err, shift.ErrNoActiveShift)

	_, err = f.svc.ReturnFromBreak(ctx, req("Lisa"))
	assert.ErrorIs(t, err, shift.ErrNoActiveBreak)

	_, err = f.svc.ClockOut(ctx, req("Lisa"))
	assert.ErrorIs(t, err, shift.ErrNoOpenShift)

	_, err = f.svc.ClockIn(ctx, req("Lisa"))
	require.NoError(t, err)

	_, err = f.svc.ReturnFromBreak(ctx, req("Lisa"))
	assert.ErrorIs(t, err, shift.ErrNoActiveBreak)

	_, err = f.svc.TakeBreak(ctx, req("Lisa"))
	require.NoError(t, err)
	_, err = f.svc.TakeBreak(ctx, req("Lisa"))
	assert.ErrorIs(t, err, shift.ErrAlreadyOnBreak)

	_, err = f.svc.TakeBreak(ctx, req("Ghost"))
	assert.ErrorIs(t, err, shift.ErrUnknownStaff)

	assert.Len(t, f.mem.Dump("Break Log"), 2)
}

// ===== CLOCK OUT =====

func TestShiftService_ClockOut_Scenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ClockIn(ctx, req("Lisa"))
	require.NoError(t, err)
	assert.Equal(t, shift.StateClockedIn, f.status(t, "Lisa").Status)

	f.clock.Set(time.Date(2026, time.October, 17, 17, 0, 0, 0, time.UTC))
	res, err := f.svc.ClockOut(ctx, req("Lisa"))
	require.NoError(t, err)
	assert.Equal(t, "Clocked out at 17:00:00", res.Message)
	assert.Nil(t, res.BreakDuration)

	view := f.status(t, "Lisa")
	assert.Equal(t, shift.StateClockedOut, view.Status)
	assert.Empty(t, view.SignInTime)

	row := f.mem.Dump("Dashboard")[1]
	assert.Equal(t, "17:00:00", row[5])
	assert.Equal(t, "Finished", row[9])
	assert.Equal(t, "", row[10])
	assert.Equal(t, "17:00:00", f.mem.Dump("Lisa")[1][2])
}

func TestShiftService_ClockOut_FromBreak(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ClockIn(ctx, req("Lisa"))
	require.NoError(t, err)
	f.clock.Advance(4 * time.Hour)
	_, err = f.svc.TakeBreak(ctx, req("Lisa"))
	require.NoError(t, err)

	f.clock.Advance(15 * time.Minute)
	res, err := f.svc.ClockOut(ctx, req("Lisa"))
	require.NoError(t, err)
	require.NotNil(t, res.BreakDuration)
	assert.Equal(t, 15, *res.BreakDuration)

	assert.Equal(t, shift.StateClockedOut, f.status(t, "Lisa").Status)
	assert.Equal(t,
		[]string{"2026-10-17", "Lisa", "ADMIN", "13:00:00", "13:15:00", "15"},
		f.mem.Dump("Break Log")[1])
	row := f.mem.Dump("Dashboard")[1]
	assert.Equal(t, "Finished", row[9])
	assert.Equal(t, "Breaks: 15 min", row[10])

	_, err = f.svc.ReturnFromBreak(ctx, req("Lisa"))
	assert.ErrorIs(t, err, shift.ErrNoActiveBreak)
}

// ===== RESOLVER =====

func TestShiftService_Resolve_BackwardScan(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		[]string{"Lisa", "ADMIN"},
		[]string{"Connor", "KITCHEN"},
		[]string{"Clare", "FLOOR"},
		[]string{"Shaz", "FLOOR"},
		[]string{"Clare H", "BAR"},
	)
	rows := [][]string{
		dashRow("2026-10-16", "Lisa", "08:00:00", "16:00:00", "Finished"),
		dashRow("2026-10-16", "Connor", "10:00:00", "", "Working"),
		dashRow("2026-10-17", "Clare H", "07:00:00", "", "Working"),
		dashRow("2026-10-17", "Lisa", "08:30:00", "", "Working"),
		dashRow("10/17/2026", "Clare", "9:05:00 AM", "", "On a Break"),
		dashRow("46312", "Shaz", "10:00", "", "Working"),
		dashRow("2026-10-17", "Clare H", "07:00:00", "11:00:00", "Completed"),
		dashRow("", "", "", "", ""),
		dashRow("not a date", "Connor", "08:00:00", "", "Working"),
	}
	for _, r := range rows {
		_, err := f.mem.AppendRow(ctx, rowstore.Columns("Dashboard", 0, 10), r)
		require.NoError(t, err)
	}

	views, err := f.svc.ResolveCurrentStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, []shift.StatusView{
		{Name: "Lisa", Department: "ADMIN", SignInTime: "08:30:00", Status: shift.StateClockedIn},
		{Name: "Connor", Department: "KITCHEN", Status: shift.StateClockedOut},
		{Name: "Clare", Department: "FLOOR", SignInTime: "9:05:00 AM", Status: shift.StateOnBreak},
		{Name: "Shaz", Department: "FLOOR", SignInTime: "10:00", Status: shift.StateClockedIn},
		{Name: "Clare H", Department: "BAR", Status: shift.StateClockedOut},
	}, views)

	again, err := f.svc.ResolveCurrentStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, views, again)
}

func TestShiftService_StatusFor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.ClockIn(ctx, req("Connor"))
	require.NoError(t, err)

	view, err := f.svc.StatusFor(ctx, "Connor")
	require.NoError(t, err)
	assert.Equal(t, shift.StateClockedIn, view.Status)

	_, err = f.svc.StatusFor(ctx, "Ghost")
	assert.ErrorIs(t, err, shift.ErrUnknownStaff)
}

func TestResolveStatuses_UnrecognisedStatus(t *testing.T) {
	today := clock.Date{Year: 2026, Month: time.October, Day: 17}
	events := []shift.ShiftEvent{
		{Row: 2, Day: today, StaffName: "Lisa", SignIn: "09:00:00", Status: "Working"},
		{Row: 3, Day: today, StaffName: "Lisa", SignIn: "09:00:00", Status: "???"},
	}
	views := resolveStatuses(nil, events, today)
	assert.Empty(t, views)

	views = resolveStatuses([]staff.Staff{{Name: "Lisa"}}, events, today)
	assert.Equal(t, shift.StateClockedOut, views[0].Status)
	assert.Empty(t, views[0].SignInTime)
}

// ===== OPEN-ROW INDEX =====

func TestShiftService_StaleIndexEntryIsRescanned(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ClockIn(ctx, req("Lisa"))
	require.NoError(t, err)
	_, err = f.svc.ClockIn(ctx, req("Connor"))
	require.NoError(t, err)

	// someone sorts the dashboard by name
	dump := f.mem.Dump("Dashboard")
	require.NoError(t, f.mem.UpdateCells(ctx, rowstore.Row("Dashboard", 0, 10, 2), [][]string{dump[2]}))
	require.NoError(t, f.mem.UpdateCells(ctx, rowstore.Row("Dashboard", 0, 10, 3), [][]string{dump[1]}))

	_, err = f.svc.TakeBreak(ctx, req("Lisa"))
	require.NoError(t, err)

	dump = f.mem.Dump("Dashboard")
	assert.Equal(t, "Connor", dump[1][1])
	assert.Equal(t, "Working", dump[1][9])
	assert.Equal(t, "Lisa", dump[2][1])
	assert.Equal(t, "On a Break", dump[2][9])
}

func TestShiftService_RebuildIndex_SeesOtherWriters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.svc.RebuildIndex(ctx))

	// written by another instance
	_, err := f.mem.AppendRow(ctx, rowstore.Columns("Dashboard", 0, 10),
		dashRow("2026-10-17", "Connor", "08:45:00", "", "Working"))
	require.NoError(t, err)

	require.NoError(t, f.svc.RebuildIndex(ctx))
	_, err = f.svc.ClockIn(ctx, req("Connor"))
	assert.ErrorIs(t, err, shift.ErrAlreadyClockedIn)
	assert.Len(t, f.mem.Dump("Dashboard"), 2)
}

func TestShiftService_RebuildIndex_StoreDown(t *testing.T) {
	f := newFixture(t)
	f.store.Store = brokenStore{}
	err := f.svc.RebuildIndex(context.Background())
	assert.ErrorIs(t, err, rowstore.ErrUnavailable)
}

func TestBuildEntries(t *testing.T) {
	today := clock.Date{Year: 2026, Month: time.October, Day: 17}
	yesterday := clock.Date{Year: 2026, Month: time.October, Day: 16}
	events := []shift.ShiftEvent{
		{Row: 2, Day: yesterday, StaffName: "Lisa", Status: "Working"},
		{Row: 3, Day: today, StaffName: "Lisa", Status: "Working"},
		{Row: 4, Day: today, StaffName: "Lisa", Status: "On a Break"},
		{Row: 5, Day: today, StaffName: "Connor", Status: "Finished"},
	}
	breaks := []shift.BreakEvent{
		{Row: 2, Day: today, StaffName: "Lisa", BreakStart: "10:00:00", BreakEnd: "10:15:00", DurationMinutes: "15"},
		{Row: 3, Day: today, StaffName: "Lisa", BreakStart: "12:00:00"},
		{Row: 4, Day: today, StaffName: "Connor", BreakStart: "11:00:00", BreakEnd: "11:20:00", DurationMinutes: "20"},
		{Row: 5, Day: yesterday, StaffName: "Connor", BreakStart: "11:00:00"},
	}

	entries := buildEntries(events, breaks, today)
	assert.Equal(t, map[string]indexEntry{
		"Lisa":   {ShiftRow: 4, ShiftStatus: "On a Break", BreakRow: 3, BreakMinutes: 15},
		"Connor": {ShiftRow: 5, ShiftStatus: "Finished", BreakMinutes: 20},
	}, entries)
}

func TestOpenIndex_Complete(t *testing.T) {
	today := clock.Date{Year: 2026, Month: time.October, Day: 17}
	idx := newOpenIndex()
	assert.False(t, idx.complete(today))

	idx.load(today, map[string]indexEntry{"Lisa": {ShiftRow: 2}})
	assert.True(t, idx.complete(today))
	assert.False(t, idx.complete(clock.Date{Year: 2026, Month: time.October, Day: 18}))

	e, ok := idx.get(today, "Lisa")
	require.True(t, ok)
	assert.Equal(t, 2, e.ShiftRow)

	idx.invalidate()
	assert.False(t, idx.complete(today))
	_, ok = idx.get(today, "Lisa")
	assert.True(t, ok)
}

// ===== PARTIAL WRITES =====

func TestShiftService_ClockIn_PartialWriteThenRetry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.failAppend = map[string]bool{"Dashboard": true}

	_, err := f.svc.ClockIn(ctx, req("Lisa"))
	var perr *shift.PartialWriteError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "clock-in", perr.Operation)
	assert.Equal(t, "append dashboard row", perr.Step)
	assert.Equal(t, []string{"provision timesheet", "append timesheet row"}, perr.Completed)
	assert.NotEmpty(t, perr.OperationID)
	assert.True(t, perr.NeedsReconcile())
	assert.True(t, shift.IsStoreFailure(err))

	f.store.heal()
	f.clock.Advance(2 * time.Minute)
	res, err := f.svc.ClockIn(ctx, req("Lisa"))
	require.NoError(t, err)
	assert.Equal(t, "09:00:00", res.Time)

	assert.Len(t, f.mem.Dump("Lisa"), 2)
	assert.Len(t, f.mem.Dump("Dashboard"), 2)
	assert.Equal(t, "09:00:00", f.status(t, "Lisa").SignInTime)
}

func TestShiftService_TakeBreak_PartialWriteThenRetry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.ClockIn(ctx, req("Lisa"))
	require.NoError(t, err)

	f.clock.Advance(3 * time.Hour)
	f.store.failUpdate = map[string]bool{"Dashboard": true}
	_, err = f.svc.TakeBreak(ctx, req("Lisa"))
	var perr *shift.PartialWriteError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "set status on a break", perr.Step)
	assert.Equal(t, []string{"open break"}, perr.Completed)
	assert.Equal(t, shift.StateClockedIn, f.status(t, "Lisa").Status)

	f.store.heal()
	f.clock.Advance(time.Minute)
	res, err := f.svc.TakeBreak(ctx, req("Lisa"))
	require.NoError(t, err)
	assert.Equal(t, "12:00:00", res.Time)
	assert.Len(t, f.mem.Dump("Break Log"), 2)
	assert.Equal(t, shift.StateOnBreak, f.status(t, "Lisa").Status)
}

func TestShiftService_ClockOut_PartialWriteKeepsShiftOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.ClockIn(ctx, req("Lisa"))
	require.NoError(t, err)

	f.clock.Advance(8 * time.Hour)
	f.store.failUpdate = map[string]bool{"Dashboard": true}
	_, err = f.svc.ClockOut(ctx, req("Lisa"))
	var perr *shift.PartialWriteError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "finish dashboard row", perr.Step)
	assert.Equal(t, []string{"sign out timesheet"}, perr.Completed)

	// the dashboard row is still open, so a new clock-in must not add another
	f.store.heal()
	_, err = f.svc.ClockIn(ctx, req("Lisa"))
	assert.ErrorIs(t, err, shift.ErrAlreadyClockedIn)
	assert.Len(t, f.mem.Dump("Dashboard"), 2)
}

func TestShiftService_ClockOut_RetryFinishesDashboardRow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.ClockIn(ctx, req("Lisa"))
	require.NoError(t, err)

	f.clock.Advance(8 * time.Hour)
	f.store.failUpdate = map[string]bool{"Dashboard": true}
	_, err = f.svc.ClockOut(ctx, req("Lisa"))
	var perr *shift.PartialWriteError
	require.ErrorAs(t, err, &perr)
	f.store.heal()

	// the timesheet is signed out, so no break can start on this shift
	_, err = f.svc.TakeBreak(ctx, req("Lisa"))
	assert.ErrorIs(t, err, shift.ErrNoActiveShift)
	assert.Len(t, f.mem.Dump("Break Log"), 1)

	f.clock.Advance(5 * time.Minute)
	res, err := f.svc.ClockOut(ctx, req("Lisa"))
	require.NoError(t, err)
	assert.Equal(t, "17:00:00", res.Time)

	row := f.mem.Dump("Dashboard")[1]
	assert.Equal(t, "17:00:00", row[5])
	assert.Equal(t, "Finished", row[9])
	assert.Equal(t, "17:00:00", f.mem.Dump("Lisa")[1][2])
	assert.Equal(t, shift.StateClockedOut, f.status(t, "Lisa").Status)

	_, err = f.svc.ClockOut(ctx, req("Lisa"))
	assert.ErrorIs(t, err, shift.ErrNoOpenShift)
	_, err = f.svc.ClockIn(ctx, req("Lisa"))
	assert.ErrorIs(t, err, shift.ErrShiftFinished)
}

func TestShiftService_ClockIn_TimesheetAppendFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.failAppend = map[string]bool{"Lisa": true}

	_, err := f.svc.ClockIn(ctx, req("Lisa"))
	var perr *shift.PartialWriteError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, []string{"provision timesheet"}, perr.Completed)
	assert.ErrorIs(t, err, rowstore.ErrUnavailable)
	assert.Len(t, f.mem.Dump("Dashboard"), 1)
}

// ===== CONCURRENCY =====

func TestShiftService_ConcurrentClockInsForOnePerson(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ClockIn(ctx, req("Lisa"))
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, shift.ErrAlreadyClockedIn):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(9), conflicts.Load())
	assert.Len(t, f.mem.Dump("Dashboard"), 2)
	assert.Len(t, f.mem.Dump("Lisa"), 2)
}

// ===== STALE SHIFTS =====

func TestShiftService_StaleShifts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ClockIn(ctx, req("Lisa"))
	require.NoError(t, err)
	stale, err := f.svc.StaleShifts(ctx)
	require.NoError(t, err)
	assert.Empty(t, stale)

	f.clock.Set(time.Date(2026, time.October, 17, 22, 0, 0, 0, time.UTC))
	stale, err = f.svc.StaleShifts(ctx)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "Lisa", stale[0].StaffName)
	assert.Equal(t, 2, stale[0].Row)
	assert.Contains(t, stale[0].Reason, "open for more than")

	f.clock.Advance(12 * time.Hour)
	stale, err = f.svc.StaleShifts(ctx)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "open since an earlier day", stale[0].Reason)
}

func TestStaleShifts_Duplicates(t *testing.T) {
	today := clock.Date{Year: 2026, Month: time.October, Day: 17}
	now := time.Date(2026, time.October, 17, 10, 0, 0, 0, time.UTC)
	events := []shift.ShiftEvent{
		{Row: 2, Day: today, Date: "2026-10-17", StaffName: "Lisa", SignIn: "09:00:00", Status: "Working"},
		{Row: 3, Day: today, Date: "2026-10-17", StaffName: "Lisa", SignIn: "09:00:01", Status: "Working"},
		{Row: 4, Date: "yesterday", StaffName: "Connor", SignIn: "09:00:00", Status: "On a Break"},
		{Row: 5, Day: today, Date: "2026-10-17", StaffName: "Shaz", SignIn: "09:00:00", Status: "Finished"},
	}

	stale := staleShifts(events, now, 12*time.Hour)
	require.Len(t, stale, 2)
	assert.Equal(t, 2, stale[0].Row)
	assert.Equal(t, "duplicate open row for the same day", stale[0].Reason)
	assert.Equal(t, 4, stale[1].Row)
	assert.Equal(t, "unreadable date", stale[1].Reason)
}

// ===== HELPERS =====

func TestWritePlan_StopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	var ran []string
	boom := errors.New("boom")

	plan := newPlan("test", "Lisa")
	plan.add("one", func(context.Context) error {
		ran = append(ran, "one")
		return nil
	})
	plan.add("two", func(context.Context) error { return boom })
	plan.add("three", func(context.Context) error {
		ran = append(ran, "three")
		return nil
	})

	err := plan.execute(ctx)
	var perr *shift.PartialWriteError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "two", perr.Step)
	assert.Equal(t, []string{"one"}, perr.Completed)
	assert.Equal(t, []string{"one"}, ran)
}

func TestNameLocks_Serializes(t *testing.T) {
	locks := newNameLocks()
	var (
		wg      sync.WaitGroup
		inside  atomic.Int32
		maxSeen atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("Lisa")
			n := inside.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen.Load())
	assert.Empty(t, locks.locks)
}
