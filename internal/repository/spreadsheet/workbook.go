package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/rowstore"
)

// Layout names the fixed sheets of the workbook. Per-person timesheets are
// titled after the staff member.
type Layout struct {
	Roster    string
	Dashboard string
	Breaks    string
}

func DefaultLayout() Layout {
	return Layout{
		Roster:    "Staff Roster",
		Dashboard: "Dashboard",
		Breaks:    "Break Log",
	}
}

// Titles lists the fixed sheets.
func (l Layout) Titles() []string {
	return []string{l.Roster, l.Dashboard, l.Breaks}
}

// Column positions, 0-based. These are the wire contract with the
// existing workbook and must not move.
const (
	rosterName = iota
	rosterDepartment
	rosterPosition
	rosterWage
	rosterStatus
)

const (
	dashDate = iota
	dashStaffName
	dashDepartment
	dashPosition
	dashSignIn
	dashSignOut
	dashHours
	dashWage
	dashPay
	dashStatus
	dashNotes
)

const (
	sheetDate = iota
	sheetSignIn
	sheetSignOut
	sheetHours
	sheetWage
	sheetPay
	sheetCumulativePay
	sheetNotes
)

const (
	breakDate = iota
	breakStaffName
	breakDepartment
	breakStart
	breakEnd
	breakMinutes
)

var (
	RosterHeader    = []string{"Name", "Department", "Position", "Hourly Wage", "Status"}
	DashboardHeader = []string{"Date", "Staff Name", "Department", "Position", "Sign In", "Sign Out", "Hours", "Hourly Wage", "Pay", "Status", "Notes"}
	TimesheetHeader = []string{"Date", "Sign In", "Sign Out", "Hours", "Hourly Wage", "Pay", "Cumulative Pay", "Notes"}
	BreakHeader     = []string{"Date", "Staff Name", "Department", "Break Start", "Break End", "Duration (mins)"}
)

// firstDataRow is the row below every sheet's header.
const firstDataRow = 2

// EnsureWorkbook creates any fixed sheet that is missing. Existing sheets
// are never touched.
func EnsureWorkbook(ctx context.Context, store rowstore.Store, layout Layout) error {
	sheets := []struct {
		title  string
		header []string
	}{
		{layout.Roster, RosterHeader},
		{layout.Dashboard, DashboardHeader},
		{layout.Breaks, BreakHeader},
	}
	for _, s := range sheets {
		exists, err := store.SheetExists(ctx, s.title)
		if err != nil {
			return fmt.Errorf("failed to check sheet %q: %w", s.title, err)
		}
		if exists {
			continue
		}
		if err := store.AddSheet(ctx, s.title, s.header); err != nil && !errors.Is(err, rowstore.ErrSheetExists) {
			return fmt.Errorf("failed to create sheet %q: %w", s.title, err)
		}
		slog.Info("Sheet provisioned", "sheet", s.title)
	}
	return nil
}

// ProbeReport is a raw look at the top of the roster, used to diagnose
// connectivity and layout problems.
type ProbeReport struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

// Probe reads the first limit rows of the roster, header included.
func Probe(ctx context.Context, store rowstore.Store, layout Layout, limit int) (ProbeReport, error) {
	rng := rowstore.Range{Sheet: layout.Roster, FromCol: rosterName, ToCol: rosterStatus, FromRow: 1, ToRow: limit}
	rows, err := store.ReadRange(ctx, rng)
	if err != nil {
		return ProbeReport{Range: rng.A1()}, err
	}
	return ProbeReport{Range: rng.A1(), Values: rows}, nil
}
