package spreadsheet

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/rowstore"
)

type dashboardRepository struct {
	store rowstore.Store
	sheet string
}

func NewDashboardRepository(store rowstore.Store, layout Layout) shift.DashboardRepository {
	return &dashboardRepository{store: store, sheet: layout.Dashboard}
}

// List implements shift.DashboardRepository.
func (d *dashboardRepository) List(ctx context.Context) ([]shift.ShiftEvent, error) {
	rows, err := d.store.ReadRange(ctx, rowstore.Rows(d.sheet, dashDate, dashNotes, firstDataRow))
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard: %w", err)
	}
	events := make([]shift.ShiftEvent, len(rows))
	for i, row := range rows {
		events[i] = toShiftEvent(firstDataRow+i, row)
	}
	return events, nil
}

// Get implements shift.DashboardRepository.
func (d *dashboardRepository) Get(ctx context.Context, row int) (shift.ShiftEvent, error) {
	rows, err := d.store.ReadRange(ctx, rowstore.Row(d.sheet, dashDate, dashNotes, row))
	if err != nil {
		return shift.ShiftEvent{}, fmt.Errorf("failed to read dashboard row %d: %w", row, err)
	}
	if len(rows) == 0 {
		return shift.ShiftEvent{Row: row}, nil
	}
	return toShiftEvent(row, rows[0]), nil
}

// Append implements shift.DashboardRepository.
func (d *dashboardRepository) Append(ctx context.Context, e shift.ShiftEvent) (int, error) {
	// hours and pay are left to the sheet's formulas
	row := []string{
		e.Date, e.StaffName, e.Department, e.Position, e.SignIn, e.SignOut,
		"", e.HourlyWage, "", e.Status, e.Notes,
	}
	n, err := d.store.AppendRow(ctx, rowstore.Columns(d.sheet, dashDate, dashNotes), row)
	if err != nil {
		return 0, fmt.Errorf("failed to append dashboard row for %q: %w", e.StaffName, err)
	}
	return n, nil
}

// SetStatus implements shift.DashboardRepository.
func (d *dashboardRepository) SetStatus(ctx context.Context, row int, status string, notes string) error {
	rng := rowstore.Row(d.sheet, dashStatus, dashNotes, row)
	if err := d.store.UpdateCells(ctx, rng, [][]string{{status, notes}}); err != nil {
		return fmt.Errorf("failed to set dashboard row %d to %q: %w", row, status, err)
	}
	return nil
}

// Finish implements shift.DashboardRepository.
func (d *dashboardRepository) Finish(ctx context.Context, row int, signOut string, notes string) error {
	// F..K in one call; the empty hours, wage and pay cells are skipped
	rng := rowstore.Row(d.sheet, dashSignOut, dashNotes, row)
	values := [][]string{{signOut, "", "", "", shift.StatusFinished, notes}}
	if err := d.store.UpdateCells(ctx, rng, values); err != nil {
		return fmt.Errorf("failed to finish dashboard row %d: %w", row, err)
	}
	return nil
}

func toShiftEvent(rowNum int, row []string) shift.ShiftEvent {
	date := strings.TrimSpace(rowstore.CellAt(row, dashDate))
	day, _ := clock.ParseDate(date)
	return shift.ShiftEvent{
		Row:        rowNum,
		Day:        day,
		Date:       date,
		StaffName:  strings.TrimSpace(rowstore.CellAt(row, dashStaffName)),
		Department: rowstore.CellAt(row, dashDepartment),
		Position:   rowstore.CellAt(row, dashPosition),
		SignIn:     strings.TrimSpace(rowstore.CellAt(row, dashSignIn)),
		SignOut:    strings.TrimSpace(rowstore.CellAt(row, dashSignOut)),
		HourlyWage: rowstore.CellAt(row, dashWage),
		Status:     strings.TrimSpace(rowstore.CellAt(row, dashStatus)),
		Notes:      rowstore.CellAt(row, dashNotes),
	}
}
