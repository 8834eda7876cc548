package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/rowstore"
)

type timesheetRepository struct {
	store rowstore.Store
}

func NewTimesheetRepository(store rowstore.Store) shift.TimesheetRepository {
	return &timesheetRepository{store: store}
}

// Exists implements shift.TimesheetRepository.
func (t *timesheetRepository) Exists(ctx context.Context, name string) (bool, error) {
	ok, err := t.store.SheetExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to look up timesheet %q: %w", name, err)
	}
	return ok, nil
}

// Provision implements shift.TimesheetRepository.
func (t *timesheetRepository) Provision(ctx context.Context, name string) error {
	exists, err := t.Exists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	err = t.store.AddSheet(ctx, name, TimesheetHeader)
	if err != nil && !errors.Is(err, rowstore.ErrSheetExists) {
		return fmt.Errorf("failed to provision timesheet %q: %w", name, err)
	}
	return nil
}

// Rename implements shift.TimesheetRepository.
func (t *timesheetRepository) Rename(ctx context.Context, oldName, newName string) error {
	if err := t.store.RenameSheet(ctx, oldName, newName); err != nil {
		return fmt.Errorf("failed to rename timesheet %q to %q: %w", oldName, newName, err)
	}
	return nil
}

// List implements shift.TimesheetRepository.
func (t *timesheetRepository) List(ctx context.Context, name string) ([]shift.TimesheetEntry, error) {
	rows, err := t.store.ReadRange(ctx, rowstore.Rows(name, sheetDate, sheetNotes, firstDataRow))
	if errors.Is(err, rowstore.ErrSheetNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read timesheet %q: %w", name, err)
	}

	entries := make([]shift.TimesheetEntry, len(rows))
	for i, row := range rows {
		date := strings.TrimSpace(rowstore.CellAt(row, sheetDate))
		day, _ := clock.ParseDate(date)
		entries[i] = shift.TimesheetEntry{
			Row:        firstDataRow + i,
			Day:        day,
			Date:       date,
			SignIn:     strings.TrimSpace(rowstore.CellAt(row, sheetSignIn)),
			SignOut:    strings.TrimSpace(rowstore.CellAt(row, sheetSignOut)),
			HourlyWage: rowstore.CellAt(row, sheetWage),
			Notes:      rowstore.CellAt(row, sheetNotes),
		}
	}
	return entries, nil
}

// Append implements shift.TimesheetRepository.
func (t *timesheetRepository) Append(ctx context.Context, member staff.Staff, e shift.TimesheetEntry) (int, error) {
	row := []string{e.Date, e.SignIn, e.SignOut, "", FormatWage(member.HourlyWage), "", "", e.Notes}
	n, err := t.store.AppendRow(ctx, rowstore.Columns(member.Name, sheetDate, sheetNotes), row)
	if err != nil {
		return 0, fmt.Errorf("failed to append to timesheet %q: %w", member.Name, err)
	}
	return n, nil
}

// SetSignOut implements shift.TimesheetRepository.
func (t *timesheetRepository) SetSignOut(ctx context.Context, name string, row int, signOut string) error {
	if err := t.store.UpdateCells(ctx, rowstore.Cell(name, sheetSignOut, row), [][]string{{signOut}}); err != nil {
		return fmt.Errorf("failed to sign out row %d of %q: %w", row, name, err)
	}
	return nil
}
