package spreadsheet

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/rowstore"
)

type breakRepository struct {
	store rowstore.Store
	sheet string
}

func NewBreakRepository(store rowstore.Store, layout Layout) shift.BreakRepository {
	return &breakRepository{store: store, sheet: layout.Breaks}
}

// List implements shift.BreakRepository.
func (b *breakRepository) List(ctx context.Context) ([]shift.BreakEvent, error) {
	rows, err := b.store.ReadRange(ctx, rowstore.Rows(b.sheet, breakDate, breakMinutes, firstDataRow))
	if err != nil {
		return nil, fmt.Errorf("failed to read break log: %w", err)
	}
	events := make([]shift.BreakEvent, len(rows))
	for i, row := range rows {
		events[i] = toBreakEvent(firstDataRow+i, row)
	}
	return events, nil
}

// Get implements shift.BreakRepository.
func (b *breakRepository) Get(ctx context.Context, row int) (shift.BreakEvent, error) {
	rows, err := b.store.ReadRange(ctx, rowstore.Row(b.sheet, breakDate, breakMinutes, row))
	if err != nil {
		return shift.BreakEvent{}, fmt.Errorf("failed to read break row %d: %w", row, err)
	}
	if len(rows) == 0 {
		return shift.BreakEvent{Row: row}, nil
	}
	return toBreakEvent(row, rows[0]), nil
}

// Append implements shift.BreakRepository.
func (b *breakRepository) Append(ctx context.Context, e shift.BreakEvent) (int, error) {
	row := []string{e.Date, e.StaffName, e.Department, e.BreakStart, e.BreakEnd, e.DurationMinutes}
	n, err := b.store.AppendRow(ctx, rowstore.Columns(b.sheet, breakDate, breakMinutes), row)
	if err != nil {
		return 0, fmt.Errorf("failed to append break for %q: %w", e.StaffName, err)
	}
	return n, nil
}

// Close implements shift.BreakRepository.
func (b *breakRepository) Close(ctx context.Context, row int, end string, minutes int) error {
	rng := rowstore.Row(b.sheet, breakEnd, breakMinutes, row)
	if err := b.store.UpdateCells(ctx, rng, [][]string{{end, strconv.Itoa(minutes)}}); err != nil {
		return fmt.Errorf("failed to close break row %d: %w", row, err)
	}
	return nil
}

func toBreakEvent(rowNum int, row []string) shift.BreakEvent {
	date := strings.TrimSpace(rowstore.CellAt(row, breakDate))
	day, _ := clock.ParseDate(date)
	return shift.BreakEvent{
		Row:             rowNum,
		Day:             day,
		Date:            date,
		StaffName:       strings.TrimSpace(rowstore.CellAt(row, breakStaffName)),
		Department:      rowstore.CellAt(row, breakDepartment),
		BreakStart:      strings.TrimSpace(rowstore.CellAt(row, breakStart)),
		BreakEnd:        strings.TrimSpace(rowstore.CellAt(row, breakEnd)),
		DurationMinutes: strings.TrimSpace(rowstore.CellAt(row, breakMinutes)),
	}
}
