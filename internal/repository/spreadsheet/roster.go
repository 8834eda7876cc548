package spreadsheet

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/rowstore"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
)

type rosterRepository struct {
	store rowstore.Store
	sheet string
}

func NewRosterRepository(store rowstore.Store, layout Layout) staff.StaffRepository {
	return &rosterRepository{store: store, sheet: layout.Roster}
}

// List implements staff.StaffRepository.
func (r *rosterRepository) List(ctx context.Context) ([]staff.Staff, error) {
	rows, err := r.store.ReadRange(ctx, rowstore.Rows(r.sheet, rosterName, rosterStatus, firstDataRow))
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	members := make([]staff.Staff, 0, len(rows))
	for i, row := range rows {
		name := strings.TrimSpace(rowstore.CellAt(row, rosterName))
		if name == "" {
			continue
		}
		status := strings.TrimSpace(rowstore.CellAt(row, rosterStatus))
		if status == "" {
			status = staff.StatusActive
		}
		members = append(members, staff.Staff{
			Name:       name,
			Department: strings.TrimSpace(rowstore.CellAt(row, rosterDepartment)),
			Position:   strings.TrimSpace(rowstore.CellAt(row, rosterPosition)),
			HourlyWage: ParseWage(rowstore.CellAt(row, rosterWage)),
			Status:     status,
			Row:        firstDataRow + i,
		})
	}
	return members, nil
}

// Append implements staff.StaffRepository.
func (r *rosterRepository) Append(ctx context.Context, member staff.Staff) error {
	_, err := r.store.AppendRow(ctx, rowstore.Columns(r.sheet, rosterName, rosterStatus), rosterRow(member))
	if err != nil {
		return fmt.Errorf("failed to append roster entry %q: %w", member.Name, err)
	}
	return nil
}

// Update implements staff.StaffRepository.
func (r *rosterRepository) Update(ctx context.Context, member staff.Staff) error {
	if member.Row < firstDataRow {
		return fmt.Errorf("roster entry %q has no row", member.Name)
	}
	rng := rowstore.Row(r.sheet, rosterName, rosterStatus, member.Row)
	if err := r.store.UpdateCells(ctx, rng, [][]string{rosterRow(member)}); err != nil {
		return fmt.Errorf("failed to update roster entry %q: %w", member.Name, err)
	}
	return nil
}

func rosterRow(m staff.Staff) []string {
	return []string{m.Name, m.Department, m.Position, FormatWage(m.HourlyWage), m.Status}
}

// ParseWage tolerates currency symbols and separators; anything
// unparsable is 0.
func ParseWage(cell string) float64 {
	v, err := strconv.ParseFloat(validator.StripNonDecimal(cell), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func FormatWage(w float64) string {
	return strconv.FormatFloat(w, 'f', 2, 64)
}
