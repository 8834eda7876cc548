package shift

import (
	"context"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/staff"
)

// DashboardRepository is the aggregate log shared by all staff.
type DashboardRepository interface {
	// List returns every row in sheet order.
	List(ctx context.Context) ([]ShiftEvent, error)
	// Get re-reads one row. An empty row comes back with only Row set.
	Get(ctx context.Context, row int) (ShiftEvent, error)
	Append(ctx context.Context, event ShiftEvent) (int, error)
	SetStatus(ctx context.Context, row int, status string, notes string) error
	// Finish writes the sign-out time and the terminal status in one call.
	Finish(ctx context.Context, row int, signOut string, notes string) error
}

// TimesheetRepository is the per-person log, one sheet per staff name.
type TimesheetRepository interface {
	Exists(ctx context.Context, name string) (bool, error)
	// Provision creates the sheet with its header; an existing sheet is left alone.
	Provision(ctx context.Context, name string) error
	Rename(ctx context.Context, oldName, newName string) error
	// List returns the rows below the header; a missing sheet yields none.
	List(ctx context.Context, name string) ([]TimesheetEntry, error)
	Append(ctx context.Context, member staff.Staff, entry TimesheetEntry) (int, error)
	SetSignOut(ctx context.Context, name string, row int, signOut string) error
}

// BreakRepository is the break log.
type BreakRepository interface {
	List(ctx context.Context) ([]BreakEvent, error)
	Get(ctx context.Context, row int) (BreakEvent, error)
	Append(ctx context.Context, event BreakEvent) (int, error)
	Close(ctx context.Context, row int, end string, minutes int) error
}
