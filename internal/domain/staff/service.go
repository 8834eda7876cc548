package staff

import "context"

// StaffService is the roster index plus the roster mutator.
type StaffService interface {
	List(ctx context.Context) ([]Staff, error)

	// FindByName is an exact, case-sensitive match on the trimmed name.
	FindByName(ctx context.Context, name string) (Staff, error)

	// Add appends a roster entry and provisions its timesheet.
	Add(ctx context.Context, req AddStaffRequest) (StaffResponse, error)

	// Update overwrites a roster entry; a new name renames the timesheet.
	Update(ctx context.Context, req UpdateStaffRequest) (StaffResponse, error)
}
