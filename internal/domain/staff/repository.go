package staff

import "context"

// StaffRepository reads and writes the roster range.
type StaffRepository interface {
	// List returns roster entries in sheet order, blank names dropped.
	List(ctx context.Context) ([]Staff, error)
	Append(ctx context.Context, member Staff) error
	// Update overwrites the roster row member.Row.
	Update(ctx context.Context, member Staff) error
}
