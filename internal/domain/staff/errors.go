package staff

import "errors"

var (
	ErrStaffNotFound = errors.New("staff member not found")
	ErrStaffExists   = errors.New("a staff member with this name already exists")
)
