package staff

import (
	"strings"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
)

type StaffResponse struct {
	Name       string  `json:"name"`
	Department string  `json:"department"`
	Position   string  `json:"position"`
	HourlyWage float64 `json:"hourlyWage"`
	Status     string  `json:"status"`
}

func ToResponse(s Staff) StaffResponse {
	return StaffResponse{
		Name:       s.Name,
		Department: s.Department,
		Position:   s.Position,
		HourlyWage: s.HourlyWage,
		Status:     s.Status,
	}
}

type AddStaffRequest struct {
	Name       string  `json:"name" yaml:"name"`
	Department string  `json:"department" yaml:"department"`
	Position   string  `json:"position" yaml:"position"`
	HourlyWage float64 `json:"hourlyWage" yaml:"hourlyWage"`
	Status     string  `json:"status,omitempty" yaml:"status"`
}

func (r *AddStaffRequest) Validate() error {
	r.normalize()
	return validateFields(r.Name, r.HourlyWage, r.Status)
}

func (r *AddStaffRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Department = strings.TrimSpace(r.Department)
	r.Position = strings.TrimSpace(r.Position)
	r.Status = strings.TrimSpace(r.Status)
	if r.Status == "" {
		r.Status = StatusActive
	}
}

func (r AddStaffRequest) ToStaff() Staff {
	return Staff{
		Name:       r.Name,
		Department: r.Department,
		Position:   r.Position,
		HourlyWage: r.HourlyWage,
		Status:     r.Status,
	}
}

// UpdateStaffRequest changes the roster entry currently named OldName.
// Blank or omitted fields keep their current value; the store never blanks
// a cell, so a department or position cannot be cleared this way.
type UpdateStaffRequest struct {
	OldName    string   `json:"-"`
	Name       string   `json:"name"`
	Department string   `json:"department"`
	Position   string   `json:"position"`
	HourlyWage *float64 `json:"hourlyWage,omitempty"`
	Status     string   `json:"status,omitempty"`
}

func (r *UpdateStaffRequest) Validate() error {
	r.OldName = strings.TrimSpace(r.OldName)
	r.Name = strings.TrimSpace(r.Name)
	r.Department = strings.TrimSpace(r.Department)
	r.Position = strings.TrimSpace(r.Position)
	r.Status = strings.TrimSpace(r.Status)

	var errs validator.ValidationErrors
	if validator.IsEmpty(r.OldName) {
		errs = append(errs, validator.ValidationError{
			Field:   "oldName",
			Message: "the current name of the staff member is required",
		})
	}

	name, status, wage := r.Name, r.Status, 0.0
	if name == "" {
		name = r.OldName
	}
	if status == "" {
		status = StatusActive
	}
	if r.HourlyWage != nil {
		wage = *r.HourlyWage
	}
	if err := validateFields(name, wage, status); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply returns current with the request's non-blank fields laid over it.
func (r UpdateStaffRequest) Apply(current Staff) Staff {
	next := current
	if r.Name != "" {
		next.Name = r.Name
	}
	if r.Department != "" {
		next.Department = r.Department
	}
	if r.Position != "" {
		next.Position = r.Position
	}
	if r.HourlyWage != nil {
		next.HourlyWage = *r.HourlyWage
	}
	if r.Status != "" {
		next.Status = r.Status
	}
	return next
}

func validateFields(name string, wage float64, status string) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if !validator.IsValidStaffName(name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must be at most 100 characters and must not contain [ ] * ? / \\ :",
		})
	}

	if wage < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "hourlyWage",
			Message: "hourlyWage must not be negative",
		})
	}

	if !validator.IsInSlice(status, []string{StatusActive, StatusInactive}) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: Active, Inactive",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
