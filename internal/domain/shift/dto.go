package shift

import (
	"strings"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
)

type ClockRequest struct {
	StaffName string `json:"staffName"`
}

func (r *ClockRequest) Validate() error {
	r.StaffName = strings.TrimSpace(r.StaffName)

	var errs validator.ValidationErrors
	if validator.IsEmpty(r.StaffName) {
		errs = append(errs, validator.ValidationError{
			Field:   "staffName",
			Message: "Staff name is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// StatusView is computed per request and never stored.
type StatusView struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	SignInTime string `json:"signInTime"`
	Status     State  `json:"status"`
}

// ActionResult is what a transition reports back to the caller.
type ActionResult struct {
	Message       string `json:"message"`
	Time          string `json:"time"`
	BreakDuration *int   `json:"breakDuration,omitempty"`
}

type StaleShift struct {
	StaffName string `json:"staffName"`
	Date      string `json:"date"`
	SignIn    string `json:"signIn"`
	Status    string `json:"status"`
	Row       int    `json:"row"`
	Reason    string `json:"reason"`
}
