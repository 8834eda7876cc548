package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/rowstore"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		slog.Info("Request rejected by validation", "error", err)
		ValidationError(w, validationErrs[0].Message, validationErrs.ToMap())
		return
	}

	switch {
	// Shift domain errors
	case errors.Is(err, shift.ErrUnknownStaff):
		StateConflict(w, "UNKNOWN_STAFF", "Staff member not found")
	case errors.Is(err, shift.ErrAlreadyClockedIn):
		StateConflict(w, "ALREADY_CLOCKED_IN", "Already clocked in today!")
	case errors.Is(err, shift.ErrShiftFinished):
		StateConflict(w, "SHIFT_FINISHED", "Shift already finished for today")
	case errors.Is(err, shift.ErrNoActiveShift):
		StateConflict(w, "NO_ACTIVE_SHIFT", "No active session found to break from!")
	case errors.Is(err, shift.ErrAlreadyOnBreak):
		StateConflict(w, "ALREADY_ON_BREAK", "Already on a break")
	case errors.Is(err, shift.ErrNoActiveBreak):
		StateConflict(w, "NO_ACTIVE_BREAK", "No active break found!")
	case errors.Is(err, shift.ErrNoOpenShift):
		StateConflict(w, "NO_OPEN_SHIFT", "No clock in found for today!")

	// Staff domain errors
	case errors.Is(err, staff.ErrStaffNotFound):
		NotFound(w, "Staff member not found")
	case errors.Is(err, staff.ErrStaffExists):
		Conflict(w, "A staff member with this name already exists")

	// Store failures
	default:
		handleStoreError(w, err)
	}
}

func handleStoreError(w http.ResponseWriter, err error) {
	var partial *shift.PartialWriteError
	switch {
	case errors.As(err, &partial) && partial.NeedsReconcile():
		// already logged with the completed steps by the write plan
		InternalServerError(w, "PARTIAL_WRITE",
			"The action was only partly recorded, please ask a manager to check the sheet (ref "+partial.OperationID+")")
	case errors.Is(err, rowstore.ErrUnavailable):
		slog.Error("Row store unavailable", "error", err)
		InternalServerError(w, "STORE_UNAVAILABLE", "The timesheet is unavailable, please try again")
	case errors.Is(err, rowstore.ErrSheetNotFound):
		slog.Error("Workbook is missing a sheet", "error", err)
		InternalServerError(w, "STORE_UNAVAILABLE", "The timesheet is unavailable, please try again")
	default:
		slog.Error("Unexpected error", "error", err)
		InternalServerError(w, "INTERNAL_SERVER_ERROR", "An unexpected error occurred")
	}
}
