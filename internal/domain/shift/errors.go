package shift

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/rowstore"
)

var (
	ErrUnknownStaff     = errors.New("staff member not found")
	ErrAlreadyClockedIn = errors.New("already clocked in today")
	ErrShiftFinished    = errors.New("shift already finished for today")
	ErrNoActiveShift    = errors.New("no active session found to break from")
	ErrAlreadyOnBreak   = errors.New("already on a break")
	ErrNoActiveBreak    = errors.New("no active break found")
	ErrNoOpenShift      = errors.New("no clock in found for today")
)

// PartialWriteError reports a transition that stopped at Step. Writes in
// Completed are already in the store and were not rolled back.
type PartialWriteError struct {
	Operation   string
	OperationID string
	StaffName   string
	Step        string
	Completed   []string
	Err         error
}

func (e *PartialWriteError) Error() string {
	if len(e.Completed) == 0 {
		return fmt.Sprintf("%s for %s failed at %q: %v", e.Operation, e.StaffName, e.Step, e.Err)
	}
	return fmt.Sprintf("%s for %s failed at %q after [%s]: %v",
		e.Operation, e.StaffName, e.Step, strings.Join(e.Completed, ", "), e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

// NeedsReconcile is true when earlier steps were committed before the failure.
func (e *PartialWriteError) NeedsReconcile() bool { return len(e.Completed) > 0 }

// IsStoreFailure reports whether err came from the row store.
func IsStoreFailure(err error) bool {
	return errors.Is(err, rowstore.ErrUnavailable)
}
