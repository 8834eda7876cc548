package shift

import "context"

// ShiftService derives current state from the logs and applies transitions.
type ShiftService interface {
	// ResolveCurrentStatus returns one view per roster entry, in roster order.
	ResolveCurrentStatus(ctx context.Context) ([]StatusView, error)

	// StatusFor resolves a single staff member.
	StatusFor(ctx context.Context, name string) (StatusView, error)

	ClockIn(ctx context.Context, req ClockRequest) (ActionResult, error)
	TakeBreak(ctx context.Context, req ClockRequest) (ActionResult, error)
	ReturnFromBreak(ctx context.Context, req ClockRequest) (ActionResult, error)

	// ClockOut is legal while working and while on a break.
	ClockOut(ctx context.Context, req ClockRequest) (ActionResult, error)

	// StaleShifts lists open shifts from earlier days or longer than the configured maximum.
	StaleShifts(ctx context.Context) ([]StaleShift, error)

	// RebuildIndex reloads the open-row index from the logs.
	RebuildIndex(ctx context.Context) error
}
