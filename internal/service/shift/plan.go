package shift

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/google/uuid"
)

// writePlan is the ordered list of writes one transition makes. Steps are
// not rolled back: the first failure stops the plan and is reported with
// the steps that already reached the store.
type writePlan struct {
	operation string
	id        string
	staffName string
	steps     []planStep
}

type planStep struct {
	name string
	run  func(ctx context.Context) error
}

func newPlan(operation, staffName string) *writePlan {
	return &writePlan{
		operation: operation,
		id:        uuid.NewString(),
		staffName: staffName,
	}
}

func (p *writePlan) add(name string, run func(ctx context.Context) error) {
	p.steps = append(p.steps, planStep{name: name, run: run})
}

func (p *writePlan) execute(ctx context.Context) error {
	completed := make([]string, 0, len(p.steps))
	for _, step := range p.steps {
		if err := step.run(ctx); err != nil {
			perr := &shift.PartialWriteError{
				Operation:   p.operation,
				OperationID: p.id,
				StaffName:   p.staffName,
				Step:        step.name,
				Completed:   completed,
				Err:         err,
			}
			if perr.NeedsReconcile() {
				slog.Error("Write plan stopped part way, store needs manual reconciliation",
					"operation", p.operation,
					"operation_id", p.id,
					"staff", p.staffName,
					"failed_step", step.name,
					"completed_steps", completed,
					"reconcile_required", true,
					"error", err,
				)
			} else {
				slog.Warn("Write plan failed before any write",
					"operation", p.operation,
					"operation_id", p.id,
					"staff", p.staffName,
					"failed_step", step.name,
					"error", err,
				)
			}
			return perr
		}
		completed = append(completed, step.name)
	}

	slog.Info("Write plan applied",
		"operation", p.operation,
		"operation_id", p.id,
		"staff", p.staffName,
		"steps", completed,
	)
	return nil
}
