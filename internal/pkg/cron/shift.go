package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
)

const staleReportInterval = time.Hour

type ShiftJobs struct {
	shiftService    shift.ShiftService
	rebuildInterval time.Duration
}

func NewShiftJobs(shiftService shift.ShiftService, rebuildInterval time.Duration) *ShiftJobs {
	return &ShiftJobs{
		shiftService:    shiftService,
		rebuildInterval: rebuildInterval,
	}
}

func (j *ShiftJobs) RegisterJobs(scheduler *Scheduler) {
	// the index is built at startup, so the first rebuild waits a full interval
	scheduler.AddJob(Job{
		Name:         "rebuild_open_row_index",
		Interval:     j.rebuildInterval,
		Fn:           j.RebuildOpenRowIndex,
		SkipFirstRun: true,
	})
	scheduler.AddJob(Job{
		Name:     "report_stale_shifts",
		Interval: staleReportInterval,
		Fn:       j.ReportStaleShifts,
	})
}

// RebuildOpenRowIndex picks up rows written by other writers of the document.
func (j *ShiftJobs) RebuildOpenRowIndex(ctx context.Context) error {
	return j.shiftService.RebuildIndex(ctx)
}

// ReportStaleShifts logs shifts nobody closed. Nothing is written back: a
// manager fixes the sheet by hand.
func (j *ShiftJobs) ReportStaleShifts(ctx context.Context) error {
	stale, err := j.shiftService.StaleShifts(ctx)
	if err != nil {
		return err
	}

	for _, s := range stale {
		slog.Warn("Cron: Stale shift needs attention",
			"staff_name", s.StaffName,
			"date", s.Date,
			"sign_in", s.SignIn,
			"status", s.Status,
			"row", s.Row,
			"reason", s.Reason,
		)
	}
	if len(stale) > 0 {
		slog.Info("Cron: Stale shift report finished", "count", len(stale))
	}
	return nil
}
