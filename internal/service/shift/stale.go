package shift

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/clock"
)

// StaleShifts implements shift.ShiftService. Rows are reported, never
// closed: an operator decides how to reconcile them.
func (s *ShiftServiceImpl) StaleShifts(ctx context.Context) ([]shift.StaleShift, error) {
	events, err := s.dashboard.List(ctx)
	if err != nil {
		return nil, err
	}
	return staleShifts(events, s.clock.Now(), s.cfg.MaxShiftDuration), nil
}

// staleShifts lists open dashboard rows that are from an earlier day, have
// been open longer than maxShift, or duplicate a newer open row for the
// same person and day. Output is in sheet order.
func staleShifts(events []shift.ShiftEvent, now time.Time, maxShift time.Duration) []shift.StaleShift {
	today := clock.DateOf(now)
	seenOpen := make(map[string]bool)

	var stale []shift.StaleShift
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		if e.StaffName == "" || !e.IsOpen() {
			continue
		}

		key := e.Date + "|" + e.StaffName
		if !e.Day.IsZero() {
			key = e.Day.String() + "|" + e.StaffName
		}
		if seenOpen[key] {
			stale = append(stale, reportStale(e, "duplicate open row for the same day"))
			continue
		}
		seenOpen[key] = true

		switch {
		case e.Day.IsZero():
			stale = append(stale, reportStale(e, "unreadable date"))
		case e.Day.Before(today):
			stale = append(stale, reportStale(e, "open since an earlier day"))
		case maxShift > 0:
			minutes, ok := clock.SinceOfDay(e.SignIn, now)
			if ok && time.Duration(minutes)*time.Minute > maxShift {
				stale = append(stale, reportStale(e, fmt.Sprintf("open for more than %s", maxShift)))
			}
		}
	}

	sort.Slice(stale, func(i, j int) bool { return stale[i].Row < stale[j].Row })
	return stale
}

func reportStale(e shift.ShiftEvent, reason string) shift.StaleShift {
	return shift.StaleShift{
		StaffName: e.StaffName,
		Date:      e.Date,
		SignIn:    e.SignIn,
		Status:    e.Status,
		Row:       e.Row,
		Reason:    reason,
	}
}
