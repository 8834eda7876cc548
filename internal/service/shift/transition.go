package shift

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/spreadsheet"
)

// ClockIn implements shift.ShiftService.
func (s *ShiftServiceImpl) ClockIn(ctx context.Context, req shift.ClockRequest) (shift.ActionResult, error) {
	member, release, err := s.begin(ctx, &req)
	if err != nil {
		return shift.ActionResult{}, err
	}
	defer release()

	now := s.clock.Now()
	today := clock.DateOf(now)

	entries, err := s.timesheets.List(ctx, member.Name)
	if err != nil {
		return shift.ActionResult{}, err
	}
	open := openTimesheetRow(entries, today)

	cur, err := s.findShift(ctx, member.Name, today, open != nil)
	if err != nil {
		return shift.ActionResult{}, err
	}
	if cur.hasShift {
		switch {
		case cur.event.IsOpen():
			return shift.ActionResult{}, shift.ErrAlreadyClockedIn
		case cur.event.IsTerminal():
			return shift.ActionResult{}, shift.ErrShiftFinished
		}
	}

	date, signIn := clock.FormatDate(now), clock.FormatTime(now)
	var dashRow int

	plan := newPlan("clock-in", member.Name)
	if open != nil {
		// an earlier attempt stopped after the timesheet write
		slog.Warn("Timesheet shift has no dashboard row, completing clock-in",
			"staff", member.Name, "timesheet_row", open.Row)
		signIn = open.SignIn
	} else {
		plan.add("provision timesheet", func(ctx context.Context) error {
			return s.timesheets.Provision(ctx, member.Name)
		})
		plan.add("append timesheet row", func(ctx context.Context) error {
			_, err := s.timesheets.Append(ctx, member, shift.TimesheetEntry{Date: date, SignIn: signIn})
			return err
		})
	}
	plan.add("append dashboard row", func(ctx context.Context) error {
		var err error
		dashRow, err = s.dashboard.Append(ctx, shift.ShiftEvent{
			Date:       date,
			StaffName:  member.Name,
			Department: member.Department,
			Position:   member.Position,
			SignIn:     signIn,
			HourlyWage: spreadsheet.FormatWage(member.HourlyWage),
			Status:     shift.StatusWorking,
		})
		return err
	})
	if err := plan.execute(ctx); err != nil {
		return shift.ActionResult{}, err
	}

	s.index.put(today, member.Name, indexEntry{ShiftRow: dashRow, ShiftStatus: shift.StatusWorking})
	return shift.ActionResult{
		Message: fmt.Sprintf("Clocked in at %s", signIn),
		Time:    signIn,
	}, nil
}

// TakeBreak implements shift.ShiftService.
func (s *ShiftServiceImpl) TakeBreak(ctx context.Context, req shift.ClockRequest) (shift.ActionResult, error) {
	member, release, err := s.begin(ctx, &req)
	if err != nil {
		return shift.ActionResult{}, err
	}
	defer release()

	now := s.clock.Now()
	today := clock.DateOf(now)

	cur, err := s.findShift(ctx, member.Name, today, true)
	if err != nil {
		return shift.ActionResult{}, err
	}
	if !cur.hasShift || !cur.event.IsOpen() {
		return shift.ActionResult{}, shift.ErrNoActiveShift
	}
	if cur.event.Status == shift.StatusOnBreak {
		return shift.ActionResult{}, shift.ErrAlreadyOnBreak
	}
	// a signed-out timesheet means a clock-out is still being completed
	entries, err := s.timesheets.List(ctx, member.Name)
	if err != nil {
		return shift.ActionResult{}, err
	}
	if openTimesheetRow(entries, today) == nil {
		return shift.ActionResult{}, shift.ErrNoActiveShift
	}
	cur, err = s.findBreak(ctx, cur, member.Name, today, false)
	if err != nil {
		return shift.ActionResult{}, err
	}

	start := clock.FormatTime(now)
	breakRow := cur.entry.BreakRow

	plan := newPlan("take-break", member.Name)
	if cur.hasBreak {
		// left open by an earlier attempt that stopped before the status write
		start = cur.brk.BreakStart
	} else {
		plan.add("open break", func(ctx context.Context) error {
			var err error
			breakRow, err = s.breaks.Append(ctx, shift.BreakEvent{
				Date:       clock.FormatDate(now),
				StaffName:  member.Name,
				Department: member.Department,
				BreakStart: start,
			})
			return err
		})
	}
	plan.add("set status on a break", func(ctx context.Context) error {
		return s.dashboard.SetStatus(ctx, cur.event.Row, shift.StatusOnBreak, "")
	})
	if err := plan.execute(ctx); err != nil {
		if breakRow > 0 {
			cur.entry.BreakRow = breakRow
			s.index.put(today, member.Name, cur.entry)
		}
		return shift.ActionResult{}, err
	}

	cur.entry.ShiftStatus = shift.StatusOnBreak
	cur.entry.BreakRow = breakRow
	s.index.put(today, member.Name, cur.entry)
	return shift.ActionResult{
		Message: fmt.Sprintf("Started break at %s", start),
		Time:    start,
	}, nil
}

// ReturnFromBreak implements shift.ShiftService.
func (s *ShiftServiceImpl) ReturnFromBreak(ctx context.Context, req shift.ClockRequest) (shift.ActionResult, error) {
	member, release, err := s.begin(ctx, &req)
	if err != nil {
		return shift.ActionResult{}, err
	}
	defer release()

	now := s.clock.Now()
	today := clock.DateOf(now)
	end := clock.FormatTime(now)

	cur, err := s.findShift(ctx, member.Name, today, true)
	if err != nil {
		return shift.ActionResult{}, err
	}
	cur, err = s.findBreak(ctx, cur, member.Name, today, true)
	if err != nil {
		return shift.ActionResult{}, err
	}

	resumable := cur.hasShift && cur.event.IsOpen()
	if !cur.hasBreak && !(resumable && cur.event.Status == shift.StatusOnBreak) {
		return shift.ActionResult{}, shift.ErrNoActiveBreak
	}

	minutes := 0
	total := cur.entry.BreakMinutes
	plan := newPlan("return-break", member.Name)
	if cur.hasBreak {
		minutes = breakMinutes(cur.brk, now)
		total += minutes
		plan.add("close break", func(ctx context.Context) error {
			return s.breaks.Close(ctx, cur.brk.Row, end, minutes)
		})
	} else {
		slog.Warn("On a break with no open break row, resuming shift only",
			"staff", member.Name, "row", cur.event.Row)
	}
	if resumable {
		plan.add("set status working", func(ctx context.Context) error {
			return s.dashboard.SetStatus(ctx, cur.event.Row, shift.StatusWorking, breakNotes(total))
		})
	}
	if err := plan.execute(ctx); err != nil {
		s.index.invalidate()
		return shift.ActionResult{}, err
	}

	cur.entry.BreakRow = 0
	cur.entry.BreakMinutes = total
	if resumable {
		cur.entry.ShiftStatus = shift.StatusWorking
	}
	s.index.put(today, member.Name, cur.entry)
	return shift.ActionResult{
		Message:       fmt.Sprintf("Returned from break after %d min", minutes),
		Time:          end,
		BreakDuration: &minutes,
	}, nil
}

// ClockOut implements shift.ShiftService.
func (s *ShiftServiceImpl) ClockOut(ctx context.Context, req shift.ClockRequest) (shift.ActionResult, error) {
	member, release, err := s.begin(ctx, &req)
	if err != nil {
		return shift.ActionResult{}, err
	}
	defer release()

	now := s.clock.Now()
	today := clock.DateOf(now)
	signOut := clock.FormatTime(now)

	entries, err := s.timesheets.List(ctx, member.Name)
	if err != nil {
		return shift.ActionResult{}, err
	}
	open := openTimesheetRow(entries, today)

	cur, err := s.findShift(ctx, member.Name, today, true)
	if err != nil {
		return shift.ActionResult{}, err
	}
	dashOpen := cur.hasShift && cur.event.IsOpen()
	if open == nil && !dashOpen {
		return shift.ActionResult{}, shift.ErrNoOpenShift
	}
	if open == nil {
		// an earlier attempt signed out the timesheet and stopped
		if prev := signedOutToday(entries, today); prev != nil {
			signOut = prev.SignOut
		}
		slog.Warn("Dashboard shift still open after timesheet sign-out, completing clock-out",
			"staff", member.Name, "row", cur.event.Row)
	}
	cur, err = s.findBreak(ctx, cur, member.Name, today, false)
	if err != nil {
		return shift.ActionResult{}, err
	}

	var result shift.ActionResult
	total := cur.entry.BreakMinutes
	plan := newPlan("clock-out", member.Name)
	if cur.hasBreak {
		minutes := breakMinutes(cur.brk, now)
		total += minutes
		result.BreakDuration = &minutes
		plan.add("close break", func(ctx context.Context) error {
			return s.breaks.Close(ctx, cur.brk.Row, signOut, minutes)
		})
	}
	if open != nil {
		plan.add("sign out timesheet", func(ctx context.Context) error {
			return s.timesheets.SetSignOut(ctx, member.Name, open.Row, signOut)
		})
	}
	if dashOpen {
		plan.add("finish dashboard row", func(ctx context.Context) error {
			return s.dashboard.Finish(ctx, cur.event.Row, signOut, breakNotes(total))
		})
	} else {
		slog.Warn("Timesheet shift has no open dashboard row, signing out timesheet only",
			"staff", member.Name, "timesheet_row", open.Row)
	}
	if err := plan.execute(ctx); err != nil {
		s.index.invalidate()
		return shift.ActionResult{}, err
	}

	if cur.hasShift {
		cur.entry.ShiftStatus = shift.StatusFinished
	}
	cur.entry.BreakRow = 0
	cur.entry.BreakMinutes = total
	s.index.put(today, member.Name, cur.entry)

	result.Message = fmt.Sprintf("Clocked out at %s", signOut)
	result.Time = signOut
	return result, nil
}

// openTimesheetRow returns today's latest open timesheet row, or nil.
func openTimesheetRow(entries []shift.TimesheetEntry, today clock.Date) *shift.TimesheetEntry {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Day == today && entries[i].IsOpen() {
			return &entries[i]
		}
	}
	return nil
}

func signedOutToday(entries []shift.TimesheetEntry, today clock.Date) *shift.TimesheetEntry {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Day == today && entries[i].SignOut != "" {
			return &entries[i]
		}
	}
	return nil
}

// breakMinutes is the time-of-day distance from the break's start to now.
// An unreadable start counts as zero.
func breakMinutes(b shift.BreakEvent, now time.Time) int {
	minutes, ok := clock.SinceOfDay(b.BreakStart, now)
	if !ok {
		slog.Warn("Unreadable break start, recording zero minutes", "staff", b.StaffName, "row", b.Row, "start", b.BreakStart)
		return 0
	}
	return minutes
}

// breakNotes is display text for the dashboard's notes cell. It is never
// read back; the break log is the record.
func breakNotes(total int) string {
	if total <= 0 {
		return ""
	}
	return fmt.Sprintf("Breaks: %d min", total)
}
