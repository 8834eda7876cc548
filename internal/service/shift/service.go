package shift

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/clock"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type Config struct {
	// MaxShiftDuration is how long a shift may stay open before the stale
	// sweep reports it.
	MaxShiftDuration time.Duration
}

type ShiftServiceImpl struct {
	roster     staff.StaffService
	dashboard  shift.DashboardRepository
	timesheets shift.TimesheetRepository
	breaks     shift.BreakRepository
	clock      clock.Clock
	cfg        Config

	index *openIndex
	locks *nameLocks

	// Transitions hold rebuildMu for reading; a rebuild takes it exclusively
	// so it never overwrites an entry a transition has just updated.
	rebuildMu sync.RWMutex
	rebuilds  singleflight.Group
}

// ResolveCurrentStatus implements shift.ShiftService.
func (s *ShiftServiceImpl) ResolveCurrentStatus(ctx context.Context) ([]shift.StatusView, error) {
	var (
		members []staff.Staff
		events  []shift.ShiftEvent
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = s.roster.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = s.dashboard.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolveStatuses(members, events, clock.DateOf(s.clock.Now())), nil
}

// StatusFor implements shift.ShiftService.
func (s *ShiftServiceImpl) StatusFor(ctx context.Context, name string) (shift.StatusView, error) {
	member, err := s.member(ctx, name)
	if err != nil {
		return shift.StatusView{}, err
	}
	events, err := s.dashboard.List(ctx)
	if err != nil {
		return shift.StatusView{}, err
	}
	return resolveStatuses([]staff.Staff{member}, events, clock.DateOf(s.clock.Now()))[0], nil
}

// resolveStatuses derives one view per roster entry. The log is scanned from
// the newest row backwards and only the first today-dated row of each name
// counts.
func resolveStatuses(members []staff.Staff, events []shift.ShiftEvent, today clock.Date) []shift.StatusView {
	latest := make(map[string]shift.ShiftEvent)
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		if e.StaffName == "" || e.Day != today {
			continue
		}
		if _, seen := latest[e.StaffName]; seen {
			continue
		}
		latest[e.StaffName] = e
	}

	views := make([]shift.StatusView, len(members))
	for i, m := range members {
		view := shift.StatusView{
			Name:       m.Name,
			Department: m.Department,
			Status:     shift.StateClockedOut,
		}
		if e, ok := latest[m.Name]; ok {
			if state, known := e.State(); known && state != shift.StateClockedOut {
				view.Status = state
				view.SignInTime = e.SignIn
			}
		}
		views[i] = view
	}
	return views
}

// RebuildIndex implements shift.ShiftService.
func (s *ShiftServiceImpl) RebuildIndex(ctx context.Context) error {
	_, err, _ := s.rebuilds.Do("rebuild", func() (interface{}, error) {
		s.rebuildMu.Lock()
		defer s.rebuildMu.Unlock()

		today := clock.DateOf(s.clock.Now())
		events, breaks, err := s.readLogs(ctx)
		if err != nil {
			s.index.invalidate()
			return nil, fmt.Errorf("failed to rebuild open-row index: %w", err)
		}
		s.index.load(today, buildEntries(events, breaks, today))
		slog.Debug("Open-row index rebuilt", "date", today.String(), "entries", s.index.size())
		return nil, nil
	})
	return err
}

func (s *ShiftServiceImpl) ensureIndex(ctx context.Context, today clock.Date) error {
	if s.index.complete(today) {
		return nil
	}
	return s.RebuildIndex(ctx)
}

func (s *ShiftServiceImpl) readLogs(ctx context.Context) ([]shift.ShiftEvent, []shift.BreakEvent, error) {
	var (
		events []shift.ShiftEvent
		breaks []shift.BreakEvent
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.dashboard.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		breaks, err = s.breaks.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return events, breaks, nil
}

// rescan recomputes one name's entry from a full read of both logs.
func (s *ShiftServiceImpl) rescan(ctx context.Context, name string, today clock.Date) (indexEntry, bool, error) {
	events, breaks, err := s.readLogs(ctx)
	if err != nil {
		return indexEntry{}, false, err
	}
	entry, ok := buildEntries(events, breaks, today)[name]
	if ok {
		s.index.put(today, name, entry)
	} else {
		s.index.drop(today, name)
	}
	return entry, ok, nil
}

// activeShift is what a transition knows about a person's day before it writes.
type activeShift struct {
	entry    indexEntry
	event    shift.ShiftEvent
	hasShift bool
	brk      shift.BreakEvent
	hasBreak bool
	// scanned is set once the entry came from a full read of the logs.
	scanned bool
}

// findShift locates today's newest dashboard row for name. The indexed row
// is re-read and checked before it is trusted; a stale entry triggers a
// rescan. A miss is trusted only when rescanOnMiss is false.
func (s *ShiftServiceImpl) findShift(ctx context.Context, name string, today clock.Date, rescanOnMiss bool) (activeShift, error) {
	var cur activeShift
	entry, ok := s.index.get(today, name)
	for {
		if (!ok || entry.ShiftRow == 0) && (!rescanOnMiss || cur.scanned) {
			cur.entry = entry
			return cur, nil
		}
		if ok && entry.ShiftRow > 0 {
			e, err := s.dashboard.Get(ctx, entry.ShiftRow)
			if err != nil {
				return cur, err
			}
			if e.StaffName == name && e.Day == today {
				entry.ShiftStatus = e.Status
				cur.entry, cur.event, cur.hasShift = entry, e, true
				return cur, nil
			}
			if cur.scanned {
				cur.entry = indexEntry{}
				return cur, nil
			}
			slog.Warn("Open-row index entry is stale, rescanning",
				"staff", name, "row", entry.ShiftRow, "found_name", e.StaffName, "found_date", e.Date)
		}

		var err error
		entry, ok, err = s.rescan(ctx, name, today)
		if err != nil {
			return cur, err
		}
		cur.scanned = true
	}
}

// findBreak fills in today's open break for name. A stale or missing break
// row is rescanned when the shift says the person is on a break or when
// rescanOnMiss is set.
func (s *ShiftServiceImpl) findBreak(ctx context.Context, cur activeShift, name string, today clock.Date, rescanOnMiss bool) (activeShift, error) {
	for {
		if cur.entry.BreakRow > 0 {
			b, err := s.breaks.Get(ctx, cur.entry.BreakRow)
			if err != nil {
				return cur, err
			}
			if b.StaffName == name && b.Day == today && b.IsOpen() {
				cur.brk, cur.hasBreak = b, true
				return cur, nil
			}
		}
		expectBreak := rescanOnMiss || cur.event.Status == shift.StatusOnBreak
		if cur.scanned || !expectBreak {
			cur.entry.BreakRow = 0
			return cur, nil
		}

		entry, _, err := s.rescan(ctx, name, today)
		if err != nil {
			return cur, err
		}
		entry.ShiftStatus = cur.entry.ShiftStatus
		cur.entry, cur.scanned = entry, true
	}
}

// member resolves name against the roster; unknown names never reach the logs.
func (s *ShiftServiceImpl) member(ctx context.Context, name string) (staff.Staff, error) {
	m, err := s.roster.FindByName(ctx, name)
	if errors.Is(err, staff.ErrStaffNotFound) {
		return staff.Staff{}, shift.ErrUnknownStaff
	}
	if err != nil {
		return staff.Staff{}, err
	}
	return m, nil
}

// begin runs the checks shared by every transition and takes the locks the
// transition holds until it returns.
func (s *ShiftServiceImpl) begin(ctx context.Context, req *shift.ClockRequest) (staff.Staff, func(), error) {
	if err := req.Validate(); err != nil {
		return staff.Staff{}, nil, err
	}
	m, err := s.member(ctx, req.StaffName)
	if err != nil {
		return staff.Staff{}, nil, err
	}
	if err := s.ensureIndex(ctx, clock.DateOf(s.clock.Now())); err != nil {
		return staff.Staff{}, nil, err
	}

	s.rebuildMu.RLock()
	unlock := s.locks.lock(m.Name)
	return m, func() {
		unlock()
		s.rebuildMu.RUnlock()
	}, nil
}

func NewShiftService(
	roster staff.StaffService,
	dashboard shift.DashboardRepository,
	timesheets shift.TimesheetRepository,
	breaks shift.BreakRepository,
	clk clock.Clock,
	cfg Config,
) shift.ShiftService {
	return &ShiftServiceImpl{
		roster:     roster,
		dashboard:  dashboard,
		timesheets: timesheets,
		breaks:     breaks,
		clock:      clk,
		cfg:        cfg,
		index:      newOpenIndex(),
		locks:      newNameLocks(),
	}
}
