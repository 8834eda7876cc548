package staff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/rowstore"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
	"github.com/patrickmn/go-cache"
)

const (
	rosterCacheKey = "roster"
	rosterCacheTTL = 30 * time.Second
)

type StaffServiceImpl struct {
	staff.StaffRepository
	timesheets shift.TimesheetRepository
	// reserved are the fixed sheet titles no timesheet may take.
	reserved []string

	cache *cache.Cache
	// mu serializes roster writes so duplicate checks see each other.
	mu sync.Mutex
}

// List implements staff.StaffService.
func (s *StaffServiceImpl) List(ctx context.Context) ([]staff.Staff, error) {
	if cached, ok := s.cache.Get(rosterCacheKey); ok {
		return slices.Clone(cached.([]staff.Staff)), nil
	}
	members, err := s.StaffRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	s.cache.SetDefault(rosterCacheKey, members)
	return slices.Clone(members), nil
}

// FindByName implements staff.StaffService.
func (s *StaffServiceImpl) FindByName(ctx context.Context, name string) (staff.Staff, error) {
	members, err := s.List(ctx)
	if err != nil {
		return staff.Staff{}, err
	}
	if m, ok := findByName(members, strings.TrimSpace(name)); ok {
		return m, nil
	}
	return staff.Staff{}, staff.ErrStaffNotFound
}

// Add implements staff.StaffService.
func (s *StaffServiceImpl) Add(ctx context.Context, req staff.AddStaffRequest) (staff.StaffResponse, error) {
	if err := req.Validate(); err != nil {
		return staff.StaffResponse{}, err
	}
	if err := s.checkReserved(req.Name); err != nil {
		return staff.StaffResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := s.fresh(ctx)
	if err != nil {
		return staff.StaffResponse{}, err
	}
	if _, taken := findByNameFold(members, req.Name, 0); taken {
		return staff.StaffResponse{}, staff.ErrStaffExists
	}

	member := req.ToStaff()
	if err := s.StaffRepository.Append(ctx, member); err != nil {
		return staff.StaffResponse{}, err
	}
	s.cache.Delete(rosterCacheKey)

	if err := s.timesheets.Provision(ctx, member.Name); err != nil {
		slog.Error("Roster entry added but timesheet was not provisioned",
			"staff", member.Name, "reconcile_required", true, "error", err)
		return staff.StaffResponse{}, err
	}

	slog.Info("Staff member added", "staff", member.Name, "department", member.Department)
	return staff.ToResponse(member), nil
}

// Update implements staff.StaffService.
func (s *StaffServiceImpl) Update(ctx context.Context, req staff.UpdateStaffRequest) (staff.StaffResponse, error) {
	if err := req.Validate(); err != nil {
		return staff.StaffResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := s.fresh(ctx)
	if err != nil {
		return staff.StaffResponse{}, err
	}
	current, ok := findByName(members, req.OldName)
	if !ok {
		return staff.StaffResponse{}, staff.ErrStaffNotFound
	}
	member := req.Apply(current)
	if member.Name != current.Name {
		if err := s.checkReserved(member.Name); err != nil {
			return staff.StaffResponse{}, err
		}
		if _, taken := findByNameFold(members, member.Name, current.Row); taken {
			return staff.StaffResponse{}, staff.ErrStaffExists
		}
	}

	if err := s.StaffRepository.Update(ctx, member); err != nil {
		return staff.StaffResponse{}, err
	}
	s.cache.Delete(rosterCacheKey)

	if err := s.syncTimesheet(ctx, current.Name, member.Name); err != nil {
		slog.Error("Roster entry updated but timesheet is out of step",
			"staff", member.Name, "previous_name", current.Name, "reconcile_required", true, "error", err)
		return staff.StaffResponse{}, err
	}

	slog.Info("Staff member updated", "staff", member.Name, "previous_name", current.Name)
	return staff.ToResponse(member), nil
}

// syncTimesheet makes sure a timesheet titled newName exists after an update,
// carrying over the old sheet when the member was renamed.
func (s *StaffServiceImpl) syncTimesheet(ctx context.Context, oldName, newName string) error {
	if oldName == newName {
		return s.timesheets.Provision(ctx, newName)
	}
	exists, err := s.timesheets.Exists(ctx, oldName)
	if err != nil {
		return err
	}
	if !exists {
		return s.timesheets.Provision(ctx, newName)
	}
	err = s.timesheets.Rename(ctx, oldName, newName)
	if errors.Is(err, rowstore.ErrSheetExists) {
		slog.Warn("Timesheet for the new name already exists, keeping both sheets",
			"staff", newName, "previous_name", oldName)
		return nil
	}
	return err
}

// fresh bypasses the cache; writers must decide on current data.
func (s *StaffServiceImpl) fresh(ctx context.Context) ([]staff.Staff, error) {
	s.cache.Delete(rosterCacheKey)
	return s.List(ctx)
}

func (s *StaffServiceImpl) checkReserved(name string) error {
	if !validator.IsReservedName(name, s.reserved) {
		return nil
	}
	return validator.ValidationErrors{{
		Field:   "name",
		Message: "name is used by a workbook sheet, choose another",
	}}
}

// findByNameFold matches name ignoring case, skipping the entry at skipRow.
// Timesheet titles collide the same way.
func findByNameFold(members []staff.Staff, name string, skipRow int) (staff.Staff, bool) {
	for _, m := range members {
		if m.Row != skipRow && strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return staff.Staff{}, false
}

func findByName(members []staff.Staff, name string) (staff.Staff, bool) {
	for _, m := range members {
		if m.Name == name {
			return m, true
		}
	}
	return staff.Staff{}, false
}

// NewStaffService builds the roster service. reserved lists sheet titles
// that no staff name may take.
func NewStaffService(repo staff.StaffRepository, timesheets shift.TimesheetRepository, reserved []string) staff.StaffService {
	return &StaffServiceImpl{
		StaffRepository: repo,
		timesheets:      timesheets,
		reserved:        reserved,
		cache:           cache.New(rosterCacheTTL, 2*rosterCacheTTL),
	}
}
