// Package bootstrap wires configuration into the row store, repositories and
// services shared by the server and the operator CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/config"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/rowstore"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/spreadsheet"
	shiftService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/shift"
	staffService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/staff"
)

// Store is the guarded row store plus what is known about where it lives.
type Store struct {
	rowstore.Store

	Driver     string
	DocumentID string
	Account    string
	Layout     spreadsheet.Layout

	closeFn func()
}

func (s *Store) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

// OpenStore connects the configured backend, wraps it with the timeout and
// rate limit, and makes sure the fixed sheets exist.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	s := &Store{
		Driver: cfg.Store.Driver,
		Layout: spreadsheet.Layout{
			Roster:    cfg.Sheets.Roster,
			Dashboard: cfg.Sheets.Dashboard,
			Breaks:    cfg.Sheets.Breaks,
		},
	}

	var backend rowstore.Store
	switch cfg.Store.Driver {
	case config.DriverSheets:
		account, err := oauth.LoadServiceAccount(cfg.Google.Credentials, cfg.Google.CredentialsFile)
		if err != nil {
			return nil, err
		}
		srv, err := account.SheetsService(ctx)
		if err != nil {
			return nil, err
		}
		backend = rowstore.NewSheetsStore(srv, cfg.Google.SpreadsheetID)
		s.DocumentID = cfg.Google.SpreadsheetID
		s.Account = account.ClientEmail
	case config.DriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("error connecting to database: %w", err)
		}
		backend, err = postgresql.NewRowStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		s.DocumentID = cfg.Database.Name
		s.closeFn = db.Close
	case config.DriverMemory:
		backend = rowstore.NewMemoryStore()
		s.DocumentID = "memory"
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}

	s.Store = rowstore.Guard(backend, cfg.Store.Timeout, rowstore.PerMinute(cfg.Store.RatePerMinute))
	if err := spreadsheet.EnsureWorkbook(ctx, s.Store, s.Layout); err != nil {
		s.Close()
		return nil, err
	}

	slog.Info("Row store ready", "driver", s.Driver, "document", s.DocumentID, "account", s.Account)
	return s, nil
}

type Services struct {
	Staff staff.StaffService
	Shift shift.ShiftService
}

// NewServices builds the repositories over store and the services on top.
func NewServices(store rowstore.Store, layout spreadsheet.Layout, clk clock.Clock, cfg *config.Config) Services {
	rosterRepo := spreadsheet.NewRosterRepository(store, layout)
	dashboardRepo := spreadsheet.NewDashboardRepository(store, layout)
	timesheetRepo := spreadsheet.NewTimesheetRepository(store)
	breakRepo := spreadsheet.NewBreakRepository(store, layout)

	staffSvc := staffService.NewStaffService(rosterRepo, timesheetRepo, layout.Titles())
	shiftSvc := shiftService.NewShiftService(
		staffSvc,
		dashboardRepo,
		timesheetRepo,
		breakRepo,
		clk,
		shiftService.Config{MaxShiftDuration: cfg.Shift.MaxShiftDuration},
	)
	return Services{Staff: staffSvc, Shift: shiftSvc}
}
