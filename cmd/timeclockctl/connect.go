package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/bootstrap"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/config"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/clock"
)

// openStore is swapped out by tests.
var openStore = bootstrap.OpenStore

type session struct {
	cfg      *config.Config
	store    *bootstrap.Store
	services bootstrap.Services
}

func (s *session) Close() { s.store.Close() }

// connect loads the configuration, opens the row store and builds the services.
func connect(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// keep stdout for command output
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open row store: %w", err)
	}
	return &session{
		cfg:      cfg,
		store:    store,
		services: bootstrap.NewServices(store, store.Layout, clock.New(cfg.App.Location), cfg),
	}, nil
}
