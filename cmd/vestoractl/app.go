package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"

	"vestora/internal/config"
	"vestora/internal/database"
	"vestora/internal/reconcile"
	"vestora/internal/server"
	"vestora/internal/services"
)

// app holds the components a command works with.
type app struct {
	currency   string
	status     string
	balances   services.BalanceServicer
	dashboard  services.DashboardServicer
	reconciler *reconcile.Reconciler
	close      func() error
}

// openApp loads the configuration and connects to the record store the
// same way the API server does.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load database configuration: %w", err)
	}
	manager, err := database.NewManager(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}

	st, status := server.NewStore(cfg, manager.DB())
	balances := services.NewBalanceService(st, st)

	return &app{
		currency:   cfg.Currency,
		status:     status,
		balances:   balances,
		dashboard:  services.NewDashboardService(st, st),
		reconciler: reconcile.New(st, balances),
		close:      manager.Close,
	}, nil
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}
