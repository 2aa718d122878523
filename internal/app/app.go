package app

import (
	"context"
	"log/slog"

	msql "revrec/internal/adapter/mysql"
	"revrec/internal/adapter/simplicate"
	"revrec/internal/config"
	"revrec/internal/migrate"
	"revrec/internal/usecase"
)

// App wires adapters and use cases.
type App struct {
	log     *slog.Logger
	store   *msql.Store
	sync    *usecase.SyncUseCase
	revenue *usecase.RevenueUseCase
}

func New(log *slog.Logger, cfg config.Config) (*App, error) {
	crm := simplicate.NewClient(cfg.Simplicate.BaseURL, cfg.Simplicate.APIKey, cfg.Simplicate.APISecret, log)
	// Run migrations before opening the store for use
	if err := migrate.Run(context.Background(), cfg.MySQL.DSN, log); err != nil {
		return nil, err
	}
	store, err := msql.NewStore(context.Background(), cfg.MySQL.DSN, log)
	if err != nil {
		return nil, err
	}

	return &App{
		log:     log,
		store:   store,
		sync:    &usecase.SyncUseCase{Log: log, CRM: crm, Store: store},
		revenue: &usecase.RevenueUseCase{Log: log, Store: store},
	}, nil
}

// SyncOnce pulls one year's records from the CRM into the store.
func (a *App) SyncOnce(ctx context.Context, year int) error {
	return a.sync.Run(ctx, year)
}

// Close releases the store's database connections.
func (a *App) Close() error {
	return a.store.Close()
}
