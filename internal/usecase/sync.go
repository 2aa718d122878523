package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"revrec/internal/ports"
)

// SyncUseCase coordinates pulling records from the CRM and persisting them.
type SyncUseCase struct {
	Log   *slog.Logger
	CRM   ports.CRMClient
	Store ports.Store
}

// Run pulls entities, billing lines and the year's hour records from the CRM
// and upserts them into the store. Any fetch or persistence error aborts the
// sync and propagates.
func (uc *SyncUseCase) Run(ctx context.Context, year int) error {
	if uc.CRM == nil || uc.Store == nil {
		return errors.New("usecase not initialized: missing dependencies")
	}

	entities, err := uc.CRM.ListEntities(ctx)
	if err != nil {
		return err
	}
	uc.Log.Info("fetched entities", slog.Int("count", len(entities)))
	if err := uc.Store.UpsertEntities(ctx, entities); err != nil {
		return err
	}

	lines, err := uc.CRM.ListBillingLines(ctx)
	if err != nil {
		return err
	}
	uc.Log.Info("fetched billing lines", slog.Int("count", len(lines)))
	if err := uc.Store.UpsertBillingLines(ctx, lines); err != nil {
		return err
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	records, err := uc.CRM.ListHourRecords(ctx, from, to)
	if err != nil {
		return err
	}
	uc.Log.Info("fetched hour records", slog.Int("count", len(records)), slog.Int("year", year))
	if err := uc.Store.UpsertHourRecords(ctx, records); err != nil {
		return err
	}

	uc.Log.Info("sync completed", slog.Int("year", year))
	return nil
}
