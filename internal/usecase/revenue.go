package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"revrec/internal/domain"
	"revrec/internal/engine"
	"revrec/internal/ports"
)

// RevenueUseCase runs the allocation engine over the stored snapshot for a
// requested year. Entities are computed independently and share no mutable
// state, so they fan out across a bounded worker group.
type RevenueUseCase struct {
	Log   *slog.Logger
	Store ports.Store

	// Workers bounds the per-entity fan-out; defaults to 8 when zero.
	Workers int
}

// Compute classifies every entity and converts its logged hours into monthly
// recognized revenue. Data-quality issues degrade to zero values locally;
// store errors fail the whole request.
func (uc *RevenueUseCase) Compute(ctx context.Context, year int) ([]domain.EntityRevenue, error) {
	if uc.Store == nil {
		return nil, errors.New("usecase not initialized: missing dependencies")
	}

	entities, err := uc.Store.Entities(ctx)
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		uc.Log.Info("no entities found", slog.Int("year", year))
		return []domain.EntityRevenue{}, nil
	}
	linesByEntity, err := uc.Store.BillingLines(ctx)
	if err != nil {
		return nil, err
	}
	records, err := uc.Store.HourRecordsForYear(ctx, year)
	if err != nil {
		return nil, err
	}
	priors, err := uc.Store.PriorConsumption(ctx, year)
	if err != nil {
		return nil, err
	}

	grouped := engine.GroupHours(records, uc.Log)

	results := make([]domain.EntityRevenue, len(entities))
	g, _ := errgroup.WithContext(ctx)
	workers := uc.Workers
	if workers <= 0 {
		workers = 8
	}
	g.SetLimit(workers)
	for i, e := range entities {
		i, e := i, e
		g.Go(func() error {
			var prior *domain.PriorConsumption
			if p, ok := priors[e.Key()]; ok {
				prior = &p
			}
			results[i] = uc.computeEntity(e, linesByEntity[e.Key()], grouped[e.Key()], prior)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Origin != results[j].Origin {
			return results[i].Origin < results[j].Origin
		}
		return results[i].EntityID < results[j].EntityID
	})
	return results, nil
}

// Overview aggregates all entities' series for the year and compares the
// totals against manually recorded monthly targets.
func (uc *RevenueUseCase) Overview(ctx context.Context, year int) (domain.YearOverview, error) {
	results, err := uc.Compute(ctx, year)
	if err != nil {
		return domain.YearOverview{}, err
	}
	targets, err := uc.Store.MonthlyTargets(ctx, year)
	if err != nil {
		return domain.YearOverview{}, err
	}
	return engine.Aggregate(year, results, targets), nil
}

func (uc *RevenueUseCase) computeEntity(e domain.Entity, lines []domain.BillingLine, hours map[time.Month][]domain.HourRecord, prior *domain.PriorConsumption) domain.EntityRevenue {
	billingType, display := engine.Classify(e)
	budget := engine.ResolveBudget(lines)
	series := engine.ForType(billingType, uc.Log).Allocate(engine.Input{
		Hours:  hours,
		Budget: budget,
		Prior:  prior,
	})

	result := domain.EntityRevenue{
		EntityID:    e.ID,
		Name:        e.Name,
		CompanyName: e.CompanyName,
		Origin:      e.Origin,
		BillingType: billingType,
		DisplayType: display,
		Series:      series,
	}
	if billingType == domain.TypeFixedPrice {
		total := budget.Total
		result.TotalBudget = &total
	}
	return result
}
