package engine

import (
	"log/slog"
	"time"

	"revrec/internal/domain"
)

// Input carries everything one allocation run needs for a single entity.
// Hours come pre-grouped by month; Budget is the entity-scoped accumulator
// from ResolveBudget and is consumed (mutated) by the fixed-price strategy.
type Input struct {
	Hours  map[time.Month][]domain.HourRecord
	Budget *Budget
	// Prior is the manually entered prior-period consumption, nil when none
	// was recorded. Only the fixed-price strategy uses it.
	Prior *domain.PriorConsumption
}

// Strategy converts one entity's grouped hours into a monthly series.
type Strategy interface {
	Allocate(in Input) domain.MonthlySeries
}

// ForType selects the allocation strategy for a billing type. CostPlus and
// Contract share the uncapped per-rate algorithm; Internal and InvalidTag
// count hours but never recognize revenue.
func ForType(t domain.BillingType, log *slog.Logger) Strategy {
	switch t {
	case domain.TypeFixedPrice:
		return &fixedPriceStrategy{log: log}
	case domain.TypeCostPlus, domain.TypeContract:
		return &rateStrategy{log: log}
	case domain.TypeInternal, domain.TypeInvalidTag:
		return zeroStrategy{}
	default:
		return zeroStrategy{}
	}
}

// zeroStrategy totals hours per month with revenue pinned to zero.
type zeroStrategy struct{}

func (zeroStrategy) Allocate(in Input) domain.MonthlySeries {
	var series domain.MonthlySeries
	for m := time.January; m <= time.December; m++ {
		for _, hr := range in.Hours[m] {
			series.AddHours(m, hr.Quantity)
		}
	}
	return series
}
