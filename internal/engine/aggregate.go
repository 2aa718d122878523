package engine

import (
	"github.com/shopspring/decimal"

	"revrec/internal/domain"
)

// Aggregate sums all entities' monthly series into an entity-independent
// total per month and compares it against manually recorded target/actual
// figures. Pure reduction; no business rules of its own.
func Aggregate(year int, results []domain.EntityRevenue, targets []domain.MonthlyTarget) domain.YearOverview {
	byMonth := make(map[int]domain.MonthlyTarget, len(targets))
	for _, t := range targets {
		byMonth[t.Month] = t
	}

	overview := domain.YearOverview{Year: year, Months: make([]domain.OverviewMonth, 12)}
	for i := range overview.Months {
		month := i + 1
		row := domain.OverviewMonth{
			Month:      month,
			Recognized: decimal.Zero,
			Target:     decimal.Zero,
			Actual:     decimal.Zero,
		}
		for _, r := range results {
			mt := r.Series[i]
			row.Hours += mt.Hours
			row.Recognized = row.Recognized.Add(mt.Revenue)
		}
		if t, ok := byMonth[month]; ok {
			row.Target = t.Target
			row.Actual = t.Actual
		}
		row.Variance = row.Recognized.Sub(row.Target)
		overview.Months[i] = row
	}
	return overview
}
