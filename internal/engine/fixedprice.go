package engine

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"revrec/internal/domain"
)

// fixedPriceStrategy recognizes revenue against a pre-agreed budget ceiling.
// Months are processed in ascending order so budget consumption is
// deterministic; once the remaining project budget hits zero, later hours
// recognize nothing but are still counted.
type fixedPriceStrategy struct {
	log *slog.Logger
}

// consumption records how many remaining-hours an hour drew from a line
// before the entity-level ceiling was applied.
type consumption struct {
	line  *LineState
	hours float64
}

func (s *fixedPriceStrategy) Allocate(in Input) domain.MonthlySeries {
	var series domain.MonthlySeries
	b := in.Budget

	// Only prior consumption is subtracted, never prior-year budget usage,
	// to avoid double counting against the same ceiling.
	remaining := b.Total.Sub(priorRevenue(in.Prior, b.Fallback))
	distributable := b.Distributable()

	for m := time.January; m <= time.December; m++ {
		assigned, unassigned := partitionByLine(in.Hours[m])

		for _, hr := range assigned {
			series.AddHours(m, hr.Quantity)
			if remaining.Sign() <= 0 {
				continue
			}
			ls, ok := b.Line(hr.LineID)
			if !ok {
				s.log.Warn("hour references unknown billing line",
					slog.String("hour_id", hr.ID),
					slog.String("line_id", hr.LineID),
				)
				continue
			}

			var nominal decimal.Decimal
			var used []consumption
			switch ls.Line.Basis {
			case domain.BasisNoCharge:
				continue
			case domain.BasisCostPlus:
				// Time-and-materials override: line rate, no per-line
				// ceiling check. The entity ceiling still applies.
				nominal = ls.Line.Rate.Mul(decimal.NewFromFloat(hr.Quantity))
			default:
				covered := min(hr.Quantity, ls.RemainingHours)
				spill := hr.Quantity - covered
				nominal = ls.Line.Rate.Mul(decimal.NewFromFloat(covered)).
					Add(b.Fallback.Mul(decimal.NewFromFloat(spill)))
				if covered > 0 {
					used = append(used, consumption{line: ls, hours: covered})
				}
			}
			remaining = s.recognize(&series, m, nominal, used, remaining)
		}

		for _, hr := range unassigned {
			series.AddHours(m, hr.Quantity)
			if remaining.Sign() <= 0 {
				continue
			}
			// Greedy distribution: larger-budget lines absorb first, then
			// overflow spills to the blended fallback rate.
			nominal := decimal.Zero
			var used []consumption
			left := hr.Quantity
			for _, ls := range distributable {
				if left <= 0 {
					break
				}
				take := min(left, ls.RemainingHours)
				if take <= 0 {
					continue
				}
				nominal = nominal.Add(ls.Line.Rate.Mul(decimal.NewFromFloat(take)))
				used = append(used, consumption{line: ls, hours: take})
				left -= take
			}
			if left > 0 {
				nominal = nominal.Add(b.Fallback.Mul(decimal.NewFromFloat(left)))
			}
			remaining = s.recognize(&series, m, nominal, used, remaining)
		}
	}
	return series
}

// recognize applies the entity-level ceiling to one hour's nominal revenue,
// books the actual amount and advances line consumption proportionally to the
// recognized fraction, so a capped hour only partially consumes its lines.
// Amounts are rounded to two decimals once per hour, never re-rounded later.
func (s *fixedPriceStrategy) recognize(series *domain.MonthlySeries, m time.Month, nominal decimal.Decimal, used []consumption, remaining decimal.Decimal) decimal.Decimal {
	if nominal.Sign() <= 0 {
		return remaining
	}
	capped := decimal.Min(nominal, remaining)
	actual := capped.Round(2)
	if actual.GreaterThan(remaining) {
		// Half-up rounding of a sub-cent remainder must not push the
		// recognized amount past the ceiling.
		actual = capped.RoundDown(2)
	}
	fraction := actual.Div(nominal).InexactFloat64()
	for _, c := range used {
		c.line.RemainingHours = max(0, c.line.RemainingHours-c.hours*fraction)
	}
	series.AddRevenue(m, actual)
	remaining = remaining.Sub(actual)
	if remaining.Sign() < 0 {
		remaining = decimal.Zero
	}
	return remaining
}

// priorRevenue converts a manual prior-consumption entry to money. Entries in
// hours convert at the blended fallback rate.
func priorRevenue(p *domain.PriorConsumption, fallback decimal.Decimal) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	if p.Unit == domain.UnitHours {
		return p.Amount.Mul(fallback)
	}
	return p.Amount
}

// partitionByLine splits a month's hours into line-assigned and unassigned,
// preserving input order within each group.
func partitionByLine(hours []domain.HourRecord) (assigned, unassigned []domain.HourRecord) {
	for _, hr := range hours {
		if hr.LineID != "" {
			assigned = append(assigned, hr)
		} else {
			unassigned = append(unassigned, hr)
		}
	}
	return assigned, unassigned
}
