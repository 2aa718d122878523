package engine

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"revrec/internal/domain"
)

// rateStrategy implements the CostPlus and Contract types: every hour bills
// at its line's own rate with no budget ceiling. No-charge lines contribute
// hours but no revenue; hours without a line reference bill at the entity's
// primary rate.
type rateStrategy struct {
	log *slog.Logger
}

func (s *rateStrategy) Allocate(in Input) domain.MonthlySeries {
	var series domain.MonthlySeries
	primary := in.Budget.PrimaryRate()
	for m := time.January; m <= time.December; m++ {
		for _, hr := range in.Hours[m] {
			series.AddHours(m, hr.Quantity)

			rate := primary
			if hr.LineID != "" {
				ls, ok := in.Budget.Line(hr.LineID)
				if !ok {
					s.log.Warn("hour references unknown billing line",
						slog.String("hour_id", hr.ID),
						slog.String("line_id", hr.LineID),
					)
					continue
				}
				if ls.Line.Basis == domain.BasisNoCharge {
					continue
				}
				rate = ls.Line.Rate
			}
			amount := rate.Mul(decimal.NewFromFloat(hr.Quantity)).Round(2)
			series.AddRevenue(m, amount)
		}
	}
	return series
}
