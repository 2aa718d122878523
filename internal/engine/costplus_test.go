package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"revrec/internal/domain"
)

func hour(id string, month time.Month, qty float64, lineID string) domain.HourRecord {
	return domain.HourRecord{
		ID:           id,
		Date:         day(2026, month, 10),
		Quantity:     qty,
		LineID:       lineID,
		EntityID:     "p1",
		EntityOrigin: domain.OriginProject,
	}
}

func monthsOf(records ...domain.HourRecord) map[time.Month][]domain.HourRecord {
	out := make(map[time.Month][]domain.HourRecord)
	for _, r := range records {
		m := r.Date.Month()
		out[m] = append(out[m], r)
	}
	return out
}

func TestRateStrategyBillsAtLineRate(t *testing.T) {
	b := ResolveBudget([]domain.BillingLine{
		line("a", 10, 100, 0, domain.BasisNormal),
	})
	s := ForType(domain.TypeCostPlus, testLogger())
	series := s.Allocate(Input{
		Hours:  monthsOf(hour("h1", time.January, 3, "a")),
		Budget: b,
	})

	jan := series.Month(time.January)
	assert.InDelta(t, 3, jan.Hours, 1e-9)
	assert.True(t, jan.Revenue.Equal(decimal.NewFromInt(300)), "jan = %s", jan.Revenue)
}

func TestRateStrategyIgnoresBudgetCeiling(t *testing.T) {
	// 50 hours against a 10-hour line: no ceiling applies for cost-plus.
	b := ResolveBudget([]domain.BillingLine{
		line("a", 10, 100, 0, domain.BasisNormal),
	})
	s := ForType(domain.TypeContract, testLogger())
	series := s.Allocate(Input{
		Hours:  monthsOf(hour("h1", time.June, 50, "a")),
		Budget: b,
	})
	assert.True(t, series.Month(time.June).Revenue.Equal(decimal.NewFromInt(5000)))
}

func TestRateStrategyNoChargeLine(t *testing.T) {
	b := ResolveBudget([]domain.BillingLine{
		line("nc", 10, 100, 0, domain.BasisNoCharge),
	})
	s := ForType(domain.TypeCostPlus, testLogger())
	series := s.Allocate(Input{
		Hours:  monthsOf(hour("h1", time.April, 5, "nc")),
		Budget: b,
	})

	apr := series.Month(time.April)
	assert.InDelta(t, 5, apr.Hours, 1e-9)
	assert.True(t, apr.Revenue.IsZero())
}

func TestRateStrategyUnknownLineContributesZero(t *testing.T) {
	b := ResolveBudget(nil)
	s := ForType(domain.TypeCostPlus, testLogger())
	series := s.Allocate(Input{
		Hours:  monthsOf(hour("h1", time.April, 5, "dangling")),
		Budget: b,
	})

	apr := series.Month(time.April)
	assert.InDelta(t, 5, apr.Hours, 1e-9)
	assert.True(t, apr.Revenue.IsZero())
}

func TestRateStrategyUnassignedHourUsesPrimaryRate(t *testing.T) {
	b := ResolveBudget([]domain.BillingLine{
		line("nc", 10, 999, 0, domain.BasisNoCharge),
		line("a", 10, 80, 0, domain.BasisNormal),
	})
	s := ForType(domain.TypeCostPlus, testLogger())
	series := s.Allocate(Input{
		Hours:  monthsOf(hour("h1", time.July, 2, "")),
		Budget: b,
	})
	assert.True(t, series.Month(time.July).Revenue.Equal(decimal.NewFromInt(160)))
}

func TestZeroStrategyCountsHoursOnly(t *testing.T) {
	for _, billingType := range []domain.BillingType{domain.TypeInternal, domain.TypeInvalidTag} {
		s := ForType(billingType, testLogger())
		series := s.Allocate(Input{
			Hours:  monthsOf(hour("h1", time.February, 7, "a")),
			Budget: ResolveBudget([]domain.BillingLine{line("a", 10, 100, 0, domain.BasisNormal)}),
		})
		for m := time.January; m <= time.December; m++ {
			assert.True(t, series.Month(m).Revenue.IsZero())
		}
		assert.InDelta(t, 7, series.Month(time.February).Hours, 1e-9)
	}
}
