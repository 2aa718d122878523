package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOriginKind(t *testing.T) {
	cases := map[string]OriginKind{
		"project":  OriginProject,
		"Projects": OriginProject,
		"offer":    OriginOffer,
		"offers":   OriginOffer,
		"sales":    OriginOffer,
		"SALE":     OriginOffer,
		"":         OriginUnknown,
		"invoice":  OriginUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseOriginKind(in), "input %q", in)
	}
}

func TestParseInvoiceBasis(t *testing.T) {
	assert.Equal(t, BasisCostPlus, ParseInvoiceBasis("cost-plus"))
	assert.Equal(t, BasisNoCharge, ParseInvoiceBasis("no_charge"))
	assert.Equal(t, BasisNormal, ParseInvoiceBasis("normal"))
	// Unknown values degrade to normal billing, not an error.
	assert.Equal(t, BasisNormal, ParseInvoiceBasis("whatever"))
}

func TestEntityKey(t *testing.T) {
	e := Entity{ID: "42", Origin: OriginOffer}
	assert.Equal(t, "offer:42", e.Key())
}

func TestMonthlySeriesAlwaysTwelveMonths(t *testing.T) {
	var s MonthlySeries
	s.AddHours(time.July, 3)
	s.AddRevenue(time.July, decimal.NewFromInt(450))

	b, err := json.Marshal(s)
	require.NoError(t, err)

	var months []struct {
		Month   int     `json:"month"`
		Hours   float64 `json:"hours"`
		Revenue string  `json:"revenue"`
	}
	require.NoError(t, json.Unmarshal(b, &months))
	require.Len(t, months, 12)
	assert.Equal(t, 1, months[0].Month)
	assert.Equal(t, 12, months[11].Month)
	assert.Equal(t, "450", months[6].Revenue)
	assert.Equal(t, "0", months[0].Revenue)
}

func TestBillingLineTotalBudget(t *testing.T) {
	l := BillingLine{Quantity: 10, Rate: decimal.NewFromInt(100), Basis: BasisNormal}
	assert.True(t, l.TotalBudget().Equal(decimal.NewFromInt(1000)))

	l.Basis = BasisNoCharge
	assert.True(t, l.TotalBudget().IsZero())
}
