package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// BillingType is the algorithm class an Entity is computed with.
type BillingType string

const (
	TypeFixedPrice BillingType = "fixed_price"
	TypeCostPlus   BillingType = "cost_plus"
	TypeContract   BillingType = "contract"
	TypeInternal   BillingType = "internal"
	TypeInvalidTag BillingType = "invalid_tag"
)

// ConsumptionUnit is the unit of a manually entered prior-consumption figure.
type ConsumptionUnit string

const (
	UnitRevenue ConsumptionUnit = "revenue"
	UnitHours   ConsumptionUnit = "hours"
)

// PriorConsumption is a manually entered amount already consumed before the
// requested year, subtracted from a fixed-price entity's budget.
type PriorConsumption struct {
	Amount decimal.Decimal
	Unit   ConsumptionUnit
}

// MonthTotal is the recognized result for one calendar month.
type MonthTotal struct {
	Hours   float64         `json:"hours"`
	Revenue decimal.Decimal `json:"revenue"`
}

// MonthlySeries maps the twelve months of one year to recognized totals.
// Index 0 is January. Every month is always present, even when zero.
type MonthlySeries [12]MonthTotal

// AddHours adds logged hours to a month's total.
func (s *MonthlySeries) AddHours(m time.Month, qty float64) {
	s[m-1].Hours += qty
}

// AddRevenue adds recognized revenue to a month's total.
func (s *MonthlySeries) AddRevenue(m time.Month, amount decimal.Decimal) {
	s[m-1].Revenue = s[m-1].Revenue.Add(amount)
}

// Month returns the totals for the given month.
func (s MonthlySeries) Month(m time.Month) MonthTotal { return s[m-1] }

// TotalRevenue sums recognized revenue over all months.
func (s MonthlySeries) TotalRevenue() decimal.Decimal {
	total := decimal.Zero
	for _, mt := range s {
		total = total.Add(mt.Revenue)
	}
	return total
}

// TotalHours sums logged hours over all months.
func (s MonthlySeries) TotalHours() float64 {
	var total float64
	for _, mt := range s {
		total += mt.Hours
	}
	return total
}

// MarshalJSON renders the series as an explicit month-keyed list so boundary
// consumers never have to infer month numbers from array positions.
func (s MonthlySeries) MarshalJSON() ([]byte, error) {
	type month struct {
		Month   int             `json:"month"`
		Hours   float64         `json:"hours"`
		Revenue decimal.Decimal `json:"revenue"`
	}
	out := make([]month, 0, 12)
	for i, mt := range s {
		out = append(out, month{Month: i + 1, Hours: mt.Hours, Revenue: mt.Revenue})
	}
	return json.Marshal(out)
}

// EntityRevenue is the engine's per-entity output for one year.
// TotalBudget is set only for fixed-price entities.
type EntityRevenue struct {
	EntityID    string           `json:"entityId"`
	Name        string           `json:"name"`
	CompanyName string           `json:"companyName"`
	Origin      OriginKind       `json:"origin"`
	BillingType BillingType      `json:"billingType"`
	DisplayType string           `json:"displayType"`
	Series      MonthlySeries    `json:"monthlySeries"`
	TotalBudget *decimal.Decimal `json:"totalBudget,omitempty"`
}

// MonthlyTarget is a manually recorded target/actual pair for one month,
// compared against recognized revenue in the year overview.
type MonthlyTarget struct {
	Month  int
	Target decimal.Decimal
	Actual decimal.Decimal
}

// OverviewMonth is one row of the year-level variance table.
type OverviewMonth struct {
	Month      int             `json:"month"`
	Hours      float64         `json:"hours"`
	Recognized decimal.Decimal `json:"recognized"`
	Target     decimal.Decimal `json:"target"`
	Actual     decimal.Decimal `json:"actual"`
	Variance   decimal.Decimal `json:"variance"`
}

// YearOverview is the aggregated, entity-independent result for one year.
type YearOverview struct {
	Year   int             `json:"year"`
	Months []OverviewMonth `json:"months"`
}
