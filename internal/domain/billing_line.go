package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// InvoiceBasis selects the billing treatment of a single line.
type InvoiceBasis string

const (
	// BasisNormal bills at the line rate while the line has budget left.
	BasisNormal InvoiceBasis = "normal"
	// BasisCostPlus always bills at the line's own rate, ignoring the line's
	// remaining hours (time-and-materials override).
	BasisCostPlus InvoiceBasis = "cost_plus"
	// BasisNoCharge never contributes budget or revenue.
	BasisNoCharge InvoiceBasis = "no_charge"
)

// ParseInvoiceBasis maps an upstream basis string to the enum. Unknown values
// fall back to the normal basis rather than failing the record.
func ParseInvoiceBasis(s string) InvoiceBasis {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cost_plus", "costplus", "cost-plus":
		return BasisCostPlus
	case "no_charge", "nocharge", "no-charge":
		return BasisNoCharge
	default:
		return BasisNormal
	}
}

// BillingLine is a budgeted, rated component of an Entity against which hours
// are billed. Quantities are hours; Rate is money per hour.
type BillingLine struct {
	ID           string
	EntityID     string
	EntityOrigin OriginKind
	Quantity     float64
	Rate         decimal.Decimal
	Invoiced     float64
	Basis        InvoiceBasis
}

// EntityKey returns the canonical key of the owning entity.
func (l BillingLine) EntityKey() string { return Key(l.EntityOrigin, l.EntityID) }

// TotalBudget is quantity times rate, zero for no-charge lines.
func (l BillingLine) TotalBudget() decimal.Decimal {
	if l.Basis == BasisNoCharge {
		return decimal.Zero
	}
	return l.Rate.Mul(decimal.NewFromFloat(l.Quantity))
}
