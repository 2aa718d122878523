package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"revrec/internal/domain"
)

// LineState tracks one billing line's capacity while hours are allocated
// against it. It is entity-scoped and discarded after the computation.
type LineState struct {
	Line           domain.BillingLine
	RemainingHours float64
}

// RemainingBudget is the money value of the line's remaining hours.
func (ls *LineState) RemainingBudget() decimal.Decimal {
	return ls.Line.Rate.Mul(decimal.NewFromFloat(ls.RemainingHours))
}

// Budget is the resolved budget bookkeeping for one entity: total budget,
// per-line capacity and the blended fallback rate used when a line's own
// budget is exhausted or no dedicated rate applies.
type Budget struct {
	Total    decimal.Decimal
	Fallback decimal.Decimal

	order []string
	lines map[string]*LineState
}

// ResolveBudget computes an entity's budget from its billing lines.
// No-charge lines never contribute budget. The fallback rate is the
// quantity-weighted average over lines with positive quantity and rate; with
// no valid lines it is zero and overflow hours bill at zero.
func ResolveBudget(lines []domain.BillingLine) *Budget {
	b := &Budget{
		Total:    decimal.Zero,
		Fallback: decimal.Zero,
		lines:    make(map[string]*LineState, len(lines)),
	}
	weighted := decimal.Zero
	quantity := decimal.Zero
	for _, l := range lines {
		b.order = append(b.order, l.ID)
		b.lines[l.ID] = &LineState{
			Line:           l,
			RemainingHours: max(0, l.Quantity-l.Invoiced),
		}
		b.Total = b.Total.Add(l.TotalBudget())
		if l.Quantity > 0 && l.Rate.IsPositive() {
			q := decimal.NewFromFloat(l.Quantity)
			weighted = weighted.Add(l.Rate.Mul(q))
			quantity = quantity.Add(q)
		}
	}
	if quantity.IsPositive() {
		b.Fallback = weighted.Div(quantity)
	}
	return b
}

// Line looks up the tracked state for a line id.
func (b *Budget) Line(id string) (*LineState, bool) {
	ls, ok := b.lines[id]
	return ls, ok
}

// PrimaryRate is the entity's default rate for unassigned cost-plus hours:
// the first line in stored order with a positive rate that is not no-charge,
// or zero if none exists.
func (b *Budget) PrimaryRate() decimal.Decimal {
	for _, id := range b.order {
		ls := b.lines[id]
		if ls.Line.Basis != domain.BasisNoCharge && ls.Line.Rate.IsPositive() {
			return ls.Line.Rate
		}
	}
	return decimal.Zero
}

// Distributable returns the lines eligible for unassigned-hour distribution
// (not no-charge, not time-and-materials override), ordered by descending
// total line budget. Larger-budget lines absorb unassigned hours first; ties
// keep stored order.
func (b *Budget) Distributable() []*LineState {
	var out []*LineState
	for _, id := range b.order {
		ls := b.lines[id]
		if ls.Line.Basis == domain.BasisNoCharge || ls.Line.Basis == domain.BasisCostPlus {
			continue
		}
		out = append(out, ls)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Line.TotalBudget().GreaterThan(out[j].Line.TotalBudget())
	})
	return out
}
