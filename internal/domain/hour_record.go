package domain

import "time"

// HourRecord is one unit of logged time. It belongs to at most one Entity and
// at most one BillingLine; LineID is empty for unassigned hours, which still
// count toward monthly hour totals.
type HourRecord struct {
	ID           string
	Date         time.Time
	Quantity     float64
	LineID       string
	EntityID     string
	EntityOrigin OriginKind
}

// EntityKey returns the canonical key of the owning entity, or ":" variants
// with empty parts when the reference is missing.
func (h HourRecord) EntityKey() string { return Key(h.EntityOrigin, h.EntityID) }
