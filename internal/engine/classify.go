// Package engine implements the revenue allocation core: billing type
// classification, hour grouping, line budget resolution and the per-type
// allocation strategies. It is pure computation over domain values; the only
// side effect is data-quality logging.
package engine

import (
	"strings"

	"revrec/internal/domain"
)

// Display labels for user-facing output. An Offer computes with the cost-plus
// algorithm regardless of its tags but must still display as "Offer".
const (
	DisplayOffer      = "Offer"
	DisplayFixedPrice = "Fixed price"
	DisplayCostPlus   = "Nacalculatie"
	DisplayContract   = "Contract"
	DisplayInternal   = "Internal"
	DisplayInvalidTag = "Invalid tag"
)

// Classify assigns a billing type and display label to an entity from its
// origin kind and tag set. Tag matching is case-insensitive. Entities with no
// recognized tag classify as invalid and recognize zero revenue.
func Classify(e domain.Entity) (domain.BillingType, string) {
	if e.Origin == domain.OriginOffer {
		return domain.TypeCostPlus, DisplayOffer
	}
	for _, want := range []struct {
		tag     string
		billing domain.BillingType
		display string
	}{
		{"fixed price", domain.TypeFixedPrice, DisplayFixedPrice},
		{"cost-plus", domain.TypeCostPlus, DisplayCostPlus},
		{"contract", domain.TypeContract, DisplayContract},
		{"internal", domain.TypeInternal, DisplayInternal},
	} {
		for _, tag := range e.Tags {
			if strings.EqualFold(strings.TrimSpace(tag), want.tag) {
				return want.billing, want.display
			}
		}
	}
	return domain.TypeInvalidTag, DisplayInvalidTag
}
