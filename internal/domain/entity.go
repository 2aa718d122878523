package domain

import "strings"

// OriginKind is the canonical origin of an Entity. The CRM uses two different
// vocabularies for the same concept depending on the endpoint ("project" vs
// "projects", "offer" vs "sales"); ParseOriginKind folds them into one enum at
// ingestion so lookups downstream never have to care.
type OriginKind string

const (
	OriginUnknown OriginKind = ""
	OriginProject OriginKind = "project"
	OriginOffer   OriginKind = "offer"
)

// ParseOriginKind maps an upstream origin string to its canonical kind.
// Unknown spellings map to OriginUnknown; records carrying it are dropped
// during grouping rather than treated as an error.
func ParseOriginKind(s string) OriginKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "project", "projects":
		return OriginProject
	case "offer", "offers", "sale", "sales":
		return OriginOffer
	default:
		return OriginUnknown
	}
}

// Key builds the canonical entity lookup key from an origin and a CRM id.
func Key(origin OriginKind, id string) string {
	return string(origin) + ":" + id
}

// Entity is a tracked contract ("Project") or opportunity ("Offer").
// It is created and refreshed by the sync path and read-only to the engine;
// classification and revenue are derived fresh per request, never stored.
type Entity struct {
	ID          string
	Name        string
	CompanyName string
	Origin      OriginKind
	Tags        []string
}

// Key returns the canonical lookup key for this entity.
func (e Entity) Key() string { return Key(e.Origin, e.ID) }
