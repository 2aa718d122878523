package engine

import (
	"log/slog"
	"time"

	"revrec/internal/domain"
)

// GroupedHours buckets hour records by canonical entity key and calendar
// month. Months with no hours are simply absent; strategies iterate all
// twelve months regardless.
type GroupedHours map[string]map[time.Month][]domain.HourRecord

// GroupHours buckets raw hour records per entity and month. Records with a
// missing date, missing entity reference or unrecognized origin are dropped
// and logged; this is a tolerated-loss policy, not an error.
func GroupHours(records []domain.HourRecord, log *slog.Logger) GroupedHours {
	grouped := make(GroupedHours)
	dropped := 0
	for _, r := range records {
		if r.Date.IsZero() || r.EntityID == "" || r.EntityOrigin == domain.OriginUnknown {
			dropped++
			log.Debug("dropping malformed hour record",
				slog.String("id", r.ID),
				slog.String("entity_id", r.EntityID),
				slog.String("origin", string(r.EntityOrigin)),
			)
			continue
		}
		key := r.EntityKey()
		if grouped[key] == nil {
			grouped[key] = make(map[time.Month][]domain.HourRecord)
		}
		m := r.Date.Month()
		grouped[key][m] = append(grouped[key][m], r)
	}
	if dropped > 0 {
		log.Warn("dropped malformed hour records", slog.Int("count", dropped))
	}
	return grouped
}
