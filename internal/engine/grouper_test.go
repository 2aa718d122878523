package engine

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revrec/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestGroupHoursBucketsByEntityAndMonth(t *testing.T) {
	records := []domain.HourRecord{
		{ID: "h1", Date: day(2026, time.January, 5), Quantity: 2, EntityID: "p1", EntityOrigin: domain.OriginProject},
		{ID: "h2", Date: day(2026, time.January, 20), Quantity: 3, EntityID: "p1", EntityOrigin: domain.OriginProject},
		{ID: "h3", Date: day(2026, time.March, 1), Quantity: 1, EntityID: "p1", EntityOrigin: domain.OriginProject},
		{ID: "h4", Date: day(2026, time.January, 5), Quantity: 8, EntityID: "s9", EntityOrigin: domain.OriginOffer},
	}
	grouped := GroupHours(records, testLogger())

	require.Len(t, grouped, 2)
	assert.Len(t, grouped["project:p1"][time.January], 2)
	assert.Len(t, grouped["project:p1"][time.March], 1)
	assert.Len(t, grouped["offer:s9"][time.January], 1)
}

func TestGroupHoursDropsMalformedRecords(t *testing.T) {
	records := []domain.HourRecord{
		{ID: "no-date", Quantity: 2, EntityID: "p1", EntityOrigin: domain.OriginProject},
		{ID: "no-entity", Date: day(2026, time.February, 2), Quantity: 2, EntityOrigin: domain.OriginProject},
		{ID: "bad-origin", Date: day(2026, time.February, 2), Quantity: 2, EntityID: "p1"},
		{ID: "ok", Date: day(2026, time.February, 2), Quantity: 2, EntityID: "p1", EntityOrigin: domain.OriginProject},
	}
	grouped := GroupHours(records, testLogger())

	require.Len(t, grouped, 1)
	require.Len(t, grouped["project:p1"][time.February], 1)
	assert.Equal(t, "ok", grouped["project:p1"][time.February][0].ID)
}

func TestGroupHoursNormalizedVocabularies(t *testing.T) {
	// The same entity referenced through both upstream vocabularies must land
	// under one canonical key after ingestion-time normalization.
	assert.Equal(t, domain.ParseOriginKind("projects"), domain.ParseOriginKind("project"))
	assert.Equal(t, domain.ParseOriginKind("sales"), domain.ParseOriginKind("offer"))

	records := []domain.HourRecord{
		{ID: "h1", Date: day(2026, time.May, 1), Quantity: 1, EntityID: "x", EntityOrigin: domain.ParseOriginKind("projects")},
		{ID: "h2", Date: day(2026, time.May, 2), Quantity: 1, EntityID: "x", EntityOrigin: domain.ParseOriginKind("project")},
	}
	grouped := GroupHours(records, testLogger())
	assert.Len(t, grouped["project:x"][time.May], 2)
}
