package ports

import (
	"context"
	"time"

	"revrec/internal/domain"
)

// CRMClient defines methods to fetch tracked records from the upstream CRM.
type CRMClient interface {
	// ListEntities returns all projects and offers, origin already canonical.
	ListEntities(ctx context.Context) ([]domain.Entity, error)
	// ListBillingLines returns all billable lines across entities.
	ListBillingLines(ctx context.Context) ([]domain.BillingLine, error)
	// ListHourRecords returns hours whose date falls within [from, to).
	ListHourRecords(ctx context.Context, from, to time.Time) ([]domain.HourRecord, error)
}

// Store is the persistence collaborator: the sync path writes through it and
// the revenue engine reads from it. Infrastructure errors propagate unchanged.
type Store interface {
	UpsertEntities(ctx context.Context, entities []domain.Entity) error
	UpsertBillingLines(ctx context.Context, lines []domain.BillingLine) error
	UpsertHourRecords(ctx context.Context, records []domain.HourRecord) error

	// Entities returns a year-independent snapshot of all tracked entities.
	Entities(ctx context.Context) ([]domain.Entity, error)
	// BillingLines returns every entity's lines keyed by canonical entity
	// key, in stable stored order.
	BillingLines(ctx context.Context) (map[string][]domain.BillingLine, error)
	// HourRecordsForYear returns all hour records dated within the year.
	HourRecordsForYear(ctx context.Context, year int) ([]domain.HourRecord, error)
	// PriorConsumption returns manual prior-consumption entries for the year,
	// keyed by canonical entity key.
	PriorConsumption(ctx context.Context, year int) (map[string]domain.PriorConsumption, error)
	// MonthlyTargets returns manually recorded target/actual figures.
	MonthlyTargets(ctx context.Context, year int) ([]domain.MonthlyTarget, error)
}
