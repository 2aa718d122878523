//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	msql "revrec/internal/adapter/mysql"
	"revrec/internal/domain"
	"revrec/internal/migrate"
	"revrec/internal/usecase"
)

type fakeCRM struct {
	entities []domain.Entity
	lines    []domain.BillingLine
	records  []domain.HourRecord
}

func (f fakeCRM) ListEntities(ctx context.Context) ([]domain.Entity, error) {
	return f.entities, nil
}

func (f fakeCRM) ListBillingLines(ctx context.Context) ([]domain.BillingLine, error) {
	return f.lines, nil
}

func (f fakeCRM) ListHourRecords(ctx context.Context, from, to time.Time) ([]domain.HourRecord, error) {
	return f.records, nil
}

func TestSyncAndComputeAgainstMySQL(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.0",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_DATABASE":      "testdb",
			"MYSQL_ROOT_PASSWORD": "secret",
			"MYSQL_USER":          "test",
			"MYSQL_PASSWORD":      "pass",
		},
		WaitingFor: wait.ForListeningPort("3306/tcp").WithStartupTimeout(90 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start mysql container: %v", err)
	}
	t.Cleanup(func() { _ = mysqlC.Terminate(context.Background()) })

	host, err := mysqlC.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := mysqlC.MappedPort(ctx, "3306/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true", "test", "pass", host, port.Port(), "testdb")

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if err := migrate.Run(ctx, dsn, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store, err := msql.NewStore(ctx, dsn, logger)
	if err != nil {
		t.Fatalf("mysql store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	jan := time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)
	crm := fakeCRM{
		entities: []domain.Entity{
			{ID: "p1", Name: "Website rebuild", CompanyName: "Acme", Origin: domain.OriginProject, Tags: []string{"Fixed Price"}},
			{ID: "p2", Name: "Support", CompanyName: "Acme", Origin: domain.OriginProject, Tags: []string{"cost-plus"}},
		},
		lines: []domain.BillingLine{
			{ID: "l1", EntityID: "p1", EntityOrigin: domain.OriginProject, Quantity: 10, Rate: decimal.NewFromInt(100), Basis: domain.BasisNormal},
			{ID: "l2", EntityID: "p2", EntityOrigin: domain.OriginProject, Quantity: 5, Rate: decimal.NewFromInt(90), Basis: domain.BasisNormal},
		},
		records: []domain.HourRecord{
			{ID: "h1", Date: jan, Quantity: 12, LineID: "l1", EntityID: "p1", EntityOrigin: domain.OriginProject},
			{ID: "h2", Date: jan, Quantity: 3, LineID: "l2", EntityID: "p2", EntityOrigin: domain.OriginProject},
		},
	}

	sync := &usecase.SyncUseCase{Log: logger, CRM: crm, Store: store}
	if err := sync.Run(ctx, 2026); err != nil {
		t.Fatalf("sync run: %v", err)
	}
	// Run again to assert idempotency (upsert)
	if err := sync.Run(ctx, 2026); err != nil {
		t.Fatalf("sync run 2: %v", err)
	}

	revenue := &usecase.RevenueUseCase{Log: logger, Store: store}
	results, err := revenue.Compute(ctx, 2026)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(results))
	}

	fp := results[0]
	if fp.EntityID != "p1" {
		t.Fatalf("expected p1 first, got %s", fp.EntityID)
	}
	if fp.BillingType != domain.TypeFixedPrice {
		t.Fatalf("expected fixed price, got %s", fp.BillingType)
	}
	// 10h at the line rate plus 2h at the (equal) fallback rate would be
	// 1200; the 1000 budget ceiling caps it.
	if got := fp.Series.Month(time.January).Revenue; !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected 1000 recognized in january, got %s", got)
	}

	cp := results[1]
	if got := cp.Series.Month(time.January).Revenue; !got.Equal(decimal.NewFromInt(270)) {
		t.Fatalf("expected 270 recognized in january, got %s", got)
	}

	// Determinism across recomputation on unchanged data.
	again, err := revenue.Compute(ctx, 2026)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	for i := range results {
		if results[i].EntityID != again[i].EntityID ||
			!results[i].Series.TotalRevenue().Equal(again[i].Series.TotalRevenue()) {
			t.Fatalf("recompute differs at %d", i)
		}
	}
}
