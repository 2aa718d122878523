package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"revrec/internal/domain"
)

// Store implements ports.Store on a MySQL database.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// NewStore opens a MySQL connection using the provided DSN.
// Example DSN: user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
func NewStore(ctx context.Context, dsn string, log *slog.Logger) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("mysql: DSN is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	// Conservative pool defaults; can be adjusted via env later.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, log: log}, nil
}

// UpsertEntities upserts the entity snapshot.
func (s *Store) UpsertEntities(ctx context.Context, entities []domain.Entity) error {
	if len(entities) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	const q = `
INSERT INTO entities
  (entity_key, id, name, company_name, origin, tags)
VALUES
  (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name=VALUES(name),
  company_name=VALUES(company_name),
  tags=VALUES(tags);
`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, e := range entities {
		// Tags stored as JSON for readability; classification re-parses them.
		tagsJSON, _ := json.Marshal(e.Tags)
		if _, err := stmt.ExecContext(
			ctx,
			e.Key(),
			e.ID,
			e.Name,
			e.CompanyName,
			string(e.Origin),
			string(tagsJSON),
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Info("mysql store upserted entities", slog.Int("count", len(entities)))
	return nil
}

// UpsertBillingLines upserts billable lines.
func (s *Store) UpsertBillingLines(ctx context.Context, lines []domain.BillingLine) error {
	if len(lines) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	const q = `
INSERT INTO billing_lines
  (id, entity_key, quantity, rate, invoiced, basis)
VALUES
  (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  entity_key=VALUES(entity_key),
  quantity=VALUES(quantity),
  rate=VALUES(rate),
  invoiced=VALUES(invoiced),
  basis=VALUES(basis);
`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, l := range lines {
		if _, err := stmt.ExecContext(
			ctx,
			l.ID,
			l.EntityKey(),
			l.Quantity,
			l.Rate,
			l.Invoiced,
			string(l.Basis),
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Info("mysql store upserted billing lines", slog.Int("count", len(lines)))
	return nil
}

// UpsertHourRecords upserts logged hours.
func (s *Store) UpsertHourRecords(ctx context.Context, records []domain.HourRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	const q = `
INSERT INTO hour_records
  (id, date, quantity, line_id, entity_id, origin)
VALUES
  (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  date=VALUES(date),
  quantity=VALUES(quantity),
  line_id=VALUES(line_id),
  entity_id=VALUES(entity_id),
  origin=VALUES(origin);
`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		var date any
		if !r.Date.IsZero() {
			date = r.Date.UTC()
		}
		if _, err := stmt.ExecContext(
			ctx,
			r.ID,
			date,
			r.Quantity,
			r.LineID,
			r.EntityID,
			string(r.EntityOrigin),
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Info("mysql store upserted hour records", slog.Int("count", len(records)))
	return nil
}

// Entities returns the full entity snapshot in stable key order.
func (s *Store) Entities(ctx context.Context) ([]domain.Entity, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, company_name, origin, tags FROM entities ORDER BY origin, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Entity
	for rows.Next() {
		var e domain.Entity
		var origin, tagsJSON string
		if err := rows.Scan(&e.ID, &e.Name, &e.CompanyName, &origin, &tagsJSON); err != nil {
			return nil, err
		}
		e.Origin = domain.OriginKind(origin)
		if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
			s.log.Warn("unreadable tags, treating as untagged", slog.String("entity", e.ID))
			e.Tags = nil
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// BillingLines returns every entity's lines keyed by entity key, ordered by
// line id so "first line" semantics are stable across requests.
func (s *Store) BillingLines(ctx context.Context) (map[string][]domain.BillingLine, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, entity_key, quantity, rate, invoiced, basis FROM billing_lines ORDER BY entity_key, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.BillingLine)
	for rows.Next() {
		var l domain.BillingLine
		var key, basis string
		if err := rows.Scan(&l.ID, &key, &l.Quantity, &l.Rate, &l.Invoiced, &basis); err != nil {
			return nil, err
		}
		l.Basis = domain.InvoiceBasis(basis)
		l.EntityOrigin, l.EntityID = splitKey(key)
		out[key] = append(out[key], l)
	}
	return out, rows.Err()
}

// HourRecordsForYear returns all hours dated within the year, oldest first.
func (s *Store) HourRecordsForYear(ctx context.Context, year int) ([]domain.HourRecord, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, date, quantity, line_id, entity_id, origin FROM hour_records WHERE date >= ? AND date < ? ORDER BY date, id",
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HourRecord
	for rows.Next() {
		var r domain.HourRecord
		var date sql.NullTime
		var origin string
		if err := rows.Scan(&r.ID, &date, &r.Quantity, &r.LineID, &r.EntityID, &origin); err != nil {
			return nil, err
		}
		if date.Valid {
			r.Date = date.Time
		}
		r.EntityOrigin = domain.OriginKind(origin)
		out = append(out, r)
	}
	return out, rows.Err()
}

// PriorConsumption returns the year's manual prior-consumption entries.
func (s *Store) PriorConsumption(ctx context.Context, year int) (map[string]domain.PriorConsumption, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT entity_key, amount, unit FROM budget_entries WHERE year = ?", year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]domain.PriorConsumption)
	for rows.Next() {
		var key, unit string
		var p domain.PriorConsumption
		if err := rows.Scan(&key, &p.Amount, &unit); err != nil {
			return nil, err
		}
		p.Unit = domain.ConsumptionUnit(unit)
		out[key] = p
	}
	return out, rows.Err()
}

// MonthlyTargets returns the year's manually recorded target/actual figures.
func (s *Store) MonthlyTargets(ctx context.Context, year int) ([]domain.MonthlyTarget, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT month, target, actual FROM monthly_targets WHERE year = ? ORDER BY month", year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MonthlyTarget
	for rows.Next() {
		var t domain.MonthlyTarget
		if err := rows.Scan(&t.Month, &t.Target, &t.Actual); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Close closes the underlying DB. Not wired via interface to keep ports minimal.
func (s *Store) Close() error { return s.db.Close() }

// splitKey reverses domain.Key. Malformed keys yield an unknown origin.
func splitKey(key string) (domain.OriginKind, string) {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return domain.OriginKind(key[:i]), key[i+1:]
		}
	}
	return domain.OriginUnknown, key
}
