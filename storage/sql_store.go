package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ottawa-housing/models"
)

var (
	// ErrUnknownTable is returned for a table outside the observation schema.
	ErrUnknownTable = errors.New("unknown table")
	// ErrUnknownColumn is returned for a column the table does not carry.
	ErrUnknownColumn = errors.New("unknown column")
)

// pingInterval is the wait between connection attempts while the database
// comes up.
var pingInterval = 2 * time.Second

// Tables lists every observation table in migration order.
var Tables = []string{
	models.TableFreeholdSales,
	models.TableCondoSales,
	models.TableFreeholdRentals,
	models.TableCondoRentals,
}

// Store is the persistence surface used by the scraper and dashboard.
type Store interface {
	Migrate(ctx context.Context) error
	HasDate(ctx context.Context, date string) (bool, error)
	InsertReport(ctx context.Context, report *models.WeeklyReport) error
	FetchSeries(ctx context.Context, table, column, secondary string) ([]models.Observation, error)
	Close() error
}

// SQLStore persists weekly observations in Postgres or SQLite.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

var _ Store = (*SQLStore)(nil)

// Open connects to the given driver ("postgres" or "sqlite"), waits for the
// database to answer and runs schema migrations.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	d, err := lookupDialect(driver)
	if err != nil {
		return nil, err
	}

	if d.name == "sqlite" && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("%s: create data dir: %w", d.name, err)
		}
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", d.name, err)
	}
	if d.name == "sqlite" {
		// One connection keeps :memory: databases shared and avoids
		// SQLITE_BUSY between writers.
		db.SetMaxOpenConns(1)
	}

	attempts := 10
	if d.name == "sqlite" {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		if i == attempts-1 {
			break
		}
		timer := time.NewTimer(pingInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			_ = db.Close()
			return nil, fmt.Errorf("%s: ping cancelled: %w", d.name, ctx.Err())
		case <-timer.C:
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping failed after retries: %w", d.name, err)
	}

	s := &SQLStore{db: db, dialect: d}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the observation tables when missing.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, table := range Tables {
		if _, err := s.db.ExecContext(ctx, s.dialect.createTable(table)); err != nil {
			return fmt.Errorf("%s: migrate %s: %w", s.dialect.name, table, err)
		}
	}
	return nil
}

// HasDate reports whether a report for date was already stored. The freehold
// sales table is the reference since every weekly post carries it.
func (s *SQLStore) HasDate(ctx context.Context, date string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE date = %s LIMIT 1",
		models.TableFreeholdSales, s.dialect.bind(1))

	var one int
	err := s.db.QueryRowContext(ctx, query, date).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("%s: has date %s: %w", s.dialect.name, date, err)
	}
	return true, nil
}

type tableRow struct {
	table  string
	values []*float64
}

// InsertReport stores every present section of report in one transaction.
// Rows for dates that already exist are left untouched.
func (s *SQLStore) InsertReport(ctx context.Context, report *models.WeeklyReport) error {
	if _, err := time.Parse(models.DateLayout, report.Date); err != nil {
		return fmt.Errorf("%s: insert report: bad date %q: %w", s.dialect.name, report.Date, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", s.dialect.name, err)
	}
	defer func() { _ = tx.Rollback() }()

	var rows []tableRow
	if report.FreeholdSales != nil {
		rows = append(rows, tableRow{models.TableFreeholdSales, report.FreeholdSales.Values()})
	}
	if report.CondoSales != nil {
		rows = append(rows, tableRow{models.TableCondoSales, report.CondoSales.Values()})
	}
	if report.FreeholdRentals != nil {
		rows = append(rows, tableRow{models.TableFreeholdRentals, report.FreeholdRentals.Values()})
	}
	if report.CondoRentals != nil {
		rows = append(rows, tableRow{models.TableCondoRentals, report.CondoRentals.Values()})
	}

	for _, r := range rows {
		args := make([]any, 0, len(r.values)+1)
		args = append(args, report.Date)
		for _, v := range r.values {
			args = append(args, nullable(v))
		}
		if _, err := tx.ExecContext(ctx, s.dialect.insertRow(r.table), args...); err != nil {
			return fmt.Errorf("%s: insert %s %s: %w", s.dialect.name, r.table, report.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", s.dialect.name, err)
	}
	return nil
}

// FetchSeries reads column (and secondary, when non-empty) from table in
// ascending date order. NULL metrics come back as nil values.
func (s *SQLStore) FetchSeries(ctx context.Context, table, column, secondary string) ([]models.Observation, error) {
	if err := validColumn(table, column); err != nil {
		return nil, err
	}
	selectList := fmt.Sprintf("%s, %s", s.dialect.dateExpr, column)
	if secondary != "" {
		if err := validColumn(table, secondary); err != nil {
			return nil, err
		}
		selectList += ", " + secondary
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY date ASC", selectList, table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch %s.%s: %w", s.dialect.name, table, column, err)
	}
	defer rows.Close()

	var out []models.Observation
	for rows.Next() {
		var (
			date       string
			value, sec sql.NullFloat64
		)
		dest := []any{&date, &value}
		if secondary != "" {
			dest = append(dest, &sec)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", s.dialect.name, err)
		}
		day, err := time.Parse(models.DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("%s: parse date %q: %w", s.dialect.name, date, err)
		}
		out = append(out, models.Observation{
			Date:      day,
			Value:     fromNull(value),
			Secondary: fromNull(sec),
		})
	}
	return out, rows.Err()
}

// Count returns the number of rows in table.
func (s *SQLStore) Count(ctx context.Context, table string) (int, error) {
	if models.Columns(table) == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: count %s: %w", s.dialect.name, table, err)
	}
	return n, nil
}

// Ping checks the connection, used by the health endpoint.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func validColumn(table, column string) error {
	cols := models.Columns(table)
	if cols == nil {
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	for _, c := range cols {
		if c == column {
			return nil
		}
	}
	return fmt.Errorf("%w: %q in %s", ErrUnknownColumn, column, table)
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
