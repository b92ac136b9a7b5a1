// Package store persists debts and recorded projections in SQLite or Postgres.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"   // register postgres driver
	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/zoonmattau/budgeter-sub000/internal/model"
)

// ErrNotFound is returned when a debt or projection does not exist.
var ErrNotFound = errors.New("not found")

// Store is a database-backed debt list and projection history.
type Store struct {
	db       *sql.DB
	postgres bool
}

// Open connects to the database for driver ("sqlite" or "postgres") and
// creates the schema if needed. For sqlite, dsn is a file path.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "", "sqlite":
		return OpenSQLite(dsn)
	case "postgres":
		return openPostgres(dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// OpenSQLite opens or creates the SQLite database at the given path.
func OpenSQLite(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One writer keeps WAL mode free of SQLITE_BUSY under the server's cron.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

func openPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, postgres: true}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// q rewrites ? placeholders to $n for postgres.
func (s *Store) q(query string) string {
	if !s.postgres {
		return query
	}
	return Rebind(query)
}

// Rebind converts ? placeholders to Postgres-style $1, $2, ...
func Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const debtColumns = `id, name, institution, kind, balance, interest_rate, minimum_payment, original_amount`

// ListDebts returns stored debts in insertion order.
func (s *Store) ListDebts(ctx context.Context) ([]model.Debt, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+debtColumns+` FROM debts ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("listing debts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	debts := []model.Debt{}
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

// GetDebt returns a single debt by ID.
func (s *Store) GetDebt(ctx context.Context, id string) (model.Debt, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+debtColumns+` FROM debts WHERE id = ?`), id)
	d, err := scanDebt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Debt{}, fmt.Errorf("debt %q: %w", id, ErrNotFound)
	}
	return d, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDebt(r scanner) (model.Debt, error) {
	var d model.Debt
	err := r.Scan(&d.ID, &d.Name, &d.Institution, &d.Type,
		&d.Balance, &d.InterestRate, &d.MinimumPayment, &d.OriginalAmount)
	return d, err
}

// SaveDebt inserts or updates a debt. New debts go to the end of the list.
func (s *Store) SaveDebt(ctx context.Context, d model.Debt) error {
	return s.saveDebt(ctx, s.db, d, -1)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) saveDebt(ctx context.Context, ex execer, d model.Debt, position int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	pos := `(SELECT COALESCE(MAX(position), 0) + 1 FROM debts)`
	args := []any{d.ID, d.Name, d.Institution, d.Type, d.Balance, d.InterestRate, d.MinimumPayment, d.OriginalAmount}
	if position >= 0 {
		pos = `?`
		args = append(args, position)
	}
	args = append(args, now)

	_, err := ex.ExecContext(ctx, s.q(`INSERT INTO debts (`+debtColumns+`, position, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, `+pos+`, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			institution = excluded.institution,
			kind = excluded.kind,
			balance = excluded.balance,
			interest_rate = excluded.interest_rate,
			minimum_payment = excluded.minimum_payment,
			original_amount = excluded.original_amount,
			updated_at = excluded.updated_at`), args...)
	if err != nil {
		return fmt.Errorf("saving debt %q: %w", d.ID, err)
	}
	return nil
}

// ReplaceDebts swaps the whole stored list for debts in one transaction.
func (s *Store) ReplaceDebts(ctx context.Context, debts []model.Debt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM debts`); err != nil {
		return fmt.Errorf("clearing debts: %w", err)
	}
	for i, d := range debts {
		if err := s.saveDebt(ctx, tx, d, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteDebt removes a debt by ID.
func (s *Store) DeleteDebt(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM debts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting debt %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("debt %q: %w", id, ErrNotFound)
	}
	return nil
}

// RecordProjection stores a plan summary and returns its ID.
func (s *Store) RecordProjection(ctx context.Context, p model.Projection) (int64, error) {
	if p.RecordedAt.IsZero() {
		p.RecordedAt = time.Now()
	}
	freeDate := ""
	if !p.DebtFreeDate.IsZero() {
		freeDate = p.DebtFreeDate.UTC().Format(time.RFC3339)
	}
	wont := 0
	if p.WontPayoff {
		wont = 1
	}

	var id int64
	err := s.db.QueryRowContext(ctx, s.q(`INSERT INTO projections
		(recorded_at, strategy, extra_payment, total_balance, months, total_interest, wont_payoff, debt_free_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		p.RecordedAt.UTC().Format(time.RFC3339), string(p.Strategy), p.ExtraPayment, p.TotalBalance,
		p.Months, p.TotalInterest, wont, freeDate,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("recording projection: %w", err)
	}
	return id, nil
}

// Projections returns up to limit recorded projections, newest first.
// A limit of zero or less returns all of them.
func (s *Store) Projections(ctx context.Context, limit int) ([]model.Projection, error) {
	query := `SELECT id, recorded_at, strategy, extra_payment, total_balance, months,
		total_interest, wont_payoff, debt_free_date
		FROM projections ORDER BY recorded_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing projections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.Projection{}
	for rows.Next() {
		var (
			p                  model.Projection
			recorded, strategy string
			freeDate           sql.NullString
			wont               int
		)
		if err := rows.Scan(&p.ID, &recorded, &strategy, &p.ExtraPayment, &p.TotalBalance,
			&p.Months, &p.TotalInterest, &wont, &freeDate); err != nil {
			return nil, err
		}
		p.Strategy = model.Strategy(strategy)
		p.WontPayoff = wont != 0
		if p.RecordedAt, err = time.Parse(time.RFC3339, recorded); err != nil {
			return nil, fmt.Errorf("projection %d recorded_at: %w", p.ID, err)
		}
		if freeDate.Valid && freeDate.String != "" {
			if p.DebtFreeDate, err = time.Parse(time.RFC3339, freeDate.String); err != nil {
				return nil, fmt.Errorf("projection %d debt_free_date: %w", p.ID, err)
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// LatestProjection returns the most recent projection.
func (s *Store) LatestProjection(ctx context.Context) (model.Projection, error) {
	ps, err := s.Projections(ctx, 1)
	if err != nil {
		return model.Projection{}, err
	}
	if len(ps) == 0 {
		return model.Projection{}, fmt.Errorf("projection: %w", ErrNotFound)
	}
	return ps[0], nil
}
