package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"pagos/internal/core"
	"pagos/internal/store"
)

// SQLiteRepository implements store.DebtStore on a local SQLite file. The
// payment sequence is held as one JSON column, so SetPayments is a genuine
// full-field replace: the last writer wins, exactly like the remote
// document store it stands in for.
type SQLiteRepository struct {
	db  *sql.DB
	hub *store.Hub
}

var _ store.DebtStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, hub: store.NewHub()}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, total_cents, payments FROM debts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	var out []core.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	if out == nil {
		out = []core.Debt{}
	}
	return out, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Debt, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, total_cents, payments FROM debts WHERE id = ?`, id)
	d, err := scanDebt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Debt{}, store.ErrNotFound
	}
	if err != nil {
		return core.Debt{}, err
	}
	return d, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, name string, totalCents int64) (core.Debt, error) {
	d := core.Debt{
		ID:       uuid.NewString(),
		Name:     name,
		Total:    core.Money{Cents: totalCents},
		Payments: []core.Payment{},
	}
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO debts (id, name, total_cents, payments) VALUES (?, ?, ?, '[]')`,
		d.ID, d.Name, d.Total.Cents)
	if err != nil {
		return core.Debt{}, fmt.Errorf("create debt: %w", err)
	}

	slog.InfoContext(ctx, "Debt created",
		"id", d.ID,
		"name", d.Name,
		"total_cents", d.Total.Cents)

	r.broadcast(ctx)
	return d, nil
}

func (r *SQLiteRepository) SetPayments(ctx context.Context, id string, payments []core.Payment) error {
	if payments == nil {
		payments = []core.Payment{}
	}
	raw, err := json.Marshal(payments)
	if err != nil {
		return fmt.Errorf("marshal payments: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE debts SET payments = ? WHERE id = ?`, string(raw), id)
	if err != nil {
		return fmt.Errorf("update payments: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update payments rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}

	slog.InfoContext(ctx, "Payment sequence replaced",
		"id", id,
		"payments", len(payments))

	r.broadcast(ctx)
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM debts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete debt rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}

	slog.InfoContext(ctx, "Debt deleted", "id", id)

	r.broadcast(ctx)
	return nil
}

func (r *SQLiteRepository) Watch(ctx context.Context) (<-chan []core.Debt, func()) {
	snap, err := r.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Watch initial snapshot failed", "error", err)
		snap = []core.Debt{}
	}
	return r.hub.Subscribe(ctx, snap)
}

// broadcast pushes the full collection to all watchers after a mutation.
// A snapshot read failure only costs this push; the next mutation retries.
func (r *SQLiteRepository) broadcast(ctx context.Context) {
	if r.hub.Len() == 0 {
		return
	}
	snap, err := r.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Snapshot broadcast failed", "error", err)
		return
	}
	r.hub.Broadcast(snap)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDebt(row rowScanner) (core.Debt, error) {
	var d core.Debt
	var raw string
	if err := row.Scan(&d.ID, &d.Name, &d.Total.Cents, &raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Debt{}, err
		}
		return core.Debt{}, fmt.Errorf("scan debt: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &d.Payments); err != nil {
		return core.Debt{}, fmt.Errorf("decode payments for debt %s: %w", d.ID, err)
	}
	if d.Payments == nil {
		d.Payments = []core.Payment{}
	}
	return d, nil
}
