// Package pg persists the order collection in PostgreSQL with the same
// whole-collection load/replace semantics the file store has: Save replaces
// every row inside one transaction, so a request's read-modify-write is
// atomic from the next reader's point of view.
package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"orderdesk.dev/internal/orders"
)

type Store struct {
	db *sql.DB
}

var _ orders.Store = (*Store)(nil)

// Open connects via the pgx stdlib driver.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection; used by tests.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Load(ctx context.Context) (map[string]orders.Order, error) {
	return s.selectAll(ctx, "orders")
}

func (s *Store) Backup(ctx context.Context) (map[string]orders.Order, error) {
	return s.selectAll(ctx, "orders_backup")
}

func (s *Store) selectAll(ctx context.Context, table string) (map[string]orders.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, org, sold_by, customer, items, status from `+table+` order by id`)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	defer rows.Close()

	result := make(map[string]orders.Order)
	for rows.Next() {
		var (
			o     orders.Order
			items []byte
		)
		if err := rows.Scan(&o.ID, &o.Org, &o.SoldBy, &o.Customer, &items, &o.Status); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("decode items for order %s: %w", o.ID, err)
		}
		result[o.ID] = o
	}
	return result, rows.Err()
}

func (s *Store) Save(ctx context.Context, current map[string]orders.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `delete from orders`); err != nil {
		return fmt.Errorf("clear orders: %w", err)
	}
	for _, o := range current {
		items, err := json.Marshal(o.Items)
		if err != nil {
			return fmt.Errorf("encode items for order %s: %w", o.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`insert into orders(id, org, sold_by, customer, items, status) values($1,$2,$3,$4,$5,$6)`,
			o.ID, o.Org, o.SoldBy, o.Customer, items, string(o.Status),
		); err != nil {
			return fmt.Errorf("insert order %s: %w", o.ID, err)
		}
	}
	return tx.Commit()
}
