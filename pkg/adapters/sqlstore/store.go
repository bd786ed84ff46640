// Package sqlstore implements ports.RecordStore on database/sql.
//
// Records live in two tables: one row per record with its attributes encoded as
// JSON, and one row per history line. Queries use "?" placeholders unless the
// store is configured for "$1"-style drivers.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

// Placeholder selects the bind parameter syntax of the driver.
type Placeholder int

const (
	Question Placeholder = iota // sqlite, mysql
	Dollar                      // postgres
)

// DefaultTables is the schema created by Migrate.
var DefaultTables = []string{
	`CREATE TABLE IF NOT EXISTS stepwise_records (
id          TEXT PRIMARY KEY,
attributes  TEXT NOT NULL DEFAULT '{}',
updated_at  TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS stepwise_history (
record_id   TEXT NOT NULL,
seq         INTEGER NOT NULL,
id          TEXT NOT NULL DEFAULT '',
field       TEXT NOT NULL DEFAULT '',
transition  TEXT NOT NULL DEFAULT '',
from_step   TEXT NOT NULL DEFAULT '',
to_step     TEXT NOT NULL DEFAULT '',
at          TIMESTAMP,
PRIMARY KEY (record_id, seq)
)`,
}

// Store implements ports.RecordStore over a *sql.DB.
type Store struct {
	db          *sql.DB
	placeholder Placeholder
}

var _ ports.RecordStore = (*Store)(nil)

// Option configures the Store.
type Option func(*Store)

// WithPlaceholder sets the bind parameter syntax.
func WithPlaceholder(p Placeholder) Option {
	return func(s *Store) {
		s.placeholder = p
	}
}

// New creates a store over db. Call Migrate once before use.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate creates the tables if they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range DefaultTables {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to set up schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites "?" placeholders for the configured driver.
func (s *Store) rebind(query string) string {
	if s.placeholder != Dollar {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Save replaces the record and its history in one transaction.
func (s *Store) Save(ctx context.Context, rec *domain.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("record id cannot be empty")
	}

	attrs, err := json.Marshal(rec.Attributes)
	if err != nil {
		return fmt.Errorf("failed to marshal attributes: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM stepwise_history WHERE record_id = ?`), rec.ID); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM stepwise_records WHERE id = ?`), rec.ID); err != nil {
		return fmt.Errorf("failed to replace record: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		s.rebind(`INSERT INTO stepwise_records (id, attributes, updated_at) VALUES (?, ?, ?)`),
		rec.ID, string(attrs), rec.UpdatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	if len(rec.History) > 0 {
		stmt, err := tx.PrepareContext(ctx, s.rebind(
			`INSERT INTO stepwise_history (record_id, seq, id, field, transition, from_step, to_step, at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("failed to prepare history insert: %w", err)
		}
		defer stmt.Close()

		for i, h := range rec.History {
			if _, err := stmt.ExecContext(ctx, rec.ID, i, h.ID, h.Field, h.Transition, h.From, h.To, h.At.UTC()); err != nil {
				return fmt.Errorf("failed to insert history: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit record: %w", err)
	}
	return nil
}

// Load reads a record and its history.
func (s *Store) Load(ctx context.Context, id string) (*domain.Record, error) {
	var (
		attrs     string
		updatedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT attributes, updated_at FROM stepwise_records WHERE id = ?`), id,
	).Scan(&attrs, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to load record: %w", err)
	}

	rec := &domain.Record{ID: id}
	if err := json.Unmarshal([]byte(attrs), &rec.Attributes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attributes: %w", err)
	}
	if rec.Attributes == nil {
		rec.Attributes = map[string]any{}
	}
	if updatedAt.Valid {
		rec.UpdatedAt = updatedAt.Time.UTC()
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, field, transition, from_step, to_step, at FROM stepwise_history WHERE record_id = ? ORDER BY seq`), id)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			h  domain.HistoryRecord
			at sql.NullTime
		)
		if err := rows.Scan(&h.ID, &h.Field, &h.Transition, &h.From, &h.To, &at); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		if at.Valid {
			h.At = at.Time.UTC()
		}
		rec.History = append(rec.History, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return rec, nil
}

// Delete removes a record and its history.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM stepwise_history WHERE record_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM stepwise_records WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return tx.Commit()
}

// List returns the record IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM stepwise_records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
