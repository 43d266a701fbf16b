// SPDX-License-Identifier: MPL-2.0

package counter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
)

// DefaultTable is the table used when preferences do not name one.
const DefaultTable = "te2_counters"

// ErrInvalidTable is returned when a table name is not a plain identifier.
var ErrInvalidTable = errors.New("invalid counter table name")

var tablePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// SQLStore keeps counters in a table of a database/sql database. The
// statements only use '?' placeholders and portable DDL so the same store
// works on sqlite3 and mysql.
type SQLStore struct {
	db    *sql.DB
	table string
}

// NewSQLStore creates the counter table if needed and returns the store.
// The store does not own db; Close leaves it open.
func NewSQLStore(ctx context.Context, db *sql.DB, table string) (*SQLStore, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tablePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	name VARCHAR(255) NOT NULL PRIMARY KEY,
	current_value BIGINT NOT NULL,
	start_value BIGINT NOT NULL,
	step BIGINT NOT NULL
)`, table)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("failed to create counter table %s: %w", table, err)
	}

	return &SQLStore{db: db, table: table}, nil
}

// Create inserts c unless a row with the same name exists.
func (s *SQLStore) Create(ctx context.Context, c Counter) (Counter, error) {
	if c.Name == "" {
		return Counter{}, ErrInvalidName
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Counter{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after Commit

	existing, err := s.get(ctx, tx, c.Name)
	switch {
	case err == nil:
		return existing, tx.Commit()
	case !errors.Is(err, ErrNotFound):
		return Counter{}, err
	}

	insert := fmt.Sprintf("INSERT INTO %s (name, current_value, start_value, step) VALUES (?, ?, ?, ?)", s.table)
	if _, err := tx.ExecContext(ctx, insert, c.Name, c.Value, c.Start, c.Step); err != nil {
		return Counter{}, fmt.Errorf("failed to insert counter %s: %w", c.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return Counter{}, fmt.Errorf("failed to commit counter %s: %w", c.Name, err)
	}
	return c, nil
}

// Get returns the named counter.
func (s *SQLStore) Get(ctx context.Context, name string) (Counter, error) {
	return s.get(ctx, s.db, name)
}

// SetValue updates the current value of an existing counter.
func (s *SQLStore) SetValue(ctx context.Context, name string, value int64) error {
	update := fmt.Sprintf("UPDATE %s SET current_value = ? WHERE name = ?", s.table)
	res, err := s.db.ExecContext(ctx, update, value, name)
	if err != nil {
		return fmt.Errorf("failed to update counter %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update counter %s: %w", name, err)
	}
	if n == 0 {
		// mysql reports 0 affected rows when the value is unchanged
		if _, getErr := s.Get(ctx, name); getErr != nil {
			return getErr
		}
	}
	return nil
}

// Close does not close the shared database handle.
func (s *SQLStore) Close() error { return nil }

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) get(ctx context.Context, q queryer, name string) (Counter, error) {
	query := fmt.Sprintf("SELECT name, current_value, start_value, step FROM %s WHERE name = ?", s.table)
	var c Counter
	err := q.QueryRowContext(ctx, query, name).Scan(&c.Name, &c.Value, &c.Start, &c.Step)
	if errors.Is(err, sql.ErrNoRows) {
		return Counter{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Counter{}, fmt.Errorf("failed to read counter %s: %w", name, err)
	}
	return c, nil
}
