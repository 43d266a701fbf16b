// SPDX-License-Identifier: MPL-2.0

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/hashicorp/go-multierror"
	_ "github.com/mattn/go-sqlite3"

	"github.com/te2run/te2run/internal/counter"
	"github.com/te2run/te2run/internal/functions"
)

// DatabaseServiceName is the key under which the *sql.DB is published.
const DatabaseServiceName = "database"

// Driver and store names accepted in preferences.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"

	CounterStoreMemory   = "memory"
	CounterStoreDatabase = "database"
)

var (
	// ErrUnsupportedDriver is returned for database drivers other than sqlite3 and mysql.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	// ErrUnsupportedStore is returned for an unknown counter store.
	ErrUnsupportedStore = errors.New("unsupported counter store")
	// ErrDatabaseRequired is returned when counters are stored in a database
	// but no database preferences were given.
	ErrDatabaseRequired = errors.New("counter store requires database preferences")
)

type (
	// DatabasePreferences selects the database shared by built-in services.
	DatabasePreferences struct {
		Driver string
		DSN    string
	}

	// CounterPreferences selects where counters are kept.
	CounterPreferences struct {
		Store string
		Table string
	}

	// Provider owns the services available to built-in functions during a run.
	Provider struct {
		db       *sql.DB
		counters *counter.Service
	}
)

var _ functions.ServiceLocator = (*Provider)(nil)

// NewProvider opens the configured database (if any) and the counter store.
// Nil preferences select the defaults: no database and in-memory counters.
func NewProvider(ctx context.Context, dbPref *DatabasePreferences, counterPref *CounterPreferences) (*Provider, error) {
	p := &Provider{}

	if dbPref != nil && dbPref.Driver != "" {
		db, err := openDatabase(ctx, *dbPref)
		if err != nil {
			return nil, err
		}
		p.db = db
	}

	store, err := p.openCounterStore(ctx, counterPref)
	if err != nil {
		_ = p.Close() // the store error is the one worth reporting
		return nil, err
	}
	p.counters = counter.NewService(store)

	return p, nil
}

// Lookup resolves a named service.
func (p *Provider) Lookup(name string) (any, bool) {
	switch name {
	case counter.ServiceName:
		if p.counters == nil {
			return nil, false
		}
		return p.counters, true
	case DatabaseServiceName:
		if p.db == nil {
			return nil, false
		}
		return p.db, true
	default:
		return nil, false
	}
}

// Close releases the counter store and the database.
func (p *Provider) Close() error {
	var result *multierror.Error
	if p.counters != nil {
		if err := p.counters.Store().Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close counter store: %w", err))
		}
	}
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close database: %w", err))
		}
	}
	return result.ErrorOrNil()
}

func (p *Provider) openCounterStore(ctx context.Context, pref *CounterPreferences) (counter.Store, error) {
	storeName := CounterStoreMemory
	table := ""
	if pref != nil {
		if pref.Store != "" {
			storeName = pref.Store
		}
		table = pref.Table
	}

	switch storeName {
	case CounterStoreMemory:
		return counter.NewMemoryStore(), nil
	case CounterStoreDatabase:
		if p.db == nil {
			return nil, ErrDatabaseRequired
		}
		return counter.NewSQLStore(ctx, p.db, table)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedStore, storeName)
	}
}

func openDatabase(ctx context.Context, pref DatabasePreferences) (*sql.DB, error) {
	switch pref.Driver {
	case DriverSQLite:
	case DriverMySQL:
		if _, err := mysql.ParseDSN(pref.DSN); err != nil {
			return nil, fmt.Errorf("invalid mysql DSN: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, pref.Driver)
	}

	db, err := sql.Open(pref.Driver, pref.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", pref.Driver, err)
	}
	if pref.Driver == DriverSQLite {
		// every sqlite3 connection to ":memory:" opens its own database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", pref.Driver, err)
	}
	return db, nil
}
