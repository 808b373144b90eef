// Package core orchestrates the model layer: it owns the database handle,
// hands out table-bound models, gates writes through the schema's
// validation rules, and synthesises the SQL the models execute.
package core

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nerdsrescueme/norm/assume"
	"github.com/nerdsrescueme/norm/datastore"
	"github.com/nerdsrescueme/norm/dialect"
	"github.com/nerdsrescueme/norm/logger"
	"github.com/nerdsrescueme/norm/pool"
	"github.com/nerdsrescueme/norm/schema"
)

// Options configures a DB.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Schema is the database/schema name catalog queries filter by.
	// Empty means the connection's current schema.
	Schema string
	// Store caches table descriptors across processes. Nil disables the
	// external cache; in-process memoization still applies.
	Store datastore.Store
	// SchemaTTL bounds the life of a cached descriptor.
	SchemaTTL time.Duration
	// Rules overrides the assumption registry used when columns are
	// derived; nil means the built-in rule set.
	Rules *assume.Registry
}

// DB is the entry point: one per connection identifier, reused for the
// process lifetime.
type DB struct {
	pool     pool.Pool
	dialect  dialect.Dialect
	logger   logger.Logger
	registry *schema.Registry
}

// Open connects, pings, and wires a DB for the given driver and DSN.
func Open(driver, dsn string, opts *Options) (*DB, error) {
	d, ok := dialect.Get(driver)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDialect, driver)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	p := pool.NewStdPool(sqlDB)
	if opts != nil {
		if opts.MaxOpenConns > 0 {
			p.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			p.SetMaxIdleConns(opts.MaxIdleConns)
		}
		if opts.ConnMaxLifetime > 0 {
			p.SetConnMaxLifetime(opts.ConnMaxLifetime)
		}
	}

	if err := p.Ping(); err != nil {
		return nil, err
	}

	return New(p, d, opts), nil
}

// New wires a DB over an existing pool and dialect. Open is the usual
// path; New exists for hosts that manage their own handles.
func New(p pool.Pool, d dialect.Dialect, opts *Options) *DB {
	if opts == nil {
		opts = &Options{}
	}
	db := &DB{
		pool:    p,
		dialect: d,
		logger:  logger.NewStdLogger(),
	}
	src := &catalogSource{pool: p, dialect: d, schema: opts.Schema}
	db.registry = schema.NewRegistry(src, opts.Store, opts.Rules, opts.SchemaTTL)
	return db
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.pool.Close()
}

// SetLogger replaces the logger.
func (db *DB) SetLogger(l logger.Logger) {
	db.logger = l
}

// Dialect exposes the wired dialect.
func (db *DB) Dialect() dialect.Dialect {
	return db.dialect
}

// Registry exposes the schema registry, e.g. for tooling that enumerates
// table descriptors.
func (db *DB) Registry() *schema.Registry {
	return db.registry
}

// Model returns a model bound to the named table, introspecting the
// table's schema on first use.
func (db *DB) Model(ctx context.Context, table string) (*Model, error) {
	t, err := db.registry.Load(ctx, table)
	if err != nil {
		return nil, err
	}
	return newModel(db, t), nil
}

// Exec runs a raw statement, with SQL logging and error translation.
func (db *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.exec(ctx, query, args)
}

// Query runs a raw query, with SQL logging and error translation.
func (db *DB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := db.pool.QueryContext(ctx, query, args...)
	db.logSQL(query, time.Since(start), args...)
	if err != nil {
		return nil, Translate(err)
	}
	return rows, nil
}

func (db *DB) exec(ctx context.Context, query string, args []any) (sql.Result, error) {
	start := time.Now()
	res, err := db.pool.ExecContext(ctx, query, args...)
	db.logSQL(query, time.Since(start), args...)
	if err != nil {
		return nil, Translate(err)
	}
	return res, nil
}

func (db *DB) logSQL(query string, duration time.Duration, args ...any) {
	if db.logger != nil {
		db.logger.SQL(query, duration, args...)
	}
}

// Transaction executes fn within a transaction, rolling back on error or
// panic.
func (db *DB) Transaction(ctx context.Context, fn func(tx *Tx) error) error {
	start := time.Now()
	sqlTx, err := db.pool.BeginTx(ctx, nil)
	db.logSQL("BEGIN", time.Since(start))
	if err != nil {
		return Translate(err)
	}

	tx := &Tx{db: db, sqlTx: sqlTx}

	defer func() {
		if p := recover(); p != nil {
			start := time.Now()
			_ = sqlTx.Rollback()
			db.logSQL("ROLLBACK", time.Since(start))
			panic(p)
		} else if err != nil {
			start := time.Now()
			_ = sqlTx.Rollback()
			db.logSQL("ROLLBACK", time.Since(start))
		} else {
			start := time.Now()
			err = sqlTx.Commit()
			db.logSQL("COMMIT", time.Since(start))
		}
	}()

	err = fn(tx)
	return err
}

// catalogSource adapts the pool and dialect into the schema registry's
// introspection source.
type catalogSource struct {
	pool    pool.Pool
	dialect dialect.Dialect
	schema  string
}

func (s *catalogSource) Columns(ctx context.Context, table string) ([]schema.RawColumn, error) {
	query, args := s.dialect.ColumnsSQL(s.schema, table)
	rows, err := s.pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, Translate(err)
	}
	defer rows.Close()
	return s.dialect.ScanColumns(rows)
}

func (s *catalogSource) Constraints(ctx context.Context, table string) ([]schema.RawConstraint, error) {
	query, args := s.dialect.ConstraintsSQL(s.schema, table)
	rows, err := s.pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, Translate(err)
	}
	defer rows.Close()
	return s.dialect.ScanConstraints(table, rows)
}
