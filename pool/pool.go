// Package pool wraps the process's single database handle. One pool is
// created per connection identifier and reused for the process lifetime;
// a dropped connection surfaces as an error to the caller, no retry or
// backoff is attempted here.
package pool

import (
	"context"
	"database/sql"
	"time"
)

// Pool is the executor surface the model layer runs statements through.
type Pool interface {
	Close() error
	SetMaxOpenConns(n int)
	SetMaxIdleConns(n int)
	SetConnMaxLifetime(d time.Duration)
	Ping() error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// StdPool implements Pool over the standard library's *sql.DB.
type StdPool struct {
	*sql.DB
}

// NewStdPool wraps an opened *sql.DB.
func NewStdPool(db *sql.DB) *StdPool {
	return &StdPool{db}
}
