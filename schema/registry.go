package schema

import (
	"context"
	"sync"
	"time"

	"github.com/nerdsrescueme/norm/assume"
	"github.com/nerdsrescueme/norm/datastore"
)

// DefaultTTL is how long a cached descriptor lives in the datastore.
const DefaultTTL = 60 * time.Minute

// Source produces catalog rows for a table. The core package adapts a
// connection pool plus a dialect into this interface.
type Source interface {
	Columns(ctx context.Context, table string) ([]RawColumn, error)
	Constraints(ctx context.Context, table string) ([]RawConstraint, error)
}

// Registry hands out table descriptors by name, introspecting at most
// once per table per process. Loads race to the same immutable result, so
// no coordination beyond the map is needed, and the external datastore is
// plain last-write-wins.
type Registry struct {
	source Source
	store  datastore.Store
	rules  *assume.Registry
	ttl    time.Duration
	tables sync.Map
}

// NewRegistry wires a registry to its catalog source and datastore. A nil
// store disables the external cache; a nil rules registry falls back to
// the built-in rule set.
func NewRegistry(src Source, store datastore.Store, rules *assume.Registry, ttl time.Duration) *Registry {
	if rules == nil {
		rules = assume.Default
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{source: src, store: store, rules: rules, ttl: ttl}
}

// CacheKey returns the datastore key a table's descriptor is stored under.
func CacheKey(table string) string {
	return table + ".model-cache"
}

// Load returns the descriptor for a table, from the in-process map, the
// datastore, or a catalog pass, in that order. The datastore write after
// an introspection is best-effort: a failed write is ignored.
func (r *Registry) Load(ctx context.Context, table string) (*Table, error) {
	if cached, ok := r.tables.Load(table); ok {
		return cached.(*Table), nil
	}

	if r.store != nil {
		if data, err := r.store.Read(ctx, CacheKey(table)); err == nil {
			if t, err := DecodeTable(data, r.rules); err == nil {
				r.tables.Store(table, t)
				return t, nil
			}
			// A stale or unreadable cache entry falls through to the catalog.
		}
	}

	cols, err := r.source.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	cons, err := r.source.Constraints(ctx, table)
	if err != nil {
		return nil, err
	}

	t, err := NewTable(table, cols, cons, r.rules)
	if err != nil {
		return nil, err
	}

	if r.store != nil {
		if data, err := t.Encode(); err == nil {
			_ = r.store.Write(ctx, CacheKey(table), data, r.ttl)
		}
	}

	r.tables.Store(table, t)
	return t, nil
}

// Forget drops a table from the in-process map, forcing the next Load to
// consult the datastore or the catalog again.
func (r *Registry) Forget(table string) {
	r.tables.Delete(table)
}
