package core

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/nerdsrescueme/norm/schema"
)

// Model is one row-in-progress bound to a table descriptor. Field writes
// pass through the column's validation rules; failures accumulate in
// Errors and leave the field untouched. Validation is never a Go error:
// callers poll HasErrors after a batch of assignments.
type Model struct {
	db    *DB
	table *schema.Table

	values map[string]any
	dirty  map[string]struct{}

	// Errors maps field names to formatted validation messages.
	Errors map[string][]string

	// ignoreAssumptions bypasses validation while trusted rows read back
	// from the database are hydrated.
	ignoreAssumptions bool

	omitted   []string
	lastQuery string
}

func newModel(db *DB, t *schema.Table) *Model {
	return &Model{
		db:     db,
		table:  t,
		values: make(map[string]any),
		dirty:  make(map[string]struct{}),
		Errors: make(map[string][]string),
	}
}

// Table returns the table name the model is bound to.
func (m *Model) Table() string { return m.table.Name }

// Definition returns the table's column set, e.g. for form generators
// that enumerate fields without touching the catalog again.
func (m *Model) Definition() []*schema.Column { return m.table.Columns }

// ListColumns returns the column names minus any excluded ones.
func (m *Model) ListColumns(exclude ...string) []string {
	return m.table.ColumnNames(exclude...)
}

// Omit marks columns to leave out when a finder's * is expanded.
func (m *Model) Omit(columns ...string) *Model {
	m.omitted = append(m.omitted, columns...)
	return m
}

// Get returns the current value of a field.
func (m *Model) Get(field string) any {
	return m.values[field]
}

// Has reports whether a field currently holds a value.
func (m *Model) Has(field string) bool {
	_, ok := m.values[field]
	return ok
}

// Unset drops a field's value without marking it dirty.
func (m *Model) Unset(field string) {
	delete(m.values, field)
}

// TrySet assigns a field. The value is coerced and checked by the
// column's rules; on failure the messages land in Errors, the stored
// value is unchanged, and nil is returned — only an unknown field name is
// a Go error.
func (m *Model) TrySet(field string, value any) error {
	col, ok := m.table.Column(field)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, m.table.Name, field)
	}

	if m.ignoreAssumptions {
		m.values[field] = value
		m.dirty[field] = struct{}{}
		return nil
	}

	v, msgs := col.Assume(value)
	if len(msgs) > 0 {
		m.Errors[field] = append(m.Errors[field], msgs...)
		return nil
	}

	m.values[field] = v
	m.dirty[field] = struct{}{}
	return nil
}

// HasErrors reports whether any assignment has failed validation since
// the model was created or Errors was cleared.
func (m *Model) HasErrors() bool { return len(m.Errors) > 0 }

// Clean clears the dirty set; called after a row is hydrated so that a
// subsequent update only writes real changes.
func (m *Model) Clean() {
	m.dirty = make(map[string]struct{})
}

// Dirty returns the changed field names in declaration order.
func (m *Model) Dirty() []string {
	out := make([]string, 0, len(m.dirty))
	for f := range m.dirty {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// LastQuery returns the text of the last statement the model built, for
// diagnostics.
func (m *Model) LastQuery() string { return m.lastQuery }

// ExecResult reports a completed write.
type ExecResult struct {
	RowsAffected int64
	Result       sql.Result
}

// Insert writes a full-column row: every column is bound, absent fields
// bind NULL.
func (m *Model) Insert(ctx context.Context) (*ExecResult, error) {
	return m.write(ctx, false)
}

// Replace is Insert with the dialect's REPLACE verb.
func (m *Model) Replace(ctx context.Context) (*ExecResult, error) {
	return m.write(ctx, true)
}

func (m *Model) write(ctx context.Context, replace bool) (*ExecResult, error) {
	columns := m.table.ColumnNames()
	args := make([]any, len(columns))
	for i, col := range columns {
		if v, ok := m.values[col]; ok {
			args[i] = v
		}
	}

	query, err := m.db.dialect.InsertSQL(m.table.Name, columns, replace)
	if err != nil {
		return nil, err
	}
	m.lastQuery = query

	res, err := m.db.exec(ctx, query, args)
	if err != nil {
		return nil, err
	}
	affected, _ := res.RowsAffected()
	return &ExecResult{RowsAffected: affected, Result: res}, nil
}

// Update writes the dirty fields of a row addressed by its primary key.
// A table without a primary key is a misconfiguration and fails before
// any SQL is built.
func (m *Model) Update(ctx context.Context) (*ExecResult, error) {
	if len(m.table.Primary) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPrimaryKey, m.table.Name)
	}

	columns := m.Dirty()
	if len(columns) == 0 {
		return &ExecResult{}, nil
	}
	values := make([]any, len(columns))
	for i, col := range columns {
		values[i] = m.values[col]
	}

	b := newBuilder(m.db.dialect).Table(m.table.Name)
	defer putBuilder(b)
	m.wherePrimary(b)

	query, args := b.BuildUpdate(columns, values)
	m.lastQuery = query

	res, err := m.db.exec(ctx, query, args)
	if err != nil {
		return nil, err
	}
	affected, _ := res.RowsAffected()
	return &ExecResult{RowsAffected: affected, Result: res}, nil
}

// Delete removes the row addressed by the model's primary key. The WHERE
// clause is built from the primary key only, so a missing key can never
// widen into a table-wide delete.
func (m *Model) Delete(ctx context.Context) (*ExecResult, error) {
	if len(m.table.Primary) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPrimaryKey, m.table.Name)
	}

	b := newBuilder(m.db.dialect).Table(m.table.Name)
	defer putBuilder(b)
	m.wherePrimary(b)

	query, args := b.BuildDelete()
	m.lastQuery = query

	res, err := m.db.exec(ctx, query, args)
	if err != nil {
		return nil, err
	}
	affected, _ := res.RowsAffected()
	return &ExecResult{RowsAffected: affected, Result: res}, nil
}

func (m *Model) wherePrimary(b *builder) {
	for _, pk := range m.table.Primary {
		b.Where(m.db.dialect.Quote(pk.FieldName())+" = ?", m.values[pk.FieldName()])
	}
}
