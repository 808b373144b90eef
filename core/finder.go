package core

import (
	"context"
	"database/sql"
	"strings"
)

// expandColumns replaces a bare * with the quoted column list, minus any
// omitted columns, so finders can be written against the logical field
// set rather than the physical one.
func (m *Model) expandColumns(query string) string {
	if !strings.Contains(query, "*") {
		return query
	}
	names := m.table.ColumnNames(m.omitted...)
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = m.db.dialect.Quote(n)
	}
	return strings.ReplaceAll(query, "*", strings.Join(quoted, ", "))
}

// FindOne runs a query expected to return at most one row and hydrates
// the model with it. No row is ErrRecordNotFound.
func (m *Model) FindOne(ctx context.Context, query string, args ...any) error {
	rows, err := m.query(ctx, query, args)
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Translate(err)
		}
		return ErrRecordNotFound
	}
	if err := m.hydrate(rows); err != nil {
		return err
	}
	return rows.Err()
}

// FindAll runs a query and returns one hydrated model per row.
func (m *Model) FindAll(ctx context.Context, query string, args ...any) ([]*Model, error) {
	rows, err := m.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Model
	for rows.Next() {
		row := newModel(m.db, m.table)
		row.omitted = m.omitted
		if err := row.hydrate(rows); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, Translate(err)
	}
	return out, nil
}

// Find dispatches on the query text: a query containing the literal
// "LIMIT 1" behaves like FindOne and returns the model itself, anything
// else behaves like FindAll and returns the slice.
func (m *Model) Find(ctx context.Context, query string, args ...any) (any, error) {
	if strings.Contains(query, "LIMIT 1") {
		if err := m.FindOne(ctx, query, args...); err != nil {
			return nil, err
		}
		return m, nil
	}
	return m.FindAll(ctx, query, args...)
}

// FindOneBy fetches the single row where field equals value.
func (m *Model) FindOneBy(ctx context.Context, field string, value any) error {
	query, args := m.buildBy(field, value, true)
	return m.FindOne(ctx, query, args...)
}

// FindAllBy fetches every row where field equals value.
func (m *Model) FindAllBy(ctx context.Context, field string, value any) ([]*Model, error) {
	query, args := m.buildBy(field, value, false)
	return m.FindAll(ctx, query, args...)
}

func (m *Model) buildBy(field string, value any, one bool) (string, []any) {
	b := newBuilder(m.db.dialect).Table(m.table.Name)
	defer putBuilder(b)

	names := m.table.ColumnNames(m.omitted...)
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = m.db.dialect.Quote(n)
	}
	b.Select(quoted...)
	b.Where(m.db.dialect.Quote(field)+" = ?", value)
	if one {
		b.Limit(1)
	}
	return b.BuildSelect()
}

// RelatedBy follows a named foreign key constraint. When the constraint
// points away from this table the single parent row is returned; when it
// points here the child rows are. The direction decides the shape, so the
// result is (any, error) like Find.
func (m *Model) RelatedBy(ctx context.Context, constraint string) (any, error) {
	con, ok := m.table.Constraint(constraint)
	if !ok || con.Relation == nil {
		return nil, ErrUnknownRelation
	}
	rel := con.Relation

	if rel.From == m.table.Name {
		target, err := m.db.Model(ctx, rel.To)
		if err != nil {
			return nil, err
		}
		if err := target.FindOneBy(ctx, rel.KeyTo, m.Get(rel.KeyFrom)); err != nil {
			return nil, err
		}
		return target, nil
	}

	source, err := m.db.Model(ctx, rel.From)
	if err != nil {
		return nil, err
	}
	return source.FindAllBy(ctx, rel.KeyFrom, m.Get(rel.KeyTo))
}

func (m *Model) query(ctx context.Context, query string, args []any) (*sql.Rows, error) {
	query = m.expandColumns(query)
	m.lastQuery = query
	return m.db.Query(ctx, query, args...)
}

// hydrate reads the current row into the model, replacing whatever the
// model held before. Values arrive from the database already valid, so
// rules are bypassed and the dirty set is cleared afterwards.
func (m *Model) hydrate(rows *sql.Rows) error {
	cols, err := rows.Columns()
	if err != nil {
		return Translate(err)
	}

	m.values = make(map[string]any, len(cols))
	m.Errors = make(map[string][]string)

	raw := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return Translate(err)
	}

	m.ignoreAssumptions = true
	defer func() { m.ignoreAssumptions = false }()

	for i, name := range cols {
		v := raw[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		if _, known := m.table.Column(name); !known {
			m.values[name] = v
			continue
		}
		if err := m.TrySet(name, v); err != nil {
			return err
		}
	}
	m.Clean()
	return nil
}
