package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nerdsrescueme/norm/assume"
)

// Table is the immutable descriptor of one physical table: its columns in
// declaration order, its constraints, and its primary key column(s).
type Table struct {
	Name        string
	Columns     []*Column
	Constraints []*Constraint
	// Primary holds the primary key column, or two columns for a
	// composite key. Wider composite keys are not supported.
	Primary []*Column

	index   map[string]*Column
	rawCols []RawColumn
	rawCons []RawConstraint
}

// NewTable hydrates a descriptor from catalog rows. Constraint rows of
// types other than primary/unique/foreign (e.g. CHECK) are ignored.
func NewTable(name string, cols []RawColumn, cons []RawConstraint, rules *assume.Registry) (*Table, error) {
	if rules == nil {
		rules = assume.Default
	}
	t := &Table{
		Name:    name,
		index:   make(map[string]*Column, len(cols)),
		rawCols: cols,
		rawCons: cons,
	}

	for _, raw := range cols {
		c, err := NewColumn(raw, rules)
		if err != nil {
			return nil, fmt.Errorf("schema: table %s: %w", name, err)
		}
		t.Columns = append(t.Columns, c)
		t.index[c.FieldName()] = c
		if c.Primary() {
			if len(t.Primary) == 2 {
				return nil, fmt.Errorf("schema: table %s: composite primary keys wider than two columns are not supported", name)
			}
			t.Primary = append(t.Primary, c)
		}
	}

	for _, raw := range cons {
		switch strings.ToUpper(raw.Type) {
		case "PRIMARY KEY", "UNIQUE", "FOREIGN KEY":
		default:
			continue
		}
		c, err := NewConstraint(raw)
		if err != nil {
			return nil, fmt.Errorf("schema: table %s: %w", name, err)
		}
		t.Constraints = append(t.Constraints, c)
	}

	return t, nil
}

// Column looks a column up by field name.
func (t *Table) Column(field string) (*Column, bool) {
	c, ok := t.index[field]
	return c, ok
}

// ColumnNames returns the field names in declaration order, minus any
// excluded names.
func (t *Table) ColumnNames(exclude ...string) []string {
	skip := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		skip[e] = struct{}{}
	}
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if _, ok := skip[c.FieldName()]; ok {
			continue
		}
		names = append(names, c.FieldName())
	}
	return names
}

// Constraint looks a constraint up by name.
func (t *Table) Constraint(name string) (*Constraint, bool) {
	for _, c := range t.Constraints {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

type tableEnvelope struct {
	Name        string          `json:"name"`
	Columns     []RawColumn     `json:"columns"`
	Constraints []RawConstraint `json:"constraints"`
}

// Encode serializes the descriptor's catalog facts for the datastore.
// Derived state (rules, key roles) is rebuilt on decode.
func (t *Table) Encode() ([]byte, error) {
	return json.Marshal(tableEnvelope{Name: t.Name, Columns: t.rawCols, Constraints: t.rawCons})
}

// DecodeTable rebuilds a descriptor from its serialized form.
func DecodeTable(data []byte, rules *assume.Registry) (*Table, error) {
	var env tableEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("schema: decode table: %w", err)
	}
	return NewTable(env.Name, env.Columns, env.Constraints, rules)
}
