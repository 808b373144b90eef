// Package schema reads a table's layout from the database's own catalog,
// derives validation rules for every column, and caches the resulting
// descriptor through a datastore. Descriptors are immutable once built.
package schema

// RawColumn is one catalog row describing a column, in the shape the
// MySQL INFORMATION_SCHEMA.COLUMNS view reports it. Other dialects map
// their catalogs into this shape. It is also the form a table descriptor
// is serialized in, so the derived rules can be rebuilt on decode.
type RawColumn struct {
	Field      string  `json:"field"`
	Default    *string `json:"default"`
	Nullable   bool    `json:"nullable"`
	DataType   string  `json:"data_type"`
	ColumnType string  `json:"column_type"`
	Key        string  `json:"key"`
	Extra      string  `json:"extra"`
	Comment    string  `json:"comment"`
}

// RawConstraint is one catalog row from TABLE_CONSTRAINTS (or the
// dialect's equivalent).
type RawConstraint struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Key flag values as the MySQL catalog reports them.
const (
	keyPrimary  = "PRI"
	keyUnique   = "UNI"
	keyMultiple = "MUL"
)
