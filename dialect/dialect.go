// Package dialect isolates database-specific SQL: identifier quoting,
// placeholder syntax, write-statement shapes, and the catalog queries the
// schema registry introspects through.
package dialect

import (
	"database/sql"

	"github.com/nerdsrescueme/norm/schema"
)

// Dialect is implemented once per supported database.
type Dialect interface {
	// Quote wraps a table or column name in the database's quote style.
	Quote(name string) string
	// Placeholder returns the bind marker for the 1-based parameter index.
	Placeholder(index int) string
	// InsertSQL builds a full-column INSERT, or the database's REPLACE
	// form when replace is set; databases without one return an error.
	InsertSQL(table string, columns []string, replace bool) (string, error)
	// TablesSQL lists the user tables of the current schema.
	TablesSQL(schemaName string) (string, []any)
	// ColumnsSQL queries the catalog for a table's column facts; an empty
	// schema name means the connection's current schema.
	ColumnsSQL(schemaName, table string) (string, []any)
	// ConstraintsSQL queries the catalog for a table's constraints.
	ConstraintsSQL(schemaName, table string) (string, []any)
	// ScanColumns maps the ColumnsSQL result set into catalog rows.
	ScanColumns(rows *sql.Rows) ([]schema.RawColumn, error)
	// ScanConstraints maps the ConstraintsSQL result set for a table.
	ScanConstraints(table string, rows *sql.Rows) ([]schema.RawConstraint, error)
}

var dialects = make(map[string]Dialect)

// Register binds a dialect to a driver name.
func Register(name string, d Dialect) {
	dialects[name] = d
}

// Get retrieves a registered dialect by driver name.
func Get(name string) (Dialect, bool) {
	d, ok := dialects[name]
	return d, ok
}
