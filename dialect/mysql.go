package dialect

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/nerdsrescueme/norm/schema"
)

// mysql is the reference dialect: the catalog queries below define the
// row shape every other dialect maps into.
type mysql struct{}

func init() {
	Register("mysql", &mysql{})
}

func (d *mysql) Quote(name string) string {
	return "`" + name + "`"
}

func (d *mysql) Placeholder(index int) string {
	return "?"
}

func (d *mysql) InsertSQL(table string, columns []string, replace bool) (string, error) {
	verb := "INSERT"
	if replace {
		verb = "REPLACE"
	}
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = d.Quote(col)
		placeholders[i] = "?"
	}
	return fmt.Sprintf("%s INTO %s (%s) VALUES (%s)",
		verb,
		d.Quote(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	), nil
}

func (d *mysql) TablesSQL(schemaName string) (string, []any) {
	return `SELECT TABLE_NAME FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE()) AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`, []any{schemaName}
}

func (d *mysql) ColumnsSQL(schemaName, table string) (string, []any) {
	return `SELECT COLUMN_NAME, COLUMN_DEFAULT, IS_NULLABLE, DATA_TYPE, COLUMN_TYPE, COLUMN_KEY, EXTRA, COLUMN_COMMENT
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE()) AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`, []any{schemaName, table}
}

func (d *mysql) ConstraintsSQL(schemaName, table string) (string, []any) {
	return `SELECT CONSTRAINT_NAME, CONSTRAINT_TYPE
		FROM information_schema.TABLE_CONSTRAINTS
		WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE()) AND TABLE_NAME = ?`, []any{schemaName, table}
}

func (d *mysql) ScanColumns(rows *sql.Rows) ([]schema.RawColumn, error) {
	var cols []schema.RawColumn
	for rows.Next() {
		var (
			name, nullable, dataType, columnType, key, extra, comment string
			def                                                       sql.NullString
		)
		if err := rows.Scan(&name, &def, &nullable, &dataType, &columnType, &key, &extra, &comment); err != nil {
			return nil, err
		}
		raw := schema.RawColumn{
			Field:      name,
			Nullable:   strings.EqualFold(nullable, "YES"),
			DataType:   dataType,
			ColumnType: columnType,
			Key:        key,
			Extra:      extra,
			Comment:    comment,
		}
		if def.Valid {
			v := def.String
			raw.Default = &v
		}
		cols = append(cols, raw)
	}
	return cols, rows.Err()
}

func (d *mysql) ScanConstraints(_ string, rows *sql.Rows) ([]schema.RawConstraint, error) {
	var cons []schema.RawConstraint
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, err
		}
		cons = append(cons, schema.RawConstraint{Name: name, Type: typ})
	}
	return cons, rows.Err()
}
