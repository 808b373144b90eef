package dialect

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/nerdsrescueme/norm/schema"
)

// sqlite3 maps PRAGMA output onto the catalog row shape. SQLite has no
// column comments, so the comment rule annotation is unavailable there.
type sqlite3 struct{}

func init() {
	Register("sqlite3", &sqlite3{})
}

func (d *sqlite3) Quote(name string) string {
	return "`" + name + "`"
}

func (d *sqlite3) Placeholder(index int) string {
	return "?"
}

func (d *sqlite3) InsertSQL(table string, columns []string, replace bool) (string, error) {
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

func (d *sqlite3) TablesSQL(string) (string, []any) {
	return "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name", nil
}

func (d *sqlite3) ColumnsSQL(_, table string) (string, []any) {
	// PRAGMA statements cannot be parameterized.
	return fmt.Sprintf("PRAGMA table_info(%s)", d.Quote(table)), nil
}

func (d *sqlite3) ConstraintsSQL(_, table string) (string, []any) {
	return fmt.Sprintf("PRAGMA foreign_key_list(%s)", d.Quote(table)), nil
}

func (d *sqlite3) ScanColumns(rows *sql.Rows) ([]schema.RawColumn, error) {
	var cols []schema.RawColumn
	for rows.Next() {
		var (
			cid, notnull, pk int
			name, typ        string
			def              sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &def, &pk); err != nil {
			return nil, err
		}
		raw := schema.RawColumn{
			Field:      name,
			Nullable:   notnull == 0,
			DataType:   baseType(typ),
			ColumnType: mapSqliteType(typ),
		}
		if pk > 0 {
			raw.Key = "PRI"
			// SQLite's INTEGER PRIMARY KEY is the rowid alias.
			if strings.EqualFold(baseType(typ), "integer") || strings.EqualFold(baseType(typ), "int") {
				raw.Extra = "auto_increment"
			}
		}
		if def.Valid {
			v := def.String
			raw.Default = &v
		}
		cols = append(cols, raw)
	}
	return cols, rows.Err()
}

func baseType(typ string) string {
	t := strings.ToLower(strings.TrimSpace(typ))
	if i := strings.Index(t, "("); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}

// mapSqliteType folds SQLite's loose type names onto the keywords the
// schema parser classifies.
func mapSqliteType(typ string) string {
	t := strings.ToLower(strings.TrimSpace(typ))
	switch baseType(t) {
	case "integer", "bigint", "smallint", "mediumint":
		return strings.Replace(t, baseType(t), "int", 1)
	case "real", "float", "numeric", "decimal":
		return strings.Replace(t, baseType(t), "double", 1)
	case "clob", "blob", "string":
		return strings.Replace(t, baseType(t), "text", 1)
	case "boolean":
		return "tinyint(1)"
	case "":
		return "text"
	}
	return t
}

func (d *sqlite3) ScanConstraints(table string, rows *sql.Rows) ([]schema.RawConstraint, error) {
	var cons []schema.RawConstraint
	for rows.Next() {
		var (
			id, seq                         int
			target, from, to                string
			onUpdate, onDelete, matchClause string
		)
		if err := rows.Scan(&id, &seq, &target, &from, &to, &onUpdate, &onDelete, &matchClause); err != nil {
			return nil, err
		}
		// SQLite foreign keys are unnamed; synthesise the naming
		// convention the constraint parser decodes.
		cons = append(cons, schema.RawConstraint{
			Name: fmt.Sprintf("%s-%s-%s-%s", table, from, target, to),
			Type: "FOREIGN KEY",
		})
	}
	return cons, rows.Err()
}
