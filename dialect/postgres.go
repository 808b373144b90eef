package dialect

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/nerdsrescueme/norm/schema"
)

type postgres struct{}

func init() {
	Register("postgres", &postgres{})
}

func (d *postgres) Quote(name string) string {
	return `"` + name + `"`
}

func (d *postgres) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

func (d *postgres) InsertSQL(table string, columns []string, replace bool) (string, error) {
	if replace {
		return "", fmt.Errorf("dialect: postgres has no REPLACE statement")
	}
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = d.Quote(col)
		placeholders[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.Quote(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	), nil
}

func (d *postgres) TablesSQL(schemaName string) (string, []any) {
	return `SELECT tablename FROM pg_catalog.pg_tables
		WHERE schemaname = COALESCE(NULLIF($1, ''), current_schema())
		ORDER BY tablename`, []any{schemaName}
}

func (d *postgres) ColumnsSQL(schemaName, table string) (string, []any) {
	// column_type and the key flag are synthesised to match the MySQL
	// catalog shape the schema package parses.
	return `SELECT c.column_name,
			c.column_default,
			c.is_nullable,
			c.udt_name,
			c.udt_name ||
				CASE WHEN c.character_maximum_length IS NOT NULL
					THEN '(' || c.character_maximum_length || ')'
					WHEN c.numeric_precision IS NOT NULL AND c.udt_name NOT IN ('float4', 'float8')
					THEN '(' || c.numeric_precision || ')'
					ELSE ''
				END,
			COALESCE((SELECT CASE tc.constraint_type WHEN 'PRIMARY KEY' THEN 'PRI' WHEN 'UNIQUE' THEN 'UNI' END
				FROM information_schema.key_column_usage kcu
				JOIN information_schema.table_constraints tc
					ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
				WHERE kcu.table_schema = c.table_schema AND kcu.table_name = c.table_name
					AND kcu.column_name = c.column_name
					AND tc.constraint_type IN ('PRIMARY KEY', 'UNIQUE')
				ORDER BY CASE tc.constraint_type WHEN 'PRIMARY KEY' THEN 0 ELSE 1 END
				LIMIT 1), ''),
			CASE WHEN c.column_default LIKE 'nextval(%' THEN 'auto_increment' ELSE '' END,
			COALESCE(col_description(format('%I.%I', c.table_schema, c.table_name)::regclass::oid, c.ordinal_position), '')
		FROM information_schema.columns c
		WHERE c.table_schema = COALESCE(NULLIF($1, ''), current_schema()) AND c.table_name = $2
		ORDER BY c.ordinal_position`, []any{schemaName, table}
}

func (d *postgres) ConstraintsSQL(schemaName, table string) (string, []any) {
	return `SELECT constraint_name, constraint_type
		FROM information_schema.table_constraints
		WHERE table_schema = COALESCE(NULLIF($1, ''), current_schema()) AND table_name = $2`, []any{schemaName, table}
}

func (d *postgres) ScanColumns(rows *sql.Rows) ([]schema.RawColumn, error) {
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
			DataType:   mapPgType(dataType),
			ColumnType: mapPgType(columnType),
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

// mapPgType folds postgres type names onto the keywords the schema parser
// classifies.
func mapPgType(t string) string {
	repl := strings.NewReplacer(
		"int2", "int",
		"int4", "int",
		"int8", "int",
		"float4", "double",
		"float8", "double",
		"numeric", "double",
		"bool", "tinyint(1)",
		"bpchar", "char",
		"timestamptz", "timestamp",
		"timetz", "time",
	)
	return repl.Replace(t)
}

func (d *postgres) ScanConstraints(_ string, rows *sql.Rows) ([]schema.RawConstraint, error) {
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
