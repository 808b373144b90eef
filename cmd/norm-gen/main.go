// Command norm-gen connects to a database, introspects its tables through
// the schema registry, and writes one Go model file per table.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nerdsrescueme/norm/core"
	"github.com/nerdsrescueme/norm/schema"
)

const modelTemplate = `// Code generated by norm-gen. DO NOT EDIT.

package {{.Package}}

{{if .NeedsTime}}import (
	"time"
)

{{end}}// {{.StructName}} maps the {{.RawTableName}} table.
type {{.StructName}} struct {
{{- range .Fields}}
	{{.Name}} {{.Type}} ` + "`" + `norm:"{{.Tag}}"` + "`" + `{{if .Comment}} // {{.Comment}}{{end}}
{{- end}}
}

// TableName returns the underlying table name.
func (m *{{.StructName}}) TableName() string {
	return "{{.RawTableName}}"
}
`

type field struct {
	Name    string
	Type    string
	Tag     string
	Comment string
}

type modelData struct {
	Package      string
	StructName   string
	RawTableName string
	NeedsTime    bool
	Fields       []field
}

var rootCmd = &cobra.Command{
	Use:   "norm-gen",
	Short: "Generate Go model files from live database tables",
	Long: `norm-gen introspects a database and writes one Go source file per table,
with struct fields derived from the column definitions.

Examples:
  norm-gen --driver mysql --dsn "user:pass@/mydb" --out ./models
  norm-gen --driver sqlite3 --dsn app.db --table users --pkg models`,
	RunE: run,
}

func init() {
	rootCmd.Flags().String("driver", "sqlite3", "database driver (mysql, postgres, sqlite3)")
	rootCmd.Flags().String("dsn", "", "database connection string (required)")
	rootCmd.Flags().String("schema", "", "schema name (defaults to the connection's database)")
	rootCmd.Flags().String("table", "", "generate a single table instead of all of them")
	rootCmd.Flags().String("pkg", "models", "package name for generated files")
	rootCmd.Flags().String("out", "./models", "output directory")
	rootCmd.Flags().Bool("overwrite", false, "overwrite existing files")

	rootCmd.MarkFlagRequired("dsn")

	viper.BindPFlag("driver", rootCmd.Flags().Lookup("driver"))
	viper.BindPFlag("dsn", rootCmd.Flags().Lookup("dsn"))
	viper.BindPFlag("schema", rootCmd.Flags().Lookup("schema"))
	viper.BindPFlag("table", rootCmd.Flags().Lookup("table"))
	viper.BindPFlag("pkg", rootCmd.Flags().Lookup("pkg"))
	viper.BindPFlag("out", rootCmd.Flags().Lookup("out"))
	viper.BindPFlag("overwrite", rootCmd.Flags().Lookup("overwrite"))

	viper.SetEnvPrefix("NORM")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, err := core.Open(viper.GetString("driver"), viper.GetString("dsn"), &core.Options{
		Schema: viper.GetString("schema"),
	})
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	var tables []string
	if t := viper.GetString("table"); t != "" {
		tables = []string{t}
	} else {
		tables, err = listTables(ctx, db)
		if err != nil {
			return fmt.Errorf("list tables: %w", err)
		}
	}

	outDir := viper.GetString("out")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmpl := template.Must(template.New("model").Parse(modelTemplate))
	overwrite := viper.GetBool("overwrite")

	for _, table := range tables {
		if err := generate(ctx, db, tmpl, table, outDir, overwrite); err != nil {
			return fmt.Errorf("table %s: %w", table, err)
		}
	}
	return nil
}

func listTables(ctx context.Context, db *core.DB) ([]string, error) {
	query, arg := db.Dialect().TablesSQL(viper.GetString("schema"))
	rows, err := db.Query(ctx, query, arg...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func generate(ctx context.Context, db *core.DB, tmpl *template.Template, table, outDir string, overwrite bool) error {
	m, err := db.Model(ctx, table)
	if err != nil {
		return err
	}

	fileName := filepath.Join(outDir, strings.ToLower(table)+".go")
	if _, err := os.Stat(fileName); err == nil && !overwrite {
		fmt.Fprintf(os.Stderr, "skip %s: file exists (use --overwrite)\n", fileName)
		return nil
	}

	data := modelData{
		Package:      viper.GetString("pkg"),
		StructName:   snakeToCamel(table),
		RawTableName: table,
	}
	for _, col := range m.Definition() {
		typ := goType(col)
		if typ == "time.Time" {
			data.NeedsTime = true
		}
		data.Fields = append(data.Fields, field{
			Name:    snakeToCamel(col.FieldName()),
			Type:    typ,
			Tag:     columnTag(col),
			Comment: col.Comment(),
		})
	}

	f, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return err
	}
	fmt.Printf("generated %s -> %s\n", table, fileName)
	return nil
}

func goType(col *schema.Column) string {
	switch {
	case col.Is("tinyint") && col.TypeConstraint() == "1":
		return "bool"
	case col.Is("bigint"):
		return "int64"
	case col.Is("int"), col.Is("tinyint"), col.Is("smallint"), col.Is("mediumint"):
		return "int"
	case col.Is("double"), col.Is("float"), col.Is("decimal"):
		return "float64"
	case col.Is("date"), col.Is("datetime"), col.Is("timestamp"), col.Is("time"):
		return "time.Time"
	case col.Is("blob"), col.Is("binary"):
		return "[]byte"
	default:
		return "string"
	}
}

func columnTag(col *schema.Column) string {
	tags := []string{"column:" + col.FieldName()}
	if col.Primary() {
		tags = append(tags, "pk")
		if col.Automatic() {
			tags = append(tags, "auto")
		}
	}
	if !col.Nullable() {
		tags = append(tags, "notnull")
	}
	if col.Unique() {
		tags = append(tags, "unique")
	}
	if c := col.TypeConstraint(); c != "" && col.Is("varchar") {
		tags = append(tags, "size:"+c)
	}
	return strings.Join(tags, ";")
}

func snakeToCamel(s string) string {
	parts := strings.Split(s, "_")
	for i, p := range parts {
		if p == "id" {
			parts[i] = "ID"
			continue
		}
		if p == "" {
			continue
		}
		runes := []rune(p)
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, "")
}
