package core

import (
	"strings"
	"sync"

	"github.com/nerdsrescueme/norm/dialect"
)

// builder assembles SELECT/UPDATE/DELETE statement text. Conditions are
// written with ? markers and rewritten to the dialect's placeholder syntax
// at build time, keeping SET-clause parameters distinct from WHERE-clause
// parameters by position.
type builder struct {
	dialect   dialect.Dialect
	table     string
	selects   []string
	whereExpr string
	whereArgs []any
	orderBy   []string
	limitSet  bool
	limit     int
	sb        strings.Builder
}

var builderPool = sync.Pool{
	New: func() any {
		return &builder{}
	},
}

func newBuilder(d dialect.Dialect) *builder {
	b := builderPool.Get().(*builder)
	b.reset(d)
	return b
}

func putBuilder(b *builder) {
	b.reset(nil)
	builderPool.Put(b)
}

func (b *builder) reset(d dialect.Dialect) {
	b.dialect = d
	b.table = ""
	b.selects = b.selects[:0]
	b.whereExpr = ""
	b.whereArgs = b.whereArgs[:0]
	b.orderBy = b.orderBy[:0]
	b.limitSet = false
	b.limit = 0
	b.sb.Reset()
}

func (b *builder) Table(name string) *builder {
	b.table = name
	return b
}

func (b *builder) Select(columns ...string) *builder {
	b.selects = append(b.selects, columns...)
	return b
}

func (b *builder) Where(cond string, args ...any) *builder {
	if cond == "" {
		return b
	}
	if b.whereExpr == "" {
		b.whereExpr = "(" + cond + ")"
	} else {
		b.whereExpr = b.whereExpr + " AND (" + cond + ")"
	}
	b.whereArgs = append(b.whereArgs, args...)
	return b
}

func (b *builder) OrderBy(columns ...string) *builder {
	b.orderBy = append(b.orderBy, columns...)
	return b
}

func (b *builder) Limit(n int) *builder {
	b.limitSet = true
	b.limit = n
	return b
}

func (b *builder) replacePlaceholders(sqlStr string) string {
	if !strings.Contains(sqlStr, "?") {
		return sqlStr
	}

	b.sb.Reset()
	index := 1
	for {
		idx := strings.Index(sqlStr, "?")
		if idx == -1 {
			b.sb.WriteString(sqlStr)
			break
		}
		b.sb.WriteString(sqlStr[:idx])
		b.sb.WriteString(b.dialect.Placeholder(index))
		sqlStr = sqlStr[idx+1:]
		index++
	}
	return b.sb.String()
}

// BuildSelect produces the SELECT statement and its arguments.
func (b *builder) BuildSelect() (string, []any) {
	b.sb.Reset()
	args := make([]any, 0, len(b.whereArgs)+1)

	b.sb.WriteString("SELECT ")
	if len(b.selects) > 0 {
		b.sb.WriteString(strings.Join(b.selects, ", "))
	} else {
		b.sb.WriteString("*")
	}

	b.sb.WriteString(" FROM ")
	b.sb.WriteString(b.dialect.Quote(b.table))

	if b.whereExpr != "" {
		b.sb.WriteString(" WHERE ")
		b.sb.WriteString(b.whereExpr)
		args = append(args, b.whereArgs...)
	}

	if len(b.orderBy) > 0 {
		b.sb.WriteString(" ORDER BY ")
		b.sb.WriteString(strings.Join(b.orderBy, ", "))
	}

	if b.limitSet {
		b.sb.WriteString(" LIMIT ?")
		args = append(args, b.limit)
	}

	return b.replacePlaceholders(b.sb.String()), args
}

// BuildUpdate produces an UPDATE over the given columns in order; the
// WHERE arguments follow the SET arguments positionally.
func (b *builder) BuildUpdate(columns []string, values []any) (string, []any) {
	b.sb.Reset()
	args := make([]any, 0, len(values)+len(b.whereArgs))

	b.sb.WriteString("UPDATE ")
	b.sb.WriteString(b.dialect.Quote(b.table))
	b.sb.WriteString(" SET ")

	for i, col := range columns {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.sb.WriteString(b.dialect.Quote(col))
		b.sb.WriteString(" = ?")
		args = append(args, values[i])
	}

	if b.whereExpr != "" {
		b.sb.WriteString(" WHERE ")
		b.sb.WriteString(b.whereExpr)
		args = append(args, b.whereArgs...)
	}

	return b.replacePlaceholders(b.sb.String()), args
}

// BuildDelete produces a DELETE bounded by the builder's WHERE clause.
func (b *builder) BuildDelete() (string, []any) {
	b.sb.Reset()
	args := make([]any, 0, len(b.whereArgs))

	b.sb.WriteString("DELETE FROM ")
	b.sb.WriteString(b.dialect.Quote(b.table))

	if b.whereExpr != "" {
		b.sb.WriteString(" WHERE ")
		b.sb.WriteString(b.whereExpr)
		args = append(args, b.whereArgs...)
	}

	return b.replacePlaceholders(b.sb.String()), args
}
