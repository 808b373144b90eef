package schema

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/nerdsrescueme/norm/assume"
)

// Column is one table column: the declared facts from the catalog plus the
// validation rules derived from them. Immutable after construction.
type Column struct {
	raw RawColumn

	typ        string // base type keyword, lowercased
	constraint string // type parameter: varchar length, enum list, digit count
	unsigned   bool
	zerofill   bool

	primary   bool
	unique    bool
	multiple  bool
	automatic bool

	assumptions []assume.Assumption
}

// NewColumn parses a catalog row and assigns the column's rules: the
// Required rule first when the column is NOT NULL, then the rule its type
// family implies, then any rules named in the comment annotation.
func NewColumn(raw RawColumn, rules *assume.Registry) (*Column, error) {
	c := &Column{raw: raw}
	c.typ, c.constraint, c.unsigned, c.zerofill = parseColumnType(raw.ColumnType)
	if c.typ == "" {
		c.typ = strings.ToLower(raw.DataType)
	}
	c.automatic = strings.Contains(strings.ToLower(raw.Extra), "auto_increment")

	switch raw.Key {
	case keyPrimary:
		c.primary = true
	case keyUnique:
		c.unique = true
	case keyMultiple:
		c.multiple = true
	}

	c.assignGlobal()
	if err := c.assignFamily(); err != nil {
		return nil, err
	}
	if err := c.assignComment(rules); err != nil {
		return nil, err
	}
	return c, nil
}

// parseColumnType splits a full column type such as
// "varchar(255)", "int(10) unsigned zerofill" or "enum('a','b')" into its
// base keyword, the parenthesised parameter, and the trailing flags.
func parseColumnType(full string) (typ, constraint string, unsigned, zerofill bool) {
	s := strings.TrimSpace(full)
	if open := strings.Index(s, "("); open >= 0 {
		if close := strings.LastIndex(s, ")"); close > open {
			typ = strings.ToLower(strings.TrimSpace(s[:open]))
			constraint = s[open+1 : close]
			s = s[close+1:]
		}
	}
	if typ == "" {
		fields := strings.Fields(strings.ToLower(s))
		if len(fields) > 0 {
			typ = fields[0]
			s = strings.TrimPrefix(strings.TrimSpace(s), fields[0])
		}
	}
	rest := strings.ToLower(s)
	unsigned = strings.Contains(rest, "unsigned")
	zerofill = strings.Contains(rest, "zerofill")
	return typ, constraint, unsigned, zerofill
}

func (c *Column) assignGlobal() {
	if !c.raw.Nullable {
		c.assumptions = append(c.assumptions, assume.NewRequired(c))
	}
}

func (c *Column) assignFamily() error {
	switch {
	case c.Is(assume.FamilyString):
		if c.typ == "enum" {
			c.assumptions = append(c.assumptions, assume.NewOptions(c, c.literals()))
			return nil
		}
		max := 255
		if n, err := strconv.Atoi(c.constraint); err == nil {
			max = n
		}
		c.assumptions = append(c.assumptions, assume.NewMax(c, max))
	case c.Is(assume.FamilyNumber):
		if c.typ == "tinyint" && c.constraint == "1" {
			c.assumptions = append(c.assumptions, assume.NewBinary(c))
			return nil
		}
		digits := 10
		if n, err := strconv.Atoi(firstField(c.constraint)); err == nil {
			digits = n
		}
		c.assumptions = append(c.assumptions, assume.NewNumber(c, digits))
	case c.Is(assume.FamilyDate):
		// Date columns carry no default rule.
	default:
		return fmt.Errorf("schema: unrecognized column type %q on %s", c.typ, c.raw.Field)
	}
	return nil
}

// firstField strips a precision pair like "10,2" down to its first part.
func firstField(s string) string {
	if i := strings.Index(s, ","); i >= 0 {
		return s[:i]
	}
	return s
}

// assignComment treats the column comment as a comma-separated rule list,
// each token either a bare rule name or name(argument).
func (c *Column) assignComment(rules *assume.Registry) error {
	comment := strings.TrimSpace(c.raw.Comment)
	if comment == "" {
		return nil
	}
	for _, token := range splitTokens(comment) {
		name, arg := token, ""
		if open := strings.Index(token, "("); open >= 0 && strings.HasSuffix(token, ")") {
			name = token[:open]
			arg = token[open+1 : len(token)-1]
		}
		a, err := rules.Resolve(c, strings.TrimSpace(name), arg)
		if err != nil {
			return fmt.Errorf("schema: column %s: %w", c.raw.Field, err)
		}
		c.assumptions = append(c.assumptions, a)
	}
	return nil
}

// splitTokens splits on commas that are not inside parentheses.
func splitTokens(s string) []string {
	var tokens []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				if t := strings.TrimSpace(s[start:i]); t != "" {
					tokens = append(tokens, t)
				}
				start = i + 1
			}
		}
	}
	if t := strings.TrimSpace(s[start:]); t != "" {
		tokens = append(tokens, t)
	}
	return tokens
}

// literals returns the enum value list with quotes stripped.
func (c *Column) literals() []string {
	if c.constraint == "" {
		return nil
	}
	parts := strings.Split(c.constraint, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.Trim(strings.TrimSpace(p), "'\""))
	}
	return out
}

// FieldName returns the column name.
func (c *Column) FieldName() string { return c.raw.Field }

// Type returns the base type keyword.
func (c *Column) Type() string { return c.typ }

// TypeConstraint returns the raw type parameter (length, digit count or
// enum list).
func (c *Column) TypeConstraint() string { return c.constraint }

// Default returns the declared default value, if any.
func (c *Column) Default() (string, bool) {
	if c.raw.Default == nil {
		return "", false
	}
	return *c.raw.Default, true
}

// Nullable reports whether the column accepts NULL.
func (c *Column) Nullable() bool { return c.raw.Nullable }

// Comment returns the free-text column annotation.
func (c *Column) Comment() string { return c.raw.Comment }

// Is reports whether the column's base type equals the argument or is
// contained in it, which lets callers match against family lists such as
// "char varchar text enum".
func (c *Column) Is(typeOrFamily string) bool {
	return c.typ == typeOrFamily || strings.Contains(typeOrFamily, c.typ)
}

// Primary reports whether the column is part of the primary key.
func (c *Column) Primary() bool { return c.primary }

// Unique reports whether the column carries a unique key.
func (c *Column) Unique() bool { return c.unique }

// Multiple reports whether the column is part of a non-unique index.
func (c *Column) Multiple() bool { return c.multiple }

// Automatic reports whether the column is database-generated.
func (c *Column) Automatic() bool { return c.automatic }

// Unsigned reports whether the numeric type is unsigned.
func (c *Column) Unsigned() bool { return c.unsigned }

// Zerofill reports whether the numeric type is zerofilled.
func (c *Column) Zerofill() bool { return c.zerofill }

// Assumptions returns the column's rules in evaluation order.
func (c *Column) Assumptions() []assume.Assumption { return c.assumptions }

// Raw returns the catalog facts the column was built from.
func (c *Column) Raw() RawColumn { return c.raw }

// Options maps each enum literal to a display label with the first letter
// capitalized. Empty for non-enum columns.
func (c *Column) Options() map[string]string {
	if c.typ != "enum" {
		return map[string]string{}
	}
	out := make(map[string]string)
	for _, lit := range c.literals() {
		out[lit] = capitalize(lit)
	}
	return out
}

func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

// Assume routes a candidate value through the column's rules: the value is
// coerced by every rule's Modify in order, then every rule's Check runs
// against the coerced value. It returns the coerced value and one
// formatted message per failed rule.
func (c *Column) Assume(value any) (any, []string) {
	v := value
	for _, a := range c.assumptions {
		v = a.Modify(v)
	}
	var msgs []string
	for _, a := range c.assumptions {
		if ok, text := a.Check(v); !ok {
			msgs = append(msgs, fmt.Sprintf(text, c.raw.Field))
		}
	}
	return v, msgs
}
