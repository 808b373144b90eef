// Package assume implements the validation and normalization rules that a
// schema column carries. Every rule can both check a candidate value and
// coerce it; the enclosing column runs its rules in insertion order.
package assume

// Type families a column can belong to. A rule tests membership through
// the column's Is method, which treats these space-separated lists as
// containment targets.
const (
	FamilyString = "char varchar text enum"
	FamilyNumber = "int tinyint double"
	FamilyDate   = "datetime timestamp"
)

// Column is the view of a schema column that a rule needs. It is a
// non-owning back-reference: the column owns its rules, never the other
// way around.
type Column interface {
	// FieldName returns the column name as declared in the table.
	FieldName() string
	// Is reports whether the column's base type equals the argument or
	// appears within it (family strings are space-separated type lists).
	Is(typeOrFamily string) bool
	// Automatic reports whether the column is database-generated.
	Automatic() bool
	// Unsigned reports whether the column's numeric type is unsigned.
	Unsigned() bool
}

// Assumption is a single validation rule bound to one column. Rules hold
// no per-check state: descriptors are shared across models and
// goroutines, so Check must not write to the rule.
type Assumption interface {
	// Check reports whether the value satisfies the rule. On failure the
	// second return is a message template with exactly one %s placeholder
	// for the field name, naming the specific cause.
	Check(value any) (bool, string)
	// Modify coerces the value where the rule defines a canonical form;
	// the default is identity.
	Modify(value any) any
}

// base carries the column back-reference and the rule's fixed message
// template, set once at construction.
type base struct {
	column Column
	text   string
}

func (b *base) Modify(v any) any { return v }
