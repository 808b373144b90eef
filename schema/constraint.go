package schema

import (
	"fmt"
	"strings"
)

// ConstraintType tags the role of a table constraint.
type ConstraintType int

const (
	Primary ConstraintType = 2
	Unique  ConstraintType = 4
	Foreign ConstraintType = 8
)

// Relation describes the two sides of a foreign key, decoded from the
// constraint naming convention "fromTable-fromColumn-toTable-toColumn".
type Relation struct {
	From    string `json:"from"`
	KeyFrom string `json:"key_from"`
	To      string `json:"to"`
	KeyTo   string `json:"key_to"`
}

// Constraint is one catalog constraint row. Foreign constraints carry a
// decoded Relation; names that do not follow the convention are rejected
// at construction rather than yielding a nonsensical descriptor.
type Constraint struct {
	Name     string
	Type     ConstraintType
	Relation *Relation
}

// NewConstraint classifies a catalog row into a constraint descriptor.
func NewConstraint(raw RawConstraint) (*Constraint, error) {
	c := &Constraint{Name: raw.Name}

	switch strings.ToUpper(raw.Type) {
	case "PRIMARY KEY":
		c.Type = Primary
	case "UNIQUE":
		c.Type = Unique
	case "FOREIGN KEY":
		c.Type = Foreign
		parts := strings.Split(raw.Name, "-")
		if len(parts) != 4 {
			return nil, fmt.Errorf("schema: foreign key %q does not follow the from-keyFrom-to-keyTo naming convention", raw.Name)
		}
		c.Relation = &Relation{From: parts[0], KeyFrom: parts[1], To: parts[2], KeyTo: parts[3]}
	default:
		return nil, fmt.Errorf("schema: unrecognized constraint type %q", raw.Type)
	}
	return c, nil
}

// Is reports whether the constraint has the given type tag.
func (c *Constraint) Is(t ConstraintType) bool { return c.Type == t }
