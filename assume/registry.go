package assume

import (
	"fmt"
	"strconv"
	"strings"
)

// Constructor builds a rule for a column from an optional argument taken
// from the column comment annotation, e.g. "max(50)".
type Constructor func(col Column, arg string) (Assumption, error)

// Registry maps rule names to constructors. Resolution happens once, when
// a table's schema is first read, so an unknown name fails at
// introspection time rather than on every assignment.
type Registry struct {
	ctors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Register binds a rule name to a constructor, replacing any previous
// binding.
func (r *Registry) Register(name string, fn Constructor) {
	r.ctors[strings.ToLower(name)] = fn
}

// Resolve constructs the named rule for the column.
func (r *Registry) Resolve(col Column, name, arg string) (Assumption, error) {
	fn, ok := r.ctors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("assume: unknown rule %q", name)
	}
	return fn(col, arg)
}

func intArg(name, arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("assume: rule %q needs a numeric argument, got %q", name, arg)
	}
	return n, nil
}

// Default holds every built-in rule under its conventional name.
var Default = func() *Registry {
	r := NewRegistry()
	r.Register("required", func(col Column, _ string) (Assumption, error) {
		return NewRequired(col), nil
	})
	r.Register("max", func(col Column, arg string) (Assumption, error) {
		n, err := intArg("max", arg)
		if err != nil {
			return nil, err
		}
		return NewMax(col, n), nil
	})
	r.Register("min", func(col Column, arg string) (Assumption, error) {
		n, err := intArg("min", arg)
		if err != nil {
			return nil, err
		}
		return NewMin(col, n), nil
	})
	r.Register("number", func(col Column, arg string) (Assumption, error) {
		n, err := intArg("number", arg)
		if err != nil {
			return nil, err
		}
		return NewNumber(col, n), nil
	})
	r.Register("binary", func(col Column, _ string) (Assumption, error) {
		return NewBinary(col), nil
	})
	r.Register("options", func(col Column, arg string) (Assumption, error) {
		if strings.TrimSpace(arg) == "" {
			return nil, fmt.Errorf("assume: rule \"options\" needs a literal list")
		}
		parts := strings.Split(arg, ",")
		for i := range parts {
			parts[i] = strings.Trim(strings.TrimSpace(parts[i]), "'\"")
		}
		return NewOptions(col, parts), nil
	})
	r.Register("email", func(col Column, _ string) (Assumption, error) {
		return NewEmail(col), nil
	})
	r.Register("username", func(col Column, _ string) (Assumption, error) {
		return NewUsername(col), nil
	})
	r.Register("password", func(col Column, _ string) (Assumption, error) {
		return NewPassword(col), nil
	})
	r.Register("ip", func(col Column, _ string) (Assumption, error) {
		return NewIp(col), nil
	})
	r.Register("uri", func(col Column, _ string) (Assumption, error) {
		return NewUri(col), nil
	})
	return r
}()
