package schema

import (
	"errors"
	"fmt"
	"slices"
)

// Parameter describes one named argument of a tool.
type Parameter struct {
	Name        string
	Type        Type
	Description string
	Required    bool
	// Default is applied when the argument is absent and not required. Nil means no default.
	Default any
	// Enum restricts a string parameter to a closed set of literals.
	Enum []string
}

// Check validates a single present value against the parameter and returns its normalized form.
func (p Parameter) Check(value any) (any, error) {
	kind := KindOf(value)
	if !p.Type.Accepts(kind) {
		return nil, &ValidationError{
			Key:      p.Name,
			Code:     CodeInvalidType,
			Expected: p.Type,
			Actual:   kind,
			Value:    value,
		}
	}

	normalized, err := normalize(value)
	if err != nil {
		return nil, &ValidationError{
			Key:      p.Name,
			Code:     CodeInvalidType,
			Expected: p.Type,
			Actual:   kind,
			Value:    value,
		}
	}

	if len(p.Enum) > 0 {
		s, _ := normalized.(string)
		if !slices.Contains(p.Enum, s) {
			return nil, &ValidationError{
				Key:     p.Name,
				Code:    CodeInvalidEnum,
				Allowed: slices.Clone(p.Enum),
				Value:   value,
			}
		}
	}

	return normalized, nil
}

// Parameters is the ordered parameter list of a tool.
// Order is the declared order; it is kept for serialization only.
type Parameters []Parameter

// Lookup returns the parameter with the given name.
func (ps Parameters) Lookup(name string) (Parameter, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Names returns the parameter names in declared order.
func (ps Parameters) Names() []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

// RequiredNames returns the names of required parameters in declared order.
func (ps Parameters) RequiredNames() []string {
	names := []string{}
	for _, p := range ps {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// Verify checks that the declaration itself is well formed: names are present and unique,
// types are supported, enums only decorate strings, and every default satisfies its own parameter.
func (ps Parameters) Verify() error {
	var errs []error
	seen := make(map[string]bool, len(ps))

	for i, p := range ps {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("parameter %d: name is required", i))
			continue
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("parameter %q: declared more than once", p.Name))
			continue
		}
		seen[p.Name] = true

		if !p.Type.Valid() {
			errs = append(errs, fmt.Errorf("parameter %q: unsupported type %q", p.Name, p.Type))
			continue
		}
		if len(p.Enum) > 0 && p.Type != TypeString {
			errs = append(errs, fmt.Errorf("parameter %q: enum requires type string, got %s", p.Name, p.Type))
			continue
		}
		if p.Default != nil {
			if p.Required {
				errs = append(errs, fmt.Errorf("parameter %q: required parameters cannot declare a default", p.Name))
				continue
			}
			if _, err := p.Check(p.Default); err != nil {
				errs = append(errs, fmt.Errorf("parameter %q: invalid default: %w", p.Name, err))
			}
		}
	}

	return errors.Join(errs...)
}
