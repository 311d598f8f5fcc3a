package schema

import (
	"maps"
	"slices"
)

// ValidatorOptions selects the validation policy.
type ValidatorOptions struct {
	// RejectUnknownKeys fails arguments that no parameter declares.
	// By default they are passed through unchanged.
	RejectUnknownKeys bool
	// FailFast stops at the first violated constraint.
	// By default every parameter is evaluated and all failures are reported.
	FailFast bool
}

// Validator checks argument bags against declared parameters.
// It holds no per-call state and is safe for concurrent use.
type Validator struct {
	opts ValidatorOptions
}

// NewValidator creates a validator with the given policy.
func NewValidator(opts ValidatorOptions) *Validator {
	return &Validator{opts: opts}
}

// Options returns the validator's policy.
func (v *Validator) Options() ValidatorOptions {
	return v.opts
}

// Validate checks args against params and returns a normalized copy.
// The input map is never modified. An explicit nil value, typed nil pointers included,
// counts as absent.
// On failure the returned error is an *AggregateError.
func (v *Validator) Validate(params Parameters, args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(args)+len(params))
	var errs []error

	fail := func(err error) bool {
		errs = append(errs, err)
		return v.opts.FailFast
	}

	for _, p := range params {
		value, present := args[p.Name]
		if present && KindOf(value) == KindNull {
			present = false
		}

		if !present {
			switch {
			case p.Required:
				if fail(&ValidationError{Key: p.Name, Code: CodeMissingRequired}) {
					return nil, &AggregateError{Errors: errs}
				}
			case p.Default != nil:
				out[p.Name] = defaultValue(p.Default)
			}
			continue
		}

		normalized, err := p.Check(value)
		if err != nil {
			if fail(err) {
				return nil, &AggregateError{Errors: errs}
			}
			continue
		}
		out[p.Name] = normalized
	}

	// Undeclared keys, in a stable order.
	for _, key := range slices.Sorted(maps.Keys(args)) {
		if _, declared := params.Lookup(key); declared {
			continue
		}
		if v.opts.RejectUnknownKeys {
			if fail(&ValidationError{Key: key, Code: CodeUnknownArgument, Value: args[key]}) {
				return nil, &AggregateError{Errors: errs}
			}
			continue
		}
		out[key] = args[key]
	}

	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return out, nil
}

// Validate checks args against params with the default, permissive policy.
func Validate(params Parameters, args map[string]any) (map[string]any, error) {
	return NewValidator(ValidatorOptions{}).Validate(params, args)
}

// defaultValue returns a normalized copy of a declared default so handlers
// cannot mutate the declaration through the argument bag.
func defaultValue(def any) any {
	v, err := normalize(def)
	if err != nil {
		return def
	}
	switch t := v.(type) {
	case map[string]any:
		return maps.Clone(t)
	case []any:
		return slices.Clone(t)
	}
	return v
}
