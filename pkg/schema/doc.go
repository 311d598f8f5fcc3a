// Package schema declares tool parameters and validates argument bags against them.
//
// A tool's parameters are an ordered list of Parameter values. Each parameter has one
// primitive Type (string, number, boolean, object or array), an optional default and,
// for strings, an optional enumeration of allowed literals:
//
//	params := schema.Parameters{
//	    {Name: "title", Type: schema.TypeString, Required: true},
//	    {Name: "width", Type: schema.TypeNumber, Default: 800},
//	    {Name: "size", Type: schema.TypeString, Enum: []string{"small", "medium", "large"}, Default: "medium"},
//	}
//
//	args, err := schema.NewValidator(schema.ValidatorOptions{}).Validate(params, raw)
//	if err != nil {
//	    for _, verr := range schema.ValidationErrors(err) {
//	        // Handle each violated constraint
//	    }
//	}
//
// The validator returns a normalized copy of the bag: numbers become float64, typed Go
// slices and maps become []any and map[string]any, and absent optional parameters receive
// their defaults. Keys that are not declared pass through untouched unless
// ValidatorOptions.RejectUnknownKeys is set.
//
// Parameters serialize to JSON in two shapes: the descriptor form used by HTTP discovery
// (MarshalJSON) and the JSON Schema object used by the Model Context Protocol (InputSchema).
//
// This package has no dependencies beyond the Go standard library.
package schema
