package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// parameterJSON is the descriptor form of a parameter used by HTTP discovery.
type parameterJSON struct {
	Type        Type     `json:"type"`
	Required    bool     `json:"required"`
	Default     any      `json:"default,omitempty"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// propertyJSON is the JSON Schema form of a parameter used by the Model Context Protocol.
type propertyJSON struct {
	Type        Type     `json:"type"`
	Description string   `json:"description,omitempty"`
	Default     any      `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// MarshalJSON serializes the parameters as an object keyed by name, in declared order.
func (ps Parameters) MarshalJSON() ([]byte, error) {
	return marshalOrdered(ps, func(p Parameter) any {
		return parameterJSON{
			Type:        p.Type,
			Required:    p.Required,
			Default:     p.Default,
			Description: p.Description,
			Enum:        p.Enum,
		}
	})
}

// UnmarshalJSON decodes the descriptor form, keeping the key order of the document.
func (ps *Parameters) UnmarshalJSON(data []byte) error {
	if ps == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}
	if string(bytes.TrimSpace(data)) == "null" {
		*ps = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("schema: parameters must be a JSON object")
	}

	var out Parameters
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("schema: unexpected token %v", tok)
		}

		var raw parameterJSON
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("parameter %s: %w", name, err)
		}
		if !raw.Type.Valid() {
			return fmt.Errorf("parameter %s: unsupported type %q", name, raw.Type)
		}
		def := raw.Default
		if def != nil {
			if def, err = normalize(def); err != nil {
				return fmt.Errorf("parameter %s: %w", name, err)
			}
		}
		out = append(out, Parameter{
			Name:        name,
			Type:        raw.Type,
			Description: raw.Description,
			Required:    raw.Required,
			Default:     def,
			Enum:        raw.Enum,
		})
	}

	*ps = out
	return nil
}

// InputSchema is the JSON Schema object describing a tool's arguments.
type InputSchema struct {
	Parameters Parameters
}

// InputSchema derives the JSON Schema form of the parameters.
func (ps Parameters) InputSchema() InputSchema {
	return InputSchema{Parameters: ps}
}

// MarshalJSON renders {"type":"object","properties":{...},"required":[...]}.
func (s InputSchema) MarshalJSON() ([]byte, error) {
	props, err := marshalOrdered(s.Parameters, func(p Parameter) any {
		return propertyJSON{
			Type:        p.Type,
			Description: p.Description,
			Default:     p.Default,
			Enum:        p.Enum,
		}
	})
	if err != nil {
		return nil, err
	}

	return json.Marshal(struct {
		Type       string          `json:"type"`
		Properties json.RawMessage `json:"properties"`
		Required   []string        `json:"required"`
	}{
		Type:       "object",
		Properties: props,
		Required:   s.Parameters.RequiredNames(),
	})
}

func marshalOrdered(ps Parameters, shape func(Parameter) any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range ps {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(shape(p))
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
