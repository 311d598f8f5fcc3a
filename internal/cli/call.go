package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/atidraw/pkg/domain"
)

// ParseArguments decodes a JSON object given on the command line. Empty input is an empty bag.
func ParseArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}

	var args map[string]any
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("arguments must be a single JSON object")
	}
	if args == nil {
		return map[string]any{}, nil
	}
	return args, nil
}

// WriteEnvelope prints the envelope as indented JSON.
func WriteEnvelope(w io.Writer, resp domain.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(w)
	return err
}
