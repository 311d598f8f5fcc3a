package drawing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataValidator(t *testing.T) {
	v := MustMetadataValidator("")

	tests := []struct {
		name     string
		metadata map[string]any
		wantErr  string
	}{
		{name: "empty", metadata: map[string]any{}},
		{name: "free-form keys", metadata: map[string]any{"layers": 3, "nested": map[string]any{"a": 1}}},
		{name: "canvas keys", metadata: map[string]any{"width": 640, "height": 480.5, "backgroundColor": "#fafafa"}},
		{name: "tags", metadata: map[string]any{"tags": []any{"cat", "sketch"}}},
		{name: "negative width", metadata: map[string]any{"width": -1}, wantErr: "width"},
		{name: "bad colour", metadata: map[string]any{"backgroundColor": "blue"}, wantErr: "backgroundColor"},
		{name: "numeric tag", metadata: map[string]any{"tags": []any{"cat", 7}}, wantErr: "tags"},
		{name: "empty title", metadata: map[string]any{"title": ""}, wantErr: "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.metadata)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid metadata")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMetadataValidator_CustomSchema(t *testing.T) {
	v, err := NewMetadataValidator(`{"type": "object", "required": ["author"]}`)
	require.NoError(t, err)

	assert.NoError(t, v.Validate(map[string]any{"author": "ana"}))
	assert.Error(t, v.Validate(map[string]any{}))

	_, err = NewMetadataValidator(`{"type": 12}`)
	assert.Error(t, err)
}
