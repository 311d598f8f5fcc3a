package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/atidraw/pkg/domain"
	"github.com/aretw0/atidraw/pkg/schema"
)

func noop(ctx context.Context, args map[string]any) (domain.Payload, error) {
	return domain.Payload{}, nil
}

func seeded(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	tools := []domain.Tool{
		{Name: "create_drawing", Category: domain.CategoryDrawing},
		{Name: "save_drawing", Category: domain.CategoryStorage},
		{Name: "get_drawing", Category: domain.CategoryStorage},
		{Name: "generate_ai_drawing", Category: domain.CategoryAI},
		{Name: "list_drawings", Category: domain.CategoryStorage},
	}
	for _, tool := range tools {
		require.NoError(t, r.Register(tool, noop))
	}
	return r
}

func TestRegistry_GetByName(t *testing.T) {
	r := seeded(t)

	for _, tool := range r.List() {
		got, ok := r.Get(tool.Name)
		require.True(t, ok)
		assert.Equal(t, tool.Name, got.Name)
	}

	for _, name := range []string{"", "unknown_tool", "CREATE_DRAWING", "create_drawing "} {
		_, ok := r.Get(name)
		assert.False(t, ok, "lookup of %q must miss", name)
	}
}

func TestRegistry_ListKeepsRegistrationOrder(t *testing.T) {
	r := seeded(t)

	var names []string
	for _, tool := range r.List() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"create_drawing", "save_drawing", "get_drawing", "generate_ai_drawing", "list_drawings"}, names)
	assert.Equal(t, 5, r.Len())
}

func TestRegistry_ListByCategoryIsOrderedSubset(t *testing.T) {
	r := seeded(t)
	all := r.List()

	for _, category := range []string{domain.CategoryDrawing, domain.CategoryStorage, domain.CategoryAI, "missing"} {
		var want []domain.Tool
		for _, tool := range all {
			if tool.Category == category {
				want = append(want, tool)
			}
		}

		got := r.ListByCategory(category)
		if len(want) == 0 {
			assert.Empty(t, got)
			continue
		}
		assert.Equal(t, want, got, "category %s", category)
	}

	assert.Equal(t, []string{"drawing", "storage", "ai"}, r.Categories())
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := seeded(t)

	err := r.Register(domain.Tool{Name: "get_drawing"}, noop)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateTool)
	assert.Equal(t, 5, r.Len())
}

func TestRegistry_RejectsMalformedTools(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.Register(domain.Tool{}, noop))
	assert.Error(t, r.Register(domain.Tool{Name: "no_handler"}, nil))

	err := r.Register(domain.Tool{
		Name: "bad_default",
		Parameters: schema.Parameters{
			{Name: "width", Type: schema.TypeNumber, Default: "wide"},
		},
	}, noop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid default")
	assert.False(t, r.Has("bad_default"))
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	r := seeded(t)
	assert.Panics(t, func() {
		r.MustRegister(domain.Tool{Name: "create_drawing"}, noop)
	})
}

func TestRegistry_LookupReturnsHandler(t *testing.T) {
	r := NewRegistry()
	called := false
	r.MustRegister(domain.Tool{Name: "ping"}, func(ctx context.Context, args map[string]any) (domain.Payload, error) {
		called = true
		return domain.Payload{"pong": true}, nil
	})

	_, fn, ok := r.Lookup("ping")
	require.True(t, ok)
	payload, err := fn(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, domain.Payload{"pong": true}, payload)
}

func TestRegistry_HandlerOfUnknownToolIsNil(t *testing.T) {
	r := seeded(t)
	assert.NotNil(t, r.Handler("create_drawing"))
	assert.Nil(t, r.Handler("unknown_tool"))
}
