package atidraw_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/atidraw"
	"github.com/aretw0/atidraw/pkg/adapters/memory"
	"github.com/aretw0/atidraw/pkg/domain"
	"github.com/aretw0/atidraw/pkg/drawing"
	"github.com/aretw0/atidraw/pkg/ports"
	"github.com/aretw0/atidraw/pkg/schema"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestNew_RegistersBuiltinTools(t *testing.T) {
	srv, err := atidraw.New(context.Background())
	require.NoError(t, err)

	var names []string
	for _, tool := range srv.ListTools("") {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{
		"create_drawing",
		"save_drawing",
		"get_drawing",
		"list_drawings",
		"generate_ai_drawing",
	}, names)
	assert.Equal(t, []string{"drawing", "storage", "ai"}, srv.Categories())
	assert.Len(t, srv.ListTools("ai"), 1)
	assert.Empty(t, srv.ListTools("nope"))
}

func TestNew_Seed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	srv, err := atidraw.New(ctx, atidraw.WithStore(store), atidraw.WithSeed(5), atidraw.WithClock(clock))
	require.NoError(t, err)
	assert.Same(t, ports.DrawingStore(store), srv.Store())

	resp := srv.Dispatch(ctx, "list_drawings", map[string]any{"limit": 3})
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, 5, resp.Payload["total"])
	summaries := resp.Payload["drawings"].([]drawing.Summary)
	require.Len(t, summaries, 3)
	assert.Equal(t, "Drawing 1", summaries[0].Title)
	assert.Equal(t, "2024-03-01T12:00:00.000Z", summaries[0].CreatedAt)
	assert.Equal(t, "2024-02-28T12:00:00.000Z", summaries[2].CreatedAt)

	// A second server over the same store does not seed again.
	_, err = atidraw.New(ctx, atidraw.WithStore(store), atidraw.WithSeed(5), atidraw.WithClock(clock))
	require.NoError(t, err)
	_, total, err := store.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestDispatch_Envelopes(t *testing.T) {
	ctx := context.Background()
	srv, err := atidraw.New(ctx)
	require.NoError(t, err)

	resp := srv.Dispatch(ctx, "", nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "Tool name is required", resp.Message)
	assert.Equal(t, 400, resp.StatusCode())

	resp = srv.Dispatch(ctx, "list_drawings", map[string]any{"limit": "ten"})
	assert.False(t, resp.Success)
	assert.Equal(t, `argument "limit" must be number, got string`, resp.Message)

	resp = srv.Dispatch(ctx, "get_drawing", map[string]any{"drawingId": "nope"})
	assert.False(t, resp.Success)
	assert.Equal(t, "Error executing tool get_drawing: drawing not found: nope", resp.Message)
	assert.Equal(t, 500, resp.StatusCode())
	assert.Nil(t, resp.Payload)
}

func TestWithValidatorOptions(t *testing.T) {
	ctx := context.Background()

	lenient, err := atidraw.New(ctx)
	require.NoError(t, err)
	resp := lenient.Dispatch(ctx, "create_drawing", map[string]any{"title": "A", "extra": 1})
	assert.True(t, resp.Success, resp.Message)

	strict, err := atidraw.New(ctx, atidraw.WithValidatorOptions(schema.ValidatorOptions{RejectUnknownKeys: true}))
	require.NoError(t, err)
	resp = strict.Dispatch(ctx, "create_drawing", map[string]any{"title": "A", "extra": 1})
	assert.False(t, resp.Success)
	assert.Equal(t, `unknown argument "extra"`, resp.Message)
}

func TestWithHooks_Chained(t *testing.T) {
	ctx := context.Background()
	var mu sync.Mutex
	var seen []string
	record := func(prefix string) domain.Hooks {
		return domain.Hooks{
			OnToolReturn: func(_ context.Context, e *domain.ToolEvent) {
				mu.Lock()
				defer mu.Unlock()
				seen = append(seen, prefix+":"+e.ToolName)
			},
		}
	}

	srv, err := atidraw.New(ctx, atidraw.WithHooks(record("a")), atidraw.WithHooks(record("b")))
	require.NoError(t, err)
	srv.Dispatch(ctx, "create_drawing", map[string]any{"title": "A"})

	assert.Equal(t, []string{"a:create_drawing", "b:create_drawing"}, seen)
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, ports.ImageRequest) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestWithGenerator(t *testing.T) {
	ctx := context.Background()
	srv, err := atidraw.New(ctx, atidraw.WithGenerator(failingGenerator{}))
	require.NoError(t, err)

	resp := srv.Dispatch(ctx, "generate_ai_drawing", map[string]any{"prompt": "a cat"})
	assert.False(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.Message, "Error executing tool generate_ai_drawing: "), resp.Message)
	assert.Contains(t, resp.Message, "quota exceeded")
}

func TestWithTimeout(t *testing.T) {
	ctx := context.Background()
	srv, err := atidraw.New(ctx, atidraw.WithTimeout(time.Nanosecond), atidraw.WithGenerator(slowGenerator{}))
	require.NoError(t, err)

	resp := srv.Dispatch(ctx, "generate_ai_drawing", map[string]any{"prompt": "slow"})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "deadline exceeded")
}

type slowGenerator struct{}

func (slowGenerator) Generate(ctx context.Context, _ ports.ImageRequest) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestDispatchBatch(t *testing.T) {
	ctx := context.Background()
	srv, err := atidraw.New(ctx, atidraw.WithBatchConcurrency(2))
	require.NoError(t, err)

	results := srv.DispatchBatch(ctx, []domain.Call{
		{ToolName: "create_drawing", Arguments: map[string]any{"title": "A"}},
		{ToolName: "missing"},
		{ToolName: "list_drawings"},
	})
	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.Equal(t, "Unknown tool: missing", results[1].Message)
	assert.True(t, results[2].Success)
}

func TestWithLogger_Nil(t *testing.T) {
	srv, err := atidraw.New(context.Background(), atidraw.WithLogger(nil), atidraw.WithSeed(1))
	require.NoError(t, err)
	assert.NoError(t, srv.Close())
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, strings.TrimSpace(atidraw.Version), atidraw.VersionString())
	assert.NotEmpty(t, atidraw.VersionString())
}
