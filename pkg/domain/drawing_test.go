package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDrawing_CloneIsolatesMetadata(t *testing.T) {
	d := NewDrawing("drawing_1_abcdefghi", "Cat", time.Now())
	d.Metadata["tags"] = "pets"

	c := d.Clone()
	c.Metadata["tags"] = "changed"
	c.Title = "Dog"

	assert.Equal(t, "pets", d.Metadata["tags"])
	assert.Equal(t, "Cat", d.Title)
}

func TestDrawing_CloneIsDeep(t *testing.T) {
	d := NewDrawing("drawing_1_abcdefghi", "Cat", time.Now())
	d.Metadata["author"] = map[string]any{"name": "ana"}
	d.Metadata["tags"] = []any{"a"}

	c := d.Clone()
	c.Metadata["author"].(map[string]any)["name"] = "bob"
	c.Metadata["tags"].([]any)[0] = "z"

	assert.Equal(t, "ana", d.Metadata["author"].(map[string]any)["name"])
	assert.Equal(t, "a", d.Metadata["tags"].([]any)[0])
}

func TestDrawing_CanvasMetadata(t *testing.T) {
	d := NewDrawing("drawing_1_abcdefghi", "Cat", time.Now())
	d.Metadata["author"] = "ana"
	d.Metadata["width"] = "stale"

	meta := d.CanvasMetadata()
	assert.Equal(t, map[string]any{
		"author":          "ana",
		"width":           float64(DefaultWidth),
		"height":          float64(DefaultHeight),
		"backgroundColor": DefaultBackgroundColor,
	}, meta)
	assert.Equal(t, "stale", d.Metadata["width"], "canvas metadata must not write through")
}

func TestChainHooks(t *testing.T) {
	var order []string
	hooks := Chain(
		Hooks{OnToolCall: func(_ context.Context, e *ToolEvent) { order = append(order, "a:"+e.ToolName) }},
		Hooks{},
		Hooks{
			OnToolCall:   func(_ context.Context, e *ToolEvent) { order = append(order, "b:"+e.ToolName) },
			OnToolReturn: func(_ context.Context, e *ToolEvent) { order = append(order, "b:return") },
		},
	)

	ev := &ToolEvent{ToolName: "get_drawing"}
	hooks.OnToolCall(context.Background(), ev)
	hooks.OnToolReturn(context.Background(), ev)

	assert.Equal(t, []string{"a:get_drawing", "b:get_drawing", "b:return"}, order)
}
