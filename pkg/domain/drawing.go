package domain

import (
	"maps"
	"time"
)

// Source records how a drawing was produced.
type Source string

const (
	SourceCanvas Source = "canvas"
	SourceAI     Source = "ai"
)

// Drawing is a persisted drawing.
type Drawing struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Width           float64        `json:"width"`
	Height          float64        `json:"height"`
	BackgroundColor string         `json:"background_color"`
	Data            string         `json:"data,omitempty"`
	Thumbnail       string         `json:"thumbnail,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	Source          Source         `json:"source"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// NewDrawing creates a drawing with the default canvas settings.
func NewDrawing(id, title string, now time.Time) *Drawing {
	return &Drawing{
		ID:              id,
		Title:           title,
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		BackgroundColor: DefaultBackgroundColor,
		Metadata:        map[string]any{},
		Source:          SourceCanvas,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Clone returns a copy that shares no mutable state with d.
func (d *Drawing) Clone() *Drawing {
	c := *d
	c.Metadata = deepCopyMap(d.Metadata)
	return &c
}

// CanvasMetadata returns the canvas settings merged over the user metadata.
func (d *Drawing) CanvasMetadata() map[string]any {
	out := maps.Clone(d.Metadata)
	if out == nil {
		out = map[string]any{}
	}
	out["width"] = d.Width
	out["height"] = d.Height
	out["backgroundColor"] = d.BackgroundColor
	return out
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	}
	return v
}
