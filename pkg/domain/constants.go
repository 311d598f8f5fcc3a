package domain

// Defaults applied to new drawings.
const (
	DefaultWidth           = 800
	DefaultHeight          = 600
	DefaultBackgroundColor = "#ffffff"
)

// ID prefixes for generated drawing identifiers.
const (
	PrefixDrawing   = "drawing"
	PrefixAIDrawing = "ai_drawing"
)
