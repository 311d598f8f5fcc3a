package drawing

import (
	"github.com/aretw0/atidraw/pkg/domain"
	"github.com/aretw0/atidraw/pkg/schema"
)

// Tool names.
const (
	ToolCreateDrawing     = "create_drawing"
	ToolSaveDrawing       = "save_drawing"
	ToolGetDrawing        = "get_drawing"
	ToolListDrawings      = "list_drawings"
	ToolGenerateAIDrawing = "generate_ai_drawing"
)

// Image sizes accepted by generate_ai_drawing.
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
)

// Tools returns the descriptors of the built-in tools in registration order.
func Tools() []domain.Tool {
	return []domain.Tool{
		{
			Name:           ToolCreateDrawing,
			Description:    "Create a new drawing with specified parameters",
			Category:       domain.CategoryDrawing,
			SuccessMessage: "Drawing created successfully",
			Parameters: schema.Parameters{
				{Name: "title", Type: schema.TypeString, Description: "Title of the drawing", Required: true},
				{Name: "width", Type: schema.TypeNumber, Description: "Canvas width in pixels", Default: float64(domain.DefaultWidth)},
				{Name: "height", Type: schema.TypeNumber, Description: "Canvas height in pixels", Default: float64(domain.DefaultHeight)},
				{Name: "backgroundColor", Type: schema.TypeString, Description: "Background color in hex format", Default: domain.DefaultBackgroundColor},
			},
		},
		{
			Name:           ToolSaveDrawing,
			Description:    "Save drawing data to storage",
			Category:       domain.CategoryStorage,
			SuccessMessage: "Drawing saved successfully",
			Parameters: schema.Parameters{
				{Name: "drawingId", Type: schema.TypeString, Description: "Unique identifier for the drawing", Required: true},
				{Name: "drawingData", Type: schema.TypeString, Description: "Base64 encoded drawing data", Required: true},
				{Name: "metadata", Type: schema.TypeObject, Description: "Additional metadata for the drawing"},
			},
		},
		{
			Name:           ToolGetDrawing,
			Description:    "Retrieve a drawing by ID",
			Category:       domain.CategoryStorage,
			SuccessMessage: "Drawing retrieved successfully",
			Parameters: schema.Parameters{
				{Name: "drawingId", Type: schema.TypeString, Description: "Unique identifier for the drawing", Required: true},
			},
		},
		{
			Name:           ToolListDrawings,
			Description:    "List all available drawings",
			Category:       domain.CategoryStorage,
			SuccessMessage: "Drawings listed successfully",
			Parameters: schema.Parameters{
				{Name: "limit", Type: schema.TypeNumber, Description: "Maximum number of drawings to return", Default: float64(10)},
				{Name: "offset", Type: schema.TypeNumber, Description: "Number of drawings to skip", Default: float64(0)},
			},
		},
		{
			Name:           ToolGenerateAIDrawing,
			Description:    "Generate an AI-powered drawing based on prompt",
			Category:       domain.CategoryAI,
			SuccessMessage: "AI drawing generated successfully",
			Parameters: schema.Parameters{
				{Name: "prompt", Type: schema.TypeString, Description: "Text prompt for AI drawing generation", Required: true},
				{Name: "style", Type: schema.TypeString, Description: "Drawing style (sketch, realistic, cartoon, etc.)", Default: "sketch"},
				{
					Name:        "size",
					Type:        schema.TypeString,
					Description: "Image size (small, medium, large)",
					Default:     SizeMedium,
					Enum:        []string{SizeSmall, SizeMedium, SizeLarge},
				},
			},
		},
	}
}
