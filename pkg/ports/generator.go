package ports

import "context"

// ImageRequest describes an image to generate.
type ImageRequest struct {
	Prompt string
	Style  string
	Size   string
}

// ImageGenerator produces image data for AI drawing requests.
type ImageGenerator interface {
	// Generate returns the base64-encoded image for req.
	Generate(ctx context.Context, req ImageRequest) (string, error)
}
