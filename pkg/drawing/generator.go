package drawing

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"

	"github.com/aretw0/atidraw/pkg/ports"
)

var sizePixels = map[string]int{
	SizeSmall:  256,
	SizeMedium: 512,
	SizeLarge:  1024,
}

// SizePixels returns the edge length in pixels of a named image size.
func SizePixels(size string) (int, bool) {
	px, ok := sizePixels[size]
	return px, ok
}

// PlaceholderGenerator renders a deterministic striped PNG instead of calling an image model.
// The colours and stripe layout derive from the prompt and style.
type PlaceholderGenerator struct{}

var _ ports.ImageGenerator = PlaceholderGenerator{}

// Generate returns the base64-encoded PNG for req.
func (PlaceholderGenerator) Generate(ctx context.Context, req ports.ImageRequest) (string, error) {
	px, ok := SizePixels(req.Size)
	if !ok {
		return "", fmt.Errorf("unsupported image size %q", req.Size)
	}

	h := fnv.New64a()
	h.Write([]byte(req.Prompt))
	h.Write([]byte{0})
	h.Write([]byte(req.Style))
	sum := h.Sum64()

	bg := color.RGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 0xff}
	fg := color.RGBA{R: ^bg.R, G: ^bg.G, B: ^bg.B, A: 0xff}
	stripe := 8 + int((sum>>24)%24)
	layout := (sum >> 32) % 3

	img := image.NewPaletted(image.Rect(0, 0, px, px), color.Palette{bg, fg})
	for y := 0; y < px; y++ {
		if y%64 == 0 {
			if err := ctx.Err(); err != nil {
				return "", err
			}
		}
		for x := 0; x < px; x++ {
			var band int
			switch layout {
			case 0:
				band = (x + y) / stripe
			case 1:
				band = x / stripe
			default:
				band = y / stripe
			}
			if band%2 == 1 {
				img.SetColorIndex(x, y, 1)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
