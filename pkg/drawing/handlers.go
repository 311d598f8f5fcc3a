package drawing

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"unicode/utf8"

	"github.com/aretw0/atidraw/pkg/domain"
	"github.com/aretw0/atidraw/pkg/ports"
)

type createArgs struct {
	Title           string  `json:"title"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	BackgroundColor string  `json:"backgroundColor"`
}

type saveArgs struct {
	DrawingID   string         `json:"drawingId"`
	DrawingData string         `json:"drawingData"`
	Metadata    map[string]any `json:"metadata"`
}

type getArgs struct {
	DrawingID string `json:"drawingId"`
}

type listArgs struct {
	Limit  float64 `json:"limit"`
	Offset float64 `json:"offset"`
}

type generateArgs struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
	Size   string `json:"size"`
}

// Dimensions is the canvas size reported by create_drawing.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Summary is one entry of the list_drawings result.
type Summary struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	CreatedAt string         `json:"createdAt"`
	Thumbnail string         `json:"thumbnail,omitempty"`
	Metadata  map[string]any `json:"metadata"`
}

func (s *Service) createDrawing(ctx context.Context, raw map[string]any) (domain.Payload, error) {
	var args createArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	if args.Title == "" {
		return nil, errors.New("title must not be empty")
	}
	if args.Width <= 0 || args.Height <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %vx%v", args.Width, args.Height)
	}

	now, stamp := s.timestamp()
	d := domain.NewDrawing(s.newID(domain.PrefixDrawing, now), args.Title, now)
	d.Width = args.Width
	d.Height = args.Height
	d.BackgroundColor = args.BackgroundColor

	if err := s.store.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to store drawing: %w", err)
	}
	s.logger.Debug("Drawing created", "drawing_id", d.ID)

	return domain.Payload{
		"drawingId":       d.ID,
		"title":           d.Title,
		"dimensions":      Dimensions{Width: d.Width, Height: d.Height},
		"backgroundColor": d.BackgroundColor,
		"createdAt":       stamp,
	}, nil
}

func (s *Service) saveDrawing(ctx context.Context, raw map[string]any) (domain.Payload, error) {
	var args saveArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	if args.DrawingID == "" {
		return nil, errors.New("drawingId must not be empty")
	}
	if args.DrawingData == "" {
		return nil, errors.New("drawingData must not be empty")
	}
	if args.Metadata != nil {
		if err := s.metadata.Validate(args.Metadata); err != nil {
			return nil, err
		}
	}

	now, stamp := s.timestamp()
	err := s.locks.WithLock(ctx, args.DrawingID, func(ctx context.Context) error {
		d, err := s.store.Load(ctx, args.DrawingID)
		switch {
		case errors.Is(err, domain.ErrDrawingNotFound):
			d = domain.NewDrawing(args.DrawingID, "Drawing "+args.DrawingID, now)
		case err != nil:
			return fmt.Errorf("failed to load drawing: %w", err)
		}

		d.Data = args.DrawingData
		d.UpdatedAt = now
		if args.Metadata != nil {
			applyMetadata(d, args.Metadata)
		}
		return s.store.Save(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Drawing saved", "drawing_id", args.DrawingID, "bytes", len(args.DrawingData))

	metadata := args.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return domain.Payload{
		"drawingId": args.DrawingID,
		"savedAt":   stamp,
		"dataSize":  utf8.RuneCountInString(args.DrawingData),
		"metadata":  metadata,
	}, nil
}

// applyMetadata replaces the user metadata of d. Well-known keys also update the canvas.
func applyMetadata(d *domain.Drawing, metadata map[string]any) {
	d.Metadata = maps.Clone(metadata)
	if title, ok := metadata["title"].(string); ok {
		d.Title = title
	}
	if w, ok := metadata["width"].(float64); ok {
		d.Width = w
	}
	if h, ok := metadata["height"].(float64); ok {
		d.Height = h
	}
	if bg, ok := metadata["backgroundColor"].(string); ok {
		d.BackgroundColor = bg
	}
}

func (s *Service) getDrawing(ctx context.Context, raw map[string]any) (domain.Payload, error) {
	var args getArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}

	d, err := s.store.Load(ctx, args.DrawingID)
	if err != nil {
		if errors.Is(err, domain.ErrDrawingNotFound) {
			return nil, fmt.Errorf("%w: %s", err, args.DrawingID)
		}
		return nil, fmt.Errorf("failed to load drawing: %w", err)
	}

	return domain.Payload{
		"drawingId":   d.ID,
		"title":       d.Title,
		"createdAt":   d.CreatedAt.UTC().Format(TimeFormat),
		"drawingData": d.Data,
		"metadata":    d.CanvasMetadata(),
	}, nil
}

func (s *Service) listDrawings(ctx context.Context, raw map[string]any) (domain.Payload, error) {
	var args listArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	limit, err := count("limit", args.Limit)
	if err != nil {
		return nil, err
	}
	offset, err := count("offset", args.Offset)
	if err != nil {
		return nil, err
	}

	page, total, err := s.store.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list drawings: %w", err)
	}

	drawings := make([]Summary, len(page))
	for i, d := range page {
		drawings[i] = Summary{
			ID:        d.ID,
			Title:     d.Title,
			CreatedAt: d.CreatedAt.UTC().Format(TimeFormat),
			Thumbnail: d.Thumbnail,
			Metadata:  d.CanvasMetadata(),
		}
	}

	return domain.Payload{
		"drawings": drawings,
		"total":    total,
		"limit":    args.Limit,
		"offset":   args.Offset,
	}, nil
}

// count converts a paging argument to an int.
func count(name string, v float64) (int, error) {
	if v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %v", name, v)
	}
	return int(v), nil
}

func (s *Service) generateAIDrawing(ctx context.Context, raw map[string]any) (domain.Payload, error) {
	var args generateArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	if args.Prompt == "" {
		return nil, errors.New("prompt must not be empty")
	}

	image, err := s.generator.Generate(ctx, ports.ImageRequest{
		Prompt: args.Prompt,
		Style:  args.Style,
		Size:   args.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	now, stamp := s.timestamp()
	d := domain.NewDrawing(s.newID(domain.PrefixAIDrawing, now), args.Prompt, now)
	d.Source = domain.SourceAI
	d.Data = image
	if px, ok := SizePixels(args.Size); ok {
		d.Width = float64(px)
		d.Height = float64(px)
	}
	d.Metadata = map[string]any{
		"prompt": args.Prompt,
		"style":  args.Style,
		"size":   args.Size,
	}
	if err := s.store.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to store drawing: %w", err)
	}
	s.logger.Debug("AI drawing generated", "drawing_id", d.ID, "style", args.Style, "size", args.Size)

	return domain.Payload{
		"prompt":      args.Prompt,
		"style":       args.Style,
		"size":        args.Size,
		"generatedAt": stamp,
		"drawingId":   d.ID,
		"imageData":   image,
	}, nil
}
