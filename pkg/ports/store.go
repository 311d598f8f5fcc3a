package ports

import (
	"context"

	"github.com/aretw0/atidraw/pkg/domain"
)

// DrawingStore defines the interface for persisting drawings.
type DrawingStore interface {
	// Save creates or replaces the drawing with d.ID.
	Save(ctx context.Context, d *domain.Drawing) error

	// Load retrieves the drawing with the given ID.
	// Returns domain.ErrDrawingNotFound if the drawing does not exist.
	Load(ctx context.Context, id string) (*domain.Drawing, error)

	// List returns up to limit drawings, newest first, skipping the first offset,
	// together with the total number of stored drawings.
	List(ctx context.Context, offset, limit int) ([]*domain.Drawing, int, error)

	// Delete removes the drawing with the given ID. Deleting a missing drawing is not an error.
	Delete(ctx context.Context, id string) error
}
