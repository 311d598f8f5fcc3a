package drawing

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/atidraw/pkg/domain"
	"github.com/aretw0/atidraw/pkg/ports"
)

// DefaultSeed is the number of sample drawings a fresh server starts with.
const DefaultSeed = 5

// Seed stores n sample drawings titled "Drawing 1".."Drawing n", one day apart,
// with "Drawing 1" the newest. It does nothing if the store already holds drawings.
// It returns the number of drawings stored.
func Seed(ctx context.Context, store ports.DrawingStore, n int, now time.Time) (int, error) {
	if n <= 0 {
		return 0, nil
	}

	_, total, err := store.List(ctx, 0, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect store: %w", err)
	}
	if total > 0 {
		return 0, nil
	}

	now = now.UTC().Truncate(time.Millisecond)
	for i := 0; i < n; i++ {
		createdAt := now.AddDate(0, 0, -i)
		d := domain.NewDrawing(NewID(domain.PrefixDrawing, createdAt), fmt.Sprintf("Drawing %d", i+1), createdAt)
		if err := store.Save(ctx, d); err != nil {
			return i, fmt.Errorf("failed to seed drawing %d: %w", i+1, err)
		}
	}
	return n, nil
}
