package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/atidraw/pkg/domain"
	"github.com/aretw0/atidraw/pkg/ports"
)

// StoreFactory returns an empty store. It is called once per subtest.
type StoreFactory func(t *testing.T) ports.DrawingStore

// RunDrawingStoreContract is a reusable test suite that verifies if an adapter complies with ports.DrawingStore.
func RunDrawingStoreContract(t *testing.T, newStore StoreFactory) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	t.Run("Save and Load", func(t *testing.T) {
		store := newStore(t)

		d := sample("drawing_1", "Sketch", base)
		d.Data = "data:image/png;base64,AAAA"
		d.Metadata = map[string]any{"tags": []any{"a", "b"}, "layers": float64(3), "author": map[string]any{"name": "ana"}}
		require.NoError(t, store.Save(ctx, d))

		loaded, err := store.Load(ctx, "drawing_1")
		require.NoError(t, err)
		assert.Equal(t, "Sketch", loaded.Title)
		assert.Equal(t, float64(1024), loaded.Width)
		assert.Equal(t, float64(768), loaded.Height)
		assert.Equal(t, "#000000", loaded.BackgroundColor)
		assert.Equal(t, "data:image/png;base64,AAAA", loaded.Data)
		assert.Equal(t, domain.SourceCanvas, loaded.Source)
		assert.Equal(t, d.Metadata, loaded.Metadata)
		assert.True(t, loaded.CreatedAt.Equal(base), "created at %s", loaded.CreatedAt)
		assert.True(t, loaded.UpdatedAt.Equal(base), "updated at %s", loaded.UpdatedAt)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		store := newStore(t)

		_, err := store.Load(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrDrawingNotFound)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.Save(ctx, sample("drawing_1", "First", base)))
		updated := sample("drawing_1", "Second", base)
		updated.UpdatedAt = base.Add(time.Hour)
		require.NoError(t, store.Save(ctx, updated))

		loaded, err := store.Load(ctx, "drawing_1")
		require.NoError(t, err)
		assert.Equal(t, "Second", loaded.Title)
		assert.True(t, loaded.UpdatedAt.Equal(base.Add(time.Hour)))

		_, total, err := store.List(ctx, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("Load Returns Copy", func(t *testing.T) {
		store := newStore(t)

		d := sample("drawing_1", "Original", base)
		d.Metadata = map[string]any{"k": "v"}
		require.NoError(t, store.Save(ctx, d))
		d.Metadata["k"] = "changed after save"

		loaded, err := store.Load(ctx, "drawing_1")
		require.NoError(t, err)
		loaded.Title = "mutated"
		loaded.Metadata["k"] = "mutated"

		again, err := store.Load(ctx, "drawing_1")
		require.NoError(t, err)
		assert.Equal(t, "Original", again.Title)
		assert.Equal(t, "v", again.Metadata["k"])
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.Save(ctx, sample("drawing_1", "Doomed", base)))
		require.NoError(t, store.Delete(ctx, "drawing_1"))

		_, err := store.Load(ctx, "drawing_1")
		assert.ErrorIs(t, err, domain.ErrDrawingNotFound, "Load after Delete should return ErrDrawingNotFound")

		_, total, err := store.List(ctx, 0, 10)
		require.NoError(t, err)
		assert.Zero(t, total)

		assert.NoError(t, store.Delete(ctx, "never-existed"))
	})

	t.Run("List Newest First", func(t *testing.T) {
		store := newStore(t)

		// Saved out of order on purpose.
		for _, i := range []int{2, 0, 4, 1, 3} {
			id := fmt.Sprintf("drawing_%d", i)
			require.NoError(t, store.Save(ctx, sample(id, fmt.Sprintf("Drawing %d", i), base.AddDate(0, 0, i))))
		}

		page, total, err := store.List(ctx, 0, 3)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Equal(t, []string{"drawing_4", "drawing_3", "drawing_2"}, ids(page))

		page, total, err = store.List(ctx, 3, 10)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Equal(t, []string{"drawing_1", "drawing_0"}, ids(page))

		page, total, err = store.List(ctx, 10, 5)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Empty(t, page)

		page, _, err = store.List(ctx, 0, 0)
		require.NoError(t, err)
		assert.Empty(t, page)
	})

	t.Run("List Empty", func(t *testing.T) {
		store := newStore(t)

		page, total, err := store.List(ctx, 0, 10)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, page)
	})
}

func sample(id, title string, at time.Time) *domain.Drawing {
	d := domain.NewDrawing(id, title, at)
	d.Width = 1024
	d.Height = 768
	d.BackgroundColor = "#000000"
	return d
}

func ids(ds []*domain.Drawing) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.ID
	}
	return out
}
