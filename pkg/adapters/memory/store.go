package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/atidraw/pkg/domain"
)

// Store implements ports.DrawingStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Drawing
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Drawing),
	}
}

// Save persists the drawing in memory.
func (s *Store) Save(ctx context.Context, d *domain.Drawing) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := d.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[d.ID] = copied
	return nil
}

// Load retrieves the drawing from memory.
func (s *Store) Load(ctx context.Context, id string) (*domain.Drawing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.data[id]
	if !ok {
		return nil, domain.ErrDrawingNotFound
	}

	// Create a copy on read so caller can't mutate store state directly by pointer
	return d.Clone(), nil
}

// Delete removes the drawing.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns a page of drawings, newest first. Ties are broken by ID, descending.
func (s *Store) List(ctx context.Context, offset, limit int) ([]*domain.Drawing, int, error) {
	s.mu.RLock()
	all := make([]*domain.Drawing, 0, len(s.data))
	for _, d := range s.data {
		all = append(all, d)
	}
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b *domain.Drawing) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})

	total := len(all)
	if limit <= 0 || offset >= total {
		return []*domain.Drawing{}, total, nil
	}
	end := min(offset+limit, total)

	page := make([]*domain.Drawing, 0, end-offset)
	for _, d := range all[offset:end] {
		page = append(page, d.Clone())
	}
	return page, total, nil
}
