package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/atidraw/pkg/domain"
	"github.com/aretw0/atidraw/pkg/ports"
)

// Mask replaces redacted metadata values.
const Mask = "***"

type redactMiddleware struct {
	closer
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks metadata values whose key matches
// one of the patterns before they reach the store. Nested objects are searched too.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("redact pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.DrawingStore) ports.DrawingStore {
		return &redactMiddleware{closer: closer{next}, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Save(ctx context.Context, d *domain.Drawing) error {
	// Clone so the caller's drawing keeps its values.
	masked := d.Clone()
	maskMap(masked.Metadata, m.patterns)
	return m.next.Save(ctx, masked)
}

func (m *redactMiddleware) Load(ctx context.Context, id string) (*domain.Drawing, error) {
	return m.next.Load(ctx, id)
}

func (m *redactMiddleware) List(ctx context.Context, offset, limit int) ([]*domain.Drawing, int, error) {
	return m.next.List(ctx, offset, limit)
}

func (m *redactMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		matched := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		switch sub := v.(type) {
		case map[string]any:
			maskMap(sub, patterns)
		case []any:
			for _, item := range sub {
				if itemMap, ok := item.(map[string]any); ok {
					maskMap(itemMap, patterns)
				}
			}
		}
	}
}
