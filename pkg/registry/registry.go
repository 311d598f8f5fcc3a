package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/atidraw/pkg/domain"
)

// ToolFunction defines the signature for a tool implementation.
// It receives the normalized argument bag and returns the payload merged into the success envelope.
type ToolFunction func(ctx context.Context, args map[string]any) (domain.Payload, error)

type entry struct {
	tool    domain.Tool
	handler ToolFunction
}

// Registry holds the tools known to the server, in registration order.
// It is populated at startup and only read afterwards; reads are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]entry
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]entry),
	}
}

// Register adds a tool and its handler.
// It fails with domain.ErrDuplicateTool if the name is taken, or with a descriptor
// error if the tool declaration is malformed.
func (r *Registry) Register(tool domain.Tool, fn ToolFunction) error {
	if tool.Name == "" {
		return errors.New("tool name is required")
	}
	if fn == nil {
		return fmt.Errorf("tool %s: handler is required", tool.Name)
	}
	if err := tool.Parameters.Verify(); err != nil {
		return fmt.Errorf("tool %s: %w", tool.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[tool.Name]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateTool, tool.Name)
	}

	tool.Parameters = slices.Clone(tool.Parameters)
	r.entries[tool.Name] = entry{tool: tool, handler: fn}
	r.order = append(r.order, tool.Name)
	return nil
}

// MustRegister is like Register but panics on error. Use it for static startup lists.
func (r *Registry) MustRegister(tool domain.Tool, fn ToolFunction) {
	if err := r.Register(tool, fn); err != nil {
		panic(err)
	}
}

// Get looks up a tool descriptor by exact name.
func (r *Registry) Get(name string) (domain.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	return e.tool, ok
}

// Lookup returns both the descriptor and the handler of a tool.
func (r *Registry) Lookup(name string) (domain.Tool, ToolFunction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	return e.tool, e.handler, ok
}

// Handler returns the handler of a tool, or nil if it is not registered.
func (r *Registry) Handler(name string) ToolFunction {
	_, fn, _ := r.Lookup(name)
	return fn
}

// Has reports whether a tool is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// List returns every descriptor in registration order.
func (r *Registry) List() []domain.Tool {
	return r.filter(func(domain.Tool) bool { return true })
}

// ListByCategory returns the descriptors of one category, preserving registration order.
func (r *Registry) ListByCategory(category string) []domain.Tool {
	return r.filter(func(t domain.Tool) bool { return t.Category == category })
}

// Categories returns the distinct categories in order of first appearance.
func (r *Registry) Categories() []string {
	var out []string
	for _, t := range r.List() {
		if !slices.Contains(out, t.Category) {
			out = append(out, t.Category)
		}
	}
	return out
}

func (r *Registry) filter(keep func(domain.Tool) bool) []domain.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Tool, 0, len(r.order))
	for _, name := range r.order {
		if t := r.entries[name].tool; keep(t) {
			out = append(out, t)
		}
	}
	return out
}
