package atidraw

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/atidraw/internal/logging"
	"github.com/aretw0/atidraw/pkg/adapters/memory"
	"github.com/aretw0/atidraw/pkg/dispatch"
	"github.com/aretw0/atidraw/pkg/domain"
	"github.com/aretw0/atidraw/pkg/drawing"
	"github.com/aretw0/atidraw/pkg/locks"
	"github.com/aretw0/atidraw/pkg/ports"
	"github.com/aretw0/atidraw/pkg/registry"
	"github.com/aretw0/atidraw/pkg/schema"
)

// Server is the high-level entry point of the library.
// It owns the tool registry, the dispatcher and the drawing service built on a store.
type Server struct {
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
	store      ports.DrawingStore
	logger     *slog.Logger
}

type settings struct {
	store            ports.DrawingStore
	generator        ports.ImageGenerator
	locker           ports.DistributedLocker
	metadata         *drawing.MetadataValidator
	logger           *slog.Logger
	validator        schema.ValidatorOptions
	hooks            []domain.Hooks
	timeout          time.Duration
	batchConcurrency int
	seed             int
	now              func() time.Time
}

// Option defines a functional option for configuring the Server.
type Option func(*settings)

// WithStore sets the drawing store. Defaults to an in-memory store.
func WithStore(store ports.DrawingStore) Option {
	return func(s *settings) { s.store = store }
}

// WithGenerator replaces the placeholder image generator.
func WithGenerator(g ports.ImageGenerator) Option {
	return func(s *settings) { s.generator = g }
}

// WithLocker makes per-drawing locks span processes sharing the store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *settings) { s.locker = locker }
}

// WithMetadataValidator replaces the built-in save_drawing metadata schema.
func WithMetadataValidator(v *drawing.MetadataValidator) Option {
	return func(s *settings) { s.metadata = v }
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithValidatorOptions sets the argument validation policy.
func WithValidatorOptions(opts schema.ValidatorOptions) Option {
	return func(s *settings) { s.validator = opts }
}

// WithHooks registers observability hooks. It may be given several times.
func WithHooks(hooks domain.Hooks) Option {
	return func(s *settings) { s.hooks = append(s.hooks, hooks) }
}

// WithTimeout bounds each handler invocation.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) { s.timeout = timeout }
}

// WithBatchConcurrency sets how many calls of a batch may run at once.
func WithBatchConcurrency(n int) Option {
	return func(s *settings) { s.batchConcurrency = n }
}

// WithSeed creates n sample drawings when the store is empty.
func WithSeed(n int) Option {
	return func(s *settings) { s.seed = n }
}

// WithClock replaces the time source used for timestamps and IDs.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// New builds a Server with every built-in tool registered.
func New(ctx context.Context, opts ...Option) (*Server, error) {
	cfg := settings{
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	if cfg.store == nil {
		cfg.store = memory.NewStore()
	}

	if cfg.seed > 0 {
		n, err := drawing.Seed(ctx, cfg.store, cfg.seed, cfg.now())
		if err != nil {
			return nil, fmt.Errorf("seed drawings: %w", err)
		}
		if n > 0 {
			cfg.logger.Info("seeded sample drawings", "count", n)
		}
	}

	lockOpts := []locks.Option{locks.WithLogger(cfg.logger)}
	if cfg.locker != nil {
		lockOpts = append(lockOpts, locks.WithLocker(cfg.locker))
	}

	svcOpts := []drawing.Option{
		drawing.WithLocks(locks.NewManager(lockOpts...)),
		drawing.WithClock(cfg.now),
		drawing.WithLogger(cfg.logger),
	}
	if cfg.generator != nil {
		svcOpts = append(svcOpts, drawing.WithGenerator(cfg.generator))
	}
	if cfg.metadata != nil {
		svcOpts = append(svcOpts, drawing.WithMetadataValidator(cfg.metadata))
	}
	svc := drawing.NewService(cfg.store, svcOpts...)

	reg := registry.NewRegistry()
	if err := svc.Register(reg); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}

	d := dispatch.New(reg,
		dispatch.WithValidatorOptions(cfg.validator),
		dispatch.WithHooks(domain.Chain(cfg.hooks...)),
		dispatch.WithLogger(cfg.logger),
		dispatch.WithTimeout(cfg.timeout),
		dispatch.WithBatchConcurrency(cfg.batchConcurrency),
	)

	return &Server{
		registry:   reg,
		dispatcher: d,
		store:      cfg.store,
		logger:     cfg.logger,
	}, nil
}

// Dispatch runs one tool call and returns its envelope.
func (s *Server) Dispatch(ctx context.Context, toolName string, args map[string]any) domain.Response {
	return s.dispatcher.Dispatch(ctx, toolName, args)
}

// DispatchBatch runs several calls and returns their envelopes in call order.
func (s *Server) DispatchBatch(ctx context.Context, calls []domain.Call) []domain.Response {
	return s.dispatcher.DispatchBatch(ctx, calls)
}

// ListTools returns the registered tools, optionally restricted to one category.
func (s *Server) ListTools(category string) []domain.Tool {
	if category == "" {
		return s.registry.List()
	}
	return s.registry.ListByCategory(category)
}

// Categories returns the tool categories in registration order.
func (s *Server) Categories() []string {
	return s.registry.Categories()
}

// Registry exposes the tool registry, e.g. to register additional tools before serving.
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// Dispatcher exposes the underlying dispatcher.
func (s *Server) Dispatcher() *dispatch.Dispatcher {
	return s.dispatcher
}

// Store returns the drawing store.
func (s *Server) Store() ports.DrawingStore {
	return s.store
}

// Close releases the store when it holds resources.
func (s *Server) Close() error {
	if c, ok := s.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// VersionString returns the trimmed release version.
func VersionString() string {
	return strings.TrimSpace(Version)
}
