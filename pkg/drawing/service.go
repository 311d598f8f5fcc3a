package drawing

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/atidraw/internal/logging"
	"github.com/aretw0/atidraw/pkg/locks"
	"github.com/aretw0/atidraw/pkg/ports"
	"github.com/aretw0/atidraw/pkg/registry"
)

// TimeFormat is the layout of every timestamp in tool payloads (ISO-8601, UTC, milliseconds).
const TimeFormat = "2006-01-02T15:04:05.000Z"

// Service implements the built-in tools over a drawing store.
type Service struct {
	store     ports.DrawingStore
	generator ports.ImageGenerator
	locks     *locks.Manager
	metadata  *MetadataValidator
	newID     IDGenerator
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithGenerator sets the image generator used by generate_ai_drawing.
func WithGenerator(g ports.ImageGenerator) Option {
	return func(s *Service) {
		if g != nil {
			s.generator = g
		}
	}
}

// WithLocks sets the lock manager that serializes writes to one drawing.
func WithLocks(m *locks.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.locks = m
		}
	}
}

// WithMetadataValidator replaces the metadata schema check of save_drawing.
func WithMetadataValidator(v *MetadataValidator) Option {
	return func(s *Service) {
		if v != nil {
			s.metadata = v
		}
	}
}

// WithIDGenerator replaces the drawing ID generator.
func WithIDGenerator(fn IDGenerator) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger configures a logger for the Service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates the tool handlers over store.
func NewService(store ports.DrawingStore, opts ...Option) *Service {
	s := &Service{
		store:     store,
		generator: PlaceholderGenerator{},
		locks:     locks.NewManager(),
		metadata:  MustMetadataValidator(""),
		newID:     NewID,
		now:       time.Now,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying drawing store.
func (s *Service) Store() ports.DrawingStore {
	return s.store
}

// Register adds the built-in tools to reg.
func (s *Service) Register(reg *registry.Registry) error {
	handlers := map[string]registry.ToolFunction{
		ToolCreateDrawing:     s.createDrawing,
		ToolSaveDrawing:       s.saveDrawing,
		ToolGetDrawing:        s.getDrawing,
		ToolListDrawings:      s.listDrawings,
		ToolGenerateAIDrawing: s.generateAIDrawing,
	}
	for _, tool := range Tools() {
		if err := reg.Register(tool, handlers[tool.Name]); err != nil {
			return fmt.Errorf("failed to register %s: %w", tool.Name, err)
		}
	}
	return nil
}

func (s *Service) timestamp() (time.Time, string) {
	now := s.now().UTC().Truncate(time.Millisecond)
	return now, now.Format(TimeFormat)
}

// decode copies a normalized argument bag into a typed struct.
func decode(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "json",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("failed to decode arguments: %w", err)
	}
	return nil
}
