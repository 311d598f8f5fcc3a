package dispatch

import (
	"log/slog"
	"time"

	"github.com/aretw0/atidraw/pkg/domain"
	"github.com/aretw0/atidraw/pkg/schema"
)

// DefaultBatchConcurrency bounds the number of calls of one batch that run at once.
const DefaultBatchConcurrency = 4

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithValidatorOptions sets the argument validation policy.
func WithValidatorOptions(opts schema.ValidatorOptions) Option {
	return func(d *Dispatcher) {
		d.validator = schema.NewValidator(opts)
	}
}

// WithHooks registers observability hooks fired around every call.
func WithHooks(hooks domain.Hooks) Option {
	return func(d *Dispatcher) {
		d.hooks = hooks
	}
}

// WithLogger sets the logger used for call tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithTimeout bounds each handler invocation. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// WithBatchConcurrency sets how many calls of a batch may run at once.
func WithBatchConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.batchConcurrency = n
		}
	}
}

// WithIDGenerator replaces the correlation ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.newID = fn
		}
	}
}
