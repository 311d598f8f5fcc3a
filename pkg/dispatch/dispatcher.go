package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/aretw0/atidraw/internal/logging"
	"github.com/aretw0/atidraw/pkg/domain"
	"github.com/aretw0/atidraw/pkg/observability"
	"github.com/aretw0/atidraw/pkg/registry"
	"github.com/aretw0/atidraw/pkg/schema"
)

type callIDKey struct{}

// CallID returns the correlation ID of the call running under ctx, if any.
func CallID(ctx context.Context) string {
	id, _ := ctx.Value(callIDKey{}).(string)
	return id
}

// Dispatcher validates and executes tool calls against a registry.
type Dispatcher struct {
	registry         *registry.Registry
	validator        *schema.Validator
	hooks            domain.Hooks
	logger           *slog.Logger
	timeout          time.Duration
	batchConcurrency int
	newID            func() string
}

// New creates a Dispatcher over the given registry.
func New(reg *registry.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:         reg,
		validator:        schema.NewValidator(schema.ValidatorOptions{}),
		logger:           logging.NewNop(),
		batchConcurrency: DefaultBatchConcurrency,
		newID:            uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the registry the dispatcher resolves tools from.
func (d *Dispatcher) Registry() *registry.Registry {
	return d.registry
}

// Dispatch runs one tool call and returns its envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, toolName string, args map[string]any) domain.Response {
	callID := d.newID()
	ctx = context.WithValue(ctx, callIDKey{}, callID)
	logger := d.logger.With("call_id", callID, "tool", observability.Sanitize(toolName))

	event := &domain.ToolEvent{
		CallID:    callID,
		ToolName:  toolName,
		Timestamp: time.Now(),
	}
	d.fire(ctx, logger, d.hooks.OnToolCall, event)

	resp := d.dispatch(ctx, logger, event, toolName, args)

	event.Duration = time.Since(event.Timestamp)
	event.Success = resp.Success
	event.Kind = resp.Kind
	if !resp.Success {
		event.Message = resp.Message
	}
	d.fire(ctx, logger, d.hooks.OnToolReturn, event)

	logger.Debug("Tool call finished", "success", resp.Success, "kind", resp.Kind, "duration", event.Duration)
	return resp
}

// fire runs one hook. A panicking hook is logged and does not affect the call.
func (d *Dispatcher) fire(ctx context.Context, logger *slog.Logger, hook func(context.Context, *domain.ToolEvent), event *domain.ToolEvent) {
	if hook == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Hook panicked", "panic", fmt.Sprint(r))
		}
	}()
	hook(ctx, event)
}

// DispatchCall is Dispatch for a domain.Call value.
func (d *Dispatcher) DispatchCall(ctx context.Context, call domain.Call) domain.Response {
	return d.Dispatch(ctx, call.ToolName, call.Arguments)
}

// DispatchBatch runs several calls concurrently and returns their envelopes in request order.
// Calls are independent: one failure does not affect the others.
func (d *Dispatcher) DispatchBatch(ctx context.Context, calls []domain.Call) []domain.Response {
	results := make([]domain.Response, len(calls))

	p := pool.New().WithMaxGoroutines(d.batchConcurrency)
	for i, call := range calls {
		p.Go(func() {
			results[i] = d.DispatchCall(ctx, call)
		})
	}
	p.Wait()

	return results
}

func (d *Dispatcher) dispatch(ctx context.Context, logger *slog.Logger, event *domain.ToolEvent, toolName string, args map[string]any) domain.Response {
	if toolName == "" {
		return domain.Fail(domain.KindBadRequest, "Tool name is required")
	}

	tool, handler, ok := d.registry.Lookup(toolName)
	if !ok {
		return domain.Fail(domain.KindUnknownTool, "Unknown tool: %s", toolName)
	}
	event.Category = tool.Category

	normalized, err := d.validator.Validate(tool.Parameters, args)
	if err != nil {
		return domain.Fail(domain.KindInvalidArguments, "%s", err.Error())
	}

	logger.Debug("Invoking tool handler", "args", len(normalized))
	payload, err := d.invoke(ctx, handler, normalized)
	if err != nil {
		herr := &domain.HandlerError{Tool: toolName, Err: err}
		return domain.Fail(domain.KindHandlerFailure, "%s", herr.Error())
	}

	return succeed(tool, payload)
}

// invoke runs the handler under the configured timeout and converts panics into errors.
func (d *Dispatcher) invoke(ctx context.Context, handler registry.ToolFunction, args map[string]any) (payload domain.Payload, err error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return handler(ctx, args)
}

func succeed(tool domain.Tool, payload domain.Payload) domain.Response {
	out := maps.Clone(payload)
	if out == nil {
		out = domain.Payload{}
	}

	message := tool.SuccessMessage
	if msg, ok := out["message"].(string); ok && msg != "" {
		message = msg
	}
	delete(out, "message")
	delete(out, "success")

	if message == "" {
		message = fmt.Sprintf("Tool %s executed successfully", tool.Name)
	}
	return domain.Succeed(out, message)
}
