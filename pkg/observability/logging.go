package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/atidraw/pkg/domain"
)

// LoggingHooks returns dispatcher hooks that write one structured line per call event.
// Tool names and failure messages come from callers and are passed through Sanitize.
func LoggingHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnToolCall: func(ctx context.Context, e *domain.ToolEvent) {
			logger.Info("tool_call",
				"call_id", e.CallID,
				"tool_name", Sanitize(e.ToolName),
			)
		},
		OnToolReturn: func(ctx context.Context, e *domain.ToolEvent) {
			attrs := []any{
				"call_id", e.CallID,
				"tool_name", Sanitize(e.ToolName),
				"category", e.Category,
				"success", e.Success,
				"duration", e.Duration,
			}
			if !e.Success {
				attrs = append(attrs, "kind", e.Kind, "message", Sanitize(e.Message))
			}
			logger.Info("tool_return", attrs...)
		},
	}
}
