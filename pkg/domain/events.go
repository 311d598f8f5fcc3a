package domain

import (
	"context"
	"time"
)

// ToolEvent describes one dispatched call. OnToolCall receives it before the handler
// runs; OnToolReturn receives it again with the outcome filled in.
type ToolEvent struct {
	CallID    string        `json:"call_id"`
	ToolName  string        `json:"tool_name"`
	Category  string        `json:"category,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration,omitempty"`
	Success   bool          `json:"success"`
	Kind      ErrorKind     `json:"kind,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// Hooks defines callbacks for dispatch observability.
type Hooks struct {
	OnToolCall   func(context.Context, *ToolEvent)
	OnToolReturn func(context.Context, *ToolEvent)
}

// Chain combines several hook sets; each callback runs in order.
func Chain(hooks ...Hooks) Hooks {
	return Hooks{
		OnToolCall: func(ctx context.Context, e *ToolEvent) {
			for _, h := range hooks {
				if h.OnToolCall != nil {
					h.OnToolCall(ctx, e)
				}
			}
		},
		OnToolReturn: func(ctx context.Context, e *ToolEvent) {
			for _, h := range hooks {
				if h.OnToolReturn != nil {
					h.OnToolReturn(ctx, e)
				}
			}
		},
	}
}
