// Package dispatch routes tool calls to their handlers.
//
// A Dispatcher resolves the tool in a registry.Registry, validates the argument bag
// against the tool's parameters, runs the handler and wraps the outcome in a
// domain.Response. Dispatch never returns an error and never panics: unknown tools,
// invalid arguments and handler failures all come back as failure envelopes whose
// Kind tells transports which status to report.
//
// The Dispatcher keeps no per-call state, so one instance serves concurrent callers.
// Every call receives a correlation ID, available to handlers through CallID(ctx).
package dispatch
