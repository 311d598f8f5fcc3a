/*
Package observability provides tools for monitoring tool dispatch.

It includes Prometheus metrics and structured logging, both exposed as
domain.Hooks that the dispatcher fires around every call.
*/
package observability
