// Package observability defines the tracing and structured-logging
// abstraction used across the module. Components never talk to a concrete
// telemetry backend; they extract a [Span] from the context and record
// events and attributes on it, or log through the [Logger] interface.
//
// The slog subpackage provides the default implementation backed by the
// standard library log/slog. Attribute names follow the semantic
// conventions declared in semconv.go (llm.*, tool.*, agent.*).
package observability
