// Package tool adapts plain Go functions into named, schema-described
// callables that an agent loop can dispatch to.
//
// A [Tool] binds a name and description to a strongly-typed function and
// derives its parameter descriptors exactly once, at construction time, from
// the reflected JSON schema of the input type; nothing is introspected again
// at call time. [GenericTool] erases the type parameters so tools of
// different shapes can live in one [Registry].
//
// Call never panics across its boundary: missing required arguments,
// uncoercible values, and execution failures all come back as errors for
// the caller to turn into observations.
package tool
