// Package jsonschema derives JSON Schema documents from Go types via
// reflection. Tool input and output types are annotated with `json` and
// `jsonschema` struct tags; the resulting [Schema] is serialized into the
// prompt so the model knows how to call a tool.
//
// Schemas are generated exactly once, at tool registration time, through
// [For]. The generator intentionally rejects recursive types: tool
// parameter lists are flat declarative records, not arbitrary object graphs.
package jsonschema
