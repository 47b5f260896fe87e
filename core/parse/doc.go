// Package parse converts raw LLM text into typed values. Language models
// frequently emit malformed JSON, wrap values in prose, or drift from the
// requested layout, so this package applies a layered recovery strategy
// (direct conversion, then automatic JSON repair) before failing with a
// typed error.
//
// [ParseStringAs] converts a string into any Go type. [Fields] splits a
// completion into the "name: value" sections declared by a signature and
// returns a [*Error] when the completion matches none of them; that typed
// failure is what the react loop's retry policy consumes.
package parse
