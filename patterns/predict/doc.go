// Package predict implements signature-driven model calls.
//
// [Predict] renders a [signature.Signature] into a chat exchange, sends it
// through an [ai.Provider], and parses the completion back into named
// output fields. [ChainOfThought] is the same module with a reasoning
// field prepended to the outputs, so the model thinks before answering.
//
// The field grammar is plain "name: value" lines, one marker per output
// field, chosen because it survives the formatting drift of small models
// better than strict JSON. Parsing is handled by [parse.Fields].
package predict
