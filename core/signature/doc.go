// Package signature provides the declarative contract that drives prompt
// construction and completion parsing: named input fields, named output
// fields, and free-text instructions.
//
// A [Signature] is validated once at construction time via [New] and is
// immutable afterwards; the Append* methods return modified copies. Modules
// such as predict.Predict and react.ReAct consume a Signature to know which
// values to render into the prompt and which fields to expect back from the
// model.
package signature
