package signature

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSignature is wrapped by every validation error returned from
// [New] and the Append* methods, so callers can detect setup-time signature
// problems with errors.Is.
var ErrInvalidSignature = errors.New("invalid signature")

// Type hints influence how a field's value is rendered into the prompt and
// how the model's completion is parsed back. TypeString is the default.
const (
	// TypeString fields are rendered and parsed as plain text.
	TypeString = "string"

	// TypeObject fields are rendered as compact JSON and parsed back into a
	// map, with automatic JSON repair applied to malformed completions.
	TypeObject = "object"
)

// Field declares a single named input or output of a Signature.
// Fields are plain values and are never mutated after declaration.
type Field struct {
	// Name identifies the field. It must be non-empty and unique across the
	// whole signature (input and output names share one namespace).
	Name string

	// Description is surfaced to the model next to the field name so it
	// knows what value is expected.
	Description string

	// TypeHint is one of the Type* constants. An empty value means
	// [TypeString].
	TypeHint string
}

// Signature is an ordered set of input fields, an ordered set of output
// fields, and free-text instructions. Input and output names are disjoint.
// A Signature is immutable once constructed.
type Signature struct {
	instructions string
	inputs       []Field
	outputs      []Field
}

// New constructs a validated Signature. It returns an error wrapping
// [ErrInvalidSignature] when a field name is empty, a name appears twice,
// an input name collides with an output name, or no output field is
// declared. Field order is preserved as given.
func New(instructions string, inputs, outputs []Field) (*Signature, error) {
	if len(outputs) == 0 {
		return nil, fmt.Errorf("%w: at least one output field is required", ErrInvalidSignature)
	}

	seen := make(map[string]string, len(inputs)+len(outputs))
	check := func(f Field, role string) error {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return fmt.Errorf("%w: %s field with empty name", ErrInvalidSignature, role)
		}
		if name != f.Name {
			return fmt.Errorf("%w: field name %q has surrounding whitespace", ErrInvalidSignature, f.Name)
		}
		if prev, exists := seen[name]; exists {
			return fmt.Errorf("%w: field %q declared as both %s and %s", ErrInvalidSignature, name, prev, role)
		}
		seen[name] = role
		return nil
	}

	for _, f := range inputs {
		if err := check(f, "input"); err != nil {
			return nil, err
		}
	}
	for _, f := range outputs {
		if err := check(f, "output"); err != nil {
			return nil, err
		}
	}

	return &Signature{
		instructions: instructions,
		inputs:       cloneFields(inputs),
		outputs:      cloneFields(outputs),
	}, nil
}

// MustNew is like [New] but panics on validation failure. Intended for
// statically declared signatures in examples and tests.
func MustNew(instructions string, inputs, outputs []Field) *Signature {
	s, err := New(instructions, inputs, outputs)
	if err != nil {
		panic(err)
	}
	return s
}

// Instructions returns the free-text task instructions.
func (s *Signature) Instructions() string { return s.instructions }

// Inputs returns a copy of the declared input fields in declaration order.
func (s *Signature) Inputs() []Field { return cloneFields(s.inputs) }

// Outputs returns a copy of the declared output fields in declaration order.
func (s *Signature) Outputs() []Field { return cloneFields(s.outputs) }

// InputNames returns the input field names in declaration order.
func (s *Signature) InputNames() []string { return fieldNames(s.inputs) }

// OutputNames returns the output field names in declaration order.
func (s *Signature) OutputNames() []string { return fieldNames(s.outputs) }

// Input returns the input field with the given name.
func (s *Signature) Input(name string) (Field, bool) { return findField(s.inputs, name) }

// Output returns the output field with the given name.
func (s *Signature) Output(name string) (Field, bool) { return findField(s.outputs, name) }

// AppendInput returns a new Signature with f appended to the input fields.
// The receiver is not modified.
func (s *Signature) AppendInput(f Field) (*Signature, error) {
	return New(s.instructions, append(cloneFields(s.inputs), f), s.outputs)
}

// AppendOutput returns a new Signature with f appended to the output fields.
// The receiver is not modified.
func (s *Signature) AppendOutput(f Field) (*Signature, error) {
	return New(s.instructions, s.inputs, append(cloneFields(s.outputs), f))
}

// PrependOutput returns a new Signature with f inserted before the existing
// output fields. Used by chain-of-thought predictors to place a reasoning
// field ahead of the declared outputs.
func (s *Signature) PrependOutput(f Field) (*Signature, error) {
	outputs := make([]Field, 0, len(s.outputs)+1)
	outputs = append(outputs, f)
	outputs = append(outputs, s.outputs...)
	return New(s.instructions, s.inputs, outputs)
}

// WithInstructions returns a new Signature with the instructions replaced.
func (s *Signature) WithInstructions(instructions string) *Signature {
	return &Signature{
		instructions: instructions,
		inputs:       cloneFields(s.inputs),
		outputs:      cloneFields(s.outputs),
	}
}

func cloneFields(fields []Field) []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

func fieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func findField(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
