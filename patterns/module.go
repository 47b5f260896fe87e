package patterns

import (
	"context"
	"fmt"

	"github.com/reagentlabs/reagent/core/parse"
	"github.com/reagentlabs/reagent/providers/ai"
)

// Inputs carries the named input values of one module invocation. Values
// may be strings or any JSON-serializable Go value.
type Inputs map[string]any

// Prediction carries the named output values produced by one module
// invocation, keyed by the output field names of the module's signature.
type Prediction map[string]any

// GetString returns the value for name rendered as a string. Non-string
// values are serialized to JSON. Missing keys return the empty string.
func (p Prediction) GetString(name string) string {
	value, ok := p[name]
	if !ok || value == nil {
		return ""
	}
	if s, isString := value.(string); isString {
		return s
	}
	return fmt.Sprintf("%v", value)
}

// GetMap returns the value for name as a map, parsing it from a string
// when necessary. The second return reports whether a map was obtained.
func (p Prediction) GetMap(name string) (map[string]any, bool) {
	value, ok := p[name]
	if !ok || value == nil {
		return nil, false
	}
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case string:
		m, err := parse.ParseStringAs[map[string]any](v)
		if err != nil {
			return nil, false
		}
		return m, true
	default:
		return nil, false
	}
}

// Module is the unit of execution shared by all prompting strategies: it
// maps named inputs to a named prediction, usually via one or more model
// calls.
type Module interface {
	Invoke(ctx context.Context, inputs Inputs) (Prediction, error)
}

// UsageReporter is implemented by modules that track token usage of their
// most recent invocation. Callers that aggregate usage across several calls
// type-assert for it.
type UsageReporter interface {
	LastUsage() *ai.Usage
}
