package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/reagentlabs/reagent/core/parse"
	"github.com/reagentlabs/reagent/internal/jsonschema"
	"github.com/reagentlabs/reagent/internal/utils"
	"github.com/reagentlabs/reagent/providers/observability"
)

// ErrInvalidTool is returned by [New] when a tool cannot be constructed.
var ErrInvalidTool = errors.New("invalid tool")

// ArgumentError reports a problem with one argument of a tool call. It is
// returned by [Tool.Call] before the underlying function runs, so the caller
// can relay the reason back to the model as an observation.
type ArgumentError struct {
	Tool   string
	Param  string
	Reason string
	Err    error
}

func (e *ArgumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tool %q: argument %q: %s: %v", e.Tool, e.Param, e.Reason, e.Err)
	}
	return fmt.Sprintf("tool %q: argument %q: %s", e.Tool, e.Param, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// Parameter describes one input argument of a tool, in the order the input
// struct declares them.
type Parameter struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Default     any
	Enum        []string
}

// Info is the static, model-facing description of a tool.
type Info struct {
	Name        string
	Description string
	Parameters  []Parameter
	Schema      *jsonschema.Schema
}

// GenericTool is the type-erased view of a [Tool], used by registries and
// agent loops that dispatch on tool names at runtime.
type GenericTool interface {
	Info() Info
	// Call parses argsJSON against the tool's input schema, executes the
	// tool, and returns the output serialized as JSON.
	Call(ctx context.Context, argsJSON string) (string, error)
}

// Tool wraps a typed function fn(ctx, I) (O, error) together with the
// metadata a model needs to invoke it.
type Tool[I, O any] struct {
	info Info
	fn   func(ctx context.Context, input I) (O, error)
}

// Option configures a tool at construction time.
type Option func(*Info)

// WithDescription sets the human- and model-readable description of the tool.
func WithDescription(description string) Option {
	return func(info *Info) {
		info.Description = description
	}
}

// New builds a tool from a named function. The parameter list is derived
// from the JSON schema of the input type I: field order, descriptions,
// required flags, enums and defaults all come from the struct tags of I.
func New[I, O any](name string, fn func(ctx context.Context, input I) (O, error), opts ...Option) (*Tool[I, O], error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidTool)
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: %q has no function", ErrInvalidTool, name)
	}

	schema, err := jsonschema.For[I]()
	if err != nil {
		return nil, fmt.Errorf("%w: %q: deriving input schema: %w", ErrInvalidTool, name, err)
	}

	info := Info{
		Name:       name,
		Parameters: parametersFromSchema(schema),
		Schema:     schema,
	}
	for _, opt := range opts {
		opt(&info)
	}

	return &Tool[I, O]{info: info, fn: fn}, nil
}

// MustNew is like [New] but panics on error. Intended for package-level
// tool construction where the input type is known to be well-formed.
func MustNew[I, O any](name string, fn func(ctx context.Context, input I) (O, error), opts ...Option) *Tool[I, O] {
	t, err := New(name, fn, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Info returns the static description of the tool.
func (t *Tool[I, O]) Info() Info { return t.info }

// Call implements [GenericTool]. argsJSON may be empty, a JSON object, or
// the slightly malformed JSON models tend to emit; it is repaired and
// validated before the underlying function runs.
func (t *Tool[I, O]) Call(ctx context.Context, argsJSON string) (out string, err error) {
	span := observability.SpanFromContext(ctx)
	if span != nil {
		span.AddEvent(observability.EventToolExecutionStart,
			observability.String(observability.AttrToolName, t.info.Name),
			observability.String(observability.AttrToolInput, utils.TruncateStringDefault(argsJSON)),
		)
		defer func() {
			if err != nil {
				span.AddEvent(observability.EventToolExecutionEnd,
					observability.String(observability.AttrToolName, t.info.Name),
					observability.String(observability.AttrToolError, err.Error()),
				)
				return
			}
			span.AddEvent(observability.EventToolExecutionEnd,
				observability.String(observability.AttrToolName, t.info.Name),
				observability.String(observability.AttrToolOutput, utils.TruncateStringDefault(out)),
			)
		}()
	}

	args, err := t.decodeArgs(argsJSON)
	if err != nil {
		return "", err
	}

	input, err := t.buildInput(args)
	if err != nil {
		return "", err
	}

	result, err := t.fn(ctx, input)
	if err != nil {
		return "", fmt.Errorf("tool %q: %w", t.info.Name, err)
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("tool %q: encoding output: %w", t.info.Name, err)
	}
	return string(encoded), nil
}

// decodeArgs turns the raw argument payload into a map, treating an empty
// payload as an empty object.
func (t *Tool[I, O]) decodeArgs(argsJSON string) (map[string]any, error) {
	trimmed := strings.TrimSpace(argsJSON)
	if trimmed == "" || trimmed == "null" {
		return map[string]any{}, nil
	}
	args, err := parse.ParseStringAs[map[string]any](trimmed)
	if err != nil {
		return nil, fmt.Errorf("tool %q: parsing arguments: %w", t.info.Name, err)
	}
	return args, nil
}

// buildInput validates required parameters, applies defaults, coerces
// string-typed values toward the declared parameter types, and decodes the
// result into I.
func (t *Tool[I, O]) buildInput(args map[string]any) (I, error) {
	var zero I

	for _, param := range t.info.Parameters {
		value, present := args[param.Name]
		if !present || value == nil {
			if param.Default != nil {
				args[param.Name] = param.Default
				continue
			}
			if param.Required {
				return zero, &ArgumentError{
					Tool:   t.info.Name,
					Param:  param.Name,
					Reason: "required argument is missing",
				}
			}
			continue
		}
		coerced, err := coerceValue(value, param.Type)
		if err != nil {
			return zero, &ArgumentError{
				Tool:   t.info.Name,
				Param:  param.Name,
				Reason: fmt.Sprintf("cannot interpret value as %s", param.Type),
				Err:    err,
			}
		}
		args[param.Name] = coerced
	}

	encoded, err := json.Marshal(args)
	if err != nil {
		return zero, fmt.Errorf("tool %q: encoding arguments: %w", t.info.Name, err)
	}
	input, err := parse.ParseStringAs[I](string(encoded))
	if err != nil {
		return zero, fmt.Errorf("tool %q: decoding arguments: %w", t.info.Name, err)
	}
	return input, nil
}

// coerceValue nudges string values toward the declared schema type. Models
// frequently quote numbers and booleans; everything else passes through
// untouched and is left to JSON decoding.
func coerceValue(value any, schemaType string) (any, error) {
	s, isString := value.(string)
	if !isString {
		return value, nil
	}
	switch schemaType {
	case "number":
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	case "integer":
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	case "boolean":
		return strconv.ParseBool(strings.TrimSpace(s))
	default:
		return value, nil
	}
}

// parametersFromSchema flattens the top level of an object schema into an
// ordered parameter list.
func parametersFromSchema(schema *jsonschema.Schema) []Parameter {
	if schema == nil || len(schema.Properties) == 0 {
		return nil
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := schema.PropertyOrder
	if len(names) == 0 {
		names = make([]string, 0, len(schema.Properties))
		for name := range schema.Properties {
			names = append(names, name)
		}
	}

	params := make([]Parameter, 0, len(names))
	for _, name := range names {
		prop, ok := schema.Properties[name]
		if !ok {
			continue
		}
		param := Parameter{
			Name:        name,
			Type:        prop.Type,
			Description: prop.Description,
			Required:    required[name],
			Default:     prop.Default,
		}
		for _, v := range prop.Enum {
			param.Enum = append(param.Enum, fmt.Sprintf("%v", v))
		}
		params = append(params, param)
	}
	return params
}
