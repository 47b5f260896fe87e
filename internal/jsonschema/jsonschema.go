package jsonschema

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ErrRecursiveType is returned by [For] when a type directly or indirectly
// references itself. Tool parameter schemas must be finite documents.
var ErrRecursiveType = errors.New("jsonschema: recursive type not supported")

// Schema is a JSON Schema fragment covering the subset needed to describe
// tool parameters: primitive types, flat and nested objects, arrays, enums,
// defaults, and required properties.
type Schema struct {
	Type                 string             `json:"type,omitempty"`
	Description          string             `json:"description,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Enum                 []any              `json:"enum,omitempty"`
	Default              any                `json:"default,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// PropertyOrder preserves the struct field declaration order, which a
	// Go map cannot. Consumers that render parameter lists use it to keep
	// prompts stable. Not part of the wire schema.
	PropertyOrder []string `json:"-"`
}

// For generates the Schema for type T.
//
// Field names come from `json` tags (fields tagged "-" are skipped) and
// metadata from `jsonschema` tags:
//
//	type Input struct {
//	    Query string `json:"query" jsonschema:"description=Search query,required"`
//	    Limit int    `json:"limit" jsonschema:"description=Max results,default=10"`
//	    Order string `json:"order" jsonschema:"enum=asc,enum=desc"`
//	}
//
// Returns [ErrRecursiveType] for self-referential types.
func For[T any]() (*Schema, error) {
	return forType(reflect.TypeFor[T](), make(map[reflect.Type]bool))
}

func forType(t reflect.Type, inProgress map[reflect.Type]bool) (*Schema, error) {
	switch t.Kind() {
	case reflect.Pointer:
		return forType(t.Elem(), inProgress)

	case reflect.String:
		return &Schema{Type: "string"}, nil

	case reflect.Bool:
		return &Schema{Type: "boolean"}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}, nil

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}, nil

	case reflect.Slice, reflect.Array:
		items, err := forType(t.Elem(), inProgress)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: items}, nil

	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: true}, nil

	case reflect.Interface:
		// No constraint can be expressed for any/interface{} values.
		return &Schema{}, nil

	case reflect.Struct:
		return forStruct(t, inProgress)

	default:
		return nil, fmt.Errorf("jsonschema: unsupported kind %s for type %s", t.Kind(), t)
	}
}

func forStruct(t reflect.Type, inProgress map[reflect.Type]bool) (*Schema, error) {
	if inProgress[t] {
		return nil, fmt.Errorf("%w: %s", ErrRecursiveType, t)
	}
	inProgress[t] = true
	defer delete(inProgress, t)

	schema := &Schema{
		Type:       "object",
		Properties: map[string]*Schema{},
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, skip := jsonName(field)
		if skip {
			continue
		}

		prop, err := forType(field.Type, inProgress)
		if err != nil {
			return nil, err
		}

		if applyTag(prop, field.Tag.Get("jsonschema")) {
			schema.Required = append(schema.Required, name)
		}

		schema.Properties[name] = prop
		schema.PropertyOrder = append(schema.PropertyOrder, name)
	}

	return schema, nil
}

// jsonName resolves the effective property name of a struct field from its
// `json` tag, reporting whether the field is excluded.
func jsonName(field reflect.StructField) (name string, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", true
	}

	name = field.Name
	if tag != "" {
		if base := strings.Split(tag, ",")[0]; base != "" {
			name = base
		}
	}
	return name, false
}

// applyTag parses a `jsonschema` struct tag into the property schema and
// reports whether the property is required. Supported directives:
// description=..., required, enum=..., default=....
func applyTag(prop *Schema, tag string) (required bool) {
	if tag == "" {
		return false
	}

	for _, part := range strings.Split(tag, ",") {
		key, value, _ := strings.Cut(part, "=")
		switch strings.TrimSpace(key) {
		case "description":
			prop.Description = value
		case "required":
			required = true
		case "enum":
			prop.Enum = append(prop.Enum, value)
		case "default":
			prop.Default = coerceDefault(prop.Type, value)
		}
	}
	return required
}

// coerceDefault converts the textual default from the tag into the
// property's declared type so it serializes without quotes for numbers and
// booleans.
func coerceDefault(schemaType, value string) any {
	switch schemaType {
	case "integer":
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	case "number":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	case "boolean":
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return value
}
