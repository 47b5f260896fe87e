package tool

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateTool is returned by [Registry.Register] when two tools share
// a name. Names are compared case-insensitively because models are not
// reliable about casing.
var ErrDuplicateTool = errors.New("duplicate tool name")

// Registry holds the tools available to one agent run, keyed by
// case-insensitive name. It is populated up front and read-only afterwards,
// so no locking is performed.
type Registry struct {
	tools []GenericTool
	byKey map[string]GenericTool
}

// NewRegistry builds a registry from the given tools.
func NewRegistry(tools ...GenericTool) (*Registry, error) {
	r := &Registry{byKey: make(map[string]GenericTool, len(tools))}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool, rejecting nil tools and duplicate names.
func (r *Registry) Register(t GenericTool) error {
	if t == nil {
		return fmt.Errorf("%w: nil tool", ErrInvalidTool)
	}
	key := registryKey(t.Info().Name)
	if key == "" {
		return fmt.Errorf("%w: tool has no name", ErrInvalidTool)
	}
	if _, exists := r.byKey[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, t.Info().Name)
	}
	r.byKey[key] = t
	r.tools = append(r.tools, t)
	return nil
}

// Get looks a tool up by name, ignoring case and surrounding whitespace.
func (r *Registry) Get(name string) (GenericTool, bool) {
	t, ok := r.byKey[registryKey(name)]
	return t, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for _, t := range r.tools {
		names = append(names, t.Info().Name)
	}
	return names
}

// Infos returns the tool descriptions in registration order.
func (r *Registry) Infos() []Info {
	infos := make([]Info, 0, len(r.tools))
	for _, t := range r.tools {
		infos = append(infos, t.Info())
	}
	return infos
}

// Size reports the number of registered tools.
func (r *Registry) Size() int { return len(r.tools) }

func registryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
