package parse

import (
	"fmt"
	"strings"
)

// Error is the typed parsing failure returned by [Fields] when a model
// completion does not contain any of the declared output fields. It is a
// distinguishable value (detect it with errors.As) so that callers can apply
// a bounded retry policy instead of treating the failure as fatal.
type Error struct {
	// Expected lists the field names that were searched for.
	Expected []string

	// Completion is the raw model output that failed to parse, truncated
	// for error messages by Error().
	Completion string

	// Reason is a short human-readable explanation.
	Reason string
}

func (e *Error) Error() string {
	preview := e.Completion
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	return fmt.Sprintf("completion parse failure: %s (expected fields %v, got: %q)", e.Reason, e.Expected, preview)
}

// Fields splits a model completion into the sections introduced by the given
// field names.
//
// The grammar is line based: a section starts at a line whose first token is
// "name:" for one of the declared names (case-insensitive, tolerating a
// leading list bullet or markdown bold marker) and extends until the next
// section marker or the end of the completion. Values keep interior
// newlines but are trimmed of surrounding whitespace.
//
// Fields that do not appear are simply absent from the returned map; the
// caller decides whether absence is an error. A completion in which no
// declared field appears at all returns a [*Error].
func Fields(completion string, names []string) (map[string]string, error) {
	if len(names) == 0 {
		return map[string]string{}, nil
	}

	type section struct {
		name  string
		value []string
	}

	var sections []*section
	var current *section

	for _, line := range strings.Split(completion, "\n") {
		if name, rest, ok := matchFieldMarker(line, names); ok {
			current = &section{name: name}
			if rest != "" {
				current.value = append(current.value, rest)
			}
			sections = append(sections, current)
			continue
		}
		if current != nil {
			current.value = append(current.value, line)
		}
	}

	if len(sections) == 0 {
		return nil, &Error{
			Expected:   names,
			Completion: completion,
			Reason:     "no declared output field found in completion",
		}
	}

	// Last occurrence wins when the model repeats a field.
	result := make(map[string]string, len(sections))
	for _, s := range sections {
		result[s.name] = strings.TrimSpace(strings.Join(s.value, "\n"))
	}
	return result, nil
}

// matchFieldMarker reports whether line starts a new field section. It
// returns the canonical (declared) field name and the remainder of the line
// after the colon.
func matchFieldMarker(line string, names []string) (name, rest string, ok bool) {
	trimmed := strings.TrimSpace(line)
	// Tolerate common markdown decorations around the marker.
	trimmed = strings.TrimLeft(trimmed, "-*# ")
	trimmed = strings.TrimSpace(trimmed)

	colon := strings.IndexByte(trimmed, ':')
	if colon < 0 {
		return "", "", false
	}

	candidate := strings.TrimSpace(trimmed[:colon])
	candidate = strings.Trim(candidate, "*_`\"'[]")

	for _, n := range names {
		if strings.EqualFold(candidate, n) {
			return n, strings.TrimSpace(trimmed[colon+1:]), true
		}
	}
	return "", "", false
}
