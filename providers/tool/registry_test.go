package tool

import (
	"context"
	"errors"
	"testing"
)

type unitInput struct {
	Value string `json:"value"`
}

func namedTool(t *testing.T, name string) GenericTool {
	t.Helper()
	tl, err := New(name, func(_ context.Context, in unitInput) (string, error) {
		return in.Value, nil
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return tl
}

// TestRegistryLookup checks registration order and case-insensitive lookup.
func TestRegistryLookup(t *testing.T) {
	r, err := NewRegistry(namedTool(t, "alpha"), namedTool(t, "Beta"))
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}

	if r.Size() != 2 {
		t.Fatalf("expected 2 tools, got %d", r.Size())
	}

	names := r.Names()
	if names[0] != "alpha" || names[1] != "Beta" {
		t.Fatalf("unexpected names order: %v", names)
	}

	if _, ok := r.Get("BETA"); !ok {
		t.Fatal("expected case-insensitive lookup to find Beta")
	}
	if _, ok := r.Get(" alpha "); !ok {
		t.Fatal("expected lookup to tolerate surrounding whitespace")
	}
	if _, ok := r.Get("gamma"); ok {
		t.Fatal("did not expect to find gamma")
	}
}

// TestRegistryDuplicate checks that names colliding under case folding are
// rejected.
func TestRegistryDuplicate(t *testing.T) {
	_, err := NewRegistry(namedTool(t, "search"), namedTool(t, "Search"))
	if !errors.Is(err, ErrDuplicateTool) {
		t.Fatalf("expected ErrDuplicateTool, got %v", err)
	}
}

// TestRegistryRejectsNil checks that a nil tool cannot be registered.
func TestRegistryRejectsNil(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}
	if err := r.Register(nil); !errors.Is(err, ErrInvalidTool) {
		t.Fatalf("expected ErrInvalidTool, got %v", err)
	}
}
