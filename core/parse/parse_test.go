package parse

import (
	"testing"
)

type person struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// TestParseStringAs_Primitives covers direct conversion of primitive types.
func TestParseStringAs_Primitives(t *testing.T) {
	if v, err := ParseStringAs[string]("hello"); err != nil || v != "hello" {
		t.Errorf("string: got %q, err %v", v, err)
	}
	if v, err := ParseStringAs[int](" 42 "); err != nil || v != 42 {
		t.Errorf("int: got %d, err %v", v, err)
	}
	if v, err := ParseStringAs[bool]("true"); err != nil || v != true {
		t.Errorf("bool: got %v, err %v", v, err)
	}
	if v, err := ParseStringAs[float64]("2.5"); err != nil || v != 2.5 {
		t.Errorf("float: got %v, err %v", v, err)
	}
}

// TestParseStringAs_PrimitiveFailure verifies that invalid primitive content
// returns an error rather than a zero value silently.
func TestParseStringAs_PrimitiveFailure(t *testing.T) {
	if _, err := ParseStringAs[int]("not a number"); err == nil {
		t.Error("expected error for invalid int")
	}
	if _, err := ParseStringAs[bool]("maybe"); err == nil {
		t.Error("expected error for invalid bool")
	}
}

// TestParseStringAs_ValidJSON verifies direct unmarshaling of well-formed
// JSON into a struct.
func TestParseStringAs_ValidJSON(t *testing.T) {
	p, err := ParseStringAs[person](`{"name":"Ada","age":36}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Ada" || p.Age != 36 {
		t.Errorf("unexpected result: %+v", p)
	}
}

// TestParseStringAs_RepairedJSON verifies that malformed JSON (single
// quotes, unquoted keys) is repaired before unmarshaling.
func TestParseStringAs_RepairedJSON(t *testing.T) {
	p, err := ParseStringAs[person](`{name: 'Ada', age: 36}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Ada" || p.Age != 36 {
		t.Errorf("unexpected result: %+v", p)
	}
}

// TestParseStringAs_FencedJSON verifies that a markdown code fence around a
// JSON payload is stripped.
func TestParseStringAs_FencedJSON(t *testing.T) {
	content := "```json\n{\"a\": 2, \"b\": 3}\n```"
	m, err := ParseStringAs[map[string]any](content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["a"] != float64(2) || m["b"] != float64(3) {
		t.Errorf("unexpected map: %v", m)
	}
}

// TestFields_SimpleCompletion verifies the happy path of the field grammar.
func TestFields_SimpleCompletion(t *testing.T) {
	completion := "next_thought: I should add the numbers.\nnext_tool_name: Calculator\nnext_tool_args: {\"A\": 2, \"B\": 3, \"Op\": \"add\"}"

	fields, err := Fields(completion, []string{"next_thought", "next_tool_name", "next_tool_args"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields["next_thought"] != "I should add the numbers." {
		t.Errorf("unexpected thought: %q", fields["next_thought"])
	}
	if fields["next_tool_name"] != "Calculator" {
		t.Errorf("unexpected tool name: %q", fields["next_tool_name"])
	}
}

// TestFields_MultilineValue verifies that a field value spans lines until
// the next field marker.
func TestFields_MultilineValue(t *testing.T) {
	completion := "answer: first line\nsecond line\nreasoning: because"

	fields, err := Fields(completion, []string{"answer", "reasoning"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields["answer"] != "first line\nsecond line" {
		t.Errorf("unexpected answer: %q", fields["answer"])
	}
}

// TestFields_MarkdownDecoration verifies that bold and bulleted field
// markers are still recognized.
func TestFields_MarkdownDecoration(t *testing.T) {
	completion := "- **answer**: 42"

	fields, err := Fields(completion, []string{"answer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields["answer"] != "42" {
		t.Errorf("unexpected answer: %q", fields["answer"])
	}
}

// TestFields_CaseInsensitiveMarker verifies matching is case-insensitive
// while the returned key keeps the declared casing.
func TestFields_CaseInsensitiveMarker(t *testing.T) {
	fields, err := Fields("Answer: yes", []string{"answer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields["answer"] != "yes" {
		t.Errorf("unexpected fields: %v", fields)
	}
}

// TestFields_NoMatch verifies that a completion without any declared field
// produces a *Error so that retry policies can detect it.
func TestFields_NoMatch(t *testing.T) {
	_, err := Fields("I cannot help with that.", []string{"answer"})
	if err == nil {
		t.Fatal("expected a parse error")
	}
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if len(perr.Expected) != 1 || perr.Expected[0] != "answer" {
		t.Errorf("unexpected Expected: %v", perr.Expected)
	}
}

// TestFields_RepeatedFieldLastWins verifies that when the model repeats a
// field the last occurrence is kept.
func TestFields_RepeatedFieldLastWins(t *testing.T) {
	fields, err := Fields("answer: draft\nanswer: final", []string{"answer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields["answer"] != "final" {
		t.Errorf("unexpected answer: %q", fields["answer"])
	}
}
