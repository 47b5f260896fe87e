package predict

import (
	"fmt"
	"strings"

	"github.com/reagentlabs/reagent/core/parse"
	"github.com/reagentlabs/reagent/core/signature"
	"github.com/reagentlabs/reagent/internal/utils"
	"github.com/reagentlabs/reagent/patterns"
)

// ChatAdapter translates between a [signature.Signature] and the plain-text
// chat exchange a completion model works with. The model is instructed to
// answer with one "name: value" line (or block) per output field; the same
// grammar is parsed back by [ChatAdapter.ParseCompletion].
type ChatAdapter struct{}

// SystemPrompt renders the signature's contract: its instructions, the
// input and output fields with their descriptions, and the exact response
// format the model must follow.
func (ChatAdapter) SystemPrompt(sig *signature.Signature) string {
	var b strings.Builder

	if instructions := strings.TrimSpace(sig.Instructions()); instructions != "" {
		b.WriteString(instructions)
		b.WriteString("\n\n")
	}

	if inputs := sig.Inputs(); len(inputs) > 0 {
		b.WriteString("Your input fields are:\n")
		writeFieldList(&b, inputs)
		b.WriteString("\n")
	}

	outputs := sig.Outputs()
	b.WriteString("Your output fields are:\n")
	writeFieldList(&b, outputs)
	b.WriteString("\n")

	b.WriteString("Respond with every output field, each starting on its own line in the form:\n")
	for _, field := range outputs {
		b.WriteString(field.Name)
		if field.TypeHint == signature.TypeObject {
			b.WriteString(": {... a single-line JSON object ...}\n")
		} else {
			b.WriteString(": ...\n")
		}
	}
	b.WriteString("Produce the fields in this order and nothing else.")

	return b.String()
}

// UserMessage renders the input values as "name: value" lines in signature
// order. Non-string values are serialized to JSON.
func (ChatAdapter) UserMessage(sig *signature.Signature, inputs patterns.Inputs) string {
	var b strings.Builder
	for _, field := range sig.Inputs() {
		b.WriteString(field.Name)
		b.WriteString(": ")
		b.WriteString(renderValue(inputs[field.Name]))
		b.WriteString("\n")
	}
	b.WriteString("\nRespond with the corresponding output fields.")
	return b.String()
}

// ParseCompletion extracts the signature's output fields from a model
// completion. Fields declared as objects are decoded from their JSON text,
// with lenient repair for the malformed JSON models tend to produce.
// Failures are reported as a [*parse.Error] so callers can distinguish
// format violations from transport errors.
func (ChatAdapter) ParseCompletion(sig *signature.Signature, completion string) (patterns.Prediction, error) {
	outputs := sig.Outputs()
	names := make([]string, 0, len(outputs))
	for _, field := range outputs {
		names = append(names, field.Name)
	}

	fields, err := parse.Fields(completion, names)
	if err != nil {
		return nil, err
	}

	prediction := make(patterns.Prediction, len(outputs))
	for _, field := range outputs {
		raw, ok := fields[field.Name]
		if !ok {
			return nil, &parse.Error{
				Expected:   names,
				Completion: completion,
				Reason:     fmt.Sprintf("missing output field %q", field.Name),
			}
		}
		if field.TypeHint == signature.TypeObject {
			object, parseErr := parse.ParseStringAs[map[string]any](raw)
			if parseErr != nil {
				return nil, &parse.Error{
					Expected:   names,
					Completion: completion,
					Reason:     fmt.Sprintf("field %q is not a JSON object: %v", field.Name, parseErr),
				}
			}
			prediction[field.Name] = object
			continue
		}
		prediction[field.Name] = raw
	}
	return prediction, nil
}

func writeFieldList(b *strings.Builder, fields []signature.Field) {
	for i, field := range fields {
		fmt.Fprintf(b, "%d. %s", i+1, field.Name)
		if field.TypeHint != "" {
			fmt.Fprintf(b, " (%s)", field.TypeHint)
		}
		if field.Description != "" {
			fmt.Fprintf(b, ": %s", field.Description)
		}
		b.WriteString("\n")
	}
}

func renderValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return utils.JSONToString(v)
	}
}
