package react

import (
	"fmt"
	"strings"

	"github.com/reagentlabs/reagent/core/signature"
	"github.com/reagentlabs/reagent/providers/tool"
)

// FinishTool is the reserved tool name the model calls to terminate the
// loop. It is always available and may not be used by a registered tool.
const FinishTool = "finish"

const (
	fieldTrajectory   = "trajectory"
	fieldNextThought  = "next_thought"
	fieldNextToolName = "next_tool_name"
	fieldNextToolArgs = "next_tool_args"
)

// buildStepSignature derives the per-iteration signature from the caller's
// signature: same inputs plus the running trajectory, with the three step
// outputs the loop parses every iteration.
func buildStepSignature(sig *signature.Signature, infos []tool.Info) (*signature.Signature, error) {
	inputs := append(sig.Inputs(), signature.Field{
		Name:        fieldTrajectory,
		Description: "The thoughts, tool calls and observations produced so far.",
		TypeHint:    signature.TypeString,
	})
	outputs := []signature.Field{
		{
			Name:        fieldNextThought,
			Description: "Your reasoning about the current state and what to do next.",
			TypeHint:    signature.TypeString,
		},
		{
			Name:        fieldNextToolName,
			Description: "The name of the tool to call next. Must be one of the listed tools.",
			TypeHint:    signature.TypeString,
		},
		{
			Name:        fieldNextToolArgs,
			Description: "The arguments for that tool as a single-line JSON object.",
			TypeHint:    signature.TypeObject,
		},
	}
	return signature.New(stepInstructions(sig, infos), inputs, outputs)
}

// buildExtractSignature derives the end-of-run extraction signature: the
// caller's signature with the finished trajectory as an extra input.
func buildExtractSignature(sig *signature.Signature) (*signature.Signature, error) {
	return signature.New(
		sig.Instructions(),
		append(sig.Inputs(), signature.Field{
			Name:        fieldTrajectory,
			Description: "The full trajectory of an agent run that attempted this task.",
			TypeHint:    signature.TypeString,
		}),
		sig.Outputs(),
	)
}

// stepInstructions renders the agent framing: the caller's instructions,
// the loop protocol, and the numbered tool list ending with finish.
func stepInstructions(sig *signature.Signature, infos []tool.Info) string {
	inputList := backtickList(sig.InputNames())
	outputList := backtickList(sig.OutputNames())

	var b strings.Builder
	if instructions := strings.TrimSpace(sig.Instructions()); instructions != "" {
		b.WriteString(instructions)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "You are an agent. You receive the fields %s as input and can see your past trajectory. Your goal is to gather everything needed to produce the fields %s.\n\n", inputList, outputList)
	b.WriteString("On every step you produce a thought about the current state, pick exactly one tool, and give its arguments. The tool's result is appended to the trajectory as an observation and you decide again. When the trajectory already contains everything needed, call the finish tool.\n\n")
	b.WriteString("Available tools:\n")
	for i, info := range infos {
		desc := strings.ReplaceAll(info.Description, "\n", " ")
		if desc != "" {
			desc = " " + desc
		}
		fmt.Fprintf(&b, "(%d) %s:%s Arguments: %s\n", i+1, info.Name, desc, renderParameters(info.Parameters))
	}
	fmt.Fprintf(&b, "(%d) %s: Marks the task as complete: everything needed to produce %s is now in the trajectory. Arguments: {}\n", len(infos)+1, FinishTool, outputList)
	return b.String()
}

// renderParameters serializes a tool's parameter descriptors into the
// compact object notation shown in the tool list.
func renderParameters(params []tool.Parameter) string {
	if len(params) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		spec := p.Type
		if spec == "" {
			spec = "any"
		}
		if len(p.Enum) > 0 {
			spec += ", one of " + strings.Join(p.Enum, "|")
		}
		if p.Required {
			spec += ", required"
		}
		if p.Description != "" {
			spec += ": " + p.Description
		}
		parts = append(parts, fmt.Sprintf("%q: (%s)", p.Name, spec))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// unknownToolGuidance is the error observation appended when the model
// names a tool outside the registered set. It lists the valid names, even
// when that list is empty.
func unknownToolGuidance(name string, valid []string) string {
	return fmt.Sprintf("%v: %q is not an available tool. Valid tool names: [%s]. Pick one of them on your next step.",
		ErrUnknownTool, name, strings.Join(valid, ", "))
}

// formatGuidance is the error observation appended when a completion does
// not match the expected step shape.
func formatGuidance() string {
	return fmt.Sprintf("Your previous response could not be parsed. Respond with exactly three fields, each starting on its own line: %s: your reasoning, %s: one of the listed tool names, %s: a single-line JSON object with the tool's arguments.",
		fieldNextThought, fieldNextToolName, fieldNextToolArgs)
}

// fallbackOutput is the best-effort value for one declared output field
// when a run aborts and extraction cannot supply it.
func fallbackOutput(name string) string {
	return fmt.Sprintf("unable to produce %s: the agent run did not complete", name)
}

func backtickList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return strings.Join(quoted, ", ")
}
