// Package calculator provides a basic arithmetic tool for agent runs.
package calculator

import (
	"context"
	"fmt"

	"github.com/reagentlabs/reagent/providers/tool"
)

// New returns a [tool.Tool] configured for basic arithmetic. It registers
// [Calc] as its execution function.
func New() *tool.Tool[Input, Output] {
	return tool.MustNew(
		"calculator",
		Calc,
		tool.WithDescription("Performs basic arithmetic on two numbers. Supported operations: add, sub, mul, div."),
	)
}

// Calc applies req.Op to the operands req.A and req.B. Supported operations
// are "add"/"+", "sub"/"-", "mul"/"*", and "div"/"/". Division by zero
// returns an explicit error rather than IEEE infinity, since the result is
// relayed to a language model as text.
func Calc(_ context.Context, req Input) (Output, error) {
	switch req.Op {
	case "add", "+":
		return Output{Result: req.A + req.B}, nil
	case "sub", "-":
		return Output{Result: req.A - req.B}, nil
	case "mul", "*":
		return Output{Result: req.A * req.B}, nil
	case "div", "/":
		if req.B == 0 {
			return Output{}, fmt.Errorf("division by zero")
		}
		return Output{Result: req.A / req.B}, nil
	default:
		return Output{}, fmt.Errorf("unsupported operation %q", req.Op)
	}
}

// Input holds the two operands and the operation to be applied by [Calc].
type Input struct {
	A  float64 `json:"a"  jsonschema:"description=First operand,required"`
	B  float64 `json:"b"  jsonschema:"description=Second operand,required"`
	Op string  `json:"op" jsonschema:"description=Operation to apply,enum=add,enum=sub,enum=mul,enum=div,required"`
}

// Output carries the single floating-point result produced by [Calc].
type Output struct {
	Result float64 `json:"result" jsonschema:"description=The result of the calculation"`
}
