package react

import "errors"

var (
	// ErrInvalidAgent is wrapped by every construction error from [New].
	ErrInvalidAgent = errors.New("invalid agent")

	// ErrMissingInput is returned by [ReAct.Run] when a declared input
	// field has no value. This is caller misuse, not a run failure.
	ErrMissingInput = errors.New("missing input field")

	// ErrUnknownTool marks observations produced when the model names a
	// tool outside the registered set.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrMissingOutputField is carried in [Result.Reason] when the model
	// finished but could not supply every declared output field within the
	// extraction retry budget.
	ErrMissingOutputField = errors.New("missing output field")

	// ErrContextBudget is carried in [Result.Reason] when even the fixed
	// prompt header (instructions, tool list, task inputs) exceeds the
	// configured context budget, leaving truncation nothing to remove.
	ErrContextBudget = errors.New("context budget exceeded")
)
