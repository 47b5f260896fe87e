package react

import (
	"fmt"
	"strings"
)

// StepKind discriminates the three step variants of a trajectory.
type StepKind string

const (
	// StepThought is reasoning text produced by the model.
	StepThought StepKind = "thought"
	// StepAction is a tool selection with its arguments.
	StepAction StepKind = "action"
	// StepObservation is the textual result of an action, or guidance
	// appended after a recoverable failure.
	StepObservation StepKind = "observation"
)

// Step is one immutable entry of a [Trajectory]. Text carries the thought
// or observation text; Tool and Args are set on action steps only.
type Step struct {
	Kind    StepKind
	Text    string
	Tool    string
	Args    string
	IsError bool
}

// Trajectory is the ordered, append-only step history of a single agent
// run. It is owned exclusively by that run; nothing is shared between
// concurrent runs, so no locking is performed.
//
// Steps group into units: a thought with its action and observation, or a
// lone guidance observation. Truncation removes whole units only, oldest
// first, so an action is never separated from its observation.
type Trajectory struct {
	steps        []Step
	droppedUnits int
	droppedSteps int
}

// NewTrajectory returns an empty trajectory.
func NewTrajectory() *Trajectory { return &Trajectory{} }

// AppendThought records reasoning text.
func (t *Trajectory) AppendThought(text string) {
	t.steps = append(t.steps, Step{Kind: StepThought, Text: text})
}

// AppendAction records a tool selection. args is the arguments rendered as
// compact JSON.
func (t *Trajectory) AppendAction(toolName, args string) {
	t.steps = append(t.steps, Step{Kind: StepAction, Tool: toolName, Args: args})
}

// AppendObservation records an action result or, with isError set, a
// recoverable failure the model should correct on its next step.
func (t *Trajectory) AppendObservation(text string, isError bool) {
	t.steps = append(t.steps, Step{Kind: StepObservation, Text: text, IsError: isError})
}

// Steps returns a copy of the current steps in chronological order.
func (t *Trajectory) Steps() []Step {
	out := make([]Step, len(t.steps))
	copy(out, t.steps)
	return out
}

// Len returns the number of retained steps.
func (t *Trajectory) Len() int { return len(t.steps) }

// Dropped returns the number of steps removed by truncation so far.
func (t *Trajectory) Dropped() int { return t.droppedSteps }

// Units returns the number of retained units.
func (t *Trajectory) Units() int {
	count := 0
	for start := 0; start < len(t.steps); start = t.unitEnd(start) {
		count++
	}
	return count
}

// TruncateOldest removes the oldest unit and reports whether anything was
// removed. Unit numbering in [Trajectory.Render] keeps counting from the
// original indices so the model sees a stable history.
func (t *Trajectory) TruncateOldest() bool {
	if len(t.steps) == 0 {
		return false
	}
	end := t.unitEnd(0)
	t.droppedSteps += end
	t.droppedUnits++
	t.steps = t.steps[end:]
	return true
}

// Render produces the prompt representation of the trajectory: numbered
// "thought_N", "tool_name_N", "tool_args_N" and "observation_N" lines, one
// group per unit. With omitThoughts set the thought lines are skipped,
// which is the degraded rendering used when truncation alone cannot meet
// the context budget.
func (t *Trajectory) Render(omitThoughts bool) string {
	var b strings.Builder
	if t.droppedSteps > 0 {
		fmt.Fprintf(&b, "[%d earlier steps omitted to fit the context budget]\n", t.droppedSteps)
	}
	index := t.droppedUnits
	for start := 0; start < len(t.steps); {
		end := t.unitEnd(start)
		for _, s := range t.steps[start:end] {
			switch s.Kind {
			case StepThought:
				if !omitThoughts {
					fmt.Fprintf(&b, "thought_%d: %s\n", index, s.Text)
				}
			case StepAction:
				fmt.Fprintf(&b, "tool_name_%d: %s\n", index, s.Tool)
				fmt.Fprintf(&b, "tool_args_%d: %s\n", index, s.Args)
			case StepObservation:
				fmt.Fprintf(&b, "observation_%d: %s\n", index, s.Text)
			}
		}
		index++
		start = end
	}
	return b.String()
}

// unitEnd returns the index one past the unit starting at start. A unit is
// a thought plus its action/observation pair, a thought with a directly
// following guidance observation, or a lone observation.
func (t *Trajectory) unitEnd(start int) int {
	i := start
	n := len(t.steps)
	if t.steps[i].Kind == StepThought {
		i++
	}
	switch {
	case i < n && t.steps[i].Kind == StepAction:
		i++
		if i < n && t.steps[i].Kind == StepObservation {
			i++
		}
	case i < n && t.steps[i].Kind == StepObservation:
		i++
	}
	if i == start {
		i = start + 1
	}
	return i
}

// EstimateTokens approximates the token count of s with the four
// characters per token heuristic. It is deliberately cheap: the budget it
// feeds is a proxy for the model's context window, not an exact measure.
func EstimateTokens(s string) int {
	return (len(s) + 3) / 4
}
