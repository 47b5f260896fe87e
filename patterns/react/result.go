package react

import (
	"github.com/google/uuid"
	"github.com/reagentlabs/reagent/patterns"
	"github.com/reagentlabs/reagent/providers/ai"
)

// Status is the terminal state of one agent run.
type Status string

const (
	// StatusFinished means the model called the finish tool and every
	// declared output field was produced.
	StatusFinished Status = "finished"

	// StatusAborted means a policy ceiling ended the run: the iteration
	// limit, the consecutive-parse-failure bound, the extraction retry
	// budget, or an unfittable context budget. Outputs carry best-effort
	// values and Reason says what happened.
	StatusAborted Status = "aborted"
)

// Result is the outcome of one [ReAct.Run] invocation. An aborted run is a
// normal Result, not an error: it still carries the partial trajectory and
// whatever outputs could be extracted from it.
type Result struct {
	// ID uniquely identifies this invocation, for log correlation.
	ID uuid.UUID

	// Status is the terminal state of the run.
	Status Status

	// Outputs maps the signature's declared output field names to values.
	// On an aborted run the values are best-effort.
	Outputs patterns.Prediction

	// Trajectory is the full step history of the run, already truncated to
	// whatever fit the context budget.
	Trajectory *Trajectory

	// Iterations is the number of loop iterations executed.
	Iterations int

	// Usage aggregates token usage across every model call of the run,
	// step predictions and extraction included.
	Usage ai.Usage

	// Reason explains an aborted run. Empty when Status is finished.
	Reason string
}

// Finished reports whether the run reached its terminal state successfully.
func (r *Result) Finished() bool { return r.Status == StatusFinished }
