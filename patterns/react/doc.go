// Package react implements a synchronous Reasoning + Acting agent loop.
//
// A [ReAct] agent is built from a caller [signature.Signature], a
// [tool.Registry], and an [ai.Provider]. Each iteration it asks the model
// for a thought, a tool name, and tool arguments; invokes the tool; appends
// the observation to the run's [Trajectory]; and repeats until the model
// calls the reserved finish tool or a policy ceiling is hit.
//
// Failures inside the loop become data, not panics or errors: unknown
// tools, bad arguments, tool execution failures, and malformed completions
// are all appended as error observations so the model can correct course.
// Only two things end a run early: too many consecutive unparsable
// completions, or the iteration ceiling. Both produce a [Result] with
// [StatusAborted], partial trajectory included; an aborted run is a normal
// return value, never an error.
//
// Each [ReAct.Run] owns its Trajectory exclusively. Nothing is shared
// between runs, so concurrent runs of separate agents are safe by
// construction.
package react
