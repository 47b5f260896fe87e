package react

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/reagentlabs/reagent/core/parse"
	"github.com/reagentlabs/reagent/core/signature"
	"github.com/reagentlabs/reagent/patterns"
	"github.com/reagentlabs/reagent/providers/ai"
	"github.com/reagentlabs/reagent/providers/tool"
)

// scriptedModule replays canned predictions in order. When repeatLast is
// set the final entry answers every further call, which models a predictor
// stuck in one behavior.
type scriptedModule struct {
	responses  []scriptedResponse
	repeatLast bool
	calls      []patterns.Inputs
	usage      *ai.Usage
}

type scriptedResponse struct {
	prediction patterns.Prediction
	err        error
}

func (m *scriptedModule) Invoke(_ context.Context, inputs patterns.Inputs) (patterns.Prediction, error) {
	m.calls = append(m.calls, inputs)
	if len(m.responses) == 0 {
		return nil, errors.New("scriptedModule: no scripted response left")
	}
	r := m.responses[0]
	if len(m.responses) > 1 || !m.repeatLast {
		m.responses = m.responses[1:]
	}
	return r.prediction, r.err
}

func (m *scriptedModule) LastUsage() *ai.Usage { return m.usage }

func stepResponse(thought, toolName string, args map[string]any) scriptedResponse {
	return scriptedResponse{prediction: patterns.Prediction{
		fieldNextThought:  thought,
		fieldNextToolName: toolName,
		fieldNextToolArgs: args,
	}}
}

func parseFailure() scriptedResponse {
	return scriptedResponse{err: &parse.Error{
		Expected:   []string{fieldNextThought, fieldNextToolName, fieldNextToolArgs},
		Completion: "I refuse to follow the format.",
		Reason:     "no field markers found",
	}}
}

func answerSignature(t *testing.T) *signature.Signature {
	t.Helper()
	sig, err := signature.New(
		"Answer the question using the available tools.",
		[]signature.Field{{Name: "question", TypeHint: signature.TypeString}},
		[]signature.Field{{Name: "answer", TypeHint: signature.TypeString}},
	)
	if err != nil {
		t.Fatalf("signature.New returned error: %v", err)
	}
	return sig
}

type addInput struct {
	A float64 `json:"a" jsonschema:"description=First operand,required"`
	B float64 `json:"b" jsonschema:"description=Second operand,required"`
}

func addRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	add, err := tool.New("add", func(_ context.Context, in addInput) (float64, error) {
		return in.A + in.B, nil
	})
	if err != nil {
		t.Fatalf("tool.New returned error: %v", err)
	}
	registry, err := tool.NewRegistry(add)
	if err != nil {
		t.Fatalf("tool.NewRegistry returned error: %v", err)
	}
	return registry
}

func emptyRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	registry, err := tool.NewRegistry()
	if err != nil {
		t.Fatalf("tool.NewRegistry returned error: %v", err)
	}
	return registry
}

func newAgent(t *testing.T, registry *tool.Registry, predictor, extractor patterns.Module, opts ...Option) *ReAct {
	t.Helper()
	opts = append(opts, WithPredictor(predictor), WithExtractor(extractor))
	agent, err := New(nil, answerSignature(t), registry, opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return agent
}

// TestRun_AddThenFinish runs the canonical scenario: the model calls
// add(a=2, b=3), observes 5, and finishes with answer=5.
func TestRun_AddThenFinish(t *testing.T) {
	predictor := &scriptedModule{
		responses: []scriptedResponse{
			stepResponse("I should add the numbers.", "add", map[string]any{"a": 2.0, "b": 3.0}),
			stepResponse("The sum is 5, I can finish.", "finish", map[string]any{"answer": 5.0}),
		},
		usage: &ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
	extractor := &scriptedModule{}
	agent := newAgent(t, addRegistry(t), predictor, extractor)

	result, err := agent.Run(context.Background(), patterns.Inputs{"question": "What is 2+3?"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if result.Status != StatusFinished {
		t.Fatalf("expected finished, got %s (reason: %s)", result.Status, result.Reason)
	}
	if got := result.Outputs.GetString("answer"); got != "5" {
		t.Fatalf("expected answer %q, got %q", "5", got)
	}
	if result.Iterations != 2 {
		t.Errorf("expected 2 iterations, got %d", result.Iterations)
	}
	if len(extractor.calls) != 0 {
		t.Errorf("expected no extraction call for a complete finish payload, got %d", len(extractor.calls))
	}
	if result.Usage.TotalTokens != 30 {
		t.Errorf("expected aggregated usage of 30 tokens, got %d", result.Usage.TotalTokens)
	}

	text := result.Trajectory.Render(false)
	if !strings.Contains(text, "observation_0: 5") {
		t.Errorf("expected tool observation in trajectory, got:\n%s", text)
	}
}

// TestRun_ImmediateFinish verifies a well-formed finish on the first step
// terminates in exactly one iteration.
func TestRun_ImmediateFinish(t *testing.T) {
	predictor := &scriptedModule{
		responses: []scriptedResponse{
			stepResponse("Nothing to do.", "finish", map[string]any{"answer": "done"}),
		},
	}
	agent := newAgent(t, emptyRegistry(t), predictor, &scriptedModule{})

	result, err := agent.Run(context.Background(), patterns.Inputs{"question": "anything"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Status != StatusFinished {
		t.Fatalf("expected finished, got %s", result.Status)
	}
	if result.Iterations != 1 {
		t.Fatalf("expected exactly 1 iteration, got %d", result.Iterations)
	}
}

// TestRun_ToolErrorContinues verifies a failing tool becomes an error
// observation and the loop keeps going instead of crashing.
func TestRun_ToolErrorContinues(t *testing.T) {
	failing, err := tool.New("lookup", func(_ context.Context, _ addInput) (string, error) {
		return "", errors.New("backend unavailable")
	})
	if err != nil {
		t.Fatalf("tool.New returned error: %v", err)
	}
	registry, err := tool.NewRegistry(failing)
	if err != nil {
		t.Fatalf("tool.NewRegistry returned error: %v", err)
	}

	predictor := &scriptedModule{
		responses: []scriptedResponse{
			stepResponse("Try the lookup.", "lookup", map[string]any{"a": 1.0, "b": 2.0}),
			stepResponse("Lookup failed, answer from memory.", "finish", map[string]any{"answer": "42"}),
		},
	}
	agent := newAgent(t, registry, predictor, &scriptedModule{})

	result, err := agent.Run(context.Background(), patterns.Inputs{"question": "?"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Status != StatusFinished {
		t.Fatalf("expected finished after recovering from tool error, got %s", result.Status)
	}

	var sawError bool
	for _, step := range result.Trajectory.Steps() {
		if step.Kind == StepObservation && step.IsError && strings.Contains(step.Text, "backend unavailable") {
			sawError = true
		}
	}
	if !sawError {
		t.Fatal("expected an error observation carrying the tool failure")
	}
}

// TestRun_UnknownToolIsRecoverable verifies that naming a tool outside the
// registered set appends a guidance observation listing the valid names and
// does not abort on the first occurrence.
func TestRun_UnknownToolIsRecoverable(t *testing.T) {
	predictor := &scriptedModule{
		responses: []scriptedResponse{
			stepResponse("I will look this up.", "lookup", map[string]any{"q": "anything"}),
			stepResponse("No such tool, finishing.", "finish", map[string]any{"answer": "n/a"}),
		},
	}
	agent := newAgent(t, emptyRegistry(t), predictor, &scriptedModule{})

	result, err := agent.Run(context.Background(), patterns.Inputs{"question": "?"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Status != StatusFinished {
		t.Fatalf("expected finished, got %s (reason: %s)", result.Status, result.Reason)
	}

	var guidance string
	for _, step := range result.Trajectory.Steps() {
		if step.Kind == StepObservation && step.IsError {
			guidance = step.Text
		}
	}
	if guidance == "" {
		t.Fatal("expected an error observation for the unknown tool")
	}
	if !strings.Contains(guidance, `"lookup"`) || !strings.Contains(guidance, FinishTool) {
		t.Errorf("expected guidance to name the bad tool and the valid names, got: %s", guidance)
	}
}

// TestRun_AbortsAfterConsecutiveParseFailures verifies the loop aborts
// after exactly the configured consecutive-failure bound, not before and
// not after.
func TestRun_AbortsAfterConsecutiveParseFailures(t *testing.T) {
	predictor := &scriptedModule{
		responses:  []scriptedResponse{parseFailure()},
		repeatLast: true,
	}
	extractor := &scriptedModule{
		responses:  []scriptedResponse{parseFailure()},
		repeatLast: true,
	}
	const bound = 3
	agent := newAgent(t, emptyRegistry(t), predictor, extractor,
		WithMaxIterations(10),
		WithMaxConsecutiveParseFailures(bound),
	)

	result, err := agent.Run(context.Background(), patterns.Inputs{"question": "?"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Status != StatusAborted {
		t.Fatalf("expected aborted, got %s", result.Status)
	}
	if len(predictor.calls) != bound {
		t.Fatalf("expected exactly %d step calls, got %d", bound, len(predictor.calls))
	}
	if !strings.Contains(result.Reason, "unparsable") {
		t.Errorf("expected reason to mention unparsable completions, got: %s", result.Reason)
	}
	if got := result.Outputs.GetString("answer"); !strings.Contains(got, "did not complete") {
		t.Errorf("expected a could-not-complete answer, got %q", got)
	}
}

// TestRun_ParseFailureBelowBoundRecovers verifies that failures under the
// bound append guidance observations and the run can still finish.
func TestRun_ParseFailureBelowBoundRecovers(t *testing.T) {
	predictor := &scriptedModule{
		responses: []scriptedResponse{
			parseFailure(),
			parseFailure(),
			stepResponse("Back on track.", "finish", map[string]any{"answer": "ok"}),
		},
	}
	agent := newAgent(t, emptyRegistry(t), predictor, &scriptedModule{},
		WithMaxConsecutiveParseFailures(3))

	result, err := agent.Run(context.Background(), patterns.Inputs{"question": "?"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Status != StatusFinished {
		t.Fatalf("expected finished, got %s (reason: %s)", result.Status, result.Reason)
	}

	guidanceCount := 0
	for _, step := range result.Trajectory.Steps() {
		if step.Kind == StepObservation && step.IsError {
			guidanceCount++
		}
	}
	if guidanceCount != 2 {
		t.Errorf("expected 2 guidance observations, got %d", guidanceCount)
	}
}

// TestRun_IterationLimitAborts verifies the loop never runs unboundedly: a
// predictor that never finishes hits the iteration ceiling and the result
// carries best-effort outputs from extraction.
func TestRun_IterationLimitAborts(t *testing.T) {
	predictor := &scriptedModule{
		responses: []scriptedResponse{
			stepResponse("Keep adding.", "add", map[string]any{"a": 1.0, "b": 1.0}),
		},
		repeatLast: true,
	}
	extractor := &scriptedModule{
		responses: []scriptedResponse{
			{prediction: patterns.Prediction{"answer": "2", "reasoning": "the trajectory shows 1+1"}},
		},
	}
	agent := newAgent(t, addRegistry(t), predictor, extractor, WithMaxIterations(4))

	result, err := agent.Run(context.Background(), patterns.Inputs{"question": "?"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Status != StatusAborted {
		t.Fatalf("expected aborted, got %s", result.Status)
	}
	if result.Iterations != 4 {
		t.Fatalf("expected 4 iterations, got %d", result.Iterations)
	}
	if !strings.Contains(result.Reason, "iteration limit") {
		t.Errorf("expected reason to mention the iteration limit, got: %s", result.Reason)
	}
	if got := result.Outputs.GetString("answer"); got != "2" {
		t.Errorf("expected best-effort answer from extraction, got %q", got)
	}
	if _, present := result.Outputs["reasoning"]; present {
		t.Error("expected outputs restricted to declared fields")
	}
}

// TestRun_FinishWithoutPayloadUsesExtraction verifies a bare finish call
// triggers the extraction predictor and still counts as finished.
func TestRun_FinishWithoutPayloadUsesExtraction(t *testing.T) {
	predictor := &scriptedModule{
		responses: []scriptedResponse{
			stepResponse("Everything needed is in the trajectory.", "finish", nil),
		},
	}
	extractor := &scriptedModule{
		responses: []scriptedResponse{
			{prediction: patterns.Prediction{"answer": "extracted"}},
		},
	}
	agent := newAgent(t, emptyRegistry(t), predictor, extractor)

	result, err := agent.Run(context.Background(), patterns.Inputs{"question": "?"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Status != StatusFinished {
		t.Fatalf("expected finished, got %s (reason: %s)", result.Status, result.Reason)
	}
	if got := result.Outputs.GetString("answer"); got != "extracted" {
		t.Fatalf("expected extracted answer, got %q", got)
	}
	if len(extractor.calls) != 1 {
		t.Fatalf("expected 1 extraction call, got %d", len(extractor.calls))
	}
	if _, ok := extractor.calls[0][fieldTrajectory]; !ok {
		t.Error("expected extraction inputs to include the trajectory")
	}
}

// TestRun_ExtractionRetriesThenAborts verifies the bounded retry on missing
// output fields: one retry by default, then the run aborts with fallback
// outputs.
func TestRun_ExtractionRetriesThenAborts(t *testing.T) {
	predictor := &scriptedModule{
		responses: []scriptedResponse{
			stepResponse("Finishing.", "finish", nil),
		},
	}
	extractor := &scriptedModule{
		responses:  []scriptedResponse{parseFailure()},
		repeatLast: true,
	}
	agent := newAgent(t, emptyRegistry(t), predictor, extractor, WithExtractRetries(1))

	result, err := agent.Run(context.Background(), patterns.Inputs{"question": "?"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Status != StatusAborted {
		t.Fatalf("expected aborted, got %s", result.Status)
	}
	if len(extractor.calls) != 2 {
		t.Fatalf("expected 2 extraction attempts, got %d", len(extractor.calls))
	}
	if !strings.Contains(result.Reason, "missing output field") {
		t.Errorf("expected reason to mention the missing output field, got: %s", result.Reason)
	}
	if got := result.Outputs.GetString("answer"); !strings.Contains(got, "unable to produce answer") {
		t.Errorf("expected fallback output, got %q", got)
	}
}

// TestRun_TruncatesTrajectoryToBudget verifies that a run whose
// observations overflow the context budget drops its oldest units while
// keeping the most recent window, and still completes.
func TestRun_TruncatesTrajectoryToBudget(t *testing.T) {
	noisy, err := tool.New("noisy", func(_ context.Context, _ addInput) (string, error) {
		return strings.Repeat("x", 400), nil
	})
	if err != nil {
		t.Fatalf("tool.New returned error: %v", err)
	}
	registry, err := tool.NewRegistry(noisy)
	if err != nil {
		t.Fatalf("tool.NewRegistry returned error: %v", err)
	}

	responses := make([]scriptedResponse, 0, 5)
	for i := 0; i < 4; i++ {
		responses = append(responses, stepResponse(fmt.Sprintf("step %d", i), "noisy", map[string]any{"a": 0.0, "b": 0.0}))
	}
	responses = append(responses, stepResponse("enough", "finish", map[string]any{"answer": "done"}))
	predictor := &scriptedModule{responses: responses}

	agent := newAgent(t, registry, predictor, &scriptedModule{},
		WithMaxIterations(10),
		WithContextBudget(300),
		WithKeepRecentTriples(1),
	)

	result, err := agent.Run(context.Background(), patterns.Inputs{"question": "?"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Status != StatusFinished {
		t.Fatalf("expected finished, got %s (reason: %s)", result.Status, result.Reason)
	}
	if result.Trajectory.Dropped() == 0 {
		t.Fatal("expected truncation to have dropped steps")
	}

	// The trajectory handed to the final step call keeps the most recent
	// window and flags the omission.
	lastStep := predictor.calls[len(predictor.calls)-1]
	text, _ := lastStep[fieldTrajectory].(string)
	if !strings.Contains(text, "earlier steps omitted") {
		t.Errorf("expected omission marker in rendered trajectory, got:\n%s", text)
	}
	if !strings.Contains(text, "observation_3") {
		t.Errorf("expected most recent unit retained, got:\n%s", text)
	}
	if strings.Contains(text, "observation_0") {
		t.Errorf("expected oldest unit dropped, got:\n%s", text)
	}
}

// TestRun_HeaderOverBudgetAborts verifies the last-resort abort when even
// the fixed prompt header cannot fit the budget.
func TestRun_HeaderOverBudgetAborts(t *testing.T) {
	predictor := &scriptedModule{
		responses:  []scriptedResponse{stepResponse("never reached", "finish", map[string]any{"answer": "x"})},
		repeatLast: true,
	}
	extractor := &scriptedModule{
		responses:  []scriptedResponse{parseFailure()},
		repeatLast: true,
	}
	agent := newAgent(t, emptyRegistry(t), predictor, extractor, WithContextBudget(1))

	result, err := agent.Run(context.Background(), patterns.Inputs{
		"question": strings.Repeat("long question ", 50),
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Status != StatusAborted {
		t.Fatalf("expected aborted, got %s", result.Status)
	}
	if !strings.Contains(result.Reason, "context budget") {
		t.Errorf("expected reason to mention the context budget, got: %s", result.Reason)
	}
	if len(predictor.calls) != 0 {
		t.Errorf("expected no model call when the header cannot fit, got %d", len(predictor.calls))
	}
}

// TestRun_MissingInputIsCallerError verifies the one case where Run
// returns an error: a declared input without a value.
func TestRun_MissingInputIsCallerError(t *testing.T) {
	agent := newAgent(t, emptyRegistry(t), &scriptedModule{}, &scriptedModule{})

	_, err := agent.Run(context.Background(), patterns.Inputs{})
	if !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}

// TestNew_RejectsReservedToolName verifies registering a tool named finish
// fails at construction time.
func TestNew_RejectsReservedToolName(t *testing.T) {
	finish, err := tool.New("finish", func(_ context.Context, _ addInput) (string, error) {
		return "", nil
	})
	if err != nil {
		t.Fatalf("tool.New returned error: %v", err)
	}
	registry, err := tool.NewRegistry(finish)
	if err != nil {
		t.Fatalf("tool.NewRegistry returned error: %v", err)
	}

	_, err = New(nil, answerSignature(t), registry, WithPredictor(&scriptedModule{}), WithExtractor(&scriptedModule{}))
	if !errors.Is(err, ErrInvalidAgent) {
		t.Fatalf("expected ErrInvalidAgent, got %v", err)
	}
}

// TestInvoke_ReturnsOutputsWithTrajectory verifies the Module view of the
// agent attaches the rendered trajectory to the prediction.
func TestInvoke_ReturnsOutputsWithTrajectory(t *testing.T) {
	predictor := &scriptedModule{
		responses: []scriptedResponse{
			stepResponse("Done immediately.", "finish", map[string]any{"answer": "yes"}),
		},
	}
	agent := newAgent(t, emptyRegistry(t), predictor, &scriptedModule{})

	prediction, err := agent.Invoke(context.Background(), patterns.Inputs{"question": "?"})
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if prediction.GetString("answer") != "yes" {
		t.Fatalf("expected answer yes, got %q", prediction.GetString("answer"))
	}
	if _, ok := prediction[fieldTrajectory]; !ok {
		t.Fatal("expected trajectory attached to the prediction")
	}
}
