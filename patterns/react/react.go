package react

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/reagentlabs/reagent/core/parse"
	"github.com/reagentlabs/reagent/core/signature"
	"github.com/reagentlabs/reagent/internal/utils"
	"github.com/reagentlabs/reagent/patterns"
	"github.com/reagentlabs/reagent/patterns/predict"
	"github.com/reagentlabs/reagent/providers/ai"
	"github.com/reagentlabs/reagent/providers/observability"
	"github.com/reagentlabs/reagent/providers/tool"
)

// ReAct runs the reasoning and acting loop for one task signature over a
// fixed tool set. Construct it once with [New]; every [ReAct.Run] owns its
// own trajectory, so a single agent may serve sequential runs but must not
// be shared by concurrent ones (the internal predictors track usage).
type ReAct struct {
	sig       *signature.Signature
	registry  *tool.Registry
	config    config
	predictor patterns.Module
	extractor patterns.Module
	logger    *slog.Logger
}

// New builds a ReAct agent from the caller's signature, the registered
// tools, and a chat provider. Construction wires two internal predictors:
// the step predictor that picks the next thought and tool, and the
// extraction predictor that produces the declared outputs from the
// finished trajectory. Configuration problems (nil collaborators, a tool
// named "finish") are reported here, before any loop begins.
func New(provider ai.Provider, sig *signature.Signature, registry *tool.Registry, opts ...Option) (*ReAct, error) {
	if sig == nil {
		return nil, fmt.Errorf("%w: signature must not be nil", ErrInvalidAgent)
	}
	if registry == nil {
		return nil, fmt.Errorf("%w: registry must not be nil", ErrInvalidAgent)
	}
	if _, reserved := registry.Get(FinishTool); reserved {
		return nil, fmt.Errorf("%w: %q is a reserved tool name", ErrInvalidAgent, FinishTool)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	r := &ReAct{
		sig:       sig,
		registry:  registry,
		config:    cfg,
		predictor: cfg.predictor,
		extractor: cfg.extractor,
		logger:    cfg.logger,
	}

	predictOpts := []predict.Option{}
	if cfg.model != "" {
		predictOpts = append(predictOpts, predict.WithModel(cfg.model))
	}
	if cfg.genConfig != nil {
		predictOpts = append(predictOpts, predict.WithGenerationConfig(cfg.genConfig))
	}

	if r.predictor == nil {
		if provider == nil {
			return nil, fmt.Errorf("%w: provider must not be nil", ErrInvalidAgent)
		}
		stepSig, err := buildStepSignature(sig, registry.Infos())
		if err != nil {
			return nil, fmt.Errorf("%w: building step signature: %w", ErrInvalidAgent, err)
		}
		r.predictor, err = predict.New(provider, stepSig, predictOpts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidAgent, err)
		}
	}
	if r.extractor == nil {
		if provider == nil {
			return nil, fmt.Errorf("%w: provider must not be nil", ErrInvalidAgent)
		}
		extractSig, err := buildExtractSignature(sig)
		if err != nil {
			return nil, fmt.Errorf("%w: building extraction signature: %w", ErrInvalidAgent, err)
		}
		r.extractor, err = predict.NewChainOfThought(provider, extractSig, predictOpts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidAgent, err)
		}
	}

	return r, nil
}

// Signature returns the caller signature this agent serves.
func (r *ReAct) Signature() *signature.Signature { return r.sig }

// Run executes the loop until the model finishes, a policy ceiling is hit,
// or the context budget cannot fit even the fixed prompt header. The only
// error Run returns is caller misuse: a declared input field with no
// value. Everything that goes wrong during the loop itself is absorbed
// into the returned [Result].
func (r *ReAct) Run(ctx context.Context, inputs patterns.Inputs) (*Result, error) {
	for _, field := range r.sig.Inputs() {
		if _, ok := inputs[field.Name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingInput, field.Name)
		}
	}

	result := &Result{
		ID:         uuid.New(),
		Status:     StatusAborted,
		Trajectory: NewTrajectory(),
	}
	span := observability.SpanFromContext(ctx)
	logger := r.logger.With(slog.String(observability.AttrAgentID, result.ID.String()))

	header := r.promptHeader(inputs)
	finished := false
	var finishArgs map[string]any
	consecutiveFailures := 0

	for iteration := 0; iteration < r.config.maxIterations; iteration++ {
		result.Iterations = iteration + 1
		if span != nil {
			span.AddEvent(observability.EventAgentIteration,
				observability.String(observability.AttrAgentID, result.ID.String()),
				observability.Int(observability.AttrAgentIteration, iteration),
				observability.Int(observability.AttrAgentTrajectorySteps, result.Trajectory.Len()),
			)
		}

		trajectoryText, fits := r.fitTrajectory(result.Trajectory, header, logger, span)
		if !fits {
			result.Reason = fmt.Sprintf("%v: the prompt header alone exceeds the budget of %d tokens", ErrContextBudget, r.config.contextBudget)
			break
		}

		prediction, err := r.predictor.Invoke(ctx, stepInputs(inputs, trajectoryText))
		r.recordUsage(result, r.predictor)
		if err != nil {
			var parseErr *parse.Error
			if !errors.As(err, &parseErr) {
				result.Reason = fmt.Sprintf("model call failed: %v", err)
				logger.Error("agent step failed", slog.String("error", err.Error()))
				break
			}
			consecutiveFailures++
			logger.Warn("unparsable completion",
				slog.Int("consecutive_failures", consecutiveFailures),
				slog.String("error", parseErr.Error()))
			if consecutiveFailures >= r.config.maxConsecutiveParseFailures {
				result.Reason = fmt.Sprintf("%d consecutive unparsable completions", consecutiveFailures)
				break
			}
			result.Trajectory.AppendObservation(formatGuidance(), true)
			continue
		}

		thought := prediction.GetString(fieldNextThought)
		toolName := strings.TrimSpace(prediction.GetString(fieldNextToolName))
		if toolName == "" {
			consecutiveFailures++
			if consecutiveFailures >= r.config.maxConsecutiveParseFailures {
				result.Reason = fmt.Sprintf("%d consecutive unparsable completions", consecutiveFailures)
				break
			}
			result.Trajectory.AppendObservation(formatGuidance(), true)
			continue
		}
		consecutiveFailures = 0
		args, _ := prediction.GetMap(fieldNextToolArgs)
		argsJSON := renderArgs(args)

		result.Trajectory.AppendThought(thought)
		logger.Debug("agent step",
			slog.Int(observability.AttrAgentIteration, iteration),
			slog.String("thought", utils.TruncateStringDefault(thought)),
			slog.String(observability.AttrToolName, toolName),
			slog.String(observability.AttrToolInput, utils.TruncateStringDefault(argsJSON)))

		if strings.EqualFold(toolName, FinishTool) {
			result.Trajectory.AppendAction(FinishTool, argsJSON)
			result.Trajectory.AppendObservation("Completed.", false)
			finished = true
			finishArgs = args
			break
		}

		selected, known := r.registry.Get(toolName)
		if !known {
			result.Trajectory.AppendAction(toolName, argsJSON)
			result.Trajectory.AppendObservation(unknownToolGuidance(toolName, append(r.registry.Names(), FinishTool)), true)
			continue
		}

		result.Trajectory.AppendAction(selected.Info().Name, argsJSON)
		output, err := selected.Call(ctx, argsJSON)
		if err != nil {
			result.Trajectory.AppendObservation(fmt.Sprintf("execution error in %s: %v", selected.Info().Name, err), true)
			logger.Warn("tool failed",
				slog.String(observability.AttrToolName, selected.Info().Name),
				slog.String(observability.AttrToolError, err.Error()))
			continue
		}
		result.Trajectory.AppendObservation(output, false)
	}

	if !finished && result.Reason == "" {
		result.Reason = fmt.Sprintf("iteration limit of %d reached", r.config.maxIterations)
	}

	r.resolveOutputs(ctx, result, inputs, finished, finishArgs)

	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrAgentStatus, string(result.Status)),
			observability.Int(observability.AttrAgentTrajectorySteps, result.Trajectory.Len()),
		)
	}
	logger.Info("agent run complete",
		slog.String(observability.AttrAgentStatus, string(result.Status)),
		slog.Int(observability.AttrAgentIteration, result.Iterations),
		slog.Int(observability.AttrLLMTokensTotal, result.Usage.TotalTokens))

	return result, nil
}

// Invoke implements [patterns.Module]: it runs the agent and returns the
// output mapping with the rendered trajectory attached. An aborted run
// yields its best-effort mapping, not an error.
func (r *ReAct) Invoke(ctx context.Context, inputs patterns.Inputs) (patterns.Prediction, error) {
	result, err := r.Run(ctx, inputs)
	if err != nil {
		return nil, err
	}
	prediction := make(patterns.Prediction, len(result.Outputs)+1)
	for name, value := range result.Outputs {
		prediction[name] = value
	}
	prediction[fieldTrajectory] = result.Trajectory.Render(false)
	return prediction, nil
}

// resolveOutputs fills Result.Outputs. A finish call that already carries
// every declared output field is used directly; otherwise the extraction
// predictor distills the outputs from the trajectory, with bounded retries
// on missing fields. When nothing works the outputs fall back to explicit
// could-not-complete values and the run counts as aborted.
func (r *ReAct) resolveOutputs(ctx context.Context, result *Result, inputs patterns.Inputs, finished bool, finishArgs map[string]any) {
	if finished {
		if outputs, complete := r.outputsFromArgs(finishArgs); complete {
			result.Status = StatusFinished
			result.Outputs = outputs
			return
		}
	}

	outputs, err := r.extract(ctx, result, inputs)
	if err == nil {
		result.Outputs = outputs
		if finished {
			result.Status = StatusFinished
			result.Reason = ""
		}
		return
	}

	if finished {
		result.Reason = fmt.Sprintf("%v: extraction failed after %d attempts: %v", ErrMissingOutputField, 1+r.config.extractRetries, err)
	}
	result.Status = StatusAborted
	result.Outputs = make(patterns.Prediction, len(r.sig.Outputs()))
	for _, field := range r.sig.Outputs() {
		result.Outputs[field.Name] = fallbackOutput(field.Name)
	}
}

// extract asks the extraction predictor for the declared output fields,
// retrying on format violations up to the configured budget. Transport
// errors are not retried here; the provider middleware owns that concern.
func (r *ReAct) extract(ctx context.Context, result *Result, inputs patterns.Inputs) (patterns.Prediction, error) {
	extractInputs := stepInputs(inputs, result.Trajectory.Render(false))

	var lastErr error
	for attempt := 0; attempt <= r.config.extractRetries; attempt++ {
		prediction, err := r.extractor.Invoke(ctx, extractInputs)
		r.recordUsage(result, r.extractor)
		if err == nil {
			outputs := make(patterns.Prediction, len(r.sig.Outputs()))
			for _, field := range r.sig.Outputs() {
				outputs[field.Name] = prediction[field.Name]
			}
			return outputs, nil
		}
		lastErr = err
		var parseErr *parse.Error
		if !errors.As(err, &parseErr) {
			return nil, err
		}
	}
	return nil, lastErr
}

// outputsFromArgs accepts a finish payload that already names every
// declared output field, skipping the extraction call.
func (r *ReAct) outputsFromArgs(args map[string]any) (patterns.Prediction, bool) {
	if len(args) == 0 {
		return nil, false
	}
	outputs := make(patterns.Prediction, len(r.sig.Outputs()))
	for _, field := range r.sig.Outputs() {
		value, ok := args[field.Name]
		if !ok || value == nil {
			return nil, false
		}
		outputs[field.Name] = stringifyOutput(value)
	}
	return outputs, true
}

// fitTrajectory renders the trajectory so that header plus trajectory fits
// the context budget: oldest units are dropped first down to the retained
// window, then thought text is omitted. The fixed header is never touched;
// if it alone exceeds the budget the run cannot proceed and fits is false.
func (r *ReAct) fitTrajectory(trajectory *Trajectory, header string, logger *slog.Logger, span observability.Span) (text string, fits bool) {
	budget := r.config.contextBudget
	if EstimateTokens(header) > budget {
		return "", false
	}

	omitThoughts := false
	text = trajectory.Render(omitThoughts)
	truncated := false
	for EstimateTokens(header)+EstimateTokens(text) > budget {
		if trajectory.Units() > r.config.keepRecentTriples {
			trajectory.TruncateOldest()
			truncated = true
			text = trajectory.Render(omitThoughts)
			continue
		}
		if !omitThoughts {
			omitThoughts = true
			text = trajectory.Render(omitThoughts)
			continue
		}
		// Minimum window in degraded form still over budget. The header is
		// retained and no unit was split, so proceed with what we have.
		break
	}

	if truncated {
		logger.Debug("trajectory truncated",
			slog.Int(observability.AttrAgentTrajectoryDropped, trajectory.Dropped()),
			slog.Int(observability.AttrAgentTrajectorySteps, trajectory.Len()))
		if span != nil {
			span.AddEvent(observability.EventAgentTruncation,
				observability.Int(observability.AttrAgentTrajectoryDropped, trajectory.Dropped()),
				observability.Int(observability.AttrAgentTrajectorySteps, trajectory.Len()),
			)
		}
	}
	return text, true
}

// promptHeader approximates the fixed, never-truncated part of each step
// prompt: the step instructions plus the task input values.
func (r *ReAct) promptHeader(inputs patterns.Inputs) string {
	var b strings.Builder
	if p, ok := r.predictor.(*predict.Predict); ok {
		b.WriteString(p.Signature().Instructions())
	} else {
		b.WriteString(r.sig.Instructions())
	}
	b.WriteString("\n")
	for _, field := range r.sig.Inputs() {
		b.WriteString(field.Name)
		b.WriteString(": ")
		b.WriteString(stringifyOutput(inputs[field.Name]))
		b.WriteString("\n")
	}
	return b.String()
}

// recordUsage folds the module's last token usage into the result when the
// module reports it.
func (r *ReAct) recordUsage(result *Result, module patterns.Module) {
	if reporter, ok := module.(patterns.UsageReporter); ok {
		result.Usage.Add(reporter.LastUsage())
	}
}

func stepInputs(inputs patterns.Inputs, trajectoryText string) patterns.Inputs {
	merged := make(patterns.Inputs, len(inputs)+1)
	for name, value := range inputs {
		merged[name] = value
	}
	merged[fieldTrajectory] = trajectoryText
	return merged
}

func renderArgs(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	return utils.JSONToString(args)
}

func stringifyOutput(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		// JSON numbers decode to float64; render integral values without
		// the trailing fraction so "5" stays "5".
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
