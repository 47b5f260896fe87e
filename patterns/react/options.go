package react

import (
	"log/slog"

	"github.com/reagentlabs/reagent/patterns"
	"github.com/reagentlabs/reagent/providers/ai"
)

// Policy defaults. Every ceiling is configuration, not a hard-coded value;
// the defaults are starting points, not recommendations.
const (
	DefaultMaxIterations               = 5
	DefaultMaxConsecutiveParseFailures = 3
	DefaultContextBudget               = 32768
	DefaultKeepRecentTriples           = 1
	DefaultExtractRetries              = 1
)

type config struct {
	maxIterations               int
	maxConsecutiveParseFailures int
	contextBudget               int
	keepRecentTriples           int
	extractRetries              int
	logger                      *slog.Logger
	model                       string
	genConfig                   *ai.GenerationConfig
	predictor                   patterns.Module
	extractor                   patterns.Module
}

func defaultConfig() config {
	return config{
		maxIterations:               DefaultMaxIterations,
		maxConsecutiveParseFailures: DefaultMaxConsecutiveParseFailures,
		contextBudget:               DefaultContextBudget,
		keepRecentTriples:           DefaultKeepRecentTriples,
		extractRetries:              DefaultExtractRetries,
	}
}

// Option configures a [ReAct] agent at construction time.
type Option func(*config)

// WithMaxIterations caps the number of loop iterations before the run
// aborts with best-effort outputs. Values below 1 are ignored.
func WithMaxIterations(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.maxIterations = n
		}
	}
}

// WithMaxConsecutiveParseFailures sets how many unparsable completions in a
// row abort the run. Values below 1 are ignored.
func WithMaxConsecutiveParseFailures(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.maxConsecutiveParseFailures = n
		}
	}
}

// WithContextBudget sets the approximate token budget the rendered prompt
// must fit, triggering trajectory truncation when exceeded. Values below 1
// are ignored.
func WithContextBudget(tokens int) Option {
	return func(c *config) {
		if tokens >= 1 {
			c.contextBudget = tokens
		}
	}
}

// WithKeepRecentTriples sets how many of the most recent trajectory units
// truncation must retain. The minimum is 1.
func WithKeepRecentTriples(k int) Option {
	return func(c *config) {
		if k >= 1 {
			c.keepRecentTriples = k
		}
	}
}

// WithExtractRetries sets how many extra extraction attempts are made when
// the model omits a declared output field. Zero disables retries; negative
// values are ignored.
func WithExtractRetries(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.extractRetries = n
		}
	}
}

// WithLogger sets the logger for per-iteration debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithModel overrides the provider's default model for both internal
// predictors.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithGenerationConfig sets sampling parameters for both internal
// predictors.
func WithGenerationConfig(genConfig *ai.GenerationConfig) Option {
	return func(c *config) { c.genConfig = genConfig }
}

// WithPredictor replaces the internal step predictor. The module receives
// the signature's inputs plus a "trajectory" input and must produce
// next_thought, next_tool_name and next_tool_args fields.
func WithPredictor(m patterns.Module) Option {
	return func(c *config) { c.predictor = m }
}

// WithExtractor replaces the internal extraction module. The module
// receives the signature's inputs plus a "trajectory" input and must
// produce the signature's declared output fields.
func WithExtractor(m patterns.Module) Option {
	return func(c *config) { c.extractor = m }
}
