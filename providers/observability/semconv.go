package observability

// Semantic conventions for observability attributes. These constants define
// standard attribute names so that signals emitted by different components
// stay consistent.

// --- LLM provider attributes ---

const (
	// AttrLLMProvider is the name of the LLM provider (e.g., "openai").
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier.
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL.
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMFinishReason is the reason the generation finished.
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMTokensPrompt is the number of prompt tokens.
	AttrLLMTokensPrompt = "llm.tokens.prompt" // #nosec G101 -- refers to LLM tokens, not credentials

	// AttrLLMTokensCompletion is the number of completion tokens.
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- refers to LLM tokens, not credentials

	// AttrLLMTokensTotal is the total number of tokens.
	AttrLLMTokensTotal = "llm.tokens.total" // #nosec G101 -- refers to LLM tokens, not credentials
)

// --- Tool execution attributes ---

const (
	// AttrToolName is the name of the tool being executed.
	AttrToolName = "tool.name"

	// AttrToolInput is the serialized tool input.
	AttrToolInput = "tool.input"

	// AttrToolOutput is the serialized tool output.
	AttrToolOutput = "tool.output"

	// AttrToolError is the tool execution error message.
	AttrToolError = "tool.error"

	// AttrToolDuration is the tool execution wall time.
	AttrToolDuration = "tool.duration"
)

// --- Agent loop attributes ---

const (
	// AttrAgentID is the unique identifier of one agent invocation.
	AttrAgentID = "agent.id"

	// AttrAgentIteration is the current loop iteration (zero-based).
	AttrAgentIteration = "agent.iteration"

	// AttrAgentStatus is the terminal status of the run.
	AttrAgentStatus = "agent.status"

	// AttrAgentTrajectorySteps is the number of steps in the trajectory.
	AttrAgentTrajectorySteps = "agent.trajectory.steps"

	// AttrAgentTrajectoryDropped is the number of trajectory units removed
	// by truncation.
	AttrAgentTrajectoryDropped = "agent.trajectory.dropped"
)

// --- HTTP attributes ---

const (
	// AttrHTTPMethod is the HTTP request method.
	AttrHTTPMethod = "http.method"

	// AttrHTTPURL is the full request URL.
	AttrHTTPURL = "http.url"

	// AttrHTTPStatusCode is the HTTP response status code.
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPRequestBodySize is the request body size in bytes.
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes.
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- Span event names ---

const (
	// EventToolExecutionStart marks the start of a tool execution.
	EventToolExecutionStart = "tool.execution.start"

	// EventToolExecutionEnd marks the end of a tool execution.
	EventToolExecutionEnd = "tool.execution.end"

	// EventAgentIteration marks the start of one loop iteration.
	EventAgentIteration = "agent.iteration"

	// EventAgentTruncation marks a trajectory truncation pass.
	EventAgentTruncation = "agent.trajectory.truncated"
)

// --- Span status attributes ---

const (
	// AttrStatus is the status string recorded by SetStatus.
	AttrStatus = "status"

	// AttrStatusDescription is the optional status description.
	AttrStatusDescription = "status.description"
)
