package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/reagentlabs/reagent/internal/utils"
	"github.com/reagentlabs/reagent/providers/ai"
)

// LogLevel controls how much detail the logging middleware emits per request.
type LogLevel int

const (
	// LogLevelMinimal logs only the model name, total duration, and token
	// counts. Use this for lightweight audit trails.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard logs everything in Minimal plus message count and
	// finish reason. Recommended default.
	LogLevelStandard

	// LogLevelVerbose logs everything in Standard plus the first message
	// and the response content, each truncated to 500 characters.
	//
	// WARNING: do not use LogLevelVerbose in production; it logs raw prompt
	// and response text which may contain sensitive data.
	LogLevelVerbose
)

// truncateLen is the maximum content length included in verbose log output.
const truncateLen = 500

// NewLogging creates a middleware that emits structured slog entries before
// and after every provider call. The logger must not be nil; use
// slog.Default() if you have not configured one.
func NewLogging(logger *slog.Logger, level LogLevel) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			logger.InfoContext(ctx, "llm send", requestAttrs(request, level)...)

			start := time.Now()
			response, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "llm send failed",
					slog.String("model", request.Model),
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			logger.InfoContext(ctx, "llm send completed", responseAttrs(response, elapsed, level)...)
			return response, nil
		}
	}
}

func requestAttrs(request ai.ChatRequest, level LogLevel) []any {
	attrs := []any{slog.String("model", request.Model)}

	if level >= LogLevelStandard {
		attrs = append(attrs, slog.Int("messages", len(request.Messages)))
	}

	if level >= LogLevelVerbose && len(request.Messages) > 0 {
		attrs = append(attrs, slog.String("first_message",
			utils.TruncateString(request.Messages[0].Content, truncateLen)))
	}

	return attrs
}

func responseAttrs(response *ai.ChatResponse, elapsed time.Duration, level LogLevel) []any {
	attrs := []any{
		slog.String("model", response.Model),
		slog.Duration("duration", elapsed),
	}

	if response.Usage != nil {
		attrs = append(attrs,
			slog.Int("prompt_tokens", response.Usage.PromptTokens),
			slog.Int("completion_tokens", response.Usage.CompletionTokens),
		)
	}

	if level >= LogLevelStandard {
		attrs = append(attrs, slog.String("finish_reason", response.FinishReason))
	}

	if level >= LogLevelVerbose {
		attrs = append(attrs, slog.String("content",
			utils.TruncateString(response.Content, truncateLen)))
	}

	return attrs
}
