package middleware

import (
	"context"
	"time"

	"github.com/reagentlabs/reagent/providers/ai"
)

// NewTimeout enforces a per-request deadline on provider calls by wrapping
// the context with context.WithTimeout. A caller context with a shorter
// deadline wins, as per normal context semantics. Non-positive timeouts
// disable the middleware.
func NewTimeout(timeout time.Duration) Middleware {
	return func(next SendFunc) SendFunc {
		if timeout <= 0 {
			return next
		}
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, request)
		}
	}
}
