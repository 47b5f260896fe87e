// Package middleware wraps an ai.Provider with cross-cutting behavior.
// Each [Middleware] receives the next [SendFunc] in the chain and returns a
// new SendFunc around it; [Wrap] assembles the chain and exposes it again
// as an ai.Provider so callers stay oblivious to the decoration.
//
// Provided middlewares: [NewLogging] (structured slog entries around each
// call) and [NewRetry] (exponential backoff on transient HTTP errors).
package middleware

import (
	"context"
	"net/http"

	"github.com/reagentlabs/reagent/providers/ai"
)

// SendFunc is a function that sends a chat request to the LLM provider and
// returns the completed response. It is the base unit threaded through the
// middleware chain.
type SendFunc func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error)

// Middleware intercepts and optionally transforms provider calls. Middlewares
// are applied outermost-first: the first middleware passed to [Wrap] is the
// first to see an incoming request.
type Middleware func(next SendFunc) SendFunc

// Wrap decorates provider with the given middlewares and returns the result
// as an [ai.Provider]. Configuration calls (WithAPIKey and friends) are
// forwarded to the underlying provider.
func Wrap(provider ai.Provider, middlewares ...Middleware) ai.Provider {
	chain := SendFunc(provider.SendMessage)

	// Reverse application so that middlewares[0] is outermost.
	for i := len(middlewares) - 1; i >= 0; i-- {
		chain = middlewares[i](chain)
	}

	return &wrappedProvider{inner: provider, chain: chain}
}

type wrappedProvider struct {
	inner ai.Provider
	chain SendFunc
}

func (w *wrappedProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	return w.chain(ctx, request)
}

func (w *wrappedProvider) WithAPIKey(apiKey string) ai.Provider {
	w.inner = w.inner.WithAPIKey(apiKey)
	return w
}

func (w *wrappedProvider) WithBaseURL(baseURL string) ai.Provider {
	w.inner = w.inner.WithBaseURL(baseURL)
	return w
}

func (w *wrappedProvider) WithHTTPClient(httpClient *http.Client) ai.Provider {
	w.inner = w.inner.WithHTTPClient(httpClient)
	return w
}
