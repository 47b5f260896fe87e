package ai

import (
	"context"
	"net/http"
)

// Provider is the interface every LLM transport must satisfy. It covers the
// full lifecycle of a single synchronous request: authentication, endpoint
// configuration, message dispatch, and response interpretation. The agent
// loop issues blocking calls only; there is no streaming surface.
type Provider interface {
	// SendMessage sends a chat request to the provider and returns the
	// completed response. Returns an error if the provider call fails,
	// the context is cancelled, or the response cannot be decoded.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// WithAPIKey sets the API key used for authenticating requests.
	WithAPIKey(apiKey string) Provider

	// WithBaseURL overrides the default base URL for API requests.
	WithBaseURL(baseURL string) Provider

	// WithHTTPClient sets the HTTP client used for outbound requests.
	WithHTTPClient(httpClient *http.Client) Provider
}
