package openai

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/reagentlabs/reagent/internal/utils"
	"github.com/reagentlabs/reagent/providers/ai"
)

const (
	defaultBaseURL          = "https://api.openai.com/v1"
	openRouterBaseURL       = "https://openrouter.ai/api/v1"
	ollamaDefaultBaseURL    = "http://localhost:11434/v1"
	chatCompletionsEndpoint = "/chat/completions"
)

// Provider implements [ai.Provider] for OpenAI-compatible APIs.
type Provider struct {
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
}

// New creates a provider configured from the environment: OPENAI_API_KEY
// (falling back to LLM_API_KEY), OPENAI_API_BASE_URL, and LLM_MODEL for the
// default model used when a request does not name one.
func New() *Provider {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("LLM_API_KEY")
	}

	baseURL := os.Getenv("OPENAI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Provider{
		apiKey:       apiKey,
		baseURL:      baseURL,
		defaultModel: os.Getenv("LLM_MODEL"),
		client:       &http.Client{},
	}
}

// NewOpenRouter creates a provider pointed at the OpenRouter gateway, which
// proxies many hosted models behind the OpenAI wire protocol.
func NewOpenRouter(apiKey string, model string) *Provider {
	return &Provider{
		apiKey:       apiKey,
		baseURL:      openRouterBaseURL,
		defaultModel: model,
		client:       &http.Client{},
	}
}

// NewOllama creates a provider pointed at a local Ollama server. An empty
// baseURL uses the standard local address. Ollama requires no API key.
func NewOllama(model string, baseURL string) *Provider {
	if baseURL == "" {
		baseURL = ollamaDefaultBaseURL
	}
	return &Provider{
		baseURL:      baseURL,
		defaultModel: model,
		client:       &http.Client{},
	}
}

// WithAPIKey sets the API key for the provider.
func (p *Provider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API.
func (p *Provider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = baseURL
	return p
}

// WithHTTPClient sets a custom HTTP client.
func (p *Provider) WithHTTPClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// WithModel sets the default model used when a request does not name one.
func (p *Provider) WithModel(model string) *Provider {
	p.defaultModel = model
	return p
}

// SendMessage implements [ai.Provider] by POSTing to /chat/completions and
// mapping the first choice back onto the generic response model.
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	model := request.Model
	if model == "" {
		model = p.defaultModel
	}
	if model == "" {
		return nil, fmt.Errorf("no model configured: set ChatRequest.Model or the LLM_MODEL environment variable")
	}

	httpResponse, resp, err := utils.DoPostSync[chatCompletionsResponse](ctx, p.client, p.baseURL+chatCompletionsEndpoint, p.apiKey, requestFromGeneric(model, request))
	if err != nil {
		return nil, err
	}

	if resp == nil {
		return nil, fmt.Errorf("empty response from chat completions API: %s", httpResponse.Status)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in chat completions response (id %q)", resp.ID)
	}

	return responseToGeneric(*resp), nil
}
