package predict

import (
	"context"
	"errors"
	"fmt"

	"github.com/reagentlabs/reagent/core/signature"
	"github.com/reagentlabs/reagent/patterns"
	"github.com/reagentlabs/reagent/providers/ai"
)

// ErrEmptyCompletion is returned when the provider answers with no content
// to parse.
var ErrEmptyCompletion = errors.New("model returned an empty completion")

// Predict executes a signature against a chat provider: it renders the
// system and user messages with a [ChatAdapter], sends them, and parses
// the completion into a [patterns.Prediction].
//
// Predict is not safe for concurrent use; each agent run owns its own
// instance.
type Predict struct {
	provider  ai.Provider
	sig       *signature.Signature
	adapter   ChatAdapter
	model     string
	genConfig *ai.GenerationConfig
	lastUsage *ai.Usage
}

// Option configures a [Predict] at construction time.
type Option func(*Predict)

// WithModel overrides the provider's default model for this module.
func WithModel(model string) Option {
	return func(p *Predict) { p.model = model }
}

// WithGenerationConfig sets sampling parameters for this module's calls.
func WithGenerationConfig(config *ai.GenerationConfig) Option {
	return func(p *Predict) { p.genConfig = config }
}

// New builds a Predict module for the given provider and signature.
func New(provider ai.Provider, sig *signature.Signature, opts ...Option) (*Predict, error) {
	if provider == nil {
		return nil, fmt.Errorf("predict: provider must not be nil")
	}
	if sig == nil {
		return nil, fmt.Errorf("predict: signature must not be nil")
	}
	p := &Predict{provider: provider, sig: sig}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Signature returns the signature this module executes.
func (p *Predict) Signature() *signature.Signature { return p.sig }

// Invoke implements [patterns.Module]. The returned error is a
// [*parse.Error] when the model answered but violated the output format,
// and a transport error otherwise.
func (p *Predict) Invoke(ctx context.Context, inputs patterns.Inputs) (patterns.Prediction, error) {
	p.lastUsage = nil
	response, err := p.provider.SendMessage(ctx, ai.ChatRequest{
		Model:        p.model,
		SystemPrompt: p.adapter.SystemPrompt(p.sig),
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: p.adapter.UserMessage(p.sig, inputs)},
		},
		GenerationConfig: p.genConfig,
	})
	if err != nil {
		return nil, err
	}

	p.lastUsage = response.Usage

	if response.Content == "" {
		return nil, ErrEmptyCompletion
	}
	return p.adapter.ParseCompletion(p.sig, response.Content)
}

// LastUsage implements [patterns.UsageReporter]. It returns the token usage
// of the most recent invocation, or nil before the first call or when the
// provider reported none.
func (p *Predict) LastUsage() *ai.Usage { return p.lastUsage }
