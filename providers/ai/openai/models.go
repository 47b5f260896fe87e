package openai

import "github.com/reagentlabs/reagent/providers/ai"

// chatCompletionsRequest is the wire form of a /chat/completions request.
type chatCompletionsRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
	TopP        float32       `json:"top_p,omitempty"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionsResponse is the wire form of a /chat/completions response.
type chatCompletionsResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Created int64  `json:"created"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      wireMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// requestFromGeneric maps the generic chat request onto the wire form. The
// system prompt becomes the leading system message.
func requestFromGeneric(model string, request ai.ChatRequest) chatCompletionsRequest {
	wire := chatCompletionsRequest{Model: model}

	if request.SystemPrompt != "" {
		wire.Messages = append(wire.Messages, wireMessage{Role: string(ai.RoleSystem), Content: request.SystemPrompt})
	}
	for _, m := range request.Messages {
		wire.Messages = append(wire.Messages, wireMessage{Role: string(m.Role), Content: m.Content})
	}

	if cfg := request.GenerationConfig; cfg != nil {
		wire.MaxTokens = cfg.MaxTokens
		wire.Temperature = cfg.Temperature
		wire.TopP = cfg.TopP
	}

	return wire
}

// responseToGeneric maps the first choice of a wire response onto the
// generic response model.
func responseToGeneric(resp chatCompletionsResponse) *ai.ChatResponse {
	choice := resp.Choices[0]

	generic := &ai.ChatResponse{
		ID:           resp.ID,
		Model:        resp.Model,
		Created:      resp.Created,
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
	}

	if resp.Usage != nil {
		generic.Usage = &ai.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	return generic
}
