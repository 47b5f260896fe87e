// Package openai implements ai.Provider against any OpenAI-compatible
// chat-completions API. Besides api.openai.com this covers OpenRouter
// ([NewOpenRouter]) and local Ollama servers ([NewOllama]), which both speak
// the same wire protocol.
package openai
