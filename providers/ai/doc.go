// Package ai defines the transport boundary toward language models: the
// [Provider] interface and the request/response data model shared by all
// provider implementations. The rest of the module depends only on this
// contract, never on a concrete API.
//
// The openai subpackage implements Provider for any OpenAI-compatible
// chat-completions endpoint; the middleware subpackage wraps a Provider
// with logging and retry behavior.
package ai
