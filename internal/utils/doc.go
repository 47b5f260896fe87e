// Package utils holds small internal helpers shared across packages:
// JSON stringification for prompts and logs, bounded string truncation,
// and a generic JSON-over-HTTP POST helper used by LLM providers.
package utils
