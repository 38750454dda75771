package contextwindow

import "github.com/corey/ctxwin/internal/ports"

// fallbackTable ships with the binary and is used whenever the on-disk cache
// is absent or has no entry for a provider. Sizes are total context tokens
// (prompt + completion) as published by each vendor.
var fallbackTable = ports.ContextWindowMap{
	"anthropic": {
		"claude-opus-4-1":            200000,
		"claude-opus-4-20250514":     200000,
		"claude-sonnet-4-5":          200000,
		"claude-sonnet-4-20250514":   200000,
		"claude-haiku-4-5":           200000,
		"claude-3-7-sonnet-20250219": 200000,
		"claude-3-5-sonnet-20241022": 200000,
		"claude-3-5-haiku-20241022":  200000,
		"claude-3-opus-20240229":     200000,
		"claude-3-haiku-20240307":    200000,
	},
	"openai": {
		"gpt-5":         400000,
		"gpt-5-mini":    400000,
		"gpt-5-nano":    400000,
		"gpt-4.1":       1047576,
		"gpt-4.1-mini":  1047576,
		"gpt-4o":        128000,
		"gpt-4o-mini":   128000,
		"gpt-4-turbo":   128000,
		"o1":            200000,
		"o3":            200000,
		"o3-mini":       200000,
		"o4-mini":       200000,
		"gpt-3.5-turbo": 16385,
	},
	"google": {
		"gemini-2.5-pro":   1048576,
		"gemini-2.5-flash": 1048576,
		"gemini-2.0-flash": 1048576,
		"gemini-1.5-pro":   2097152,
		"gemini-1.5-flash": 1048576,
	},
	"deepseek": {
		"deepseek-chat":     128000,
		"deepseek-reasoner": 128000,
	},
	"mistral": {
		"mistral-large-latest":  131072,
		"mistral-medium-latest": 131072,
		"mistral-small-latest":  131072,
		"codestral-latest":      256000,
	},
	"xai": {
		"grok-4":      256000,
		"grok-3":      131072,
		"grok-3-mini": 131072,
	},
	"groq": {
		"llama-3.3-70b-versatile": 131072,
		"llama-3.1-8b-instant":    131072,
	},
}

// Fallback returns a copy of the built-in table.
func Fallback() ports.ContextWindowMap {
	return fallbackTable.Clone()
}
