package llm

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Provider defines the interface for generative-text services
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete generates a free-text completion for the given request
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains the input for one generation call
type CompletionRequest struct {
	// System sets the assistant's role for the call
	System string

	// Prompt is the user-turn content
	Prompt string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls sampling; lower is more focused
	Temperature float32
}

// CompletionResponse contains the service's free-text output
type CompletionResponse struct {
	// Text is the generated completion, whitespace-trimmed
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Timeout:  30,
	}
}

// TruncateForPrompt returns the leading window of text, capped at maxRunes,
// never splitting a rune. Deterministic for a given input: the same
// transcript always yields the same prompt. A leading window keeps the
// topical framing most transcripts put up front.
func TruncateForPrompt(text string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := 0
	for i := range text {
		if runes == maxRunes {
			return strings.TrimSpace(text[:i])
		}
		runes++
	}
	return text
}
