package providers

import (
	"context"
	"fmt"
)

// Request contains the prompt sent to a language model.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64

	// Cacheable, when set, reports whether a response may be stored by
	// [Cached]. It is not part of the cache key.
	Cacheable func(content string) bool
}

// Response contains the raw text returned by a language model.
type Response struct {
	Content    string
	TokensUsed int
	Cached     bool
}

// Model is the provider abstraction: submit a prompt, receive text.
type Model interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Name() string
}

// New creates a provider by name.
func New(provider, model string) (Model, error) {
	switch provider {
	case "anthropic":
		return NewAnthropic(model)
	case "openai":
		return NewOpenAI(model)
	case "gemini", "google":
		return NewGemini(model)
	case "ollama", "lmstudio":
		return NewOllama(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

// Names lists the accepted provider names, aliases included.
func Names() []string {
	return []string{"anthropic", "openai", "gemini", "google", "ollama", "lmstudio"}
}
