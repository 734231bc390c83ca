// Package providers implements the Model interface for each supported LLM
// provider.
//
// Supported providers: Anthropic (Claude), OpenAI (GPT), Google (Gemini, via
// the google.golang.org/genai client), and Ollama / LM Studio for local models
// such as deepseek-r1.
//
// The HTTP providers share postJSON, which retries rate limits and 5xx
// responses with exponential back-off and maps status codes to typed errors.
// A missing API key is reported as an authentication error, as is a 401/403.
//
// Use [New] to obtain a Model by provider name and model string, and
// [NewCached] to put a response cache in front of it.
package providers
