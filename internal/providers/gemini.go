package providers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/genai"
)

// Gemini implements Model on top of the official genai client.
type Gemini struct {
	model  string
	client *genai.Client
}

// NewGemini creates a new Gemini provider.
func NewGemini(model string) (*Gemini, error) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}
	if key == "" {
		return nil, missingKeyError("GEMINI_API_KEY (or GOOGLE_API_KEY)")
	}
	return newGemini(context.Background(), model, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
}

func newGemini(ctx context.Context, model string, cfg *genai.ClientConfig) (*Gemini, error) {
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Gemini{model: model, client: cli}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Generate(ctx context.Context, req Request) (Response, error) {
	cfg := &genai.GenerateContentConfig{MaxOutputTokens: int32(maxTokensOr(req.MaxTokens))}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		cfg.Temperature = &t
	}

	var resp Response
	err := retryWithBackoff(ctx, maxRetries, func() error {
		result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.UserPrompt), cfg)
		if err != nil {
			return classifyGenaiError(err)
		}
		if len(result.Candidates) == 0 || result.Candidates[0].Content == nil ||
			len(result.Candidates[0].Content.Parts) == 0 {
			return fmt.Errorf("no content in response")
		}

		resp = Response{Content: result.Text()}
		if result.UsageMetadata != nil {
			resp.TokensUsed = int(result.UsageMetadata.TotalTokenCount)
		}
		return nil
	})

	return resp, err
}

func classifyGenaiError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("generating content: %w", err)
	}
	if typed := classifyStatus(apiErr.Code, []byte(apiErr.Message)); typed != nil {
		return typed
	}
	return fmt.Errorf("generating content: %w", err)
}
