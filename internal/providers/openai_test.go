package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAI_RequestShape(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, chatOK)
	}))
	defer server.Close()

	o := &OpenAI{apiKey: "test-key", model: "gpt-4.1-mini", baseURL: server.URL, client: server.Client()}
	_, err := o.Generate(context.Background(), Request{SystemPrompt: "sys", UserPrompt: "usr", MaxTokens: 64})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "usr" {
		t.Errorf("messages = %+v", got.Messages)
	}
	if got.MaxTokens != 64 {
		t.Errorf("max_tokens = %d, want 64", got.MaxTokens)
	}
}

func TestOpenAI_OmitsEmptySystemMessage(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, chatOK)
	}))
	defer server.Close()

	o := &OpenAI{apiKey: "k", model: "m", baseURL: server.URL, client: server.Client()}
	if _, err := o.Generate(context.Background(), Request{UserPrompt: "only user"}); err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Errorf("messages = %+v, want a single user message", got.Messages)
	}
}

func TestOpenAI_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer server.Close()

	o := &OpenAI{apiKey: "k", model: "m", baseURL: server.URL, client: server.Client()}
	_, err := o.Generate(context.Background(), Request{UserPrompt: "x"})
	if !errors.Is(err, errNoChoices) {
		t.Errorf("expected errNoChoices, got %v", err)
	}
}

func TestNewOpenAI_BaseURL(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	t.Setenv("INSPECT_OPENAI_BASE_URL", "")
	o, err := NewOpenAI("gpt-4.1-mini")
	if err != nil {
		t.Fatalf("NewOpenAI error: %v", err)
	}
	if o.baseURL != defaultOpenAIURL {
		t.Errorf("baseURL = %q, want default", o.baseURL)
	}

	t.Setenv("INSPECT_OPENAI_BASE_URL", "http://gateway.local/v1/chat/completions")
	o, err = NewOpenAI("gpt-4.1-mini")
	if err != nil {
		t.Fatalf("NewOpenAI error: %v", err)
	}
	if o.baseURL != "http://gateway.local/v1/chat/completions" {
		t.Errorf("baseURL = %q", o.baseURL)
	}
}
