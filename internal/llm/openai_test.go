package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenAIProvider_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIProvider(Config{})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestOpenAIComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			MaxTokens   int     `json:"max_tokens"`
			Temperature float32 `json:"temperature"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system+user messages, got %+v", req.Messages)
		}
		if req.MaxTokens != 150 {
			t.Errorf("expected max_tokens 150, got %d", req.MaxTokens)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "  query one\nquery two  "}},
			},
			"usage": map[string]int{"total_tokens": 42},
		})
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		System:      "You are a test assistant.",
		Prompt:      "produce queries",
		MaxTokens:   150,
		Temperature: 0.3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "query one\nquery two" {
		t.Errorf("expected trimmed text, got %q", resp.Text)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("expected 42 tokens, got %d", resp.TokensUsed)
	}
}

func TestOpenAIComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "p"}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
