package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-date-planner/internal/config"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		OpenAIAPIKey:  "test-key",
		OpenAIBaseURL: baseURL,
		OpenAIModel:   "stepfun/step-3.5-flash:free",
	}
}

func TestOpenRouterGenerateContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected Authorization header: %s", got)
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "stepfun/step-3.5-flash:free" {
			t.Errorf("unexpected model: %s", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("expected a single user message, got %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "gen-1",
			"model": "stepfun/step-3.5-flash:free",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"city\": \"Mumbai\"}"}}],
			"usage": {"prompt_tokens": 42, "completion_tokens": 7, "total_tokens": 49}
		}`))
	}))
	defer server.Close()

	gen := NewOpenRouterClient(testConfig(server.URL), 0.3)

	resp, err := gen.GenerateContent(context.Background(), "extract the plan")
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}
	if resp.Content != `{"city": "Mumbai"}` {
		t.Errorf("unexpected content: %s", resp.Content)
	}
	if resp.Usage.PromptTokens != 42 || resp.Usage.CompletionTokens != 7 || resp.Usage.TotalTokens != 49 {
		t.Errorf("token usage not captured: %+v", resp.Usage)
	}
	if resp.Usage.Model != "stepfun/step-3.5-flash:free" {
		t.Errorf("unexpected model in usage: %s", resp.Usage.Model)
	}
}

func TestOpenRouterGenerateContentAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	gen := NewOpenRouterClient(testConfig(server.URL), 0.3)

	if _, err := gen.GenerateContent(context.Background(), "extract the plan"); err == nil {
		t.Fatal("expected an error for a non-200 response, got nil")
	}
}

func TestOpenRouterGenerateContentNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "gen-2", "choices": [], "usage": {"prompt_tokens": 1, "completion_tokens": 0, "total_tokens": 1}}`))
	}))
	defer server.Close()

	gen := NewOpenRouterClient(testConfig(server.URL), 0.3)

	if _, err := gen.GenerateContent(context.Background(), "extract the plan"); err == nil {
		t.Fatal("expected an error for an empty choice list, got nil")
	}
}
