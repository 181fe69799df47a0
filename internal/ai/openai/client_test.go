package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/resume-sieve/internal/ai"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestServer(t *testing.T, status int, body string, seen *chatRequest) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if seen != nil {
			if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestGenerator(t *testing.T, url string) *Generator {
	t.Helper()

	g, err := NewGenerator(Config{APIKey: "test-key", BaseURL: url, Model: "test-model", Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	return g
}

func TestGenerator_GenerateContent(t *testing.T) {
	var seen chatRequest
	server := newTestServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"model": "test-model",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": " {\"fullName\": \"Ann\"} "}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
	}`, &seen)

	g := newTestGenerator(t, server.URL)

	output, err := g.GenerateContent(context.Background(), "resume text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output != `{"fullName": "Ann"}` {
		t.Fatalf("unexpected output: %q", output)
	}

	if seen.Model != "test-model" {
		t.Fatalf("unexpected model: %s", seen.Model)
	}
	if len(seen.Messages) != 2 || seen.Messages[0].Role != "system" || seen.Messages[1].Content != "resume text" {
		t.Fatalf("unexpected messages: %+v", seen.Messages)
	}
	if g.Provider() != ProviderName || g.Model() != "test-model" {
		t.Fatalf("unexpected identity: %s/%s", g.Provider(), g.Model())
	}
}

func TestGenerator_ServerOverloadIsTransient(t *testing.T) {
	server := newTestServer(t, http.StatusServiceUnavailable,
		`{"error": {"message": "The server is overloaded", "type": "server_error"}}`, nil)

	_, err := newTestGenerator(t, server.URL).GenerateContent(context.Background(), "p")
	if err == nil {
		t.Fatal("expected error")
	}
	if !ai.IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestGenerator_AuthErrorIsPermanent(t *testing.T) {
	server := newTestServer(t, http.StatusUnauthorized,
		`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`, nil)

	_, err := newTestGenerator(t, server.URL).GenerateContent(context.Background(), "p")
	if err == nil {
		t.Fatal("expected error")
	}
	if ai.IsTransient(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}

func TestGenerator_NoChoices(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{"id": "x", "object": "chat.completion", "choices": []}`, nil)

	if _, err := newTestGenerator(t, server.URL).GenerateContent(context.Background(), "p"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestNewGenerator_RequiresKey(t *testing.T) {
	if _, err := NewGenerator(Config{APIKey: "  "}); err == nil {
		t.Fatal("expected error for missing key")
	}
}
