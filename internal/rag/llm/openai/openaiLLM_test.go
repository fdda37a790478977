package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akolanti/DermaRAG/internal/rag/llm"
)

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(Settings{Model: "m"}); err == nil {
		t.Error("expected error without api key")
	}
	if _, err := NewClient(Settings{APIKey: "k"}); err == nil {
		t.Error("expected error without model")
	}
}

func completionServer(t *testing.T, content string, gotPrompt *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.Unmarshal(body, &req)
		if len(req.Messages) > 0 {
			*gotPrompt = req.Messages[len(req.Messages)-1].Content
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestGenerate_AgainstCompatibleServer(t *testing.T) {
	var gotPrompt string
	srv := completionServer(t, "Answer: apply emollient", &gotPrompt)
	defer srv.Close()

	p, err := NewClient(Settings{APIKey: "k", Model: "test-model", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	out, err := p.Generate(context.Background(), "Question: dry skin?")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "Answer: apply emollient" {
		t.Errorf("Generate = %q", out)
	}
	if !strings.Contains(gotPrompt, "dry skin") {
		t.Errorf("prompt not forwarded, got %q", gotPrompt)
	}
}

func TestGenerate_EmptyCompletion(t *testing.T) {
	var gotPrompt string
	srv := completionServer(t, "", &gotPrompt)
	defer srv.Close()

	p, _ := NewClient(Settings{APIKey: "k", Model: "test-model", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if _, err := p.Generate(context.Background(), "q"); !errors.Is(err, llm.ErrEmptyCompletion) {
		t.Errorf("expected ErrEmptyCompletion, got %v", err)
	}
}
