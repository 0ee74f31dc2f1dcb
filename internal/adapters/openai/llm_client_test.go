package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-triage/internal/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*OpenAIClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	client := openai.NewClientWithConfig(cfg)

	return NewOpenAIClient(client, "gpt-4", 1000, 0.1, 0.9, 5*time.Second, zap.NewNop()), srv
}

func TestCompleteReturnsText(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "Work"},
				"finish_reason": "stop"
			}]
		}`))
	})
	defer srv.Close()

	out, err := client.Complete(context.Background(), "Classify this email.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Work" {
		t.Errorf("Complete() = %q, want Work", out)
	}
}

func TestCompleteServerErrorIsTransient(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusInternalServerError)
	})
	defer srv.Close()

	_, err := client.Complete(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected an error for a 500 response")
	}
	if !core.IsTransient(err) {
		t.Errorf("a 500 should be transient, got %v", err)
	}
}

func TestCompleteEmptyChoicesIsPermanent(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "chatcmpl-2", "object": "chat.completion", "choices": []}`))
	})
	defer srv.Close()

	_, err := client.Complete(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected an error for an empty choice list")
	}
	if core.IsTransient(err) {
		t.Errorf("an empty choice list must not be retried, got %v", err)
	}
}

func TestCompleteBlankContentIsPermanent(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-3",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "   "},
				"finish_reason": "stop"
			}]
		}`))
	})
	defer srv.Close()

	_, err := client.Complete(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected an error for a blank completion")
	}
	if core.IsTransient(err) {
		t.Errorf("a blank completion must not be retried, got %v", err)
	}
}
