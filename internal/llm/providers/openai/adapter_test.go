package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mendtool/mend/internal/llm"
)

func TestAdapterCompleteMapsRequestAndResponse(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		_ = json.Unmarshal(b, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "id": "chatcmpl-1",
  "model": "gpt-4o-mini",
  "choices": [{"finish_reason": "stop", "message": {"role": "assistant", "content": "fixed code"}}],
  "usage": {"prompt_tokens": 10, "completion_tokens": 4, "total_tokens": 14}
}`))
	}))
	t.Cleanup(srv.Close)

	a := New("secret", srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	temp := 0.0
	resp, err := a.Complete(ctx, llm.Request{
		Model:       "gpt-4o-mini",
		Messages:    []llm.Message{llm.System("sys"), llm.User("fix this")},
		Temperature: &temp,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text() != "fixed code" {
		t.Fatalf("text = %q", resp.Text())
	}
	if resp.Usage.TotalTokens != 14 {
		t.Fatalf("usage = %+v", resp.Usage)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotBody["model"] != "gpt-4o-mini" {
		t.Fatalf("model = %v", gotBody["model"])
	}
	if _, ok := gotBody["temperature"]; !ok {
		t.Fatalf("temperature missing from body: %v", gotBody)
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %v", gotBody["messages"])
	}
}

func TestAdapterCompleteClassifiesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key"}}`))
	}))
	t.Cleanup(srv.Close)

	a := New("bad", srv.URL)
	_, err := a.Complete(context.Background(), llm.Request{
		Model:    "gpt-4o-mini",
		Messages: []llm.Message{llm.User("hi")},
	})
	if !llm.IsAuthenticationError(err) {
		t.Fatalf("err = %v, want AuthenticationError", err)
	}
}

func TestAdapterCompleteRateLimitRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	a := New("k", srv.URL)
	_, err := a.Complete(context.Background(), llm.Request{
		Model:    "m",
		Messages: []llm.Message{llm.User("hi")},
	})
	var rl *llm.RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("err = %v, want RateLimitError", err)
	}
	if ra := rl.RetryAfter(); ra == nil || *ra != 7*time.Second {
		t.Fatalf("retry-after = %v", ra)
	}
}

func TestAdapterCompleteTransportFailure(t *testing.T) {
	a := New("k", "http://127.0.0.1:0")
	_, err := a.Complete(context.Background(), llm.Request{
		Model:    "m",
		Messages: []llm.Message{llm.User("hi")},
	})
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if got := llm.ClassifyReason(err); got != "transport" && got != "timeout" {
		t.Fatalf("reason = %q", got)
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewFromEnv(); err == nil {
		t.Fatalf("expected error without OPENAI_API_KEY")
	}
	t.Setenv("OPENAI_API_KEY", "k")
	a, err := NewFromEnv()
	if err != nil {
		t.Fatalf("NewFromEnv: %v", err)
	}
	if a.BaseURL != "https://api.openai.com" {
		t.Fatalf("base = %q", a.BaseURL)
	}
}
