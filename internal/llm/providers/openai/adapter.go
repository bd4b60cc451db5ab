// Package openai is the chat-completions adapter for api.openai.com.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mendtool/mend/internal/llm"
)

type Adapter struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewFromEnv() (*Adapter, error) {
	key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if key == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	return New(key, os.Getenv("OPENAI_BASE_URL")), nil
}

func New(apiKey, baseURL string) *Adapter {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = "https://api.openai.com"
	}
	return &Adapter{
		APIKey:  strings.TrimSpace(apiKey),
		BaseURL: base,
		// Rely on request context deadlines, not a client-level timeout.
		Client: &http.Client{Timeout: 0},
	}
}

func (a *Adapter) Name() string { return "openai" }

func (a *Adapter) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	if a.Client == nil {
		a.Client = &http.Client{Timeout: 0}
	}

	body := map[string]any{
		"model":    req.Model,
		"messages": toChatMessages(req.Messages),
	}
	if req.Temperature != nil {
		body["temperature"] = *req.Temperature
	}
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		body["max_tokens"] = *req.MaxTokens
	}

	b, err := json.Marshal(body)
	if err != nil {
		return llm.Response{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/v1/chat/completions", bytes.NewReader(b))
	if err != nil {
		return llm.Response{}, llm.WrapTransportError(a.Name(), err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.Client.Do(httpReq)
	if err != nil {
		return llm.Response{}, llm.WrapTransportError(a.Name(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	return ParseChatCompletionsResponse(a.Name(), req.Model, resp)
}

func toChatMessages(messages []llm.Message) []map[string]string {
	out := make([]map[string]string, 0, len(messages))
	for _, m := range messages {
		out = append(out, map[string]string{
			"role":    string(m.Role),
			"content": m.Content,
		})
	}
	return out
}

// ParseChatCompletionsResponse decodes an OpenAI-shaped chat.completions
// response. Shared with the openaicompat adapter, which speaks the same wire
// format against other base URLs.
func ParseChatCompletionsResponse(provider, model string, resp *http.Response) (llm.Response, error) {
	rawBytes, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return llm.Response{}, llm.WrapTransportError(provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ra := llm.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
		msg := fmt.Sprintf("chat.completions failed: %s", strings.TrimSpace(string(rawBytes)))
		return llm.Response{}, llm.ErrorFromHTTPStatus(provider, resp.StatusCode, msg, ra)
	}

	var doc struct {
		ID      string `json:"id"`
		Model   string `json:"model"`
		Choices []struct {
			FinishReason string `json:"finish_reason"`
			Message      struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(rawBytes, &doc); err != nil {
		return llm.Response{}, llm.ErrorFromHTTPStatus(provider, resp.StatusCode, fmt.Sprintf("decode chat.completions response: %v", err), nil)
	}

	out := llm.Response{
		ID:       doc.ID,
		Provider: provider,
		Model:    doc.Model,
		Usage: llm.Usage{
			InputTokens:  doc.Usage.PromptTokens,
			OutputTokens: doc.Usage.CompletionTokens,
			TotalTokens:  doc.Usage.TotalTokens,
		},
	}
	if out.Model == "" {
		out.Model = model
	}
	if len(doc.Choices) > 0 {
		out.Content = doc.Choices[0].Message.Content
		out.Finish = doc.Choices[0].FinishReason
	}
	return out, nil
}
