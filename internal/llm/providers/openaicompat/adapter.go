// Package openaicompat adapts any endpoint speaking the OpenAI
// chat-completions wire format under its own base URL. DeepSeek and DashScope
// are served this way.
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mendtool/mend/internal/llm"
	"github.com/mendtool/mend/internal/llm/providers/openai"
)

type Config struct {
	// Provider is the adapter's registered name, e.g. "deepseek".
	Provider string
	APIKey   string
	BaseURL  string
	// Path defaults to /v1/chat/completions.
	Path string
	// ExtraHeaders are set verbatim on every request.
	ExtraHeaders map[string]string
}

type Adapter struct {
	cfg    Config
	client *http.Client
}

func NewAdapter(cfg Config) *Adapter {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if strings.TrimSpace(cfg.Path) == "" {
		cfg.Path = "/v1/chat/completions"
	}
	return &Adapter{
		cfg:    cfg,
		client: &http.Client{Timeout: 0},
	}
}

func (a *Adapter) Name() string { return a.cfg.Provider }

func (a *Adapter) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	body := map[string]any{
		"model":    req.Model,
		"messages": toMessages(req.Messages),
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

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+a.cfg.Path, bytes.NewReader(b))
	if err != nil {
		return llm.Response{}, llm.WrapTransportError(a.cfg.Provider, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range a.cfg.ExtraHeaders {
		httpReq.Header.Set(k, v)
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return llm.Response{}, llm.WrapTransportError(a.cfg.Provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return openai.ParseChatCompletionsResponse(a.cfg.Provider, req.Model, resp)
}

func toMessages(messages []llm.Message) []map[string]string {
	out := make([]map[string]string, 0, len(messages))
	for _, m := range messages {
		out = append(out, map[string]string{
			"role":    string(m.Role),
			"content": m.Content,
		})
	}
	return out
}
