// Package anthropic is the messages-API adapter for api.anthropic.com.
package anthropic

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

const defaultMaxTokens = 4096

type Adapter struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewFromEnv() (*Adapter, error) {
	key := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if key == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	return New(key, os.Getenv("ANTHROPIC_BASE_URL")), nil
}

func New(apiKey, baseURL string) *Adapter {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = "https://api.anthropic.com"
	}
	return &Adapter{
		APIKey:  strings.TrimSpace(apiKey),
		BaseURL: base,
		// Rely on request context deadlines, not a client-level timeout.
		Client: &http.Client{Timeout: 0},
	}
}

func (a *Adapter) Name() string { return "anthropic" }

func (a *Adapter) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	if a.Client == nil {
		a.Client = &http.Client{Timeout: 0}
	}

	system, messages := splitMessages(req.Messages)
	maxTokens := defaultMaxTokens
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		maxTokens = *req.MaxTokens
	}

	body := map[string]any{
		"model":      req.Model,
		"max_tokens": maxTokens,
		"messages":   messages,
	}
	if strings.TrimSpace(system) != "" {
		body["system"] = system
	}
	if req.Temperature != nil {
		body["temperature"] = *req.Temperature
	}

	b, err := json.Marshal(body)
	if err != nil {
		return llm.Response{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/v1/messages", bytes.NewReader(b))
	if err != nil {
		return llm.Response{}, llm.WrapTransportError(a.Name(), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.Client.Do(httpReq)
	if err != nil {
		return llm.Response{}, llm.WrapTransportError(a.Name(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	rawBytes, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return llm.Response{}, llm.WrapTransportError(a.Name(), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ra := llm.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
		msg := fmt.Sprintf("messages.create failed: %s", strings.TrimSpace(string(rawBytes)))
		return llm.Response{}, llm.ErrorFromHTTPStatus(a.Name(), resp.StatusCode, msg, ra)
	}

	return parseMessagesResponse(a.Name(), req.Model, rawBytes)
}

// splitMessages separates leading system instructions from the turn list;
// the messages API carries system text as a top-level field.
func splitMessages(messages []llm.Message) (string, []map[string]string) {
	var system []string
	turns := make([]map[string]string, 0, len(messages))
	for _, m := range messages {
		if m.Role == llm.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, map[string]string{
			"role":    string(m.Role),
			"content": m.Content,
		})
	}
	return strings.Join(system, "\n\n"), turns
}

func parseMessagesResponse(provider, model string, rawBytes []byte) (llm.Response, error) {
	var doc struct {
		ID         string `json:"id"`
		Model      string `json:"model"`
		StopReason string `json:"stop_reason"`
		Content    []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(rawBytes, &doc); err != nil {
		return llm.Response{}, llm.ErrorFromHTTPStatus(provider, 0, fmt.Sprintf("decode messages response: %v", err), nil)
	}

	var text strings.Builder
	for _, block := range doc.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	out := llm.Response{
		ID:       doc.ID,
		Provider: provider,
		Model:    doc.Model,
		Content:  text.String(),
		Finish:   doc.StopReason,
		Usage: llm.Usage{
			InputTokens:  doc.Usage.InputTokens,
			OutputTokens: doc.Usage.OutputTokens,
			TotalTokens:  doc.Usage.InputTokens + doc.Usage.OutputTokens,
		},
	}
	if out.Model == "" {
		out.Model = model
	}
	return out, nil
}
