// Package llm is the oracle boundary: a provider-agnostic completion client
// with adapters registered by configuration. One blocking round trip per call,
// no streaming, no cross-call memory.
package llm

import (
	"context"
	"fmt"
	"strings"
)

type ProviderAdapter interface {
	Name() string
	Complete(ctx context.Context, req Request) (Response, error)
}

type Client struct {
	providers       map[string]ProviderAdapter
	defaultProvider string
	defaultModel    string
	temperature     *float64
}

func NewClient() *Client {
	return &Client{providers: map[string]ProviderAdapter{}}
}

func (c *Client) Register(adapter ProviderAdapter) {
	if c.providers == nil {
		c.providers = map[string]ProviderAdapter{}
	}
	c.providers[adapter.Name()] = adapter
	if c.defaultProvider == "" {
		c.defaultProvider = adapter.Name()
	}
}

func (c *Client) SetDefaultProvider(name string) {
	c.defaultProvider = normalizeProviderName(name)
}

func (c *Client) SetDefaultModel(model string) {
	c.defaultModel = strings.TrimSpace(model)
}

func (c *Client) SetTemperature(t float64) {
	c.temperature = &t
}

func (c *Client) ProviderNames() []string {
	if c == nil || len(c.providers) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.providers))
	for k := range c.providers {
		out = append(out, k)
	}
	return out
}

func (c *Client) Complete(ctx context.Context, req Request) (Response, error) {
	if req.Model == "" {
		req.Model = c.defaultModel
	}
	if req.Temperature == nil {
		req.Temperature = c.temperature
	}
	if err := req.Validate(); err != nil {
		return Response{}, err
	}
	prov := req.Provider
	if prov == "" {
		prov = c.defaultProvider
	}
	if prov == "" {
		return Response{}, &ConfigurationError{Message: "no provider specified and no default provider configured"}
	}
	prov = normalizeProviderName(prov)
	adapter, ok := c.providers[prov]
	if !ok {
		return Response{}, &ConfigurationError{Message: fmt.Sprintf("unknown provider: %s", prov)}
	}
	req.Provider = prov
	return adapter.Complete(ctx, req)
}

// Invoke is the single oracle operation the repair stages use: system
// instructions plus one user message, answered with plain text.
func (c *Client) Invoke(ctx context.Context, instructions, message string) (string, error) {
	resp, err := c.Complete(ctx, Request{
		Messages: []Message{System(instructions), User(message)},
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func normalizeProviderName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
