package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mendtool/mend/internal/llm"
	"github.com/mendtool/mend/internal/llm/providers/anthropic"
	"github.com/mendtool/mend/internal/llm/providers/openai"
	"github.com/mendtool/mend/internal/llm/providers/openaicompat"
)

// providerDefaults carries the conventional key variable and, for
// OpenAI-compatible providers, the endpoint base.
var providerDefaults = map[string]struct {
	keyEnv  string
	baseURL string
}{
	"openai":    {keyEnv: "OPENAI_API_KEY"},
	"anthropic": {keyEnv: "ANTHROPIC_API_KEY"},
	"deepseek":  {keyEnv: "DEEPSEEK_API_KEY", baseURL: "https://api.deepseek.com"},
	"dashscope": {keyEnv: "DASHSCOPE_API_KEY", baseURL: "https://dashscope.aliyuncs.com/compatible-mode"},
}

// NewOracleClient builds the oracle client for the configured provider. The
// adapter is injected here; nothing downstream branches on provider names.
func NewOracleClient(agent AgentConfig) (*llm.Client, error) {
	prov := strings.ToLower(strings.TrimSpace(agent.Provider))
	def, ok := providerDefaults[prov]
	if !ok {
		return nil, &llm.ConfigurationError{Message: fmt.Sprintf("unsupported provider: %q", agent.Provider)}
	}

	keyEnv := strings.TrimSpace(agent.APIKeyEnv)
	if keyEnv == "" {
		keyEnv = def.keyEnv
	}
	apiKey := strings.TrimSpace(os.Getenv(keyEnv))
	if apiKey == "" {
		return nil, &llm.ConfigurationError{Message: fmt.Sprintf("provider %s requires %s", prov, keyEnv)}
	}

	baseURL := strings.TrimSpace(agent.BaseURL)
	if baseURL == "" {
		baseURL = def.baseURL
	}

	var adapter llm.ProviderAdapter
	switch prov {
	case "openai":
		adapter = openai.New(apiKey, baseURL)
	case "anthropic":
		adapter = anthropic.New(apiKey, baseURL)
	default:
		adapter = openaicompat.NewAdapter(openaicompat.Config{
			Provider: prov,
			APIKey:   apiKey,
			BaseURL:  baseURL,
		})
	}

	c := llm.NewClient()
	c.Register(adapter)
	c.SetDefaultProvider(prov)
	c.SetDefaultModel(agent.Model)
	c.SetTemperature(agent.Temperature)
	return c, nil
}
