// Package config loads and validates the mend run configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

type AgentConfig struct {
	// Provider: openai | anthropic | deepseek | dashscope.
	Provider    string  `json:"provider" yaml:"provider"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	MaxRetry    int     `json:"max_retry" yaml:"max_retry"`
	// APIKeyEnv overrides the provider's conventional key variable.
	APIKeyEnv string `json:"api_key_env,omitempty" yaml:"api_key_env,omitempty"`
	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

type WorkspaceConfig struct {
	Path           string `json:"path" yaml:"path"`
	EntryFile      string `json:"entry_file" yaml:"entry_file"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"`
	Interpreter    string `json:"interpreter" yaml:"interpreter"`
}

type File struct {
	Agent     AgentConfig     `json:"agent" yaml:"agent"`
	Workspace WorkspaceConfig `json:"workspace" yaml:"workspace"`
}

func Default() *File {
	return &File{
		Agent: AgentConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0,
			MaxRetry:    5,
		},
		Workspace: WorkspaceConfig{
			Path:           "workspace",
			EntryFile:      "main.py",
			TimeoutSeconds: 30,
			Interpreter:    "python3",
		},
	}
}

// Load reads a YAML config file, applies defaults for absent fields, and
// validates the result against the embedded schema. A missing or invalid
// config is a fatal startup condition.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*File, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults restores defaults that explicit empty values wiped out.
func (f *File) applyDefaults() {
	d := Default()
	if strings.TrimSpace(f.Agent.Provider) == "" {
		f.Agent.Provider = d.Agent.Provider
	}
	f.Agent.Provider = strings.ToLower(strings.TrimSpace(f.Agent.Provider))
	if strings.TrimSpace(f.Agent.Model) == "" {
		f.Agent.Model = d.Agent.Model
	}
	if strings.TrimSpace(f.Workspace.Path) == "" {
		f.Workspace.Path = d.Workspace.Path
	}
	if strings.TrimSpace(f.Workspace.EntryFile) == "" {
		f.Workspace.EntryFile = d.Workspace.EntryFile
	}
	if f.Workspace.TimeoutSeconds == 0 {
		f.Workspace.TimeoutSeconds = d.Workspace.TimeoutSeconds
	}
	if strings.TrimSpace(f.Workspace.Interpreter) == "" {
		f.Workspace.Interpreter = d.Workspace.Interpreter
	}
}

const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "agent": {
      "type": "object",
      "properties": {
        "provider": {"enum": ["openai", "anthropic", "deepseek", "dashscope"]},
        "model": {"type": "string", "minLength": 1},
        "temperature": {"type": "number", "minimum": 0, "maximum": 2},
        "max_retry": {"type": "integer", "minimum": 0},
        "api_key_env": {"type": "string"},
        "base_url": {"type": "string"}
      }
    },
    "workspace": {
      "type": "object",
      "properties": {
        "path": {"type": "string", "minLength": 1},
        "entry_file": {"type": "string", "minLength": 1},
        "timeout_seconds": {"type": "integer", "minimum": 1},
        "interpreter": {"type": "string", "minLength": 1}
      }
    }
  }
}`

var schema = jsonschema.MustCompileString("mend-config.json", schemaJSON)

// Validate checks the effective configuration document against the schema.
func (f *File) Validate() error {
	// Round-trip through JSON so the schema library sees JSON-typed values.
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
