package llm

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func System(content string) Message    { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message      { return Message{Role: RoleUser, Content: content} }
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

type Request struct {
	// Provider selects a registered adapter; empty means the client default.
	Provider string
	Model    string
	Messages []Message

	Temperature *float64
	MaxTokens   *int
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Model) == "" {
		return &ConfigurationError{Message: "model is required"}
	}
	if len(r.Messages) == 0 {
		return &ConfigurationError{Message: "at least one message is required"}
	}
	for i, m := range r.Messages {
		switch m.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return &ConfigurationError{Message: fmt.Sprintf("message %d has invalid role %q", i, m.Role)}
		}
	}
	return nil
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type Response struct {
	ID       string
	Provider string
	Model    string
	Content  string
	Finish   string
	Usage    Usage
}

// Text returns the assistant text of the response.
func (r Response) Text() string { return r.Content }
