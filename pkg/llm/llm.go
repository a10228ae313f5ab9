package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Client interface {
	Chat(ctx context.Context, request ChatRequest) (*ChatResponse, error)
}

type Message struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

type ChatRequest struct {
	Messages      []Message       `json:"messages" yaml:"messages"`
	Model         string          `json:"model" yaml:"model"`
	Format        json.RawMessage `json:"format,omitempty" yaml:"format,omitempty"` // JSON schema constraining the reply
	Options       map[string]any  `json:"options,omitempty" yaml:"options,omitempty"`
	MaxRetries    int             `json:"maxRetries" yaml:"maxRetries"`
	RetryCooldown time.Duration   `json:"retryCooldown" yaml:"retryCooldown"`
}

type ChatResponse struct {
	Content       string        `json:"content" yaml:"content"`
	Model         string        `json:"model" yaml:"model"`
	DoneReason    string        `json:"doneReason,omitempty" yaml:"doneReason,omitempty"`
	TotalDuration time.Duration `json:"totalDuration,omitempty" yaml:"totalDuration,omitempty"`
}

// New returns the client for the named provider.
func New(provider, baseURL, apiKey string, timeout time.Duration) (Client, error) {
	switch provider {
	case "", ProviderOllama:
		return NewOllama(baseURL, apiKey, timeout), nil
	case ProviderOpenAI:
		return NewOpenAI(baseURL, apiKey, timeout), nil
	default:
		return nil, errors.Errorf("unknown llm provider %q", provider)
	}
}
