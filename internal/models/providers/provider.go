package providers

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when a provider answers with no content
var ErrEmptyCompletion = errors.New("empty completion")

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// System builds a system message
func System(content string) Message {
	return Message{Role: "system", Content: content}
}

// User builds a user message
func User(content string) Message {
	return Message{Role: "user", Content: content}
}

// Provider is a text-generation backend asked for a single JSON object per call
type Provider interface {
	Name() string
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Config holds the settings shared by all providers
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Deployment  string
	Temperature float64
	MaxTokens   int
}
