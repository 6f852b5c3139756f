package providers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const githubModelsBaseURL = "https://models.inference.ai.azure.com"

// LangChainProvider implements the Provider interface on top of a langchaingo model
type LangChainProvider struct {
	name        string
	model       llms.Model
	temperature float64
	maxTokens   int
}

// NewLangChainProvider wraps an already constructed langchaingo model
func NewLangChainProvider(name string, model llms.Model, cfg Config) *LangChainProvider {
	return &LangChainProvider{
		name:        name,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// NewOpenAIProvider creates a provider backed by the OpenAI API
func NewOpenAIProvider(cfg Config) (*LangChainProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	return NewLangChainProvider("openai", client, cfg), nil
}

// NewGitHubModelsProvider creates a provider for GitHub Models, which speaks the OpenAI API
func NewGitHubModelsProvider(cfg Config) (*LangChainProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GitHub token is required for GitHub Models")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = githubModelsBaseURL
	}

	client, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithBaseURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub Models client: %w", err)
	}
	return NewLangChainProvider("github_models", client, cfg), nil
}

// Name returns the provider name
func (p *LangChainProvider) Name() string {
	return p.name
}

// Complete sends the conversation in JSON mode and returns the first choice
func (p *LangChainProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	content := make([]llms.MessageContent, len(messages))
	for i, msg := range messages {
		var msgType llms.ChatMessageType
		switch msg.Role {
		case "system":
			msgType = llms.ChatMessageTypeSystem
		case "assistant":
			msgType = llms.ChatMessageTypeAI
		case "user":
			msgType = llms.ChatMessageTypeHuman
		default:
			return "", fmt.Errorf("unsupported message role: %s", msg.Role)
		}
		content[i] = llms.TextParts(msgType, msg.Content)
	}

	opts := []llms.CallOption{llms.WithJSONMode()}
	if p.temperature > 0 {
		opts = append(opts, llms.WithTemperature(p.temperature))
	}
	if p.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(p.maxTokens))
	}

	response, err := p.model.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", p.name, err)
	}
	if response == nil || len(response.Choices) == 0 || response.Choices[0].Content == "" {
		return "", fmt.Errorf("%s: %w", p.name, ErrEmptyCompletion)
	}
	return response.Choices[0].Content, nil
}
