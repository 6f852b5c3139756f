package models

import (
	"fmt"
	"sync"

	"foodgame/internal/models/providers"
)

// ProviderType represents the type of LLM provider
type ProviderType string

const (
	OpenAIProvider       ProviderType = "openai"
	GitHubModelsProvider ProviderType = "github_models"
	AzureOpenAIProvider  ProviderType = "azure_openai"
	NoProvider           ProviderType = "none"
)

// ProviderFactory builds a provider from its settings
type ProviderFactory func(cfg providers.Config) (providers.Provider, error)

// ModelRegistry manages the available LLM providers
type ModelRegistry struct {
	factories map[ProviderType]ProviderFactory
	instances map[ProviderType]providers.Provider
	mu        sync.RWMutex
}

// NewModelRegistry creates a registry with the built-in providers
func NewModelRegistry() *ModelRegistry {
	r := &ModelRegistry{
		factories: make(map[ProviderType]ProviderFactory),
		instances: make(map[ProviderType]providers.Provider),
	}
	r.Register(OpenAIProvider, func(cfg providers.Config) (providers.Provider, error) {
		return providers.NewOpenAIProvider(cfg)
	})
	r.Register(GitHubModelsProvider, func(cfg providers.Config) (providers.Provider, error) {
		return providers.NewGitHubModelsProvider(cfg)
	})
	r.Register(AzureOpenAIProvider, func(cfg providers.Config) (providers.Provider, error) {
		return providers.NewAzureOpenAIProvider(cfg)
	})
	return r
}

// Register adds or replaces a provider factory
func (r *ModelRegistry) Register(name ProviderType, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
	delete(r.instances, name)
}

// GetProvider returns an initialized provider, or nil for NoProvider
func (r *ModelRegistry) GetProvider(name ProviderType, cfg providers.Config) (providers.Provider, error) {
	if name == NoProvider || name == "" {
		return nil, nil
	}

	r.mu.RLock()
	provider, exists := r.instances[name]
	r.mu.RUnlock()
	if exists {
		return provider, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another caller may have initialized it while we waited
	if provider, exists := r.instances[name]; exists {
		return provider, nil
	}

	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}

	provider, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize %s provider: %w", name, err)
	}

	r.instances[name] = provider
	return provider, nil
}
