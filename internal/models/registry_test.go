package models

import (
	"context"
	"errors"
	"sync"
	"testing"

	"foodgame/internal/models/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProvider struct{ name string }

func (p *staticProvider) Name() string { return p.name }

func (p *staticProvider) Complete(context.Context, []providers.Message) (string, error) {
	return "{}", nil
}

func TestGetProviderNone(t *testing.T) {
	registry := NewModelRegistry()

	for _, name := range []ProviderType{NoProvider, ""} {
		provider, err := registry.GetProvider(name, providers.Config{})
		assert.NoError(t, err)
		assert.Nil(t, provider)
	}
}

func TestGetProviderCachesInstance(t *testing.T) {
	registry := NewModelRegistry()
	builds := 0
	var mu sync.Mutex
	registry.Register("static", func(cfg providers.Config) (providers.Provider, error) {
		mu.Lock()
		defer mu.Unlock()
		builds++
		return &staticProvider{name: cfg.Model}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			provider, err := registry.GetProvider("static", providers.Config{Model: "m"})
			assert.NoError(t, err)
			assert.Equal(t, "m", provider.Name())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, builds)
}

func TestGetProviderErrors(t *testing.T) {
	registry := NewModelRegistry()

	_, err := registry.GetProvider("unknown", providers.Config{})
	assert.EqualError(t, err, "unknown provider: unknown")

	_, err = registry.GetProvider(OpenAIProvider, providers.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialize openai provider")

	boom := errors.New("boom")
	registry.Register("broken", func(providers.Config) (providers.Provider, error) { return nil, boom })
	_, err = registry.GetProvider("broken", providers.Config{})
	assert.ErrorIs(t, err, boom)
}
