// Package config loads the server configuration from a YAML file, an optional
// .env file and the environment, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"foodgame/internal/models"
	"foodgame/internal/models/providers"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the configuration file is looked up
const DefaultPath = "configs/config.yaml"

// Config is the full server configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Game      GameConfig      `yaml:"game"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig configures the HTTP listeners
type ServerConfig struct {
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	MetricsPort     int           `yaml:"metrics_port" env:"METRICS_PORT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// LLMConfig selects and configures the text generation provider
type LLMConfig struct {
	Provider    string        `yaml:"provider" env:"LLM_PROVIDER"`
	Model       string        `yaml:"model" env:"LLM_MODEL"`
	APIKey      string        `yaml:"api_key" env:"OPENAI_API_KEY"`
	BaseURL     string        `yaml:"base_url" env:"LLM_BASE_URL"`
	Deployment  string        `yaml:"deployment" env:"AZURE_OPENAI_DEPLOYMENT"`
	Temperature float64       `yaml:"temperature" env:"LLM_TEMPERATURE"`
	MaxTokens   int           `yaml:"max_tokens" env:"LLM_MAX_TOKENS"`
	Timeout     time.Duration `yaml:"timeout" env:"LLM_TIMEOUT"`
}

// GameConfig holds the game rules that may be tuned
type GameConfig struct {
	ViolationChance      float64 `yaml:"violation_chance" env:"GAME_VIOLATION_CHANCE"`
	Seed                 int64   `yaml:"seed" env:"GAME_SEED"`
	StartingMoney        float64 `yaml:"starting_money" env:"GAME_STARTING_MONEY"`
	StartingReputation   float64 `yaml:"starting_reputation" env:"GAME_STARTING_REPUTATION"`
	LeaderboardSize      int     `yaml:"leaderboard_size" env:"GAME_LEADERBOARD_SIZE"`
	MenuCacheSize        int     `yaml:"menu_cache_size" env:"GAME_MENU_CACHE_SIZE"`
	ConsequenceCacheSize int     `yaml:"consequence_cache_size" env:"GAME_CONSEQUENCE_CACHE_SIZE"`
}

// RateLimitConfig limits order generation per client
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"RATE_LIMIT_RPS"`
	Burst             int     `yaml:"burst" env:"RATE_LIMIT_BURST"`
}

// LogConfig configures logrus
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			MetricsPort:     9090,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		LLM: LLMConfig{
			Provider:    string(models.OpenAIProvider),
			Model:       "gpt-4-1106-preview",
			Temperature: 0.8,
			MaxTokens:   1024,
			Timeout:     20 * time.Second,
		},
		Game: GameConfig{
			ViolationChance:      0.3,
			StartingMoney:        models.StartingMoney,
			StartingReputation:   models.StartingReputation,
			LeaderboardSize:      10,
			MenuCacheSize:        256,
			ConsequenceCacheSize: 64,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path, then .env, then the environment. A
// missing file at either path is not an error.
func Load(path, dotenv string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every out-of-range setting at once
func (c *Config) Validate() error {
	var errs *multierror.Error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = multierror.Append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MetricsPort < 0 || c.Server.MetricsPort > 65535 {
		errs = multierror.Append(errs, fmt.Errorf("server.metrics_port %d out of range", c.Server.MetricsPort))
	}
	if c.Server.MetricsPort != 0 && c.Server.MetricsPort == c.Server.Port {
		errs = multierror.Append(errs, fmt.Errorf("server.metrics_port must differ from server.port"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("server.shutdown_timeout must be positive"))
	}

	switch models.ProviderType(c.LLM.Provider) {
	case models.OpenAIProvider, models.GitHubModelsProvider, models.AzureOpenAIProvider, models.NoProvider:
	default:
		errs = multierror.Append(errs, fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider))
	}
	if c.LLM.ProviderType() == models.AzureOpenAIProvider && (c.LLM.BaseURL == "" || c.LLM.Deployment == "") {
		errs = multierror.Append(errs, fmt.Errorf("llm.base_url and llm.deployment are required for azure_openai"))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = multierror.Append(errs, fmt.Errorf("llm.temperature %.2f out of range [0,2]", c.LLM.Temperature))
	}
	if c.LLM.MaxTokens < 0 {
		errs = multierror.Append(errs, fmt.Errorf("llm.max_tokens must not be negative"))
	}
	if c.LLM.Timeout <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("llm.timeout must be positive"))
	}

	if c.Game.ViolationChance < 0 || c.Game.ViolationChance > 1 {
		errs = multierror.Append(errs, fmt.Errorf("game.violation_chance %.2f out of range [0,1]", c.Game.ViolationChance))
	}
	if c.Game.StartingMoney < 0 {
		errs = multierror.Append(errs, fmt.Errorf("game.starting_money must not be negative"))
	}
	if c.Game.StartingReputation < 0 || c.Game.StartingReputation > 100 {
		errs = multierror.Append(errs, fmt.Errorf("game.starting_reputation %.2f out of range [0,100]", c.Game.StartingReputation))
	}
	if c.Game.LeaderboardSize <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("game.leaderboard_size must be positive"))
	}
	if c.Game.MenuCacheSize <= 0 || c.Game.ConsequenceCacheSize <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("game cache sizes must be positive"))
	}

	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		errs = multierror.Append(errs, fmt.Errorf("rate_limit values must not be negative"))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = multierror.Append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}

	return errs.ErrorOrNil()
}

// ProviderType returns the configured provider. A missing API key turns every
// provider off.
func (c LLMConfig) ProviderType() models.ProviderType {
	if c.APIKey == "" {
		return models.NoProvider
	}
	return models.ProviderType(c.Provider)
}

// ProviderConfig converts the settings for the provider constructors
func (c LLMConfig) ProviderConfig() providers.Config {
	return providers.Config{
		APIKey:      c.APIKey,
		Model:       c.Model,
		BaseURL:     c.BaseURL,
		Deployment:  c.Deployment,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	}
}
