package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures the model provider.
type Config struct {
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryPolicy

	// Timeout bounds a single call including its retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// DefaultConfig returns the Anthropic provider with the small models of
// each vendor preselected.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry:      DefaultRetryPolicy(),
		Timeout:    30 * time.Second,
	}
}

// ConfigFromEnv reads PREPWISE_ variables over DefaultConfig. When no
// provider is named explicitly the vendor keys (GEMINI_API_KEY,
// OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY) are probed in
// that order.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	explicit := os.Getenv("PREPWISE_LLM_PROVIDER")
	if explicit != "" {
		cfg.Provider = explicit
	} else if p, ok := discover(&cfg); ok {
		cfg.Provider = p
	}

	setString(&cfg.Anthropic.APIKey, "PREPWISE_ANTHROPIC_API_KEY")
	setString(&cfg.Anthropic.Model, "PREPWISE_ANTHROPIC_MODEL")
	setString(&cfg.OpenAI.APIKey, "PREPWISE_OPENAI_API_KEY")
	setString(&cfg.OpenAI.Model, "PREPWISE_OPENAI_MODEL")
	setString(&cfg.OpenAI.BaseURL, "PREPWISE_OPENAI_BASE_URL")
	setString(&cfg.Gemini.APIKey, "PREPWISE_GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "PREPWISE_GEMINI_MODEL")
	setString(&cfg.OpenRouter.APIKey, "PREPWISE_OPENROUTER_API_KEY")
	setString(&cfg.OpenRouter.Model, "PREPWISE_OPENROUTER_MODEL")
	setString(&cfg.OpenRouter.BaseURL, "PREPWISE_OPENROUTER_BASE_URL")

	if err := setDuration(&cfg.Timeout, "PREPWISE_LLM_TIMEOUT"); err != nil {
		return Config{}, err
	}
	if err := setDuration(&cfg.Retry.InitialWait, "PREPWISE_LLM_RETRY_WAIT"); err != nil {
		return Config{}, err
	}
	if err := setDuration(&cfg.Retry.MaxWait, "PREPWISE_LLM_RETRY_MAX_WAIT"); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("PREPWISE_LLM_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("PREPWISE_LLM_RETRY_ATTEMPTS: want a positive integer, got %q", v)
		}
		cfg.Retry.MaxAttempts = n
	}
	return cfg, nil
}

func discover(cfg *Config) (string, bool) {
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
		return ProviderGemini, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.OpenAI.APIKey = k
		return ProviderOpenAI, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
		return ProviderAnthropic, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.OpenRouter.APIKey = k
		return ProviderOpenRouter, true
	}
	return "", false
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case ProviderAnthropic:
		key = c.Anthropic.APIKey
	case ProviderOpenAI:
		key = c.OpenAI.APIKey
	case ProviderGemini:
		key = c.Gemini.APIKey
	case ProviderOpenRouter:
		key = c.OpenRouter.APIKey
	case ProviderMock:
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("an API key is required for the %s provider (PREPWISE_%s_API_KEY)", c.Provider, strings.ToUpper(c.Provider))
	}
	return nil
}
