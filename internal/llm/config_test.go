package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearVendorKeys(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY", "PREPWISE_LLM_PROVIDER"} {
		t.Setenv(k, "")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "sk"}}, false},
		{"openai without key", Config{Provider: ProviderOpenAI}, true},
		{"gemini with key", Config{Provider: ProviderGemini, Gemini: GeminiConfig{APIKey: "g"}}, false},
		{"openrouter without key", Config{Provider: ProviderOpenRouter}, true},
		{"mock", Config{Provider: ProviderMock}, false},
		{"unknown", Config{Provider: "llama"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigValidateNamesVariable(t *testing.T) {
	err := Config{Provider: ProviderOpenRouter}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PREPWISE_OPENROUTER_API_KEY")
}

func TestConfigFromEnvDefaults(t *testing.T) {
	clearVendorKeys(t)

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigFromEnvOverrides(t *testing.T) {
	clearVendorKeys(t)
	t.Setenv("PREPWISE_LLM_PROVIDER", "openai")
	t.Setenv("PREPWISE_OPENAI_API_KEY", "sk-test")
	t.Setenv("PREPWISE_OPENAI_MODEL", "gpt-4o")
	t.Setenv("PREPWISE_LLM_TIMEOUT", "5s")
	t.Setenv("PREPWISE_LLM_RETRY_ATTEMPTS", "5")
	t.Setenv("PREPWISE_LLM_RETRY_WAIT", "200ms")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 200*time.Millisecond, cfg.Retry.InitialWait)
	assert.NoError(t, cfg.Validate())
}

func TestConfigFromEnvDiscoversVendorKey(t *testing.T) {
	clearVendorKeys(t)
	t.Setenv("ANTHROPIC_API_KEY", "a-key")
	t.Setenv("OPENAI_API_KEY", "o-key")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "o-key", cfg.OpenAI.APIKey)
}

func TestConfigFromEnvRejectsBadValues(t *testing.T) {
	clearVendorKeys(t)
	t.Setenv("PREPWISE_LLM_TIMEOUT", "soon")
	_, err := ConfigFromEnv()
	assert.ErrorContains(t, err, "PREPWISE_LLM_TIMEOUT")

	t.Setenv("PREPWISE_LLM_TIMEOUT", "")
	t.Setenv("PREPWISE_LLM_RETRY_ATTEMPTS", "0")
	_, err = ConfigFromEnv()
	assert.ErrorContains(t, err, "PREPWISE_LLM_RETRY_ATTEMPTS")
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: ProviderMock, Timeout: time.Second}, nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())
	assert.IsType(t, &TimeoutProvider{}, p)

	p, err = NewProvider(context.Background(), Config{Provider: ProviderOpenRouter, OpenRouter: OpenRouterConfig{APIKey: "k", Model: "meta-llama/llama-3-8b"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "meta-llama/llama-3-8b", p.ModelID())

	_, err = NewProvider(context.Background(), Config{Provider: ProviderAnthropic}, nil)
	assert.ErrorContains(t, err, "initializing anthropic provider")

	_, err = NewProvider(context.Background(), Config{Provider: "llama"}, nil)
	assert.Error(t, err)
}
