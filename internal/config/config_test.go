package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/prepwise/internal/interview"
	"github.com/abhisek/prepwise/internal/speech"
	"github.com/abhisek/prepwise/internal/store"
)

// clearEnv blanks every variable Load reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PREPWISE_STORE", "PREPWISE_DB", "PREPWISE_MONGO_URI", "PREPWISE_MONGO_DB",
		"PREPWISE_REDIS_ADDR", "PREPWISE_LOG_MODE", "PREPWISE_LOG_LEVEL",
		"PREPWISE_SPEECH_PROVIDER", "PREPWISE_SPEECH_OPENAI_API_KEY", "PREPWISE_OPENAI_API_KEY",
		"OPENAI_API_KEY", "PREPWISE_GOOGLE_CREDENTIALS", "GOOGLE_APPLICATION_CREDENTIALS",
		"PREPWISE_AI_TIMEOUT", "PREPWISE_SUMMARY_TIMEOUT", "PREPWISE_LLM_PROVIDER",
		"GEMINI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func missing(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missing(t))
	require.NoError(t, err)

	assert.Equal(t, store.DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, store.DefaultMongoDatabase, cfg.Store.MongoDatabase)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, DefaultLogMode, cfg.LogMode)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, speech.ProviderNone, cfg.Speech.Provider)
	assert.Equal(t, DefaultAITimeout, cfg.AITimeout)
	assert.Equal(t, interview.DefaultSummaryTimeout, cfg.SummaryTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PREPWISE_STORE", "mongo")
	t.Setenv("PREPWISE_MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("PREPWISE_REDIS_ADDR", "localhost:6379")
	t.Setenv("PREPWISE_SPEECH_PROVIDER", "whisper")
	t.Setenv("PREPWISE_OPENAI_API_KEY", "sk-shared")
	t.Setenv("PREPWISE_AI_TIMEOUT", "15s")
	t.Setenv("PREPWISE_SUMMARY_TIMEOUT", "2m")

	cfg, err := Load(missing(t))
	require.NoError(t, err)

	assert.Equal(t, store.DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Store.MongoURI)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "sk-shared", cfg.Speech.OpenAIKey, "speech falls back to the model key")
	assert.Equal(t, 15*time.Second, cfg.AITimeout)
	assert.Equal(t, 2*time.Minute, cfg.SummaryTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("PREPWISE_AI_TIMEOUT", "soon")

	_, err := Load(missing(t))
	assert.ErrorContains(t, err, "PREPWISE_AI_TIMEOUT")
}

func TestLoadDotenv(t *testing.T) {
	clearEnv(t)
	const key = "PREPWISE_TEST_DOTENV_ONLY"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\nPREPWISE_LOG_MODE=development\n"), 0o600))
	// Already set in the process, so the file value is ignored.
	t.Setenv("PREPWISE_LOG_MODE", "silent")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", os.Getenv(key))
	assert.Equal(t, "silent", cfg.LogMode)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Store:          store.Config{Driver: store.DriverSQLite},
			LogMode:        "production",
			Speech:         speech.Config{Provider: speech.ProviderNone},
			AITimeout:      time.Second,
			SummaryTimeout: time.Second,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"mongo without uri", func(c *Config) { c.Store.Driver = store.DriverMongo }, "PREPWISE_MONGO_URI"},
		{"unknown store", func(c *Config) { c.Store.Driver = "postgres" }, "unknown driver"},
		{"whisper without key", func(c *Config) { c.Speech.Provider = speech.ProviderWhisper }, "whisper"},
		{"unknown speech", func(c *Config) { c.Speech.Provider = "siri" }, "PREPWISE_SPEECH_PROVIDER"},
		{"bad log mode", func(c *Config) { c.LogMode = "loud" }, "PREPWISE_LOG_MODE"},
		{"zero ai timeout", func(c *Config) { c.AITimeout = 0 }, "PREPWISE_AI_TIMEOUT"},
		{"negative summary timeout", func(c *Config) { c.SummaryTimeout = -time.Second }, "PREPWISE_SUMMARY_TIMEOUT"},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}

	c := valid()
	c.Store.Driver = "postgres"
	c.LogMode = "loud"
	err := c.Validate()
	assert.ErrorContains(t, err, "unknown driver")
	assert.ErrorContains(t, err, "PREPWISE_LOG_MODE")
}
