// Package config assembles runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/prepwise/internal/interview"
	"github.com/abhisek/prepwise/internal/llm"
	"github.com/abhisek/prepwise/internal/logging"
	"github.com/abhisek/prepwise/internal/speech"
	"github.com/abhisek/prepwise/internal/store"
)

// Defaults for settings without an environment override.
const (
	DefaultLogMode   = logging.ModeProduction
	DefaultLogLevel  = "warn"
	DefaultAITimeout = 60 * time.Second
)

// Config holds every setting the CLI needs to wire the core.
type Config struct {
	Store store.Config

	// RedisAddr enables event publication when set.
	RedisAddr string

	LogMode  string
	LogLevel string

	Speech speech.Config

	// AITimeout bounds one interactive AI operation end to end.
	AITimeout time.Duration

	// SummaryTimeout bounds the overall summary generated when the last
	// round completes.
	SummaryTimeout time.Duration

	LLM llm.Config
}

// Load reads the optional dotenv files (".env" when none are given) and
// then the PREPWISE_ environment. Variables already set in the process
// win over dotenv values.
func Load(files ...string) (*Config, error) {
	if err := loadDotenv(files...); err != nil {
		return nil, err
	}

	cfg := &Config{
		Store: store.Config{
			Driver:        getenvDefault("PREPWISE_STORE", store.DriverSQLite),
			Path:          os.Getenv("PREPWISE_DB"),
			MongoURI:      os.Getenv("PREPWISE_MONGO_URI"),
			MongoDatabase: getenvDefault("PREPWISE_MONGO_DB", store.DefaultMongoDatabase),
		},
		RedisAddr: os.Getenv("PREPWISE_REDIS_ADDR"),
		LogMode:   getenvDefault("PREPWISE_LOG_MODE", DefaultLogMode),
		LogLevel:  getenvDefault("PREPWISE_LOG_LEVEL", DefaultLogLevel),
		Speech: speech.Config{
			Provider:              getenvDefault("PREPWISE_SPEECH_PROVIDER", speech.ProviderNone),
			OpenAIKey:             firstNonEmpty(os.Getenv("PREPWISE_SPEECH_OPENAI_API_KEY"), os.Getenv("PREPWISE_OPENAI_API_KEY"), os.Getenv("OPENAI_API_KEY")),
			GoogleCredentialsFile: firstNonEmpty(os.Getenv("PREPWISE_GOOGLE_CREDENTIALS"), os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
		},
	}

	var err error
	if cfg.AITimeout, err = getDuration("PREPWISE_AI_TIMEOUT", DefaultAITimeout); err != nil {
		return nil, err
	}
	if cfg.SummaryTimeout, err = getDuration("PREPWISE_SUMMARY_TIMEOUT", interview.DefaultSummaryTimeout); err != nil {
		return nil, err
	}
	if cfg.LLM, err = llm.ConfigFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks setting combinations. The model provider is checked
// separately by the commands that need it.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case store.DriverSQLite:
	case store.DriverMongo:
		if c.Store.MongoURI == "" {
			errs = append(errs, errors.New("PREPWISE_MONGO_URI is required for the mongo store"))
		}
	default:
		errs = append(errs, fmt.Errorf("PREPWISE_STORE: unknown driver %q (want sqlite or mongo)", c.Store.Driver))
	}

	switch c.Speech.Provider {
	case speech.ProviderNone, speech.ProviderGoogle:
	case speech.ProviderWhisper:
		if c.Speech.OpenAIKey == "" {
			errs = append(errs, errors.New("an OpenAI API key is required for whisper transcription (PREPWISE_SPEECH_OPENAI_API_KEY)"))
		}
	default:
		errs = append(errs, fmt.Errorf("PREPWISE_SPEECH_PROVIDER: unknown provider %q (want none, whisper or google)", c.Speech.Provider))
	}

	if !logging.ValidMode(c.LogMode) {
		errs = append(errs, fmt.Errorf("PREPWISE_LOG_MODE: unknown mode %q", c.LogMode))
	}
	if c.AITimeout <= 0 {
		errs = append(errs, errors.New("PREPWISE_AI_TIMEOUT must be positive"))
	}
	if c.SummaryTimeout <= 0 {
		errs = append(errs, errors.New("PREPWISE_SUMMARY_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

func loadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func getenvDefault(k, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return fallback
}

func getDuration(k string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a valid duration: %w", k, v, err)
	}
	return d, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
