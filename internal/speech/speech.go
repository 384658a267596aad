// Package speech turns recorded answers into text.
package speech

import (
	"context"
	"errors"

	"github.com/abhisek/prepwise/internal/apperr"
)

// Transcriber converts audio to text. Empty audio, or audio without
// speech, yields "" and no error. Only transport or API failures are
// reported, as apperr.KindGenerationFailed.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// Providers accepted by New.
const (
	ProviderNone    = "none"
	ProviderWhisper = "whisper"
	ProviderGoogle  = "google"
)

// Config selects and configures the transcriber.
type Config struct {
	Provider string

	// OpenAIKey is used by the whisper provider.
	OpenAIKey string

	// GoogleCredentialsFile is a service account key for the google
	// provider. Empty uses application default credentials.
	GoogleCredentialsFile string
}

// ErrDisabled is returned by New when no provider is configured.
var ErrDisabled = errors.New("speech-to-text is disabled")

// New builds the configured transcriber. ProviderNone and "" return
// ErrDisabled.
func New(ctx context.Context, cfg Config) (Transcriber, error) {
	switch cfg.Provider {
	case "", ProviderNone:
		return nil, ErrDisabled
	case ProviderWhisper:
		return NewWhisper(cfg.OpenAIKey, "")
	case ProviderGoogle:
		return NewGoogle(ctx, cfg.GoogleCredentialsFile)
	default:
		return nil, errors.New("unknown speech provider: " + cfg.Provider)
	}
}

func failed(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindTimeout, err, "transcription did not finish in time")
	}
	return apperr.Wrap(apperr.KindGenerationFailed, err, "transcription failed")
}
