package speech

import (
	"bytes"
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const defaultAudioName = "audio.webm"

// Whisper transcribes with the OpenAI whisper-1 model.
type Whisper struct {
	client *openai.Client
}

// NewWhisper returns a Whisper client. baseURL overrides the API endpoint
// and may be empty.
func NewWhisper(apiKey, baseURL string) (*Whisper, error) {
	if apiKey == "" {
		return nil, errors.New("openai API key is required for whisper")
	}
	conf := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		conf.BaseURL = baseURL
	}
	return &Whisper{client: openai.NewClientWithConfig(conf)}, nil
}

func (w *Whisper) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", nil
	}
	if filename == "" {
		filename = defaultAudioName
	}
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
		Language: "en",
	})
	if err != nil {
		return "", failed(err)
	}
	return strings.TrimSpace(resp.Text), nil
}
