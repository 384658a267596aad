package speech

import (
	"context"
	"fmt"
	"strings"

	gspeech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

type recognizer interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
}

// Google transcribes browser recordings (WebM/Opus, 48 kHz) with Cloud
// Speech-to-Text.
type Google struct {
	client recognizer
	closer func() error
}

// NewGoogle dials Cloud Speech. An empty credentialsFile uses application
// default credentials.
func NewGoogle(ctx context.Context, credentialsFile string) (*Google, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := gspeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &Google{client: c, closer: c.Close}, nil
}

func (g *Google) Transcribe(ctx context.Context, audio []byte, _ string) (string, error) {
	if len(audio) == 0 {
		return "", nil
	}
	resp, err := g.client.Recognize(ctx, recognizeRequest(audio))
	if err != nil {
		return "", failed(err)
	}

	var lines []string
	for _, r := range resp.GetResults() {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if t := strings.TrimSpace(alts[0].GetTranscript()); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// Close releases the underlying connection.
func (g *Google) Close() error {
	if g.closer == nil {
		return nil
	}
	return g.closer()
}

func recognizeRequest(audio []byte) *speechpb.RecognizeRequest {
	return &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_WEBM_OPUS,
			SampleRateHertz:            48000,
			LanguageCode:               "en-US",
			EnableAutomaticPunctuation: true,
			Model:                      "default",
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}
}
