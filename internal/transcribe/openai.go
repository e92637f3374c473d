// Package transcribe adapts the OpenAI audio API as the external
// transcription collaborator: audio in, text out. Speech recognition
// itself never happens in-process.
package transcribe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"

	openai "github.com/sashabaranov/go-openai"
)

// httpGet is a seam for tests.
var httpGet = func(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return http.DefaultClient.Do(req)
}

// OpenAIClient is the slice of the OpenAI SDK this package uses.
type OpenAIClient interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// Service transcribes audio objects through the OpenAI API.
type Service struct {
	client OpenAIClient
	model  string
}

// NewService constructs a Service. model is typically "whisper-1".
func NewService(apiKey, model string) *Service {
	return &Service{client: openai.NewClient(apiKey), model: model}
}

// NewServiceWithClient constructs a Service over a caller-supplied client.
func NewServiceWithClient(client OpenAIClient, model string) *Service {
	return &Service{client: client, model: model}
}

// Transcribe fetches the audio object behind audioURL and sends it to the
// transcription API, returning the recognized text.
func (s *Service) Transcribe(ctx context.Context, audioURL string) (string, error) {
	resp, err := httpGet(ctx, audioURL)
	if err != nil {
		return "", fmt.Errorf("fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch audio: unexpected status %d", resp.StatusCode)
	}

	out, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.model,
		Reader:   resp.Body,
		FilePath: audioFileName(audioURL),
	})
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}

	return out.Text, nil
}

// audioFileName derives a plausible file name from the object URL; the API
// infers the container format from the extension. Recordings default to
// webm when the key carries no extension.
func audioFileName(audioURL string) string {
	u, err := url.Parse(audioURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "audio.webm"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "audio.webm"
	}
	if path.Ext(name) == "" {
		return name + ".webm"
	}
	return name
}
