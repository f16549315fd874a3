package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Transcriber turns one audio file into text. Exactly one outbound upload
// per call; retry policy, if any, belongs to the caller.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// WhisperClient calls an OpenAI-compatible /v1/audio/transcriptions endpoint.
type WhisperClient struct {
	url      string
	model    string
	apiKey   string
	language string
	client   *http.Client
}

// WhisperOptions configures a WhisperClient.
type WhisperOptions struct {
	URL      string
	Model    string
	APIKey   string
	Language string // empty: let the server detect
	Timeout  time.Duration
}

// NewWhisperClient creates a new Whisper HTTP client.
func NewWhisperClient(opts WhisperOptions) *WhisperClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	return &WhisperClient{
		url:      opts.URL,
		model:    opts.Model,
		apiKey:   opts.APIKey,
		language: opts.Language,
		client:   &http.Client{Timeout: opts.Timeout},
	}
}

// Transcribe uploads the audio file as multipart/form-data and returns the
// recognized text. Failures carry a RemoteError kind per status class.
func (wc *WhisperClient) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("copy audio data: %w", err)
	}

	if wc.model != "" {
		w.WriteField("model", wc.model)
	}
	if wc.language != "" {
		w.WriteField("language", wc.language)
	}
	w.WriteField("response_format", "text")
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wc.url, &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if wc.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+wc.apiKey)
	}

	resp, err := wc.client.Do(req)
	if err != nil {
		return "", &RemoteError{Kind: KindNetwork, Message: err.Error(), cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &RemoteError{Kind: KindNetwork, Message: "read response: " + err.Error(), cause: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return strings.TrimSpace(string(body)), nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &RemoteError{Kind: KindAuth, StatusCode: resp.StatusCode, Message: string(body)}
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &RemoteError{Kind: KindRateLimit, StatusCode: resp.StatusCode, Message: string(body)}
	default:
		return "", &RemoteError{Kind: KindService, StatusCode: resp.StatusCode, Message: string(body)}
	}
}
