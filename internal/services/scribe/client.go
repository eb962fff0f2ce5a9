package scribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.elevenlabs.io"
	defaultModelID     = "scribe_v1"
	defaultHTTPTimeout = 5 * time.Minute
)

// Client wraps the ElevenLabs speech-to-text API.
type Client struct {
	apiKey     string
	baseURL    string
	modelID    string
	diarize    bool
	httpClient *http.Client
}

// Option customizes the speech-to-text client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithTimeout overrides the HTTP timeout for transcription calls. Uploads of
// long recordings need more headroom than a typical API round trip.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 && c.httpClient != nil {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithModelID overrides the transcription model.
func WithModelID(modelID string) Option {
	return func(c *Client) {
		modelID = strings.TrimSpace(modelID)
		if modelID != "" {
			c.modelID = modelID
		}
	}
}

// WithDiarization toggles speaker diarization on the request.
func WithDiarization(enabled bool) Option {
	return func(c *Client) {
		c.diarize = enabled
	}
}

// NewClient constructs a speech-to-text client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
		modelID:    defaultModelID,
		diarize:    true,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Word is a single timed token from the transcription, tagged with the
// diarized speaker when available. Type distinguishes spoken words from
// spacing and audio-event tokens.
type Word struct {
	Text      string  `json:"text"`
	Type      string  `json:"type"`
	SpeakerID string  `json:"speaker_id"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
}

// Result captures the transcription response payload.
type Result struct {
	LanguageCode        string  `json:"language_code"`
	LanguageProbability float64 `json:"language_probability"`
	Text                string  `json:"text"`
	Words               []Word  `json:"words"`
}

// Transcribe uploads the audio file at path and returns the word-level
// transcription.
func (c *Client) Transcribe(ctx context.Context, path string) (*Result, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, errors.New("scribe transcribe: api key required")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scribe transcribe: open audio: %w", err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		err := writeForm(writer, file, filepath.Base(path), c.modelID, c.diarize)
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		pw.CloseWithError(err)
	}()

	endpoint, err := url.JoinPath(c.baseURL, "/v1/speech-to-text")
	if err != nil {
		return nil, fmt.Errorf("scribe transcribe: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return nil, fmt.Errorf("scribe transcribe: request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scribe transcribe: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("scribe transcribe: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("scribe transcribe: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("scribe transcribe: decode response: %w", err)
	}
	return &result, nil
}

func writeForm(writer *multipart.Writer, file io.Reader, filename, modelID string, diarize bool) error {
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("scribe transcribe: form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("scribe transcribe: copy audio: %w", err)
	}
	fields := map[string]string{
		"model_id":               modelID,
		"diarize":                strconv.FormatBool(diarize),
		"timestamps_granularity": "word",
		"tag_audio_events":       "true",
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("scribe transcribe: field %s: %w", name, err)
		}
	}
	return nil
}
