package gptzero

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.gptzero.me"
	defaultHTTPTimeout = 30 * time.Second
)

// Client wraps the GPTZero AI-text detection API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes the GPTZero client.
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

// WithTimeout overrides the HTTP timeout for classification calls.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 && c.httpClient != nil {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient constructs a GPTZero API client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
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

type predictRequest struct {
	Document string `json:"document"`
}

type predictResponse struct {
	Documents []struct {
		AIProbability float64 `json:"ai_probability"`
	} `json:"documents"`
	Error string `json:"error"`
}

// Predict submits a text document and returns the probability that it was
// machine generated, between 0 and 1.
func (c *Client) Predict(ctx context.Context, text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, errors.New("gptzero predict: text required")
	}
	if strings.TrimSpace(c.apiKey) == "" {
		return 0, errors.New("gptzero predict: api key required")
	}
	endpoint, err := url.JoinPath(c.baseURL, "/v2/predict/text")
	if err != nil {
		return 0, fmt.Errorf("gptzero predict: build url: %w", err)
	}
	encoded, err := json.Marshal(predictRequest{Document: text})
	if err != nil {
		return 0, fmt.Errorf("gptzero predict: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return 0, fmt.Errorf("gptzero predict: request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("gptzero predict: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("gptzero predict: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return 0, fmt.Errorf("gptzero predict: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed predictResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("gptzero predict: decode response: %w", err)
	}
	if parsed.Error != "" {
		return 0, fmt.Errorf("gptzero predict: api error: %s", parsed.Error)
	}
	if len(parsed.Documents) == 0 {
		return 0, errors.New("gptzero predict: empty documents")
	}
	probability := parsed.Documents[0].AIProbability
	if probability < 0 {
		probability = 0
	}
	if probability > 1 {
		probability = 1
	}
	return probability, nil
}
