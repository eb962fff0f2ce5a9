package twocaptcha

import (
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
	defaultBaseURL      = "https://2captcha.com"
	defaultHTTPTimeout  = 30 * time.Second
	defaultPollInterval = 5 * time.Second
	defaultSolveTimeout = 3 * time.Minute
	notReadyMarker      = "CAPCHA_NOT_READY"
)

// Client wraps the 2Captcha reCAPTCHA solving API.
type Client struct {
	apiKey       string
	baseURL      string
	pollInterval time.Duration
	solveTimeout time.Duration
	httpClient   *http.Client
}

// Option customizes the 2Captcha client.
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

// WithPollInterval overrides the delay between result polls.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// WithTimeout caps the total time a solve may take, submission and polling
// included. Solving cannot inherit an unbounded context: the capture stage
// holds a worker while it waits.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.solveTimeout = timeout
		}
	}
}

// NewClient constructs a 2Captcha API client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:       strings.TrimSpace(apiKey),
		baseURL:      defaultBaseURL,
		pollInterval: defaultPollInterval,
		solveTimeout: defaultSolveTimeout,
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
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

type apiResponse struct {
	Status  int    `json:"status"`
	Request string `json:"request"`
}

// SolveRecaptcha submits a reCAPTCHA task identified by its site key and page
// URL, then polls until the solver returns a response token, the solve
// timeout elapses, or ctx expires. A solver that never readies a token
// cannot hold the caller past the timeout.
func (c *Client) SolveRecaptcha(ctx context.Context, siteKey, pageURL string) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", errors.New("twocaptcha solve: api key required")
	}
	siteKey = strings.TrimSpace(siteKey)
	if siteKey == "" {
		return "", errors.New("twocaptcha solve: site key required")
	}

	if c.solveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.solveTimeout)
		defer cancel()
	}

	taskID, err := c.submit(ctx, siteKey, pageURL)
	if err != nil {
		return "", err
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("twocaptcha solve: %w", ctx.Err())
		case <-ticker.C:
		}

		token, ready, err := c.poll(ctx, taskID)
		if err != nil {
			return "", err
		}
		if ready {
			return token, nil
		}
	}
}

func (c *Client) submit(ctx context.Context, siteKey, pageURL string) (string, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("method", "userrecaptcha")
	params.Set("googlekey", siteKey)
	params.Set("pageurl", pageURL)
	params.Set("json", "1")

	parsed, err := c.call(ctx, "/in.php", params)
	if err != nil {
		return "", err
	}
	if parsed.Status != 1 {
		return "", fmt.Errorf("twocaptcha solve: submit rejected: %s", parsed.Request)
	}
	return parsed.Request, nil
}

func (c *Client) poll(ctx context.Context, taskID string) (string, bool, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("action", "get")
	params.Set("id", taskID)
	params.Set("json", "1")

	parsed, err := c.call(ctx, "/res.php", params)
	if err != nil {
		return "", false, err
	}
	if parsed.Status == 1 {
		return parsed.Request, true, nil
	}
	if parsed.Request == notReadyMarker {
		return "", false, nil
	}
	return "", false, fmt.Errorf("twocaptcha solve: %s", parsed.Request)
}

func (c *Client) call(ctx context.Context, path string, params url.Values) (apiResponse, error) {
	var parsed apiResponse
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return parsed, fmt.Errorf("twocaptcha solve: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return parsed, fmt.Errorf("twocaptcha solve: request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return parsed, fmt.Errorf("twocaptcha solve: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return parsed, fmt.Errorf("twocaptcha solve: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return parsed, fmt.Errorf("twocaptcha solve: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return parsed, fmt.Errorf("twocaptcha solve: decode response: %w", err)
	}
	return parsed, nil
}
