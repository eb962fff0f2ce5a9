package main

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
	"syscall"
	"time"

	"clipcheck/internal/api"
	"clipcheck/internal/results"
)

// apiClient talks to the daemon's HTTP API.
type apiClient struct {
	baseURL    string
	httpClient *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// resultPending is returned by Result while the job is still in the pipeline.
var resultPending = errors.New("result pending")

func (c *apiClient) Submit(ctx context.Context, sourceURL string) (*api.AnalyzeResponse, error) {
	body, err := json.Marshal(api.AnalyzeRequest{URL: sourceURL})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp api.AnalyzeResponse
	if err := c.do(req, http.StatusAccepted, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Result fetches the finished analysis. When the job is still processing it
// returns the queue entry together with resultPending.
func (c *apiClient) Result(ctx context.Context, jobID string) (*results.AnalysisResult, *api.QueueItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/analyze/result/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, c.wrapDialError(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var result results.AnalysisResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, nil, fmt.Errorf("decode result: %w", err)
		}
		return &result, nil, nil
	case http.StatusAccepted:
		var item api.QueueItem
		if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
			return nil, nil, fmt.Errorf("decode queue entry: %w", err)
		}
		return nil, &item, resultPending
	default:
		return nil, nil, decodeError(resp)
	}
}

func (c *apiClient) Status(ctx context.Context) (*api.DaemonStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/status", nil)
	if err != nil {
		return nil, err
	}
	var status api.DaemonStatus
	if err := c.do(req, http.StatusOK, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *apiClient) Queue(ctx context.Context, statuses []string) ([]api.QueueItem, error) {
	endpoint := c.baseURL + "/api/queue"
	if len(statuses) > 0 {
		values := url.Values{}
		for _, status := range statuses {
			values.Add("status", status)
		}
		endpoint += "?" + values.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var resp api.QueueListResponse
	if err := c.do(req, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *apiClient) ClearQueue(ctx context.Context, scope string) (int64, error) {
	endpoint := c.baseURL + "/api/queue"
	if scope != "" {
		endpoint += "?scope=" + url.QueryEscape(scope)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return 0, err
	}
	var resp map[string]int64
	if err := c.do(req, http.StatusOK, &resp); err != nil {
		return 0, err
	}
	return resp["removed"], nil
}

func (c *apiClient) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.wrapDialError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *apiClient) wrapDialError(err error) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("connect to daemon at %s: connection refused; start the daemon with `clipcheckd`", c.baseURL)
	}
	return fmt.Errorf("connect to daemon at %s: %w", c.baseURL, err)
}

func decodeError(resp *http.Response) error {
	var payload api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("daemon: %s", payload.Error)
	}
	return fmt.Errorf("daemon: unexpected status %s", resp.Status)
}
