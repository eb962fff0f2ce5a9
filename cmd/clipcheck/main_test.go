package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clipcheck/internal/api"
	"clipcheck/internal/results"
	"clipcheck/internal/transcript"
)

func runCommand(t *testing.T, serverURL string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append([]string{"--api", serverURL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSubmitCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/analyze" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req api.AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.URL != "https://youtu.be/abc123" {
			t.Fatalf("submitted url = %q", req.URL)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(api.AnalyzeResponse{JobID: "job-1", Status: "queued"})
	}))
	defer server.Close()

	out, err := runCommand(t, server.URL, "submit", "https://youtu.be/abc123")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !strings.Contains(out, "job-1") {
		t.Fatalf("output missing job id: %q", out)
	}
}

func TestSubmitCommandRejectsInvalidURL(t *testing.T) {
	if _, err := runCommand(t, "http://127.0.0.1:1", "submit", "https://example.com/video"); err == nil {
		t.Fatal("expected validation error before any request")
	}
}

func TestResultCommandRendersSegments(t *testing.T) {
	speaker := "speaker_0"
	probability := 0.82
	shot := "/screenshots/job-1.png"
	result := results.AnalysisResult{
		JobID:          "job-1",
		SourceURL:      "https://youtu.be/abc123",
		VideoInfo:      results.VideoInfo{Title: "Sample", Channel: "Channel"},
		ScreenshotPath: &shot,
		Transcription: results.Transcription{
			Language: "en",
			Text:     "hello there",
			Segments: []transcript.Segment{
				{Speaker: &speaker, Text: "hello there", Start: 0, End: 1.2, AIProbability: &probability},
			},
		},
		ScoreSource: "classifier",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/analyze/result/job-1" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}))
	defer server.Close()

	out, err := runCommand(t, server.URL, "result", "job-1")
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	for _, want := range []string{"Sample", "speaker_0", "0.82", "hello there"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %s", want, out)
		}
	}
}

func TestResultCommandPendingJob(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(api.QueueItem{
			ID:           "job-1",
			Status:       "processing",
			StatusDetail: "transcribing",
			Progress:     api.QueueProgress{Stage: "transcribe", Message: "Submitting audio"},
		})
	}))
	defer server.Close()

	out, err := runCommand(t, server.URL, "result", "job-1")
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if !strings.Contains(out, "processing") || !strings.Contains(out, "Submitting audio") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestQueueListCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/queue" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("status"); got != "failed" {
			t.Fatalf("status filter = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.QueueListResponse{Items: []api.QueueItem{
			{ID: "job-1", Status: "failed", StatusDetail: "failed", ErrorMessage: "capture failed", Attempts: 2},
		}})
	}))
	defer server.Close()

	out, err := runCommand(t, server.URL, "queue", "list", "--status", "failed")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if !strings.Contains(out, "job-1") || !strings.Contains(out, "capture failed") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestQueueClearCommandScope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if got := r.URL.Query().Get("scope"); got != "failed" {
			t.Fatalf("scope = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int64{"removed": 3})
	}))
	defer server.Close()

	out, err := runCommand(t, server.URL, "queue", "clear", "--failed")
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	if !strings.Contains(out, "Removed 3") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestStatusCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.DaemonStatus{
			Running:     true,
			PID:         1234,
			QueueDBPath: "/tmp/queue.db",
			Queue:       api.QueueStats{Total: 2, Queued: 1, Completed: 1},
			Workflow: api.WorkflowStatus{
				Running: true,
				StageHealth: []api.StageHealth{
					{Name: "capture", Ready: true},
					{Name: "transcribe", Ready: false, Detail: "api key missing"},
				},
			},
			Dependencies: []api.DependencyStatus{
				{Name: "FFmpeg", Command: "ffmpeg", Available: true},
			},
		})
	}))
	defer server.Close()

	out, err := runCommand(t, server.URL, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"pid 1234", "capture", "api key missing", "ffmpeg"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %s", want, out)
		}
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "http://127.0.0.1:7603"},
		{"127.0.0.1:7603", "http://127.0.0.1:7603"},
		{":7603", "http://127.0.0.1:7603"},
		{"0.0.0.0:7603", "http://127.0.0.1:7603"},
		{"http://host:9000/", "http://host:9000"},
	}
	for _, tc := range cases {
		if got := normalizeBaseURL(tc.in); got != tc.want {
			t.Errorf("normalizeBaseURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
