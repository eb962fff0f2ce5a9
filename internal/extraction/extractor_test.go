package extraction

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"clipcheck/internal/logging"
	"clipcheck/internal/queue"
	"clipcheck/internal/services"
	"clipcheck/internal/testsupport"
)

func TestIsVideoURL(t *testing.T) {
	cases := []struct {
		url   string
		valid bool
	}{
		{"https://www.youtube.com/watch?v=abc123", true},
		{"http://youtube.com/watch?v=abc123", true},
		{"youtube.com/watch?v=abc123", true},
		{"https://youtu.be/abc123", true},
		{"youtu.be/abc123", true},
		{"https://vimeo.com/12345", false},
		{"https://example.com/youtube.com/trick", false},
		{"not a url", false},
		{"https://youtube.com/", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsVideoURL(tc.url); got != tc.valid {
			t.Errorf("IsVideoURL(%q) = %v, want %v", tc.url, got, tc.valid)
		}
	}
}

type fakeResolver struct {
	err    error
	stream string
}

func (f *fakeResolver) ResolveAudio(ctx context.Context, sourceURL string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.stream)), nil
}

func newTestExtractor(t *testing.T, resolver Resolver, fallback fallbackFunc) (*Extractor, *queue.Store, *queue.Job) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg", "yt-dlp"))
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "https://youtu.be/abc123")
	handler := NewExtractorWithDependencies(cfg, store, logging.NewNop(), resolver, fallback)
	return handler, store, job
}

func TestExecutePrimarySuccessSkipsFallback(t *testing.T) {
	fallbackCalled := false
	fallback := func(ctx context.Context, ytDlp, ffmpeg, url, dest string) error {
		fallbackCalled = true
		return nil
	}
	handler, _, job := newTestExtractor(t, &fakeResolver{stream: "audio-bytes"}, fallback)

	if err := handler.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if fallbackCalled {
		t.Fatal("fallback must not run when primary succeeds")
	}
	if !strings.HasSuffix(job.AudioPath, job.ID+".wav") {
		t.Fatalf("audio path = %q", job.AudioPath)
	}
}

func TestExecuteFallsBackOnSignatureFailure(t *testing.T) {
	signatureErr := newExtractError(KindSignature, "ytdl", errors.New("cipher not found"))
	var gotURL, gotDest string
	fallback := func(ctx context.Context, ytDlp, ffmpeg, url, dest string) error {
		gotURL = url
		gotDest = dest
		return nil
	}
	handler, _, job := newTestExtractor(t, &fakeResolver{err: signatureErr}, fallback)

	if err := handler.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if gotURL != job.SourceURL {
		t.Fatalf("fallback url = %q", gotURL)
	}
	if !strings.HasSuffix(gotDest, job.ID+".wav") {
		t.Fatalf("fallback dest = %q", gotDest)
	}
	if job.AudioPath != gotDest {
		t.Fatalf("audio path = %q, want %q", job.AudioPath, gotDest)
	}
}

func TestExecuteDoesNotFallBackOnOtherKinds(t *testing.T) {
	for _, kind := range []Kind{KindUnavailable, KindNetwork, KindTranscode} {
		fallbackCalled := false
		fallback := func(ctx context.Context, ytDlp, ffmpeg, url, dest string) error {
			fallbackCalled = true
			return nil
		}
		resolver := &fakeResolver{err: newExtractError(kind, "ytdl", errors.New("boom"))}
		handler, _, job := newTestExtractor(t, resolver, fallback)

		err := handler.Execute(context.Background(), job)
		if err == nil {
			t.Fatalf("kind %s: expected failure", kind)
		}
		if fallbackCalled {
			t.Fatalf("kind %s: fallback must not run", kind)
		}
		if !errors.Is(err, services.ErrExternalTool) {
			t.Fatalf("kind %s: expected ErrExternalTool, got %v", kind, err)
		}
	}
}

func TestExecuteCombinedFailureReportsBothCauses(t *testing.T) {
	signatureErr := newExtractError(KindSignature, "ytdl", errors.New("cipher not found"))
	fallback := func(ctx context.Context, ytDlp, ffmpeg, url, dest string) error {
		return newExtractError(KindUnavailable, "yt-dlp", errors.New("exit status 1"))
	}
	handler, _, job := newTestExtractor(t, &fakeResolver{err: signatureErr}, fallback)

	err := handler.Execute(context.Background(), job)
	if err == nil {
		t.Fatal("expected combined failure")
	}
	message := err.Error()
	if !strings.Contains(message, "cipher not found") || !strings.Contains(message, "exit status 1") {
		t.Fatalf("combined error should name both causes: %v", message)
	}
}

func TestExecuteRejectsBadURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "https://example.com/nope")
	handler := NewExtractorWithDependencies(cfg, store, logging.NewNop(), &fakeResolver{}, nil)

	err := handler.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
