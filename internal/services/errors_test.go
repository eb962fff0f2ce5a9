package services_test

import (
	"errors"
	"strings"
	"testing"

	"clipcheck/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	err := services.Wrap(services.ErrExternalTool, "capture", "navigate", "page load timed out", errors.New("deadline exceeded"))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected error to match ErrExternalTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "capture: navigate: page load timed out") {
		t.Fatalf("expected stage detail in message, got %q", err.Error())
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "scoring", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient fallback, got %v", err)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := services.Wrap(services.ErrTransient, "transcribe", "submit audio", "", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be reachable, got %v", err)
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"validation", services.Wrap(services.ErrValidation, "extract", "validate url", "", nil), false},
		{"configuration", services.Wrap(services.ErrConfiguration, "transcribe", "", "api key missing", nil), false},
		{"external tool", services.Wrap(services.ErrExternalTool, "extract", "ffmpeg", "", errors.New("exit 1")), true},
		{"timeout", services.Wrap(services.ErrTimeout, "capture", "navigate", "", nil), true},
		{"plain error", errors.New("boom"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.Retryable(tc.err); got != tc.want {
				t.Fatalf("Retryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
