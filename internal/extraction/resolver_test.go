package extraction

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kkdai/youtube/v2"
)

func TestClassify(t *testing.T) {
	if got := classify(fmt.Errorf("wrapped: %w", youtube.ErrCipherNotFound)); got != KindSignature {
		t.Fatalf("cipher error classified as %s", got)
	}
	if got := classify(errors.New("video unavailable")); got != KindUnavailable {
		t.Fatalf("generic error classified as %s", got)
	}
}

func TestPickAudioFormat(t *testing.T) {
	formats := youtube.FormatList{
		{MimeType: `video/mp4; codecs="avc1.64001F, mp4a.40.2"`, Bitrate: 2_000_000, AudioChannels: 2},
		{MimeType: `audio/webm; codecs="opus"`, Bitrate: 128_000, AudioChannels: 2},
		{MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 160_000, AudioChannels: 2},
		{MimeType: `video/webm; codecs="vp9"`, Bitrate: 1_500_000},
	}

	picked := pickAudioFormat(formats)
	if picked == nil {
		t.Fatal("expected a format")
	}
	if picked.Bitrate != 160_000 {
		t.Fatalf("picked bitrate %d, want highest audio-only", picked.Bitrate)
	}
}

func TestPickAudioFormatFallsBackToMuxed(t *testing.T) {
	formats := youtube.FormatList{
		{MimeType: `video/mp4; codecs="avc1, mp4a"`, Bitrate: 900_000, AudioChannels: 2},
	}
	picked := pickAudioFormat(formats)
	if picked == nil || picked.Bitrate != 900_000 {
		t.Fatalf("expected muxed fallback, got %#v", picked)
	}
}

func TestPickAudioFormatEmpty(t *testing.T) {
	if picked := pickAudioFormat(nil); picked != nil {
		t.Fatalf("expected nil, got %#v", picked)
	}
}
