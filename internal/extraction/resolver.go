package extraction

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/kkdai/youtube/v2"
)

// Resolver turns a video URL into a readable audio stream.
type Resolver interface {
	ResolveAudio(ctx context.Context, sourceURL string) (io.ReadCloser, error)
}

// ytResolver resolves audio streams directly from the video host without a
// browser, using the same player-response parsing approach as ytdl tooling.
type ytResolver struct {
	client youtube.Client
}

// NewResolver constructs the primary audio stream resolver.
func NewResolver() Resolver {
	return &ytResolver{}
}

func (r *ytResolver) ResolveAudio(ctx context.Context, sourceURL string) (io.ReadCloser, error) {
	const strategy = "ytdl"
	if !IsVideoURL(sourceURL) {
		return nil, newExtractError(KindBadURL, strategy, errors.New("unsupported video URL"))
	}

	video, err := r.client.GetVideoContext(ctx, sourceURL)
	if err != nil {
		return nil, newExtractError(classify(err), strategy, err)
	}

	format := pickAudioFormat(video.Formats)
	if format == nil {
		return nil, newExtractError(KindUnavailable, strategy, errors.New("no audio format available"))
	}

	stream, _, err := r.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, newExtractError(classify(err), strategy, err)
	}
	return stream, nil
}

// pickAudioFormat prefers audio-only formats with the highest bitrate and
// falls back to any format carrying an audio channel.
func pickAudioFormat(formats youtube.FormatList) *youtube.Format {
	candidates := formats.WithAudioChannels()
	var best *youtube.Format
	for i := range candidates {
		format := &candidates[i]
		if !strings.HasPrefix(format.MimeType, "audio/") {
			continue
		}
		if best == nil || format.Bitrate > best.Bitrate {
			best = format
		}
	}
	if best == nil && len(candidates) > 0 {
		best = &candidates[0]
	}
	return best
}

func classify(err error) Kind {
	if errors.Is(err, youtube.ErrCipherNotFound) {
		return KindSignature
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	return KindUnavailable
}
