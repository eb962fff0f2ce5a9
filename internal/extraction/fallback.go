package extraction

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// FallbackExtract shells out to yt-dlp for the audio stream and pipes its
// stdout straight into the ffmpeg transcode. Used only when the primary
// resolver hits a signature failure, where an updated external extractor
// tends to succeed.
func FallbackExtract(ctx context.Context, ytDlpBinary, ffmpegBinary, sourceURL, dest string) error {
	const strategy = "yt-dlp"

	cmd := exec.CommandContext(ctx, ytDlpBinary,
		"-f", "bestaudio",
		"-o", "-",
		"--no-playlist",
		sourceURL,
	) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return newExtractError(KindUnavailable, strategy, fmt.Errorf("stdout pipe: %w", err))
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return newExtractError(KindUnavailable, strategy, fmt.Errorf("start yt-dlp: %w", err))
	}

	transcodeErr := TranscodeToWAV(ctx, ffmpegBinary, stdout, dest)
	waitErr := cmd.Wait()

	if waitErr != nil {
		detail := strings.TrimSpace(stderr.String())
		return newExtractError(KindUnavailable, strategy,
			fmt.Errorf("yt-dlp: %w: %s", waitErr, detail))
	}
	return transcodeErr
}
