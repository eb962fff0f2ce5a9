package extraction

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// TranscodeToWAV streams source audio through ffmpeg into a mono 16kHz WAV
// file at dest. The input arrives on stdin so the caller can feed any
// container format without touching disk first.
func TranscodeToWAV(ctx context.Context, ffmpegBinary string, source io.Reader, dest string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		"-f", "wav",
		dest,
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	cmd.Stdin = source
	if output, err := cmd.CombinedOutput(); err != nil {
		detail := strings.TrimSpace(string(output))
		return newExtractError(KindTranscode, "ffmpeg",
			fmt.Errorf("ffmpeg transcode: %w: %s", err, detail))
	}
	return nil
}
