// Package extraction turns a video URL into the mono 16kHz WAV file the
// transcription stage consumes. The primary strategy resolves the audio
// stream in-process; signature failures fall back to yt-dlp. Both strategies
// share one ffmpeg transcode configuration.
package extraction
