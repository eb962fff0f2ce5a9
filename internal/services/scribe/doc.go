// Package scribe provides a client for the ElevenLabs speech-to-text API
// with word-level timestamps and speaker diarization.
package scribe
