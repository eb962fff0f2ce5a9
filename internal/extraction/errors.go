package extraction

import "fmt"

// Kind classifies why an extraction strategy failed. Only signature failures
// from the primary resolver justify falling back to yt-dlp; every other kind
// would fail the same way regardless of strategy.
type Kind string

const (
	KindBadURL      Kind = "bad_url"
	KindSignature   Kind = "signature"
	KindUnavailable Kind = "unavailable"
	KindNetwork     Kind = "network"
	KindTranscode   Kind = "transcode"
)

// ExtractError wraps a strategy failure with its classification.
type ExtractError struct {
	Kind     Kind
	Strategy string
	Err      error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s via %s: %v", e.Kind, e.Strategy, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

func newExtractError(kind Kind, strategy string, err error) *ExtractError {
	return &ExtractError{Kind: kind, Strategy: strategy, Err: err}
}
