package extraction

import "regexp"

var videoURLPattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.?be)/.+$`)

// IsVideoURL reports whether the string looks like a watchable video URL on
// a supported host.
func IsVideoURL(raw string) bool {
	return videoURLPattern.MatchString(raw)
}
