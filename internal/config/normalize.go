package config

import (
	"os"
	"path/filepath"
	"strings"
)

// normalize expands paths, derives unset directories from the data dir, and
// pulls SaaS credentials from the environment when the file leaves them empty.
func (c *Config) normalize() error {
	dataDir, err := expandPath(c.Paths.DataDir)
	if err != nil {
		return err
	}
	if dataDir == "" {
		dataDir, err = expandPath(defaultDataDir)
		if err != nil {
			return err
		}
	}
	c.Paths.DataDir = dataDir

	if c.Paths.ResultsDir == "" {
		c.Paths.ResultsDir = filepath.Join(dataDir, "results")
	}
	if c.Paths.ScreenshotDir == "" {
		c.Paths.ScreenshotDir = filepath.Join(dataDir, "screenshots")
	}
	if c.Paths.AudioDir == "" {
		c.Paths.AudioDir = filepath.Join(dataDir, "audio")
	}
	if c.Paths.LogDir == "" {
		c.Paths.LogDir = filepath.Join(dataDir, "logs")
	}
	for _, dir := range []*string{&c.Paths.ResultsDir, &c.Paths.ScreenshotDir, &c.Paths.AudioDir, &c.Paths.LogDir} {
		expanded, err := expandPath(*dir)
		if err != nil {
			return err
		}
		*dir = expanded
	}

	c.Transcription.APIKey = firstNonEmpty(c.Transcription.APIKey, os.Getenv("ELEVENLABS_API_KEY"), os.Getenv("ELEVEN_LABS_API_KEY"))
	c.Classifier.APIKey = firstNonEmpty(c.Classifier.APIKey, os.Getenv("GPTZERO_API_KEY"), os.Getenv("GPT_ZERO_API_KEY"))
	c.Captcha.APIKey = firstNonEmpty(c.Captcha.APIKey, os.Getenv("TWO_CAPTCHA_API_KEY"))

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
