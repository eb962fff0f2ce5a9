package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBrowser(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBrowser() error {
	if c.Browser.MaxSessions < 1 {
		return errors.New("browser.max_sessions must be at least 1")
	}
	if c.Browser.RetryLimit < 0 {
		return errors.New("browser.retry_limit must not be negative")
	}
	if c.Browser.NavigationTimeout <= 0 || c.Browser.ReadyTimeout <= 0 {
		return errors.New("browser navigation_timeout and ready_timeout must be positive")
	}
	if c.Browser.WindowWidth <= 0 || c.Browser.WindowHeight <= 0 {
		return errors.New("browser window dimensions must be positive")
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if c.Extraction.FFmpegCommand == "" {
		return errors.New("extraction.ffmpeg_command must be set")
	}
	if c.Extraction.YtDlpCommand == "" {
		return errors.New("extraction.ytdlp_command must be set")
	}
	if c.Extraction.TimeoutSeconds <= 0 {
		return errors.New("extraction.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if c.Transcription.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/clipcheck/config.toml"
		}
		return fmt.Errorf("transcription.api_key is required. Set ELEVENLABS_API_KEY or edit %s (create with 'clipcheck config init')", defaultPath)
	}
	if c.Transcription.ModelID == "" {
		return errors.New("transcription.model_id must be set")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.Workers < 1 {
		return errors.New("workflow.workers must be at least 1")
	}
	if c.Workflow.QueuePollInterval <= 0 {
		return errors.New("workflow.queue_poll_interval must be positive")
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		return errors.New("workflow.error_retry_interval must be positive")
	}
	if c.Workflow.RetryLimit < 0 {
		return errors.New("workflow.retry_limit must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
