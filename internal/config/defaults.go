package config

const (
	defaultDataDir            = "~/.local/share/clipcheck"
	defaultAPIBind            = "127.0.0.1:7603"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultUserAgent          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultWindowWidth        = 1280
	defaultWindowHeight       = 720
	defaultMaxSessions        = 2
	defaultSessionRetryLimit  = 1
	defaultNavigationTimeout  = 60
	defaultReadyTimeout       = 30
	defaultProbeTimeout       = 5
	defaultSettleSeconds      = 2
	defaultCaptureWaitSeconds = 5
	defaultYtDlpCommand       = "yt-dlp"
	defaultFFmpegCommand      = "ffmpeg"
	defaultExtractionTimeout  = 600
	defaultScribeBaseURL      = "https://api.elevenlabs.io"
	defaultScribeModelID      = "scribe_v1"
	defaultScribeTimeout      = 300
	defaultGPTZeroBaseURL     = "https://api.gptzero.me"
	defaultGPTZeroTimeout     = 30
	defaultCaptchaBaseURL     = "https://2captcha.com"
	defaultCaptchaPoll        = 5
	defaultCaptchaTimeout     = 180
	defaultWorkers            = 1
	defaultQueuePollInterval  = 2
	defaultErrorRetryInterval = 5
	defaultJobRetryLimit      = 1
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			APIBind: defaultAPIBind,
		},
		Browser: Browser{
			MaxSessions:        defaultMaxSessions,
			RetryLimit:         defaultSessionRetryLimit,
			Headless:           true,
			UserAgent:          defaultUserAgent,
			WindowWidth:        defaultWindowWidth,
			WindowHeight:       defaultWindowHeight,
			NavigationTimeout:  defaultNavigationTimeout,
			ReadyTimeout:       defaultReadyTimeout,
			ProbeTimeout:       defaultProbeTimeout,
			SettleSeconds:      defaultSettleSeconds,
			CaptureWaitSeconds: defaultCaptureWaitSeconds,
		},
		Extraction: Extraction{
			YtDlpCommand:   defaultYtDlpCommand,
			FFmpegCommand:  defaultFFmpegCommand,
			TimeoutSeconds: defaultExtractionTimeout,
		},
		Transcription: Transcription{
			BaseURL:        defaultScribeBaseURL,
			ModelID:        defaultScribeModelID,
			Diarize:        true,
			TimeoutSeconds: defaultScribeTimeout,
		},
		Classifier: Classifier{
			BaseURL:        defaultGPTZeroBaseURL,
			TimeoutSeconds: defaultGPTZeroTimeout,
		},
		Captcha: Captcha{
			BaseURL:             defaultCaptchaBaseURL,
			PollIntervalSeconds: defaultCaptchaPoll,
			TimeoutSeconds:      defaultCaptchaTimeout,
		},
		Workflow: Workflow{
			Workers:            defaultWorkers,
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			RetryLimit:         defaultJobRetryLimit,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
