package config

import "time"

// Duration views over the integer-second settings.

func (b Browser) NavigationWait() time.Duration {
	return time.Duration(b.NavigationTimeout) * time.Second
}

func (b Browser) ReadyWait() time.Duration {
	return time.Duration(b.ReadyTimeout) * time.Second
}

func (b Browser) ProbeWait() time.Duration {
	return time.Duration(b.ProbeTimeout) * time.Second
}

func (b Browser) SettleDelay() time.Duration {
	return time.Duration(b.SettleSeconds) * time.Second
}

func (b Browser) CaptureDelay() time.Duration {
	return time.Duration(b.CaptureWaitSeconds) * time.Second
}

func (e Extraction) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

func (t Transcription) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

func (c Classifier) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Captcha) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c Captcha) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
