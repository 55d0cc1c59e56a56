package classifier

import "toxlens/internal/platform/config"

// FromConfig reads CLASSIFIER_* keys under cfg, the base URL is required
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CLASSIFIER_")
	return Options{
		BaseURL:    c.MustURL("URL").String(),
		UserAgent:  c.MayString("USER_AGENT", defaultUA),
		Timeout:    c.MayDuration("TIMEOUT", defaultTimeout),
		MaxRetries: c.MayInt("MAX_RETRIES", defaultMaxRetry),
		RetryBase:  c.MayDuration("RETRY_BASE", defaultRetryBase),
	}
}
