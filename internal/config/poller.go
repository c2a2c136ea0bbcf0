package config

import (
	"errors"
	"time"
)

type PollerConfig struct {
	ReleaseCheckerPollingInterval time.Duration `mapstructure:"release-checker-polling-interval"`
	ClaimableRequestsLimit        int64         `mapstructure:"claimable-requests-limit"`
}

func (cfg *PollerConfig) Validate() error {
	if cfg.ReleaseCheckerPollingInterval <= 0 {
		return errors.New("release-checker-polling-interval must be positive")
	}

	if cfg.ClaimableRequestsLimit <= 0 {
		return errors.New("claimable-requests-limit must be positive")
	}

	return nil
}
