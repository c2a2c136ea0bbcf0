package config

import (
	"fmt"
)

const (
	defaultMetricsPort = 2112
	maxPort            = 65535
)

type MetricsConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (cfg *MetricsConfig) Validate() error {
	if cfg.Host == "" {
		return fmt.Errorf("missing metrics host")
	}
	if cfg.Port < 0 || cfg.Port > maxPort {
		return fmt.Errorf("invalid metrics port %d", cfg.Port)
	}

	return nil
}

// GetMetricsPort returns the configured port, falling back to the default
// when unset.
func (cfg *MetricsConfig) GetMetricsPort() int {
	if cfg.Port == 0 {
		return defaultMetricsPort
	}
	return cfg.Port
}
