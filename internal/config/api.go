package config

import (
	"errors"
	"time"
)

type ApiConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle-timeout"`
}

func (cfg *ApiConfig) Validate() error {
	if cfg.Host == "" {
		return errors.New("missing api host")
	}
	if cfg.Port <= 0 || cfg.Port > maxPort {
		return errors.New("invalid api port")
	}
	if cfg.WriteTimeout <= 0 {
		return errors.New("api write-timeout must be positive")
	}
	if cfg.ReadTimeout <= 0 {
		return errors.New("api read-timeout must be positive")
	}
	if cfg.IdleTimeout <= 0 {
		return errors.New("api idle-timeout must be positive")
	}

	return nil
}
