package config

import (
	"errors"
	"fmt"
)

type QueueConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// Address is the broker host and port, without the amqp:// prefix.
	Address  string `mapstructure:"address"`
	Exchange string `mapstructure:"exchange"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.Username == "" {
		return errors.New("missing queue username")
	}
	if cfg.Password == "" {
		return errors.New("missing queue password")
	}
	if cfg.Address == "" {
		return errors.New("missing queue address")
	}
	if cfg.Exchange == "" {
		return errors.New("missing queue exchange")
	}

	return nil
}

// Url builds the amqp connection string.
func (cfg *QueueConfig) Url() string {
	return fmt.Sprintf("amqp://%s:%s@%s", cfg.Username, cfg.Password, cfg.Address)
}
