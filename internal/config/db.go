package config

import (
	"errors"
)

type DbConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Address  string `mapstructure:"address"`
	DbName   string `mapstructure:"db-name"`
}

func (cfg *DbConfig) Validate() error {
	if cfg.Username == "" {
		return errors.New("missing db username")
	}
	if cfg.Password == "" {
		return errors.New("missing db password")
	}
	if cfg.Address == "" {
		return errors.New("missing db address")
	}
	if cfg.DbName == "" {
		return errors.New("missing db name")
	}

	return nil
}
