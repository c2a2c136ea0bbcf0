package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/hydro-labs/hydro-staking-engine/pkg"
)

// EvmConfig points the engine at on-chain token contracts. When disabled the
// service runs against in-memory ledgers, which is only useful for local
// development.
type EvmConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	RPCAddr           string        `mapstructure:"rpc-addr"`
	PrivateKey        string        `mapstructure:"private-key"`
	StakeToken        string        `mapstructure:"stake-token"`
	RewardToken       string        `mapstructure:"reward-token"`
	GatingCollection  string        `mapstructure:"gating-collection"`
	ConfirmationDepth uint64        `mapstructure:"confirmation-depth"`
	MaxRetryTimes     uint          `mapstructure:"max-retry-times"`
	RetryInterval     time.Duration `mapstructure:"retry-interval"`
}

func (cfg *EvmConfig) Validate() error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.RPCAddr == "" {
		return errors.New("missing evm rpc-addr")
	}
	if cfg.PrivateKey == "" {
		return errors.New("missing evm private-key")
	}
	if err := pkg.ValidateAddress(cfg.StakeToken); err != nil {
		return fmt.Errorf("evm stake-token: %w", err)
	}
	if err := pkg.ValidateAddress(cfg.RewardToken); err != nil {
		return fmt.Errorf("evm reward-token: %w", err)
	}
	if err := pkg.ValidateAddress(cfg.GatingCollection); err != nil {
		return fmt.Errorf("evm gating-collection: %w", err)
	}
	if cfg.MaxRetryTimes == 0 {
		return errors.New("evm max-retry-times must be positive")
	}
	if cfg.RetryInterval <= 0 {
		return errors.New("evm retry-interval must be positive")
	}

	return nil
}
