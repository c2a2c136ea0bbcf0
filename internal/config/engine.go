package config

import (
	"fmt"
	"time"

	"cosmossdk.io/math"

	"github.com/hydro-labs/hydro-staking-engine/internal/engine"
	"github.com/hydro-labs/hydro-staking-engine/pkg"
)

// EngineConfig holds the staking parameters. Rates and divisors are decimal
// strings because they are 1e18-scaled integers that overflow int64.
type EngineConfig struct {
	Owner           string        `mapstructure:"owner"`
	Account         string        `mapstructure:"account"`
	MaxRate         string        `mapstructure:"max-rate"`
	RateStep        string        `mapstructure:"rate-step"`
	RewardDivisor   string        `mapstructure:"reward-divisor"`
	WithdrawalDelay time.Duration `mapstructure:"withdrawal-delay"`
	StakeActive     bool          `mapstructure:"stake-active"`
}

func (cfg *EngineConfig) Validate() error {
	if err := pkg.ValidateAddress(cfg.Owner); err != nil {
		return fmt.Errorf("engine owner: %w", err)
	}
	if err := pkg.ValidateAddress(cfg.Account); err != nil {
		return fmt.Errorf("engine account: %w", err)
	}
	if _, err := cfg.Params(); err != nil {
		return err
	}

	return nil
}

// Params converts the decimal-string fields into engine parameters.
func (cfg *EngineConfig) Params() (engine.Params, error) {
	maxRate, ok := math.NewIntFromString(cfg.MaxRate)
	if !ok {
		return engine.Params{}, fmt.Errorf("invalid max-rate %q", cfg.MaxRate)
	}
	rateStep, ok := math.NewIntFromString(cfg.RateStep)
	if !ok {
		return engine.Params{}, fmt.Errorf("invalid rate-step %q", cfg.RateStep)
	}
	rewardDivisor, ok := math.NewIntFromString(cfg.RewardDivisor)
	if !ok {
		return engine.Params{}, fmt.Errorf("invalid reward-divisor %q", cfg.RewardDivisor)
	}

	params := engine.Params{
		MaxRate:         maxRate,
		RateStep:        rateStep,
		RewardDivisor:   rewardDivisor,
		WithdrawalDelay: cfg.WithdrawalDelay,
	}
	if err := params.Validate(); err != nil {
		return engine.Params{}, err
	}

	return params, nil
}
