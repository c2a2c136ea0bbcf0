package config

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineConfig_Params(t *testing.T) {
	t.Run("valid params", func(t *testing.T) {
		cfg := &EngineConfig{
			Owner:           "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
			Account:         "0x2546BcD3c84621e976D8185a91A922aE77ECEc30",
			MaxRate:         "1000000000000",
			RateStep:        "50000000000",
			RewardDivisor:   "1000000000000000000",
			WithdrawalDelay: 7 * 24 * time.Hour,
		}
		require.NoError(t, cfg.Validate())

		params, err := cfg.Params()
		require.NoError(t, err)
		assert.Equal(t, math.NewInt(1_000_000_000_000), params.MaxRate)
		assert.Equal(t, math.NewInt(50_000_000_000), params.RateStep)
		assert.Equal(t, 7*24*time.Hour, params.WithdrawalDelay)
	})

	t.Run("non-numeric rate", func(t *testing.T) {
		cfg := &EngineConfig{
			Owner:           "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
			Account:         "0x2546BcD3c84621e976D8185a91A922aE77ECEc30",
			MaxRate:         "one trillion",
			RateStep:        "50000000000",
			RewardDivisor:   "1000000000000000000",
			WithdrawalDelay: 7 * 24 * time.Hour,
		}
		_, err := cfg.Params()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max-rate")
	})

	t.Run("step above ceiling rejected", func(t *testing.T) {
		cfg := &EngineConfig{
			Owner:           "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
			Account:         "0x2546BcD3c84621e976D8185a91A922aE77ECEc30",
			MaxRate:         "100",
			RateStep:        "200",
			RewardDivisor:   "1000000000000000000",
			WithdrawalDelay: 7 * 24 * time.Hour,
		}
		_, err := cfg.Params()
		require.Error(t, err)
	})
}
