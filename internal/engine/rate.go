package engine

import (
	"cosmossdk.io/math"

	"github.com/hydro-labs/hydro-staking-engine/pkg"
)

// minutesPerYear is used by the APY view to annualize the per-minute rate.
const minutesPerYear = 365 * 24 * 60

// syncRateLocked applies one fixed RateStep to the global rate. An entering
// staker steps the rate down (more stakers dilute the rate offered to new
// joiners), an exiting staker steps it back up. Both directions saturate:
// the rate never drops below zero or rises above MaxRate. Already-staked
// users keep their frozen per-minute rate either way.
func (e *Engine) syncRateLocked(exiting bool) {
	if exiting {
		e.rate = e.rate.Add(e.params.RateStep)
		if e.rate.GT(e.params.MaxRate) {
			e.rate = e.params.MaxRate
		}
		return
	}

	e.rate = e.rate.Sub(e.params.RateStep)
	if e.rate.IsNegative() {
		e.rate = math.ZeroInt()
	}
}

// Rate returns the rate currently offered to newly joining stakers.
func (e *Engine) Rate() math.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.rate
}

// TotalStaked returns the sum of all users' staked amounts.
func (e *Engine) TotalStaked() math.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.totalStaked
}

// APY estimates the annualized percentage yield offered at the current rate:
// rate * minutesPerYear * 100 / RewardDivisor, floored.
func (e *Engine) APY() math.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.rate.MulRaw(minutesPerYear).MulRaw(100).Quo(e.params.RewardDivisor)
}

// StakeActive reports whether the staking gate is open.
func (e *Engine) StakeActive() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.active
}

// Owner returns the current administrator account.
func (e *Engine) Owner() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.owner
}

// User returns a snapshot of the record for the given address.
func (e *Engine) User(address string) (UserSnapshot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	address = pkg.NormalizeAddress(address)
	u, ok := e.users[address]
	if !ok {
		return UserSnapshot{}, false
	}
	return u.snapshot(address), true
}
