package engine

import (
	"time"

	"cosmossdk.io/math"
)

// WithdrawalRequest is a time-delayed claim on previously staked principal.
// A user has at most one outstanding request.
type WithdrawalRequest struct {
	Amount    math.Int
	Pending   bool
	ReleaseAt time.Time
}

// userRecord is created lazily on first interaction and never deleted, only
// zeroed.
type userRecord struct {
	// amount is the currently staked principal.
	amount math.Int

	// checkpoint is the time of the last reward-accrual reset.
	checkpoint time.Time

	// ratePerMinute is the rate snapshot frozen when the user last became a
	// staker. Later global rate changes never touch it.
	ratePerMinute math.Int

	withdrawal WithdrawalRequest
}

func newUserRecord() *userRecord {
	return &userRecord{
		amount:        math.ZeroInt(),
		ratePerMinute: math.ZeroInt(),
		withdrawal:    WithdrawalRequest{Amount: math.ZeroInt()},
	}
}

func (u *userRecord) snapshot(address string) UserSnapshot {
	return UserSnapshot{
		Address:       address,
		Amount:        u.amount,
		Checkpoint:    u.checkpoint,
		RatePerMinute: u.ratePerMinute,
		Withdrawal:    u.withdrawal,
	}
}

func recordFromSnapshot(s UserSnapshot) *userRecord {
	u := newUserRecord()
	u.amount = s.Amount
	u.checkpoint = s.Checkpoint
	u.ratePerMinute = s.RatePerMinute
	u.withdrawal = s.Withdrawal
	if u.withdrawal.Amount.IsNil() {
		u.withdrawal.Amount = math.ZeroInt()
	}
	return u
}

// UserSnapshot is a read-only copy of a user record.
type UserSnapshot struct {
	Address       string
	Amount        math.Int
	Checkpoint    time.Time
	RatePerMinute math.Int
	Withdrawal    WithdrawalRequest
}

// GlobalSnapshot is a read-only copy of the engine's global state.
type GlobalSnapshot struct {
	Owner       string
	Rate        math.Int
	TotalStaked math.Int
	StakeActive bool
}
