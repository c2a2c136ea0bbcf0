package types

import "errors"

// Engine error taxonomy. Every failed operation aborts with no partial state
// change; callers match with errors.Is.
var (
	// ErrTransferFailed indicates a value-moving call to an external ledger
	// did not succeed.
	ErrTransferFailed = errors.New("token transfer failed")

	// ErrNotStaker indicates the operation requires a nonzero staked amount
	// on the caller's record.
	ErrNotStaker = errors.New("caller has no active stake")

	// ErrInsufficientAmount indicates the requested amount exceeds the
	// available stake or accrued reward.
	ErrInsufficientAmount = errors.New("insufficient amount")

	// ErrPendingRequest indicates a withdrawal request is already
	// outstanding for the caller.
	ErrPendingRequest = errors.New("withdrawal request already pending")

	// ErrNoPendingRequest indicates a claim was attempted with no
	// outstanding withdrawal request.
	ErrNoPendingRequest = errors.New("no pending withdrawal request")

	// ErrRequestNotMatured indicates the withdrawal delay has not elapsed.
	ErrRequestNotMatured = errors.New("withdrawal request not matured")

	// ErrNoGatingToken indicates the caller holds no token of the gating
	// collection.
	ErrNoGatingToken = errors.New("caller holds no gating collection token")

	ErrStakingInactive = errors.New("staking is not active")
	ErrNotOwner        = errors.New("caller is not the engine owner")
	ErrReentrantCall   = errors.New("reentrant call")

	ErrInvalidAddress   = errors.New("invalid account address")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrAmountOutOfRange = errors.New("amount exceeds supported range")
	ErrRateOutOfRange   = errors.New("rate exceeds maximum rate")

	// ErrCorruptedState marks a broken internal invariant (e.g. a reward
	// checkpoint ahead of the clock). It is never caused by user input.
	ErrCorruptedState = errors.New("corrupted engine state")
)
