// Package ledger defines the external collaborators the staking engine moves
// value on: fungible token ledgers and the gating collection ownership oracle.
package ledger

import (
	"context"

	"cosmossdk.io/math"
)

// TokenLedger is a fungible token ledger. Implementations are bound to the
// account they act as, so Transfer spends that account's own balance.
// Any error is treated by the engine as a hard transfer failure.
type TokenLedger interface {
	// TransferFrom moves amount from `from` to `to` using a pre-authorized
	// allowance granted to the bound account.
	TransferFrom(ctx context.Context, from, to string, amount math.Int) error

	// Transfer moves amount from the bound account to `to`.
	Transfer(ctx context.Context, to string, amount math.Int) error

	BalanceOf(ctx context.Context, account string) (math.Int, error)
}

// CollectionOracle reports ownership counts for the gating NFT collection.
type CollectionOracle interface {
	BalanceOf(ctx context.Context, owner string) (uint64, error)
}
