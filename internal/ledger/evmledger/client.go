package evmledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/hydro-labs/hydro-staking-engine/internal/config"
)

const confirmationPollInterval = 2 * time.Second

// Client is a shared connection to an EVM node, holding the engine's signing
// key. The token and collection bindings all transact through it.
type Client struct {
	eth     *ethclient.Client
	auth    *bind.TransactOpts
	account common.Address
	cfg     *config.EvmConfig
}

func NewClient(ctx context.Context, cfg *config.EvmConfig) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, cfg.RPCAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial evm node: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query chain id: %w", err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to build transactor: %w", err)
	}

	return &Client{
		eth:     eth,
		auth:    auth,
		account: crypto.PubkeyToAddress(key.PublicKey),
		cfg:     cfg,
	}, nil
}

// Account is the address the signing key controls. It must match the engine
// account so pulled principal and reward payouts move through the same holder.
func (c *Client) Account() common.Address {
	return c.account
}

func (c *Client) transactOpts(ctx context.Context) *bind.TransactOpts {
	opts := *c.auth
	opts.Context = ctx
	return &opts
}

// waitMined blocks until the transaction is mined with the configured number
// of confirmations on top, and rejects reverted ones.
func (c *Client) waitMined(ctx context.Context, tx *ethtypes.Transaction) error {
	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return fmt.Errorf("failed to wait for tx %s: %w", tx.Hash(), err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return fmt.Errorf("tx %s reverted", tx.Hash())
	}
	return c.waitConfirmations(ctx, receipt.BlockNumber.Uint64())
}

// waitConfirmations polls until the chain head is ConfirmationDepth blocks
// past the inclusion block. The mined block counts as the first confirmation.
func (c *Client) waitConfirmations(ctx context.Context, minedAt uint64) error {
	if c.cfg.ConfirmationDepth <= 1 {
		return nil
	}
	target := minedAt + c.cfg.ConfirmationDepth - 1

	ticker := time.NewTicker(confirmationPollInterval)
	defer ticker.Stop()
	for {
		head, err := c.eth.BlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to query chain head: %w", err)
		}
		if head >= target {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// withRetry runs a read call with the configured backoff. Writes are never
// retried here, a resubmitted transfer is not idempotent.
func (c *Client) withRetry(ctx context.Context, call func() error) error {
	return retry.Do(
		call,
		retry.Context(ctx),
		retry.Attempts(c.cfg.MaxRetryTimes),
		retry.Delay(c.cfg.RetryInterval),
		retry.LastErrorOnly(true),
	)
}
