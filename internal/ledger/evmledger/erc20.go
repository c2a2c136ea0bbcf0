package evmledger

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/hydro-labs/hydro-staking-engine/internal/observability/metrics"
)

const erc20ABI = `[
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"transfer","type":"function","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"transferFrom","type":"function","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

// ERC20 binds a deployed ERC-20 token as a TokenLedger. Transfers are
// submitted with the client's key and confirmed before returning, so the
// engine observes on-chain settlement, not just acceptance.
type ERC20 struct {
	client   *Client
	contract *bind.BoundContract
	addr     common.Address
	// label distinguishes the stake and reward tokens in metrics.
	label string
}

func NewERC20(client *Client, addr string, label string) (*ERC20, error) {
	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc20 abi: %w", err)
	}

	contractAddr := common.HexToAddress(addr)
	eth := client.eth

	return &ERC20{
		client:   client,
		contract: bind.NewBoundContract(contractAddr, parsedABI, eth, eth, eth),
		addr:     contractAddr,
		label:    label,
	}, nil
}

func (t *ERC20) TransferFrom(ctx context.Context, from, to string, amount math.Int) error {
	return t.observe("TransferFrom", func() error {
		tx, err := t.contract.Transact(
			t.client.transactOpts(ctx),
			"transferFrom",
			common.HexToAddress(from),
			common.HexToAddress(to),
			amount.BigInt(),
		)
		if err != nil {
			return fmt.Errorf("transferFrom on %s: %w", t.addr, err)
		}
		return t.client.waitMined(ctx, tx)
	})
}

func (t *ERC20) Transfer(ctx context.Context, to string, amount math.Int) error {
	return t.observe("Transfer", func() error {
		tx, err := t.contract.Transact(
			t.client.transactOpts(ctx),
			"transfer",
			common.HexToAddress(to),
			amount.BigInt(),
		)
		if err != nil {
			return fmt.Errorf("transfer on %s: %w", t.addr, err)
		}
		return t.client.waitMined(ctx, tx)
	})
}

func (t *ERC20) BalanceOf(ctx context.Context, account string) (math.Int, error) {
	var balance *big.Int

	err := t.observe("BalanceOf", func() error {
		return t.client.withRetry(ctx, func() error {
			var out []any
			err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", common.HexToAddress(account))
			if err != nil {
				return fmt.Errorf("balanceOf on %s: %w", t.addr, err)
			}
			balance = *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
			return nil
		})
	})
	if err != nil {
		return math.Int{}, err
	}

	return math.NewIntFromBigInt(balance), nil
}

func (t *ERC20) observe(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	outcome := metrics.Success
	if err != nil {
		outcome = metrics.Error
	}
	metrics.RecordLedgerLatency(t.label, method, outcome, duration)
	return err
}
