package evmledger

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/hydro-labs/hydro-staking-engine/internal/observability/metrics"
)

const erc721ABI = `[
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

// ERC721 binds the gating collection as a CollectionOracle. Only the holder
// count matters to the engine, so the binding is read-only.
type ERC721 struct {
	client   *Client
	contract *bind.BoundContract
	addr     common.Address
}

func NewERC721(client *Client, addr string) (*ERC721, error) {
	parsedABI, err := abi.JSON(strings.NewReader(erc721ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc721 abi: %w", err)
	}

	contractAddr := common.HexToAddress(addr)
	eth := client.eth

	return &ERC721{
		client:   client,
		contract: bind.NewBoundContract(contractAddr, parsedABI, eth, eth, eth),
		addr:     contractAddr,
	}, nil
}

func (c *ERC721) BalanceOf(ctx context.Context, owner string) (uint64, error) {
	startTime := time.Now()

	var balance *big.Int
	err := c.client.withRetry(ctx, func() error {
		var out []any
		err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", common.HexToAddress(owner))
		if err != nil {
			return fmt.Errorf("balanceOf on %s: %w", c.addr, err)
		}
		balance = *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
		return nil
	})

	outcome := metrics.Success
	if err != nil {
		outcome = metrics.Error
	}
	metrics.RecordLedgerLatency("collection", "BalanceOf", outcome, time.Since(startTime))

	if err != nil {
		return 0, err
	}
	return balance.Uint64(), nil
}
