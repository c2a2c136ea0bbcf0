package pkg

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ZeroAddress is the null holder an engine owner can relinquish ownership to.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

func ValidateAddress(address string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("%q is not a valid hex address", address)
	}

	return nil
}

// NormalizeAddress returns the EIP-55 checksummed form so records keyed by
// address never split on casing.
func NormalizeAddress(address string) string {
	return common.HexToAddress(address).Hex()
}
