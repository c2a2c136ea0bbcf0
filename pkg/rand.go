package pkg

import (
	"math/rand"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

func RandString(n int) string {
	var builder strings.Builder
	builder.Grow(n)

	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for range n {
		letter := letters[rand.Intn(len(letters))] //nolint:gosec
		builder.WriteByte(letter)
	}

	return builder.String()
}

// RandAddress returns a random checksummed hex address for tests.
func RandAddress() string {
	var b [20]byte
	rand.Read(b[:]) //nolint:gosec,errcheck
	return common.BytesToAddress(b[:]).Hex()
}
