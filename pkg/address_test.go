package pkg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAddress(t *testing.T) {
	require.NoError(t, ValidateAddress(ZeroAddress))
	require.NoError(t, ValidateAddress(RandAddress()))

	assert.Error(t, ValidateAddress(""))
	assert.Error(t, ValidateAddress("bbn1abcdef"))
	assert.Error(t, ValidateAddress("0x123"))
	assert.Error(t, ValidateAddress(RandAddress()+"00"))
}

func TestNormalizeAddress(t *testing.T) {
	addr := RandAddress()
	assert.Equal(t, addr, NormalizeAddress(strings.ToLower(addr)))
	assert.Equal(t, addr, NormalizeAddress(addr))
}
