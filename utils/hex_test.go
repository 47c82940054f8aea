package utils_test

import (
	"testing"

	"github.com/NethermindEth/ethcall/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHex(t *testing.T) {
	t.Run("encode is lowercase and prefixed", func(t *testing.T) {
		assert.Equal(t, "0xdeadbeef", utils.ToHex([]byte{0xDE, 0xAD, 0xBE, 0xEF}))
		assert.Equal(t, "0x", utils.ToHex(nil))
	})

	t.Run("round trip", func(t *testing.T) {
		in := []byte{0, 1, 2, 0xff}
		out, err := utils.FromHex(utils.ToHex(in))
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("empty payload", func(t *testing.T) {
		out, err := utils.FromHex("0x")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	for _, bad := range []string{"", "deadbeef", "0xabc", "0xzz"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := utils.FromHex(bad)
			assert.Error(t, err)
		})
	}
}
