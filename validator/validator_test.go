package validator_test

import (
	"testing"

	"github.com/NethermindEth/ethcall/utils"
	"github.com/NethermindEth/ethcall/validator"
	"github.com/stretchr/testify/assert"
)

func TestValidator(t *testing.T) {
	type request struct {
		Network string `validate:"omitempty,network"`
		ABI     string `validate:"required,abi_name"`
		Address string `validate:"required,eth_addr"`
	}

	tests := map[string]struct {
		req   request
		valid bool
	}{
		"valid":                {request{"sepolia", "erc20", "0xdAC17F958D2ee523a2206206994597C13D831ec7"}, true},
		"network alias":        {request{"Ethereum", "erc721", "0xdac17f958d2ee523a2206206994597c13d831ec7"}, true},
		"default network":      {request{"", "erc20", "0xdac17f958d2ee523a2206206994597c13d831ec7"}, true},
		"unsupported network":  {request{"polygon", "erc20", "0xdac17f958d2ee523a2206206994597c13d831ec7"}, false},
		"unknown abi":          {request{"mainnet", "erc4626", "0xdac17f958d2ee523a2206206994597c13d831ec7"}, false},
		"abi path not allowed": {request{"mainnet", "/etc/passwd", "0xdac17f958d2ee523a2206206994597c13d831ec7"}, false},
		"short address":        {request{"mainnet", "erc20", "0xdac17f"}, false},
		"missing address":      {request{"mainnet", "erc20", ""}, false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := validator.Validator().Struct(tc.req)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	t.Run("singleton", func(t *testing.T) {
		assert.Same(t, validator.Validator(), validator.Validator())
	})

	t.Run("network type", func(t *testing.T) {
		type config struct {
			Network utils.Network `validate:"required"`
		}
		assert.NoError(t, validator.Validator().Struct(config{Network: utils.Goerli}))
		assert.Error(t, validator.Validator().Struct(config{}))

		type known struct {
			Network *utils.Network `validate:"required,network"`
		}
		sepolia, outOfRange := utils.Sepolia, utils.Network(42)
		assert.NoError(t, validator.Validator().Struct(known{Network: &sepolia}))
		assert.Error(t, validator.Validator().Struct(known{Network: &outOfRange}))
		assert.Error(t, validator.Validator().Struct(known{}))
	})
}
