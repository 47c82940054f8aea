package utils

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ToHex encodes b as lowercase hex with a 0x prefix. Empty input encodes to "0x".
func ToHex(b []byte) string {
	return hexutil.Encode(b)
}

// FromHex decodes a 0x-prefixed hex string. "0x" decodes to an empty slice.
func FromHex(s string) ([]byte, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode hex %q: %w", s, err)
	}
	return b, nil
}
