package contract

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Function is one callable entry point of an Interface.
type Function struct {
	method abi.Method
}

func (f *Function) Name() string {
	return f.method.RawName
}

// Signature is the canonical form used for selector hashing, e.g. "balanceOf(address)".
func (f *Function) Signature() string {
	return f.method.Sig
}

func (f *Function) Selector() []byte {
	return append([]byte(nil), f.method.ID...)
}

func (f *Function) Inputs() abi.Arguments {
	return f.method.Inputs
}

func (f *Function) Outputs() abi.Arguments {
	return f.method.Outputs
}

func (f *Function) String() string {
	return f.method.String()
}

// Encode returns the selector followed by the ABI encoding of args. Args use the Go
// types go-ethereum maps ABI types to: *big.Int for integers wider than 64 bits (and
// for non-native widths), common.Address, bool, []byte, [N]byte, string, slices,
// arrays and structs for tuples.
func (f *Function) Encode(args ...any) ([]byte, error) {
	packed, err := f.method.Inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncoding, f.Signature(), err)
	}
	return append(f.Selector(), packed...), nil
}

// Decode unpacks raw return data into the declared output values, in order.
func (f *Function) Decode(data []byte) ([]any, error) {
	values, err := f.method.Outputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecoding, f.Signature(), err)
	}
	return values, nil
}
