package contract

import (
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// FormatOutputs renders decoded values as plain JSON/YAML-friendly data: integers as
// decimal strings, byte strings as 0x hex, addresses in checksum form and tuples as
// maps keyed by component name.
func FormatOutputs(fn *Function, values []any) []any {
	outputs := fn.Outputs()
	formatted := make([]any, len(values))
	for i, v := range values {
		if i < len(outputs) {
			formatted[i] = FormatValue(outputs[i].Type, v)
		} else {
			formatted[i] = v
		}
	}
	return formatted
}

func FormatValue(t abi.Type, v any) any {
	switch t.T {
	case abi.IntTy, abi.UintTy:
		if n, ok := v.(*big.Int); ok {
			return n.String()
		}
		rv := reflect.ValueOf(v)
		if t.T == abi.IntTy {
			return big.NewInt(rv.Int()).String()
		}
		return new(big.Int).SetUint64(rv.Uint()).String()
	case abi.AddressTy:
		return v.(common.Address).Hex()
	case abi.BytesTy:
		return hexutil.Encode(v.([]byte))
	case abi.FixedBytesTy:
		rv := reflect.ValueOf(v)
		b := make([]byte, rv.Len())
		for i := range b {
			b[i] = byte(rv.Index(i).Uint())
		}
		return hexutil.Encode(b)
	case abi.SliceTy, abi.ArrayTy:
		rv := reflect.ValueOf(v)
		list := make([]any, rv.Len())
		for i := range list {
			list[i] = FormatValue(*t.Elem, rv.Index(i).Interface())
		}
		return list
	case abi.TupleTy:
		rv := reflect.ValueOf(v)
		fields := make(map[string]any, len(t.TupleElems))
		for i, elem := range t.TupleElems {
			fields[t.TupleRawNames[i]] = FormatValue(*elem, rv.Field(i).Interface())
		}
		return fields
	default:
		return v
	}
}
