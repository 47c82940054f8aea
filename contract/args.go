package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var bigIntType = reflect.TypeOf((*big.Int)(nil))

// ParseArgs converts textual arguments into values of the function's declared input
// types. Integers accept decimal or 0x-prefixed hex, bytes are 0x-prefixed hex, and
// arrays and tuples are JSON arrays.
func ParseArgs(fn *Function, args []string) ([]any, error) {
	inputs := fn.Inputs()
	if len(args) != len(inputs) {
		return nil, fmt.Errorf("%w: %s: got %d arguments, want %d", ErrEncoding, fn.Signature(), len(args), len(inputs))
	}

	values := make([]any, len(args))
	for i, arg := range args {
		v, err := ParseValue(inputs[i].Type, arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: argument %d (%s): %v", ErrEncoding, fn.Signature(), i, inputs[i].Type, err)
		}
		values[i] = v
	}
	return values, nil
}

func ParseValue(t abi.Type, s string) (any, error) {
	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s), nil
	case abi.BoolTy:
		return strconv.ParseBool(s)
	case abi.StringTy:
		return s, nil
	case abi.BytesTy:
		return hexutil.Decode(s)
	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		if len(b) != t.Size {
			return nil, fmt.Errorf("want %d bytes, got %d", t.Size, len(b))
		}
		v := reflect.New(t.GetType()).Elem()
		reflect.Copy(v, reflect.ValueOf(b))
		return v.Interface(), nil
	case abi.IntTy, abi.UintTy:
		return parseInteger(t, s)
	case abi.SliceTy, abi.ArrayTy:
		return parseList(t, s)
	case abi.TupleTy:
		return parseTuple(t, s)
	default:
		return nil, fmt.Errorf("unsupported type %s", t)
	}
}

func parseInteger(t abi.Type, s string) (any, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}

	signed := t.T == abi.IntTy
	if !signed && n.Sign() < 0 {
		return nil, errors.New("negative value for unsigned type")
	}
	bits := n.BitLen()
	if signed && n.Sign() < 0 {
		// two's complement: -2^(k-1) needs k bits
		bits = new(big.Int).Add(n, big.NewInt(1)).BitLen() + 1
	} else if signed {
		bits++
	}
	if bits > t.Size {
		return nil, fmt.Errorf("%s overflows %s", s, t)
	}

	goType := t.GetType()
	if goType == bigIntType {
		return n, nil
	}
	v := reflect.New(goType).Elem()
	if signed {
		v.SetInt(n.Int64())
	} else {
		v.SetUint(n.Uint64())
	}
	return v.Interface(), nil
}

// splitJSONList splits a JSON array into element texts; string elements are unquoted.
func splitJSONList(s string) ([]string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("want a JSON array: %w", err)
	}
	items := make([]string, len(raw))
	for i, r := range raw {
		var str string
		if err := json.Unmarshal(r, &str); err == nil {
			items[i] = str
			continue
		}
		items[i] = string(r)
	}
	return items, nil
}

func parseList(t abi.Type, s string) (any, error) {
	items, err := splitJSONList(s)
	if err != nil {
		return nil, err
	}

	var v reflect.Value
	if t.T == abi.ArrayTy {
		if len(items) != t.Size {
			return nil, fmt.Errorf("want %d elements, got %d", t.Size, len(items))
		}
		v = reflect.New(t.GetType()).Elem()
	} else {
		v = reflect.MakeSlice(t.GetType(), len(items), len(items))
	}

	for i, item := range items {
		elem, err := ParseValue(*t.Elem, item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		v.Index(i).Set(reflect.ValueOf(elem))
	}
	return v.Interface(), nil
}

func parseTuple(t abi.Type, s string) (any, error) {
	items, err := splitJSONList(s)
	if err != nil {
		return nil, err
	}
	if len(items) != len(t.TupleElems) {
		return nil, fmt.Errorf("want %d tuple components, got %d", len(t.TupleElems), len(items))
	}

	v := reflect.New(t.GetType()).Elem()
	for i, item := range items {
		field, err := ParseValue(*t.TupleElems[i], item)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", t.TupleRawNames[i], err)
		}
		v.Field(i).Set(reflect.ValueOf(field))
	}
	return v.Interface(), nil
}
