// Package contract resolves, encodes and decodes calls against an Ethereum contract ABI.
package contract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Interface is a loaded contract ABI. It is never mutated after load and can be shared
// by any number of concurrent callers.
type Interface struct {
	functions []*Function
	byName    map[string][]*Function
	bySig     map[string]*Function
}

func Load(r io.Reader) (*Interface, error) {
	parsed, err := abi.JSON(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidABI, err)
	}

	iface := &Interface{
		functions: make([]*Function, 0, len(parsed.Methods)),
		byName:    make(map[string][]*Function),
		bySig:     make(map[string]*Function, len(parsed.Methods)),
	}
	for _, method := range parsed.Methods {
		fn := &Function{method: method}
		iface.functions = append(iface.functions, fn)
		iface.byName[fn.Name()] = append(iface.byName[fn.Name()], fn)
		iface.bySig[fn.Signature()] = fn
	}

	sort.Slice(iface.functions, func(i, j int) bool {
		return iface.functions[i].Signature() < iface.functions[j].Signature()
	})
	for _, overloads := range iface.byName {
		sort.Slice(overloads, func(i, j int) bool {
			return overloads[i].Signature() < overloads[j].Signature()
		})
	}
	return iface, nil
}

func FromJSON(data []byte) (*Interface, error) {
	return Load(bytes.NewReader(data))
}

func LoadFile(path string) (*Interface, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	iface, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return iface, nil
}

// Functions returns every callable function ordered by canonical signature.
func (i *Interface) Functions() []*Function {
	return append([]*Function(nil), i.functions...)
}

// Resolve finds the single function a query refers to. A plain name resolves only when
// it is not overloaded; otherwise the query must be an exact canonical signature such as
// "transfer(address,uint256)".
func (i *Interface) Resolve(query string) (*Function, error) {
	switch overloads := i.byName[query]; len(overloads) {
	case 1:
		return overloads[0], nil
	case 0:
		if fn, ok := i.bySig[query]; ok {
			return fn, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrFunctionNotFound, query)
	default:
		candidates := make([]string, 0, len(overloads))
		for _, fn := range overloads {
			candidates = append(candidates, fn.Signature())
		}
		return nil, &AmbiguousFunctionError{Name: query, Candidates: candidates}
	}
}
