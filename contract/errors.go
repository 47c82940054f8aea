package contract

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidABI        = errors.New("invalid contract abi")
	ErrFunctionNotFound  = errors.New("function not found")
	ErrAmbiguousFunction = errors.New("ambiguous function")
	ErrEncoding          = errors.New("encode call data")
	ErrDecoding          = errors.New("decode return data")
)

// AmbiguousFunctionError is returned when a plain name matches several overloads.
// Candidates holds their canonical signatures, any of which resolves uniquely.
type AmbiguousFunctionError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousFunctionError) Error() string {
	return fmt.Sprintf("found %d overloads of %q, use one of: %s",
		len(e.Candidates), e.Name, strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousFunctionError) Is(target error) bool {
	return target == ErrAmbiguousFunction
}
