package outcall

import (
	"errors"
	"fmt"

	"github.com/NethermindEth/ethcall/contract"
	"github.com/NethermindEth/ethcall/jsonrpc"
	"github.com/NethermindEth/ethcall/utils"
)

var (
	ErrInvalidAddress    = errors.New("invalid contract address")
	ErrHTTPTransport     = errors.New("http outcall failed")
	ErrMalformedResponse = jsonrpc.ErrMalformedResponse
	ErrMissingOutcome    = errors.New("json-rpc response has no outcome")
	ErrRPC               = errors.New("json-rpc error")
	ErrResponseTooLarge  = errors.New("response exceeds maximum size")
	ErrNoConsensus       = errors.New("replicas disagree on response")
)

// HTTPTransportError carries whatever status and message the host networking layer
// reported. Status is zero when no response was received.
type HTTPTransportError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPTransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%v (status %d): %s", ErrHTTPTransport, e.Status, e.Message)
	}
	return fmt.Sprintf("%v: %s", ErrHTTPTransport, e.Message)
}

func (e *HTTPTransportError) Is(target error) bool {
	return target == ErrHTTPTransport
}

func (e *HTTPTransportError) Unwrap() error {
	return e.Err
}

// RPCError is an error object returned verbatim by the remote endpoint.
type RPCError struct {
	Code    int64
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("json-rpc error code %d: %s", e.Code, e.Message)
}

func (e *RPCError) Is(target error) bool {
	return target == ErrRPC
}

type Class int

const (
	ClassUnknown Class = iota
	// ClassConfiguration covers mistakes in what the caller asked for.
	ClassConfiguration
	// ClassRemote covers failures of the endpoint or the network path to it.
	ClassRemote
	// ClassProtocol covers arguments or return data that do not match the ABI.
	ClassProtocol
)

func (c Class) String() string {
	switch c {
	case ClassConfiguration:
		return "configuration"
	case ClassRemote:
		return "remote"
	case ClassProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

func Classify(err error) Class {
	switch {
	case err == nil:
		return ClassUnknown
	case errors.Is(err, utils.ErrUnsupportedNetwork),
		errors.Is(err, ErrInvalidAddress),
		errors.Is(err, contract.ErrInvalidABI),
		errors.Is(err, contract.ErrFunctionNotFound),
		errors.Is(err, contract.ErrAmbiguousFunction):
		return ClassConfiguration
	case errors.Is(err, ErrHTTPTransport),
		errors.Is(err, ErrMalformedResponse),
		errors.Is(err, ErrMissingOutcome),
		errors.Is(err, ErrRPC):
		return ClassRemote
	case errors.Is(err, contract.ErrEncoding),
		errors.Is(err, contract.ErrDecoding):
		return ClassProtocol
	default:
		return ClassUnknown
	}
}
