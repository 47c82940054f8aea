package outcall

import "context"

//go:generate mockgen -destination=./mocks/mock_transport.go -package=mocks github.com/NethermindEth/ethcall/outcall Transport
type Transport interface {
	// Do issues req and returns the response after the named transform was applied.
	Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error)
}

type Header struct {
	Name  string
	Value string
}

type HTTPRequest struct {
	URL     string
	Method  string
	Headers []Header
	Body    []byte
	// MaxResponseBytes caps the response body; larger responses are rejected by the
	// transport.
	MaxResponseBytes uint64
	Transform        *TransformContext
	// Cycles is the resource budget attached to the outcall. Accounting is up to the
	// host; transports are free to ignore it.
	Cycles uint64
}

type HTTPResponse struct {
	Status  int
	Headers []Header
	Body    []byte
}

// TransformContext names a registered transform and the opaque context handed to it.
type TransformContext struct {
	Name    string
	Context []byte
}
