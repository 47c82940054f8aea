// Package outcall performs read-only contract calls through a host-provided HTTP
// outcall facility whose responses must be identical on every replica.
package outcall

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/NethermindEth/ethcall/contract"
	"github.com/NethermindEth/ethcall/jsonrpc"
	"github.com/NethermindEth/ethcall/utils"
	"github.com/ethereum/go-ethereum/common"
)

const (
	DefaultMaxResponseBytes uint64 = 2048
	DefaultCycles           uint64 = 100_000_000
)

type Client struct {
	transport        Transport
	ids              *jsonrpc.IDGenerator
	maxResponseBytes uint64
	cycles           uint64
	log              utils.SimpleLogger
	listener         EventListener
}

func NewClient(transport Transport) *Client {
	return &Client{
		transport:        transport,
		maxResponseBytes: DefaultMaxResponseBytes,
		cycles:           DefaultCycles,
		log:              utils.NewNopZapLogger(),
		listener:         &SelectiveListener{},
	}
}

func (c *Client) WithLogger(log utils.SimpleLogger) *Client {
	c.log = log
	return c
}

func (c *Client) WithListener(l EventListener) *Client {
	c.listener = l
	return c
}

func (c *Client) WithMaxResponseBytes(n uint64) *Client {
	c.maxResponseBytes = n
	return c
}

func (c *Client) WithCycles(n uint64) *Client {
	c.cycles = n
	return c
}

// WithIDGenerator replaces the process-wide request id sequence.
func (c *Client) WithIDGenerator(ids *jsonrpc.IDGenerator) *Client {
	c.ids = ids
	return c
}

func (c *Client) nextID() uint64 {
	if c.ids != nil {
		return c.ids.Next()
	}
	return jsonrpc.NextID()
}

// Call invokes method on the contract at address and returns the decoded return values.
// method is a plain function name or, for overloaded functions, an exact canonical
// signature. Every failure is terminal; nothing is retried.
func (c *Client) Call(ctx context.Context, network, address string, iface *contract.Interface,
	method string, args ...any,
) ([]any, error) {
	start := time.Now()
	values, err := c.call(ctx, network, address, func() (*contract.Function, error) {
		return iface.Resolve(method)
	}, args)
	c.listener.OnCall(network, method, time.Since(start), err)
	return values, err
}

// CallFunction is Call for an already resolved function.
func (c *Client) CallFunction(ctx context.Context, network, address string, fn *contract.Function,
	args ...any,
) ([]any, error) {
	start := time.Now()
	values, err := c.call(ctx, network, address, func() (*contract.Function, error) {
		return fn, nil
	}, args)
	c.listener.OnCall(network, fn.Signature(), time.Since(start), err)
	return values, err
}

func (c *Client) call(ctx context.Context, network, address string,
	resolve func() (*contract.Function, error), args []any,
) ([]any, error) {
	rpcURL, err := utils.ResolveRPCURL(network)
	if err != nil {
		return nil, err
	}
	parsedURL, err := url.Parse(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	fn, err := resolve()
	if err != nil {
		return nil, err
	}
	calldata, err := fn.Encode(args...)
	if err != nil {
		return nil, err
	}

	rpcReq := jsonrpc.NewCallRequest(c.nextID(), address, utils.ToHex(calldata))
	body, err := rpcReq.Marshal()
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", contract.ErrEncoding, err)
	}

	c.log.Debugw("Sending eth_call",
		"network", network,
		"to", address,
		"function", fn.Signature(),
		"requestID", rpcReq.RequestID,
	)
	res, err := c.transport.Do(ctx, &HTTPRequest{
		URL:    rpcURL,
		Method: http.MethodPost,
		Headers: []Header{
			{Name: "Content-Type", Value: "application/json"},
			{Name: "Host", Value: parsedURL.Hostname()},
		},
		Body:             body,
		MaxResponseBytes: c.maxResponseBytes,
		Transform:        &TransformContext{Name: HandleTransformName},
		Cycles:           c.cycles,
	})
	if err != nil {
		c.log.Debugw("eth_call outcall failed", "requestID", rpcReq.RequestID, "err", err)
		var transportErr *HTTPTransportError
		if errors.As(err, &transportErr) {
			return nil, err
		}
		return nil, &HTTPTransportError{Message: err.Error(), Err: err}
	}

	rpcRes, err := jsonrpc.ParseResponse(res.Body)
	if err != nil {
		return nil, err
	}
	if rpcRes.RPCError != nil {
		return nil, &RPCError{Code: rpcRes.RPCError.Code, Message: rpcRes.RPCError.Message}
	}
	if rpcRes.Outcome == nil {
		return nil, ErrMissingOutcome
	}
	output, err := utils.FromHex(*rpcRes.Outcome)
	if err != nil {
		return nil, fmt.Errorf("%w: outcome: %v", ErrMalformedResponse, err)
	}

	values, err := fn.Decode(output)
	if err != nil {
		return nil, err
	}
	c.log.Debugw("eth_call done", "requestID", rpcReq.RequestID, "outputs", len(values))
	return values, nil
}
