package jsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

var ErrMalformedResponse = errors.New("malformed json-rpc response")

type Response struct {
	Outcome  *string      `json:"outcome"`
	RPCError *ErrorDetail `json:"rpc_error"`
}

type ErrorDetail struct {
	Code    int64  `json:"error_code"`
	Message string `json:"error_message"`
}

func ParseResponse(body []byte) (*Response, error) {
	if !utf8.Valid(body) {
		return nil, fmt.Errorf("%w: invalid utf-8", ErrMalformedResponse)
	}

	res := new(Response)
	if err := json.Unmarshal(body, res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return res, nil
}
