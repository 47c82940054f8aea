package jsonrpc_test

import (
	"testing"

	"github.com/NethermindEth/ethcall/jsonrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	t.Run("outcome", func(t *testing.T) {
		res, err := jsonrpc.ParseResponse([]byte(`{"outcome":"0x01","rpc_error":null}`))
		require.NoError(t, err)
		require.NotNil(t, res.Outcome)
		assert.Equal(t, "0x01", *res.Outcome)
		assert.Nil(t, res.RPCError)
	})

	t.Run("rpc error", func(t *testing.T) {
		res, err := jsonrpc.ParseResponse([]byte(
			`{"outcome":null,"rpc_error":{"error_code":-32000,"error_message":"execution reverted"}}`))
		require.NoError(t, err)
		assert.Nil(t, res.Outcome)
		assert.Equal(t, &jsonrpc.ErrorDetail{Code: -32000, Message: "execution reverted"}, res.RPCError)
	})

	t.Run("empty object", func(t *testing.T) {
		res, err := jsonrpc.ParseResponse([]byte(`{}`))
		require.NoError(t, err)
		assert.Nil(t, res.Outcome)
		assert.Nil(t, res.RPCError)
	})

	for name, body := range map[string][]byte{
		"invalid utf-8": {'{', '"', 0xff, 0xfe, '"', '}'},
		"invalid json":  []byte(`{"outcome":`),
		"html":          []byte(`<html>bad gateway</html>`),
		"wrong type":    []byte(`{"outcome":1}`),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := jsonrpc.ParseResponse(body)
			require.ErrorIs(t, err, jsonrpc.ErrMalformedResponse)
		})
	}
}
