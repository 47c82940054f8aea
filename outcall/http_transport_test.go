package outcall_test

import (
	"io"
	"math"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/NethermindEth/ethcall/contract"
	"github.com/NethermindEth/ethcall/outcall"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Host", r.Host)
		w.Header().Set("X-Content-Type", r.Header.Get("Content-Type"))
		w.Header().Set("Date", time.Now().UTC().Format(http.TimeFormat))
		if r.URL.Path == "/big" {
			_, _ = w.Write([]byte(strings.Repeat("a", 100)))
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	request := func(path string) *outcall.HTTPRequest {
		return &outcall.HTTPRequest{
			URL:    srv.URL + path,
			Method: http.MethodPost,
			Headers: []outcall.Header{
				{Name: "Content-Type", Value: "application/json"},
				{Name: "Host", Value: "rpc.example.org"},
			},
			Body: []byte(`{"ping":true}`),
		}
	}

	t.Run("sends method headers and body", func(t *testing.T) {
		res, err := outcall.NewHTTPTransport().Do(t.Context(), request("/"))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, `{"ping":true}`, string(res.Body))

		headers := make(map[string]string)
		for i, h := range res.Headers {
			if i > 0 {
				assert.LessOrEqual(t, res.Headers[i-1].Name, h.Name)
			}
			headers[h.Name] = h.Value
		}
		assert.Equal(t, http.MethodPost, headers["X-Method"])
		assert.Equal(t, "rpc.example.org", headers["X-Host"])
		assert.Equal(t, "application/json", headers["X-Content-Type"])
	})

	t.Run("applies transform", func(t *testing.T) {
		req := request("/")
		req.Transform = &outcall.TransformContext{Name: outcall.HandleTransformName}

		res, err := outcall.NewHTTPTransport().Do(t.Context(), req)
		require.NoError(t, err)
		assert.Equal(t, &outcall.HTTPResponse{Status: http.StatusOK, Body: []byte(`{"ping":true}`)}, res)
	})

	t.Run("unknown transform", func(t *testing.T) {
		req := request("/")
		req.Transform = &outcall.TransformContext{Name: "no_such_transform"}

		_, err := outcall.NewHTTPTransport().Do(t.Context(), req)
		require.ErrorIs(t, err, outcall.ErrHTTPTransport)
		assert.Contains(t, err.Error(), "no_such_transform")
	})

	t.Run("response size cap", func(t *testing.T) {
		req := request("/big")
		req.MaxResponseBytes = 99
		_, err := outcall.NewHTTPTransport().Do(t.Context(), req)
		require.ErrorIs(t, err, outcall.ErrResponseTooLarge)
		require.ErrorIs(t, err, outcall.ErrHTTPTransport)

		var transportErr *outcall.HTTPTransportError
		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, http.StatusOK, transportErr.Status)

		req.MaxResponseBytes = 100
		res, err := outcall.NewHTTPTransport().Do(t.Context(), req)
		require.NoError(t, err)
		assert.Len(t, res.Body, 100)

		for _, limit := range []uint64{math.MaxInt64 - 1, math.MaxInt64, 1 << 63, math.MaxUint64} {
			req.MaxResponseBytes = limit
			res, err := outcall.NewHTTPTransport().Do(t.Context(), req)
			require.NoError(t, err, "limit %d", limit)
			assert.Len(t, res.Body, 100, "limit %d", limit)
		}
	})

	t.Run("reports responses to listener", func(t *testing.T) {
		var (
			gotHost   string
			gotStatus int
		)
		transport := outcall.NewHTTPTransport().WithListener(&outcall.SelectiveListener{
			OnResponseCb: func(host string, status int, _ time.Duration) {
				gotHost, gotStatus = host, status
			},
		})
		_, err := transport.Do(t.Context(), request("/"))
		require.NoError(t, err)

		srvURL, err := url.Parse(srv.URL)
		require.NoError(t, err)
		assert.Equal(t, srvURL.Host, gotHost)
		assert.Equal(t, http.StatusOK, gotStatus)
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		closed := httptest.NewServer(http.NotFoundHandler())
		closed.Close()

		req := request("/")
		req.URL = closed.URL
		_, err := outcall.NewHTTPTransport().WithTimeout(time.Second).Do(t.Context(), req)
		require.ErrorIs(t, err, outcall.ErrHTTPTransport)
	})
}

// redirectTransport sends every request to target while leaving the Host header alone.
type redirectTransport struct {
	target *url.URL
}

func (rt redirectTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

func TestClientOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cloudflare-eth.com", r.Host)
		assert.Equal(t, "/v1/mainnet", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Contains(t, string(body), `"action":"eth_call"`)
		assert.Contains(t, string(body), `"latest"`)

		w.Header().Set("Date", time.Now().UTC().Format(http.TimeFormat))
		_, _ = w.Write([]byte(`{"outcome":"0x00000000000000000000000000000000000000000000000000000000000003e8"}`))
	}))
	t.Cleanup(srv.Close)

	target, err := url.Parse(srv.URL)
	require.NoError(t, err)
	transport := outcall.NewHTTPTransport().WithHTTPClient(&http.Client{
		Transport: redirectTransport{target: target},
		Timeout:   5 * time.Second,
	})

	erc20 := contract.MustEmbedded("erc20")
	values, err := outcall.NewClient(transport).
		Call(t.Context(), "mainnet", tokenAddress, erc20, "balanceOf", mustParseArgs(t, erc20, "balanceOf", holder)...)
	require.NoError(t, err)
	assert.Equal(t, []any{big.NewInt(1000)}, values)
}

func mustParseArgs(t *testing.T, iface *contract.Interface, method string, args ...string) []any {
	t.Helper()
	values, err := contract.ParseArgs(mustResolve(t, iface, method), args)
	require.NoError(t, err)
	return values
}
