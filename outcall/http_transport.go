package outcall

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"
)

// DefaultHostMaxResponseBytes applies when a request does not set its own cap.
const DefaultHostMaxResponseBytes uint64 = 2 << 20

// HTTPTransport performs outcalls directly over net/http, standing in for the host's
// networking layer on a single replica.
type HTTPTransport struct {
	client   *http.Client
	listener EventListener
}

var _ Transport = (*HTTPTransport)(nil)

func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{
		client:   &http.Client{Timeout: 30 * time.Second},
		listener: &SelectiveListener{},
	}
}

func (t *HTTPTransport) WithHTTPClient(client *http.Client) *HTTPTransport {
	t.client = client
	return t
}

func (t *HTTPTransport) WithTimeout(d time.Duration) *HTTPTransport {
	t.client.Timeout = d
	return t
}

func (t *HTTPTransport) WithListener(l EventListener) *HTTPTransport {
	t.listener = l
	return t
}

func (t *HTTPTransport) Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	var transform TransformFunc
	if req.Transform != nil {
		var ok bool
		if transform, ok = LookupTransform(req.Transform.Name); !ok {
			return nil, &HTTPTransportError{Message: fmt.Sprintf("unknown transform %q", req.Transform.Name)}
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, &HTTPTransportError{Message: err.Error(), Err: err}
	}
	for _, h := range req.Headers {
		if strings.EqualFold(h.Name, "Host") {
			httpReq.Host = h.Value
			continue
		}
		httpReq.Header.Set(h.Name, h.Value)
	}

	start := time.Now()
	res, err := t.client.Do(httpReq)
	if err != nil {
		return nil, &HTTPTransportError{Message: err.Error(), Err: err}
	}
	defer res.Body.Close()
	t.listener.OnResponse(httpReq.URL.Host, res.StatusCode, time.Since(start))

	limit := req.MaxResponseBytes
	if limit == 0 {
		limit = DefaultHostMaxResponseBytes
	}
	// One extra byte tells an oversized body apart from one exactly at the cap.
	readLimit := int64(math.MaxInt64)
	if limit < math.MaxInt64 {
		readLimit = int64(limit) + 1
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, readLimit))
	if err != nil {
		return nil, &HTTPTransportError{Status: res.StatusCode, Message: err.Error(), Err: err}
	}
	if uint64(len(body)) > limit {
		return nil, &HTTPTransportError{
			Status:  res.StatusCode,
			Message: fmt.Sprintf("body larger than %d bytes", limit),
			Err:     ErrResponseTooLarge,
		}
	}

	out := HTTPResponse{
		Status:  res.StatusCode,
		Headers: flattenHeaders(res.Header),
		Body:    body,
	}
	if transform != nil {
		out = transform(TransformArgs{Response: out, Context: req.Transform.Context})
	}
	return &out, nil
}

func flattenHeaders(h http.Header) []Header {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	headers := make([]Header, 0, len(h))
	for _, name := range names {
		for _, value := range h[name] {
			headers = append(headers, Header{Name: name, Value: value})
		}
	}
	return headers
}
