package outcall

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/NethermindEth/ethcall/utils"
	"github.com/sourcegraph/conc/pool"
)

// ReplicatedTransport emulates the host's consensus step: every replica performs the
// outcall and applies the transform on its own, and the call succeeds only when all
// transformed responses are byte-identical.
type ReplicatedTransport struct {
	replicas []Transport
	log      utils.SimpleLogger
}

var _ Transport = (*ReplicatedTransport)(nil)

func NewReplicatedTransport(replicas ...Transport) *ReplicatedTransport {
	return &ReplicatedTransport{
		replicas: replicas,
		log:      utils.NewNopZapLogger(),
	}
}

func (r *ReplicatedTransport) WithLogger(log utils.SimpleLogger) *ReplicatedTransport {
	r.log = log
	return r
}

func (r *ReplicatedTransport) Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	if len(r.replicas) == 0 {
		return nil, &HTTPTransportError{Message: "no replicas configured"}
	}

	p := pool.NewWithResults[*HTTPResponse]().WithContext(ctx).WithCancelOnError()
	for _, replica := range r.replicas {
		p.Go(func(ctx context.Context) (*HTTPResponse, error) {
			res, err := replica.Do(ctx, req)
			if err == nil && res == nil {
				err = errors.New("replica returned no response")
			}
			return res, err
		})
	}
	responses, err := p.Wait()
	if err != nil {
		var transportErr *HTTPTransportError
		if errors.As(err, &transportErr) {
			return nil, err
		}
		return nil, &HTTPTransportError{Message: err.Error(), Err: err}
	}

	first := responses[0]
	for i, res := range responses[1:] {
		if !sameResponse(first, res) {
			r.log.Warnw("Replica responses diverged",
				"url", req.URL,
				"replicas", len(r.replicas),
				"divergentIndex", i+1,
				"statuses", fmt.Sprintf("%d/%d", first.Status, res.Status),
			)
			return nil, &HTTPTransportError{Message: ErrNoConsensus.Error(), Err: ErrNoConsensus}
		}
	}
	return first, nil
}

func sameResponse(a, b *HTTPResponse) bool {
	return a.Status == b.Status &&
		slices.Equal(a.Headers, b.Headers) &&
		bytes.Equal(a.Body, b.Body)
}
