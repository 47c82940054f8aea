package node

import (
	"context"

	"github.com/NethermindEth/ethcall/contract"
	"github.com/NethermindEth/ethcall/utils"
)

// Caller performs a single eth_call outcall for an already resolved function.
type Caller interface {
	CallFunction(ctx context.Context, network, address string, fn *contract.Function, args ...any) ([]any, error)
}

var _ Caller = (*ThrottledCaller)(nil)

// ThrottledCaller caps the number of outcalls in flight; calls beyond the queue limit fail
// with utils.ErrResourceBusy.
type ThrottledCaller struct {
	*utils.Throttler[Caller]
}

func NewThrottledCaller(res Caller, concurrencyBudget uint, maxQueueLen int32) *ThrottledCaller {
	return &ThrottledCaller{
		Throttler: utils.NewThrottler(concurrencyBudget, &res).WithMaxQueueLen(maxQueueLen),
	}
}

func (tc *ThrottledCaller) CallFunction(ctx context.Context, network, address string, fn *contract.Function,
	args ...any,
) ([]any, error) {
	var ret []any
	err := tc.Do(ctx, func(c *Caller) error {
		var err error
		ret, err = (*c).CallFunction(ctx, network, address, fn, args...)
		return err
	})
	return ret, err
}
