package jsonrpc_test

import (
	"math"
	"sync"
	"testing"

	"github.com/NethermindEth/ethcall/jsonrpc"
	"github.com/stretchr/testify/assert"
)

func TestIDGenerator(t *testing.T) {
	t.Run("starts at zero and increments", func(t *testing.T) {
		var ids jsonrpc.IDGenerator
		assert.Equal(t, uint64(0), ids.Next())
		assert.Equal(t, uint64(1), ids.Next())
		assert.Equal(t, uint64(2), ids.Next())
	})

	t.Run("wraps on overflow", func(t *testing.T) {
		var ids jsonrpc.IDGenerator
		jsonrpc.SetNextID(&ids, math.MaxUint64)
		assert.Equal(t, uint64(math.MaxUint64), ids.Next())
		assert.Equal(t, uint64(0), ids.Next())
	})

	t.Run("concurrent callers get distinct ids", func(t *testing.T) {
		const goroutines, perGoroutine = 16, 500

		var ids jsonrpc.IDGenerator
		var (
			mu   sync.Mutex
			seen = make(map[uint64]struct{}, goroutines*perGoroutine)
			wg   sync.WaitGroup
		)
		for range goroutines {
			wg.Add(1)
			go func() {
				defer wg.Done()
				local := make([]uint64, 0, perGoroutine)
				for range perGoroutine {
					local = append(local, ids.Next())
				}
				mu.Lock()
				defer mu.Unlock()
				for _, id := range local {
					seen[id] = struct{}{}
				}
			}()
		}
		wg.Wait()
		assert.Len(t, seen, goroutines*perGoroutine)
	})

	t.Run("process-wide generator", func(t *testing.T) {
		first := jsonrpc.NextID()
		assert.Greater(t, jsonrpc.NextID(), first)
	})
}
