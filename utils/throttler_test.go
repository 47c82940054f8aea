package utils_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NethermindEth/ethcall/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottler(t *testing.T) {
	throttledRes := utils.NewThrottler(2, new(int)).WithMaxQueueLen(2)
	waitOn := make(chan struct{})

	var runCount atomic.Int64
	doer := func(ptr *int) error {
		if ptr == nil {
			return errors.New("nilptr")
		}
		<-waitOn
		runCount.Add(1)
		return nil
	}

	var wg sync.WaitGroup
	do := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, throttledRes.Do(context.Background(), doer))
		}()
		time.Sleep(10 * time.Millisecond)
	}

	do()
	assert.Equal(t, 0, throttledRes.QueueLen())
	do()
	assert.Equal(t, 0, throttledRes.QueueLen())
	assert.Equal(t, 2, throttledRes.JobsRunning())

	do() // should be queued
	assert.Equal(t, 1, throttledRes.QueueLen())
	do() // should be queued
	assert.Equal(t, 2, throttledRes.QueueLen())

	require.ErrorIs(t, throttledRes.Do(context.Background(), doer), utils.ErrResourceBusy)

	waitOn <- struct{}{} // release one of the slots
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, throttledRes.QueueLen())
	waitOn <- struct{}{} // release another slot, queue should be empty
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, throttledRes.QueueLen())

	// release the jobs waiting
	waitOn <- struct{}{}
	waitOn <- struct{}{}
	wg.Wait()
	assert.Equal(t, int64(4), runCount.Load())
	assert.Equal(t, 0, throttledRes.JobsRunning())
}

func TestThrottlerContext(t *testing.T) {
	throttledRes := utils.NewThrottler(1, new(int))
	release := make(chan struct{})
	started := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, throttledRes.Do(context.Background(), func(*int) error {
			close(started)
			<-release
			return nil
		}))
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ran := false
	err := throttledRes.Do(ctx, func(*int) error {
		ran = true
		return nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, ran)
	assert.Equal(t, 0, throttledRes.QueueLen())

	close(release)
	wg.Wait()
}

func FuzzThrottler(f *testing.F) {
	f.Add(uint(1), 0)
	f.Add(uint(4), 42)
	f.Fuzz(func(t *testing.T, concurrencyBudget uint, resource int) {
		if concurrencyBudget == 0 || concurrencyBudget > 32 {
			t.Skip()
		}
		throttledRes := utils.NewThrottler(concurrencyBudget, &resource)
		wg := &sync.WaitGroup{}
		waitOn := make(chan struct{})
		var ranCount atomic.Uint32

		doer := func(ptr *int) error {
			if ptr == nil {
				return errors.New("nilptr")
			}
			<-waitOn
			ranCount.Add(1)
			return nil
		}

		do := func() {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, throttledRes.Do(context.Background(), doer))
			}()
			time.Sleep(10 * time.Millisecond)
		}

		for range concurrencyBudget {
			do()
		}
		assert.Equal(t, 0, throttledRes.QueueLen(), "queue should be empty")
		do()
		assert.Equal(t, 1, throttledRes.QueueLen(), "queue should be 1")

		for range concurrencyBudget + 1 {
			waitOn <- struct{}{}
		}

		wg.Wait()
		assert.Equal(t, 0, throttledRes.QueueLen(), "queue should be empty")
		assert.Equal(t, int(concurrencyBudget)+1, int(ranCount.Load()), "ranCount should be concurrencyBudget+1")
	})
}
