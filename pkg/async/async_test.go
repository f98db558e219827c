package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solo-knight-dev/fyllo-ai/pkg/async"
)

func TestAsync_Await(t *testing.T) {
	t.Parallel()

	f := async.Async(context.Background(), 21, func(ctx context.Context, n int) (int, error) {
		return n * 2, nil
	})

	result, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.True(t, f.IsComplete())
}

func TestAsync_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	f := async.Async(context.Background(), "x", func(ctx context.Context, s string) (string, error) {
		return "", boom
	})

	_, err := f.Await()
	assert.ErrorIs(t, err, boom)
}

func TestAsync_PreCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := async.Async(ctx, 1, func(ctx context.Context, n int) (int, error) {
		return n, nil
	})

	_, err := f.Await()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAwaitWithTimeout(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	defer close(block)

	f := async.Async(context.Background(), 0, func(ctx context.Context, _ int) (int, error) {
		<-block
		return 0, nil
	})

	_, err := f.AwaitWithTimeout(20 * time.Millisecond)
	assert.ErrorIs(t, err, async.ErrTimeout)
	assert.False(t, f.IsComplete())
}

func TestWaitAll(t *testing.T) {
	t.Parallel()

	double := func(ctx context.Context, n int) (int, error) { return n * 2, nil }
	f1 := async.Async(context.Background(), 1, double)
	f2 := async.Async(context.Background(), 2, double)

	results, err := async.WaitAll(f1, f2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, results)
}

func TestWaitAll_Empty(t *testing.T) {
	t.Parallel()

	_, err := async.WaitAll[int]()
	assert.ErrorIs(t, err, async.ErrNoFutures)
}

func TestFire_RecoversPanic(t *testing.T) {
	t.Parallel()

	done := make(chan struct{})
	async.Fire(nil, "panicky", func(ctx context.Context) error {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("fired task never ran")
	}
}
