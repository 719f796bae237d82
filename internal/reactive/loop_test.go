package reactive

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopRunsTasksInOrder(t *testing.T) {
	loop := NewLoop(8, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = loop.Run(ctx) }()

	var (
		mu  sync.Mutex
		got []int
	)
	for i := 0; i < 5; i++ {
		i := i
		require.NoError(t, loop.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		}))
	}

	require.NoError(t, loop.Do(ctx, func() {}))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLoopSurvivesPanic(t *testing.T) {
	loop := NewLoop(1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()

	require.NoError(t, loop.Post(func() { panic("boom") }))

	ran := false
	require.NoError(t, loop.Do(ctx, func() { ran = true }))
	assert.True(t, ran)
}

func TestLoopStop(t *testing.T) {
	loop := NewLoop(1, nil)
	done := make(chan error, 1)
	go func() { done <- loop.Run(context.Background()) }()

	loop.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}

	assert.ErrorIs(t, loop.Post(func() {}), ErrLoopStopped)
	assert.ErrorIs(t, loop.Do(context.Background(), func() {}), ErrLoopStopped)
}

func TestLoopContextCancel(t *testing.T) {
	loop := NewLoop(1, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	<-loop.Done()
}
