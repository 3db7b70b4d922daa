package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/draftqueue/pkg/logger"
)

func startLoop(t *testing.T) *Loop {
	t.Helper()

	lp := New(logger.InitializeTestZapLogger())
	require.NoError(t, lp.Start(context.Background()))
	t.Cleanup(func() { _ = lp.Stop() })
	return lp
}

func TestLoop_RunsReactionsInOrder(t *testing.T) {
	lp := startLoop(t)

	var got []int
	for i := 0; i < 100; i++ {
		lp.Post(func() { got = append(got, i) })
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, lp.Flush(ctx))

	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestLoop_DoWaitsForCompletion(t *testing.T) {
	lp := startLoop(t)

	ran := false
	require.NoError(t, lp.Do(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestLoop_FlushWaitsForNestedPosts(t *testing.T) {
	lp := startLoop(t)

	depth := 0
	var step func()
	step = func() {
		depth++
		if depth < 50 {
			lp.Post(step)
		}
	}
	lp.Post(step)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, lp.Flush(ctx))

	var final int
	require.NoError(t, lp.Do(ctx, func() { final = depth }))
	assert.Equal(t, 50, final)
}

func TestLoop_RecoversFromPanics(t *testing.T) {
	lp := startLoop(t)

	lp.Post(func() { panic("boom") })

	ran := false
	require.NoError(t, lp.Do(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestLoop_SerializesConcurrentPosters(t *testing.T) {
	lp := startLoop(t)

	counter := 0
	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				lp.Post(func() { counter++ })
			}
		}()
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var got int
	require.NoError(t, lp.Flush(ctx))
	require.NoError(t, lp.Do(ctx, func() { got = counter }))
	assert.Equal(t, 16*200, got)
}

func TestLoop_StartStopLifecycle(t *testing.T) {
	lp := New(logger.InitializeTestZapLogger())

	require.ErrorIs(t, lp.Stop(), ErrLoopNotRunning)
	require.NoError(t, lp.Start(context.Background()))
	require.ErrorIs(t, lp.Start(context.Background()), ErrLoopRunning)
	require.NoError(t, lp.Stop())
}

func TestLoop_DoHonoursContext(t *testing.T) {
	lp := New(logger.InitializeTestZapLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := lp.Do(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
