package drain

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const interval = 500 * time.Millisecond

func startDrain(t *testing.T, d *Drain) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	return cancel, done
}

func TestDrain_RunsTasksOnTick(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := New(interval, zerolog.Nop())
		cancel, done := startDrain(t, d)

		var ran atomic.Int32
		d.Enqueue("count", func(context.Context) error {
			ran.Add(1)
			return nil
		})

		time.Sleep(interval / 2)
		synctest.Wait()
		assert.Equal(t, int32(0), ran.Load(), "tasks wait for the tick")
		assert.Equal(t, 1, d.Pending())

		time.Sleep(interval / 2)
		synctest.Wait()
		assert.Equal(t, int32(1), ran.Load())
		assert.Equal(t, 0, d.Pending())

		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
		d.Wait()
	})
}

func TestDrain_FailuresAreNotRetried(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := New(interval, zerolog.Nop())
		cancel, done := startDrain(t, d)

		var calls atomic.Int32
		d.Enqueue("fail", func(context.Context) error {
			calls.Add(1)
			return errors.New("upstream down")
		})
		d.Enqueue("panic", func(context.Context) error {
			calls.Add(1)
			panic("boom")
		})

		time.Sleep(5 * interval)
		synctest.Wait()
		assert.Equal(t, int32(2), calls.Load())

		cancel()
		<-done
		d.Wait()
	})
}

func TestDrain_TasksRunIndependently(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := New(interval, zerolog.Nop())
		cancel, done := startDrain(t, d)

		block := make(chan struct{})
		var fast atomic.Bool
		d.Enqueue("slow", func(context.Context) error {
			<-block
			return nil
		})
		d.Enqueue("fast", func(context.Context) error {
			fast.Store(true)
			return nil
		})

		time.Sleep(interval)
		synctest.Wait()
		assert.True(t, fast.Load(), "a slow task must not hold back the others")

		close(block)
		cancel()
		<-done
		d.Wait()
	})
}

func TestDrain_TaskEnqueuedByTaskRunsNextTick(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := New(interval, zerolog.Nop())
		cancel, done := startDrain(t, d)

		var second atomic.Bool
		d.Enqueue("first", func(context.Context) error {
			d.Enqueue("second", func(context.Context) error {
				second.Store(true)
				return nil
			})
			return nil
		})

		time.Sleep(interval)
		synctest.Wait()
		assert.False(t, second.Load())

		time.Sleep(interval)
		synctest.Wait()
		assert.True(t, second.Load())

		cancel()
		<-done
		d.Wait()
	})
}

func TestDrain_TasksSeeShutdown(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := New(interval, zerolog.Nop())
		cancel, done := startDrain(t, d)

		var taskErr atomic.Value
		d.Enqueue("long", func(ctx context.Context) error {
			<-ctx.Done()
			taskErr.Store(ctx.Err())
			return ctx.Err()
		})

		time.Sleep(interval)
		synctest.Wait()

		cancel()
		<-done
		d.Wait()
		require.NotNil(t, taskErr.Load())
		assert.ErrorIs(t, taskErr.Load().(error), context.Canceled)
	})
}

func TestDrain_PendingKeptAcrossRestart(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := New(interval, zerolog.Nop())
		cancel, done := startDrain(t, d)

		var ran atomic.Bool
		d.Enqueue("late", func(context.Context) error {
			ran.Store(true)
			return nil
		})
		cancel()
		<-done
		d.Wait()

		assert.False(t, ran.Load())
		assert.Equal(t, 1, d.Pending())

		cancel, done = startDrain(t, d)
		time.Sleep(interval + time.Millisecond)
		synctest.Wait()
		cancel()
		<-done
		d.Wait()

		assert.True(t, ran.Load())
		assert.Equal(t, 0, d.Pending())
	})
}

func TestNew_DefaultInterval(t *testing.T) {
	d := New(0, zerolog.Nop())
	assert.Equal(t, 500*time.Millisecond, d.interval)
}
