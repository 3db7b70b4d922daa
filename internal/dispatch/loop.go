// Package dispatch runs state-changing reactions one at a time on a single
// goroutine. Everything that touches queue membership or ready-check tables is
// submitted here, so that state needs no locks of its own.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/vogiaan1904/draftqueue/pkg/logger"
)

var (
	ErrLoopRunning    = errors.New("dispatch loop is already running")
	ErrLoopNotRunning = errors.New("dispatch loop is not running")
)

type Loop struct {
	l logger.Logger

	mu      sync.Mutex
	pending []func()
	busy    bool
	waiters []chan struct{}
	running bool

	wake   chan struct{}
	stopCh chan struct{}
	wg     sync.WaitGroup
}

func New(l logger.Logger) *Loop {
	return &Loop{
		l:    l,
		wake: make(chan struct{}, 1),
	}
}

func (lp *Loop) Start(ctx context.Context) error {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	if lp.running {
		return ErrLoopRunning
	}

	lp.running = true
	lp.stopCh = make(chan struct{})

	lp.wg.Add(1)
	go lp.run(ctx, lp.stopCh)

	lp.l.Info(ctx, "Dispatch loop started")
	return nil
}

// Stop halts the loop after the reaction in progress. Pending reactions are dropped.
func (lp *Loop) Stop() error {
	lp.mu.Lock()
	if !lp.running {
		lp.mu.Unlock()
		return ErrLoopNotRunning
	}
	lp.running = false
	close(lp.stopCh)
	lp.mu.Unlock()

	lp.wg.Wait()

	lp.l.Info(context.Background(), "Dispatch loop stopped")
	return nil
}

// Post enqueues fn. It never blocks and is safe to call from inside a reaction.
func (lp *Loop) Post(fn func()) {
	lp.mu.Lock()
	lp.pending = append(lp.pending, fn)
	lp.mu.Unlock()

	select {
	case lp.wake <- struct{}{}:
	default:
	}
}

// Do enqueues fn and waits until it has run. It must not be called from inside
// a reaction.
func (lp *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	lp.Post(func() {
		defer close(done)
		fn()
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush waits until no reaction is running or pending, including reactions
// that were posted by other reactions in the meantime.
func (lp *Loop) Flush(ctx context.Context) error {
	lp.mu.Lock()
	if !lp.busy && len(lp.pending) == 0 {
		lp.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	lp.waiters = append(lp.waiters, ch)
	lp.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (lp *Loop) run(ctx context.Context, stopCh <-chan struct{}) {
	defer lp.wg.Done()

	for {
		lp.mu.Lock()
		if len(lp.pending) == 0 {
			lp.busy = false
			for _, ch := range lp.waiters {
				close(ch)
			}
			lp.waiters = nil
			lp.mu.Unlock()

			select {
			case <-lp.wake:
				continue
			case <-stopCh:
				return
			case <-ctx.Done():
				lp.l.Info(ctx, "Dispatch loop stopped due to context cancellation")
				return
			}
		}

		fn := lp.pending[0]
		lp.pending[0] = nil
		lp.pending = lp.pending[1:]
		lp.busy = true
		lp.mu.Unlock()

		lp.react(ctx, fn)

		select {
		case <-stopCh:
			return
		default:
		}
	}
}

func (lp *Loop) react(ctx context.Context, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			lp.l.Error(ctx, "dispatch.Loop.react: reaction panicked",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}
