// Package async provides the background execution primitives the monitoring
// orchestrator and HTTP layer build on: panic-safe fire-and-forget tasks and
// a bounded worker pool with per-task timeouts.
package async

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"
)

// SafeGo runs fn in its own goroutine with panic recovery and a bounded
// timeout. Use it instead of a bare `go func()` for fire-and-forget work
// such as audit writes, where a panic must never take down the caller.
func SafeGo(parentCtx context.Context, timeout time.Duration, taskName string, fn func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(parentCtx, timeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				log.Printf("[async] panic in %s: %v\n%s", taskName, r, debug.Stack())
			}
		}()

		if err := fn(ctx); err != nil {
			log.Printf("[async] error in %s: %v", taskName, err)
		}
	}()
}

// ErrPoolClosed is returned by Submit after the pool has shut down.
var ErrPoolClosed = fmt.Errorf("worker pool shut down")

// WorkerPool executes submitted tasks on a fixed number of workers. Each
// task runs under its own timeout-bounded context and panic recovery, so a
// misbehaving task cannot hang or crash a worker permanently.
type WorkerPool struct {
	taskName string
	timeout  time.Duration
	workCh   chan func(context.Context)
	doneCh   chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once

	// mu guards closed and the workCh send: Shutdown may only close
	// workCh once no Submit holds the read side.
	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool starts workers goroutines that drain submitted tasks.
// timeout bounds each individual task's execution.
func NewWorkerPool(ctx context.Context, workers int, taskName string, timeout time.Duration) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	pool := &WorkerPool{
		taskName: taskName,
		timeout:  timeout,
		workCh:   make(chan func(context.Context), workers*2),
		doneCh:   make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}

	go func() {
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				pool.worker(id)
			}(i)
		}
		wg.Wait()
		close(pool.doneCh)
	}()

	return pool
}

// Submit queues a task for execution. It blocks only when every worker is
// busy and the buffer is full. After Shutdown (or parent context
// cancellation) it returns ErrPoolClosed.
func (p *WorkerPool) Submit(fn func(context.Context)) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.workCh <- fn:
		return nil
	case <-p.ctx.Done():
		return ErrPoolClosed
	}
}

// Shutdown stops accepting work and waits up to timeout for in-flight
// tasks to finish. The work channel is closed only once every in-flight
// Submit has released its lock, so a racing Submit gets ErrPoolClosed
// rather than a send on a closed channel.
func (p *WorkerPool) Shutdown(timeout time.Duration) error {
	var err error
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.workCh)
		p.mu.Unlock()

		select {
		case <-p.doneCh:
		case <-time.After(timeout):
			err = fmt.Errorf("worker pool shutdown timed out after %v", timeout)
		}
		p.cancel()
	})
	return err
}

func (p *WorkerPool) worker(id int) {
	for {
		select {
		case <-p.ctx.Done():
			return
		case fn, ok := <-p.workCh:
			if !ok {
				return
			}
			p.runTask(id, fn)
		}
	}
}

func (p *WorkerPool) runTask(id int, fn func(context.Context)) {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[async] panic in %s worker %d: %v\n%s", p.taskName, id, r, debug.Stack())
		}
	}()
	fn(ctx)
}
