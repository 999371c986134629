// Package workerpool provides a bounded goroutine pool for controlling
// request concurrency during bursts. Workers are started lazily and
// reused across tasks, so a 50-request burst with a cap of 10 never holds
// more than 10 requests in flight.
package workerpool

import (
	"sync"
	"sync/atomic"
)

// Pool manages a fixed set of worker goroutines.
type Pool struct {
	workers int32
	tasks   chan func()
	running int32
	closed  int32
	wg      sync.WaitGroup
}

// New creates a pool with the given worker cap. Non-positive caps are
// coerced to 1.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		workers: int32(workers),
		tasks:   make(chan func(), workers*2),
	}
}

// Submit queues a task for execution by an available worker, blocking if
// the queue is full. Returns false if the pool is closed.
func (p *Pool) Submit(task func()) bool {
	if task == nil || atomic.LoadInt32(&p.closed) == 1 {
		return false
	}

	// Spawn a worker if below the cap.
	for {
		running := atomic.LoadInt32(&p.running)
		if running >= p.workers {
			break
		}
		if atomic.CompareAndSwapInt32(&p.running, running, running+1) {
			p.wg.Add(1)
			go p.worker()
			break
		}
	}

	p.tasks <- task
	return true
}

func (p *Pool) worker() {
	defer func() {
		atomic.AddInt32(&p.running, -1)
		p.wg.Done()
	}()
	for task := range p.tasks {
		task()
	}
}

// Running returns the current number of live workers.
func (p *Pool) Running() int {
	return int(atomic.LoadInt32(&p.running))
}

// Cap returns the worker capacity.
func (p *Pool) Cap() int {
	return int(atomic.LoadInt32(&p.workers))
}

// Close stops accepting tasks and blocks until queued tasks finish.
func (p *Pool) Close() {
	if !atomic.CompareAndSwapInt32(&p.closed, 0, 1) {
		return
	}
	close(p.tasks)
	p.wg.Wait()
}
