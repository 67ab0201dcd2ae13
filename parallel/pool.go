package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool runs data-parallel loops on a fixed set of persistent workers.
// A nil *Pool is valid and runs everything on the calling goroutine.
type Pool struct {
	numWorkers int
	work       chan func()
	closed     atomic.Bool
	cancel     func()
	wg         sync.WaitGroup
}

// New starts a pool. numWorkers < 1 means GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		numWorkers: numWorkers,
		cancel:     func() {},
	}
	if numWorkers == 1 {
		return pool
	}

	pool.work = make(chan func(), numWorkers*2)
	for range numWorkers {
		pool.wg.Go(func() {
			for f := range pool.work {
				f()
			}
		})
	}
	pool.cancel = sync.OnceFunc(func() { close(pool.work) })

	return pool
}

// NumWorkers returns the number of workers, 1 for a nil pool.
func (p *Pool) NumWorkers() int {
	if p == nil {
		return 1
	}
	return p.numWorkers
}

// Close stops the workers after pending work finishes. Loops submitted
// afterwards run sequentially.
func (p *Pool) Close() {
	if p == nil {
		return
	}
	p.closed.Store(true)
	p.cancel()
	p.wg.Wait()
}

// ParallelFor splits [0, n) into contiguous ranges and calls fn once per
// range, blocking until all of them return. fn must not call ParallelFor on
// the same pool.
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if p == nil || p.work == nil || p.closed.Load() {
		fn(0, n)
		return
	}

	workers := min(p.numWorkers, n)
	if workers == 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		p.work <- func() {
			defer wg.Done()
			fn(start, end)
		}
	}
	wg.Wait()
}
