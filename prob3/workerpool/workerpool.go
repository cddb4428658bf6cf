// Copyright 2025 The go-prob3 Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides a persistent, reusable worker pool for
// event-parallel computation. A Pool is created once per engine and reused
// across many oscillation-parameter passes, so the per-pass cost is a handful
// of channel sends rather than goroutine spawns.
//
// Work is handed out as contiguous event ranges, each tagged with a lane
// index in [0, NumWorkers). At most one in-flight range carries a given lane,
// which lets callers bind per-lane state (scratch workspaces) without
// synchronization inside the kernel.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	pool.ParallelFor(batch.Len(), 64, func(lane, start, end int) {
//	    ws := workspaces[lane]
//	    for i := start; i < end; i++ {
//	        propagate(ws, i)
//	    }
//	})
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a persistent worker pool. Workers are spawned once at creation and
// reused until Close.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once
	closed     atomic.Bool
}

// workItem is one lane's share of a parallel operation.
type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
}

// New creates a pool with the given number of workers, spawned immediately.
// If numWorkers <= 0, GOMAXPROCS is used.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan workItem, numWorkers*2),
	}

	for i := 0; i < numWorkers; i++ {
		go p.worker()
	}

	return p
}

// worker is the main loop of each persistent worker goroutine.
func (p *Pool) worker() {
	for item := range p.workC {
		item.fn()
		item.barrier.Done()
	}
}

// NumWorkers returns the number of workers, which is also the number of
// lanes ParallelFor distributes work across.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Closed reports whether Close has been called.
func (p *Pool) Closed() bool {
	return p.closed.Load()
}

// Close shuts down the pool. Pending work completes. Safe to call twice.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// ParallelFor splits [0, n) into at most NumWorkers contiguous ranges of at
// least minChunk indices each and executes fn on them concurrently. Each
// range receives a distinct lane index, so per-lane state needs no locking.
// Blocks until all ranges complete.
//
// On a closed pool, or when the split yields a single range, fn runs
// in the calling goroutine with lane 0.
func (p *Pool) ParallelFor(n, minChunk int, fn func(lane, start, end int)) {
	if n <= 0 {
		return
	}
	if minChunk < 1 {
		minChunk = 1
	}

	lanes := min(p.numWorkers, (n+minChunk-1)/minChunk)

	if lanes == 1 || p.closed.Load() {
		fn(0, 0, n)
		return
	}

	chunkSize := (n + lanes - 1) / lanes

	var wg sync.WaitGroup
	wg.Add(lanes)

	for lane := 0; lane < lanes; lane++ {
		lane := lane
		start := lane * chunkSize
		end := min(start+chunkSize, n)
		if start >= n {
			wg.Done()
			continue
		}

		p.workC <- workItem{
			fn: func() {
				fn(lane, start, end)
			},
			barrier: &wg,
		}
	}

	wg.Wait()
}
