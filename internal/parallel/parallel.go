// Package parallel splits per-pixel loops across CPU cores.
package parallel

import (
	"runtime"
	"sync"
)

// minChunk keeps tiny rasters on a single goroutine.
const minChunk = 4096

// Workers resolves a requested worker count; n <= 0 means all cores.
func Workers(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// chunks divides [0,n) into at most workers contiguous ranges.
func chunks(n, workers int) int {
	workers = Workers(workers)
	if limit := (n + minChunk - 1) / minChunk; workers > limit {
		workers = limit
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// For runs fn over contiguous sub-ranges of [0,n) on up to workers goroutines
// and waits for all of them. Ranges never overlap.
func For(n, workers int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	numChunks := chunks(n, workers)
	if numChunks == 1 {
		fn(0, n)
		return
	}

	perChunk := (n + numChunks - 1) / numChunks
	var wg sync.WaitGroup
	for c := 0; c < numChunks; c++ {
		start := c * perChunk
		end := start + perChunk
		if end > n {
			end = n
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
