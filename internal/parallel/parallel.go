// Package parallel provides parallel execution utilities for the recurrent kernels.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum elements per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64, // Typical cache line aware chunk.
	}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinChunkSize {
		// Sequential fallback.
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForRows executes f(row) for row in [0, rows) where each row covers cols
// elements of a row-major buffer. The sequential-fallback and chunking
// decisions are made on total element count, so a small batch of wide rows
// still parallelizes while a small batch of narrow rows stays sequential.
func ForRows(rows, cols int, f func(row int), cfg Config) {
	if cols < 1 {
		cols = 1
	}
	if !cfg.Enabled || rows*cols < cfg.MinChunkSize {
		for row := 0; row < rows; row++ {
			f(row)
		}
		return
	}

	// Rescale the per-goroutine minimum from elements to rows.
	rowCfg := cfg
	rowCfg.MinChunkSize = max((cfg.MinChunkSize+cols-1)/cols, 1)
	For(rows, f, rowCfg)
}
