package compute

import (
	"runtime"
	"sync"
)

// CPU fans work out over a fixed number of goroutines. Batches smaller than
// minChunk run serially since goroutine overhead dominates below that size.
type CPU struct {
	workers int
}

func NewCPU() *CPU {
	return &CPU{workers: runtime.NumCPU()}
}

func NewCPUWithWorkers(workers int) *CPU {
	if workers < 1 {
		workers = 1
	}
	return &CPU{workers: workers}
}

func (c *CPU) Name() string { return "cpu" }

func (c *CPU) Workers() int { return c.workers }

func (c *CPU) Run(n, minChunk int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if n <= minChunk || c.workers <= 1 {
		fn(0, n)
		return
	}

	workers := c.workers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}

		go func(s, e int) {
			defer wg.Done()
			if s < e {
				fn(s, e)
			}
		}(start, end)
	}

	wg.Wait()
}
