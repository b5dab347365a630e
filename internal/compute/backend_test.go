package compute

import (
	"sync"
	"testing"
)

func TestSerialCoversRange(t *testing.T) {
	b := NewSerial()
	visited := make([]bool, 100)

	b.Run(100, 16, func(start, end int) {
		for i := start; i < end; i++ {
			visited[i] = true
		}
	})

	for i, v := range visited {
		if !v {
			t.Errorf("index %d not visited", i)
		}
	}
}

func TestCPUCoversRangeExactlyOnce(t *testing.T) {
	b := NewCPUWithWorkers(4)
	counts := make([]int, 1000)
	var mu sync.Mutex

	b.Run(1000, 16, func(start, end int) {
		mu.Lock()
		defer mu.Unlock()
		for i := start; i < end; i++ {
			counts[i]++
		}
	})

	for i, c := range counts {
		if c != 1 {
			t.Errorf("index %d visited %d times", i, c)
		}
	}
}

func TestCPUSmallBatchRunsInline(t *testing.T) {
	b := NewCPUWithWorkers(8)
	calls := 0

	b.Run(4, 16, func(start, end int) {
		calls++
		if start != 0 || end != 4 {
			t.Errorf("expected single chunk [0,4), got [%d,%d)", start, end)
		}
	})

	if calls != 1 {
		t.Errorf("expected 1 chunk, got %d", calls)
	}
}

func TestCPUEmpty(t *testing.T) {
	b := NewCPU()
	b.Run(0, 16, func(start, end int) {
		t.Error("fn should not be called for empty range")
	})
}

func TestSelect(t *testing.T) {
	if b := Select("serial"); b == nil || b.Name() != "serial" {
		t.Error("expected serial backend")
	}
	if b := Select("cpu"); b == nil || b.Name() != "cpu" {
		t.Error("expected cpu backend")
	}
	if b := Select("gpu"); b != nil {
		t.Error("expected nil for unknown backend")
	}
}
