package utils

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDateSetNoDuplicates(t *testing.T) {
	s := NewDateSet()

	added := s.Add("2024-05-03")
	if !added {
		t.Error("first Add should return true")
	}

	added = s.Add("2024-05-03")
	if added {
		t.Error("second Add of same date should return false")
	}

	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
}

func TestDateSetConcurrency(t *testing.T) {
	s := NewDateSet()
	var added int64

	pool := NewWorkerPool(10, 0)
	for i := 0; i < 100; i++ {
		pool.Submit(func() {
			if s.Add("2024-05-03") {
				atomic.AddInt64(&added, 1)
			}
		})
	}
	pool.Wait()

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
}

func TestWorkerPoolRateLimit(t *testing.T) {
	rateLimitMs := 100
	pool := NewWorkerPool(1, rateLimitMs)

	var mu sync.Mutex
	var timestamps []time.Time

	for i := 0; i < 3; i++ {
		pool.Submit(func() {
			mu.Lock()
			timestamps = append(timestamps, time.Now())
			mu.Unlock()
		})
	}
	pool.Wait()

	if len(timestamps) != 3 {
		t.Fatalf("expected 3 jobs to run, got %d", len(timestamps))
	}
	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		min := time.Duration(rateLimitMs) * time.Millisecond
		if gap < min {
			t.Errorf("gap between job %d and %d: %v < minimum %v", i-1, i, gap, min)
		}
	}
}

func TestWorkerPoolFirstCallNotDelayed(t *testing.T) {
	pool := NewWorkerPool(1, 500)

	start := time.Now()
	pool.Throttle()
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first Throttle should not sleep, took %v", elapsed)
	}
}
