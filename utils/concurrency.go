package utils

import (
	"sync"
	"time"
)

// WorkerPool manages a pool of goroutines with rate limiting.
type WorkerPool struct {
	maxWorkers  int
	rateLimitMs int
	semaphore   chan struct{}
	wg          sync.WaitGroup
	mu          sync.Mutex
	lastRequest time.Time
}

// NewWorkerPool creates a WorkerPool with the given concurrency and rate limit.
func NewWorkerPool(maxWorkers, rateLimitMs int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		maxWorkers:  maxWorkers,
		rateLimitMs: rateLimitMs,
		semaphore:   make(chan struct{}, maxWorkers),
	}
}

// Submit enqueues a job for execution in the pool. It blocks while all
// workers are busy.
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.semaphore <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		wp.Throttle()
		job()
	}()
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Throttle sleeps until at least the configured interval has passed since the
// previous throttled call. Callers outside the pool use it to pace requests
// on the same clock.
func (wp *WorkerPool) Throttle() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	minInterval := time.Duration(wp.rateLimitMs) * time.Millisecond
	if !wp.lastRequest.IsZero() {
		if elapsed := time.Since(wp.lastRequest); elapsed < minInterval {
			time.Sleep(minInterval - elapsed)
		}
	}
	wp.lastRequest = time.Now()
}

// DateSet is a thread-safe set of calendar dates (YYYY-MM-DD) that have
// already been claimed by a worker.
type DateSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewDateSet creates an empty DateSet.
func NewDateSet() *DateSet {
	return &DateSet{seen: make(map[string]struct{})}
}

// Add returns true if the date was newly added, false if already present.
func (s *DateSet) Add(date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[date]; exists {
		return false
	}
	s.seen[date] = struct{}{}
	return true
}

// Size returns the number of unique dates tracked.
func (s *DateSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
