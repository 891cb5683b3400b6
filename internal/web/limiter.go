package web

// limiter.go bounds how many dataset runs execute at once.
//
// A run loads and cleans a whole file in memory, so parallel uploads are
// capped by a semaphore. Requests that cannot get a slot within maxWait fail
// with errTooManyRuns. Shutdown uses WaitForDrain to let active runs finish.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// errTooManyRuns is returned when every run slot stays busy for maxWait.
var errTooManyRuns = errors.New("too many concurrent runs, please try again later")

const (
	defaultMaxConcurrentRuns = 2
	defaultRunWait           = 30 * time.Second
)

// runLimiter is a counting semaphore over dataset runs.
type runLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// newRunLimiter allows maxConcurrent runs; zero values take the defaults.
func newRunLimiter(maxConcurrent int, maxWait time.Duration) *runLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentRuns
	}
	if maxWait <= 0 {
		maxWait = defaultRunWait
	}
	return &runLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a slot. The caller must Release it.
func (l *runLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errTooManyRuns
	}
}

// Release frees a slot taken by Acquire.
func (l *runLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.semaphore
}

// Active returns the number of runs in progress.
func (l *runLimiter) Active() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until no run is active or ctx is done.
func (l *runLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.Active() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunStatus reports run slot usage in /healthz.
type RunStatus struct {
	Active        int `json:"active"`
	MaxConcurrent int `json:"max_concurrent"`
}

func (l *runLimiter) Status() RunStatus {
	return RunStatus{Active: l.Active(), MaxConcurrent: cap(l.semaphore)}
}
