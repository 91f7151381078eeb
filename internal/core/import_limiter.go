package core

// import_limiter.go serializes imports.
//
// Each import reads the persisted set, merges into it and writes it back, so two
// imports running at once would lose one another's changes. The limiter hands out
// a fixed number of slots (one for imports); a caller that cannot get a slot
// within maxWait fails with ErrTooManyImports.
//
// WaitForDrain takes every slot, which blocks until running imports finish.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyImports is returned when no import slot frees up within the wait time.
// Clients should retry after a short delay.
var ErrTooManyImports = errors.New("another import is in progress, please try again later")

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// ImportLimiter bounds concurrent imports with a semaphore.
type ImportLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration
	active    atomic.Int32
}

// NewImportLimiter creates a limiter with the given number of slots.
// Requests that cannot acquire a slot within maxWait receive ErrTooManyImports.
func NewImportLimiter(slots int, maxWait time.Duration) *ImportLimiter {
	if slots <= 0 {
		slots = 1
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &ImportLimiter{
		semaphore: make(chan struct{}, slots),
		maxWait:   maxWait,
	}
}

// Acquire waits for a slot. The caller must call Release when done.
func (l *ImportLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.semaphore <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-timer.C:
		return ErrTooManyImports
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot without blocking and reports whether it got one.
func (l *ImportLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *ImportLimiter) Release() {
	l.active.Add(-1)
	<-l.semaphore
}

// ActiveCount returns the number of running imports.
func (l *ImportLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// WaitForDrain blocks until no import is running or ctx is done.
// Used for graceful shutdown.
func (l *ImportLimiter) WaitForDrain(ctx context.Context) error {
	taken := 0
	defer func() {
		for ; taken > 0; taken-- {
			<-l.semaphore
		}
	}()

	for taken < cap(l.semaphore) {
		select {
		case l.semaphore <- struct{}{}:
			taken++
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// ImportLimiterStatus is a snapshot of the limiter.
type ImportLimiterStatus struct {
	Active    int `json:"active"`
	Available int `json:"available"`
	Slots     int `json:"slots"`
}

// Status returns the current limiter state for monitoring.
func (l *ImportLimiter) Status() ImportLimiterStatus {
	return ImportLimiterStatus{
		Active:    l.ActiveCount(),
		Available: cap(l.semaphore) - len(l.semaphore),
		Slots:     cap(l.semaphore),
	}
}
