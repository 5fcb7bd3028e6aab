// Package elevsync holds the waiting primitives shared by the elevator, doors and controller.
//
// A Signal plays the role of a condition variable that can be abandoned through a context:
// the owner broadcasts by closing the current channel and installing a fresh one, and waiters
// select on the channel they observed together with ctx.Done().
package elevsync

import (
	"context"
	"sync"
	"time"
)

type Signal struct {
	ch chan struct{}
}

func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{})}
}

// Channel returns the channel closed by the next Broadcast.
// The caller must hold the lock that guards the predicate being waited on.
func (s *Signal) Channel() <-chan struct{} {
	return s.ch
}

// Broadcast wakes every current waiter. The caller must hold the guarding lock.
func (s *Signal) Broadcast() {
	close(s.ch)
	s.ch = make(chan struct{})
}

// Await blocks until cond holds. cond is evaluated with mu held; mu is released while waiting
// and is not held when Await returns.
func Await(ctx context.Context, mu sync.Locker, s *Signal, cond func() bool) error {
	mu.Lock()
	for !cond() {
		ch := s.Channel()
		mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
		mu.Lock()
	}
	mu.Unlock()
	return nil
}

// AwaitTimeout is Await bounded by timeout. It reports whether cond held before the timeout.
// A timeout is not an error; cancellation of ctx is.
func AwaitTimeout(ctx context.Context, mu sync.Locker, s *Signal, cond func() bool, timeout time.Duration) (bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	mu.Lock()
	for !cond() {
		ch := s.Channel()
		mu.Unlock()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
			return false, nil
		case <-ch:
		}
		mu.Lock()
	}
	mu.Unlock()
	return true, nil
}

// Sleep suspends for d simulated time, returning early with ctx.Err() on cancellation.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
