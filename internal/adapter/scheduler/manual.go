// Package scheduler provides ports.FrameScheduler implementations for hosts
// without a display refresh callback.
package scheduler

import (
	"sync"
	"time"

	"github.com/tejashwikalptaru/beatscope/internal/ports"
)

// request is a pending frame callback.
type request struct {
	handle ports.FrameHandle
	cb     ports.FrameCallback
}

// Manual fires frames only when Step is called. It is used by tests and by
// hosts that drive frames from their own clock.
//
// Thread-safety: This implementation is thread-safe.
type Manual struct {
	mu      sync.Mutex
	next    ports.FrameHandle
	pending []request
}

// NewManual creates a manual scheduler with nothing pending.
func NewManual() *Manual {
	return &Manual{}
}

// RequestFrame implements ports.FrameScheduler.
func (m *Manual) RequestFrame(cb ports.FrameCallback) ports.FrameHandle {
	if cb == nil {
		panic("frame callback cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.pending = append(m.pending, request{handle: m.next, cb: cb})
	return m.next
}

// CancelFrame implements ports.FrameScheduler.
func (m *Manual) CancelFrame(handle ports.FrameHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = removeRequest(m.pending, handle)
}

// Step fires every callback pending at the time of the call and returns how
// many fired. Callbacks requested while stepping wait for the next Step.
func (m *Manual) Step(now time.Time) int {
	m.mu.Lock()
	due := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, r := range due {
		r.cb(now)
	}
	return len(due)
}

// Pending returns the number of outstanding requests.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

func removeRequest(reqs []request, handle ports.FrameHandle) []request {
	for i, r := range reqs {
		if r.handle == handle {
			return append(reqs[:i], reqs[i+1:]...)
		}
	}
	return reqs
}

// Verify interface implementation at compile time.
var _ ports.FrameScheduler = (*Manual)(nil)
