package visualizer

import (
	"sync"
	"time"

	"github.com/tejashwikalptaru/beatscope/internal/domain"
	"github.com/tejashwikalptaru/beatscope/internal/ports"
)

// Loop is a self-rescheduling draw cycle: every frame callback draws once and
// requests the next callback, until Stop.
//
// State machine: Idle -> Scheduled -> Drawing -> Scheduled -> ... -> Cancelled.
// Cancelled is terminal.
//
// Thread-safety: Start, Stop and State may be called from any goroutine. The
// loop lock is never held while draw runs.
type Loop struct {
	scheduler ports.FrameScheduler
	draw      ports.FrameCallback

	mu     sync.Mutex
	state  domain.LoopState
	handle ports.FrameHandle
	frames uint64
}

// NewLoop creates an idle loop that calls draw once per scheduled frame.
func NewLoop(scheduler ports.FrameScheduler, draw ports.FrameCallback) *Loop {
	return &Loop{
		scheduler: scheduler,
		draw:      draw,
		state:     domain.LoopIdle,
	}
}

// Start requests the first frame. It returns false unless the loop was idle.
func (l *Loop) Start() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != domain.LoopIdle {
		return false
	}
	l.state = domain.LoopScheduled
	l.handle = l.scheduler.RequestFrame(l.tick)
	return true
}

// Stop cancels the pending frame and moves the loop to Cancelled.
// A frame already drawing finishes but does not reschedule.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == domain.LoopCancelled {
		return
	}
	if l.handle != 0 {
		l.scheduler.CancelFrame(l.handle)
		l.handle = 0
	}
	l.state = domain.LoopCancelled
}

// State returns the current loop state.
func (l *Loop) State() domain.LoopState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Frames returns how many frames the loop has drawn.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

func (l *Loop) tick(now time.Time) {
	l.mu.Lock()
	if l.state != domain.LoopScheduled {
		l.mu.Unlock()
		return
	}
	l.state = domain.LoopDrawing
	l.handle = 0
	l.mu.Unlock()

	l.draw(now)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.frames++
	if l.state != domain.LoopDrawing {
		return
	}
	l.state = domain.LoopScheduled
	l.handle = l.scheduler.RequestFrame(l.tick)
}
