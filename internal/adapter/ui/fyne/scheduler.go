package fyne

import (
	"sync"
	"time"

	fyneapp "fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/beatscope/internal/adapter/scheduler"
	"github.com/tejashwikalptaru/beatscope/internal/ports"
)

// AnimationScheduler is a ports.FrameScheduler driven by Fyne's animation
// runner, which ticks once per display refresh on the main goroutine.
//
// One endless animation steps the pending queue on every tick. Between Start
// and Stop requests fire in refresh order; outside that window they wait.
type AnimationScheduler struct {
	*scheduler.Manual

	mu      sync.Mutex
	anim    *fyneapp.Animation
	running bool
}

// NewAnimationScheduler creates a stopped scheduler.
func NewAnimationScheduler() *AnimationScheduler {
	s := &AnimationScheduler{Manual: scheduler.NewManual()}
	s.anim = fyneapp.NewAnimation(time.Second, func(float32) {
		s.Step(time.Now())
	})
	s.anim.Curve = fyneapp.AnimationLinear
	s.anim.RepeatCount = fyneapp.AnimationRepeatForever
	return s
}

// Start begins ticking. It needs a running Fyne app.
func (s *AnimationScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.anim.Start()
}

// Stop ends ticking. Pending requests are kept for a later Start.
func (s *AnimationScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.anim.Stop()
}

// Running reports whether the animation is ticking.
func (s *AnimationScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

var _ ports.FrameScheduler = (*AnimationScheduler)(nil)
