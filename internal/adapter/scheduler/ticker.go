package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/beatscope/internal/domain"
	"github.com/tejashwikalptaru/beatscope/internal/ports"
)

// DefaultFrameRate is used when a non-positive rate is requested.
const DefaultFrameRate = 60

// Ticker is a fixed-rate frame scheduler for headless hosts. Pending callbacks
// fire together on each tick, on the ticker goroutine.
//
// The context passed to Start is the cancellation token: once it is done no
// callback fires and new requests are dropped.
//
// Thread-safety: This implementation is thread-safe.
type Ticker struct {
	logger   *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	closed  bool
	next    ports.FrameHandle
	pending []request
	ticks   uint64
}

// NewTicker creates a stopped ticker firing fps times per second.
func NewTicker(fps int) *Ticker {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return &Ticker{
		logger:   slog.New(slog.DiscardHandler),
		interval: time.Second / time.Duration(fps),
	}
}

// SetLogger sets the logger for this ticker.
// This should be called after construction before Start.
func (t *Ticker) SetLogger(logger *slog.Logger) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logger = logger
}

// Interval returns the time between ticks.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Start launches the ticker goroutine. It runs until ctx is done or Close.
func (t *Ticker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return domain.ErrSchedulerClosed
	}
	if t.done != nil {
		return fmt.Errorf("ticker already started")
	}

	t.ctx, t.cancel = context.WithCancel(ctx)
	t.done = make(chan struct{})
	go t.run(t.ctx, t.done)

	t.logger.Debug("frame ticker started", slog.Duration("interval", t.interval))
	return nil
}

// Close stops the ticker, drops pending requests and waits for the goroutine.
// Calling Close more than once is safe.
func (t *Ticker) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.pending = nil
	cancel, done := t.cancel, t.done
	t.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}

// RequestFrame implements ports.FrameScheduler. After cancellation it returns
// the zero handle and the callback never fires.
func (t *Ticker) RequestFrame(cb ports.FrameCallback) ports.FrameHandle {
	if cb == nil {
		panic("frame callback cannot be nil")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || (t.ctx != nil && t.ctx.Err() != nil) {
		return 0
	}
	t.next++
	t.pending = append(t.pending, request{handle: t.next, cb: cb})
	return t.next
}

// CancelFrame implements ports.FrameScheduler.
func (t *Ticker) CancelFrame(handle ports.FrameHandle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = removeRequest(t.pending, handle)
}

// Ticks returns how many ticks have fired.
func (t *Ticker) Ticks() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticks
}

func (t *Ticker) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tk.C:
			t.fire(ctx, now)
		}
	}
}

func (t *Ticker) fire(ctx context.Context, now time.Time) {
	t.mu.Lock()
	due := t.pending
	t.pending = nil
	t.ticks++
	logger := t.logger
	t.mu.Unlock()

	for _, r := range due {
		if ctx.Err() != nil {
			return
		}
		t.call(logger, r, now)
	}
}

// call runs a callback and recovers from panics so one bad frame does not stop the ticker.
func (t *Ticker) call(logger *slog.Logger, r request, now time.Time) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("frame callback panicked",
				slog.Any("panic", rec),
				slog.Uint64("handle", uint64(r.handle)))
		}
	}()
	r.cb(now)
}

// Verify interface implementation at compile time.
var _ ports.FrameScheduler = (*Ticker)(nil)
