// Package service provides the application logic between the feature source
// and the views.
package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/beatscope/internal/domain"
	"github.com/tejashwikalptaru/beatscope/internal/ports"
)

// FeatureService relays snapshots from a FeatureSource onto the event bus.
// Every snapshot becomes a SnapshotUpdatedEvent with an increasing sequence
// number. When the source returns, a SourceStoppedEvent is published.
//
// All operations are thread-safe.
type FeatureService struct {
	// Dependencies (injected)
	logger *slog.Logger
	source ports.FeatureSource
	bus    ports.EventBus

	// State
	mu        sync.RWMutex
	running   bool
	closed    bool
	cancel    context.CancelFunc
	sequence  uint64
	latest    domain.AudioFeatureSnapshot
	hasLatest bool

	runWg sync.WaitGroup
}

// NewFeatureService creates a new feature service.
func NewFeatureService(
	logger *slog.Logger,
	source ports.FeatureSource,
	bus ports.EventBus,
) *FeatureService {
	s := &FeatureService{
		logger: logger.With(slog.String("service", "FeatureService")),
		source: source,
		bus:    bus,
	}
	s.logger.Debug("feature service initialized")
	return s
}

// Start runs the source on a new goroutine until ctx is done or Shutdown is called.
func (s *FeatureService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.NewServiceError("FeatureService", "Start", "service is shut down", domain.ErrSourceClosed)
	}
	if s.running {
		return domain.NewServiceError("FeatureService", "Start", "source is already running", domain.ErrSourceRunning)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.runWg.Add(1)

	go func() {
		defer s.runWg.Done()
		defer cancel()

		err := s.source.Run(runCtx, s.relay)

		s.mu.Lock()
		s.running = false
		seq := s.sequence
		s.mu.Unlock()

		if err != nil {
			s.logger.Error("feature source failed", slog.Any("error", err), slog.Uint64("sequence", seq))
		} else {
			s.logger.Debug("feature source stopped", slog.Uint64("sequence", seq))
		}
		s.bus.Publish(domain.NewSourceStoppedEvent(err))
	}()

	s.logger.Info("feature service started")
	return nil
}

// relay records snapshot and publishes it.
func (s *FeatureService) relay(snapshot domain.AudioFeatureSnapshot) {
	snapshot = snapshot.Clone()

	s.mu.Lock()
	s.sequence++
	seq := s.sequence
	s.latest = snapshot
	s.hasLatest = true
	s.mu.Unlock()

	s.bus.Publish(domain.NewSnapshotUpdatedEvent(snapshot, seq))
}

// Latest returns the most recent snapshot, if any.
func (s *FeatureService) Latest() (domain.AudioFeatureSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasLatest {
		return domain.AudioFeatureSnapshot{}, false
	}
	return s.latest.Clone(), true
}

// Sequence returns the number of snapshots relayed so far.
func (s *FeatureService) Sequence() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sequence
}

// Running reports whether the source goroutine is active.
func (s *FeatureService) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Shutdown stops the source and waits for it to return. It is safe to call
// more than once.
func (s *FeatureService) Shutdown() error {
	s.mu.Lock()
	s.closed = true
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	// Wait outside the lock; the run goroutine takes it on exit.
	s.runWg.Wait()
	return nil
}
