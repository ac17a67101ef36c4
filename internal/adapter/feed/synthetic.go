// Package feed provides feature sources that stand in for a real audio
// analysis pipeline, and helpers that seed them from audio file metadata.
package feed

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/tejashwikalptaru/beatscope/internal/domain"
	"github.com/tejashwikalptaru/beatscope/internal/ports"
)

// Defaults for SyntheticConfig.
const (
	DefaultBands    = 32
	DefaultTempo    = 120.0
	DefaultInterval = time.Second / 30
)

// SyntheticConfig configures a Synthetic source.
type SyntheticConfig struct {
	Bands    int           // number of band energies per snapshot
	Tempo    float64       // beats per minute; 0 disables beats and tempo display
	Interval time.Duration // time between snapshots
}

// DefaultSyntheticConfig returns a 32-band, 120 BPM source at 30 snapshots per second.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		Bands:    DefaultBands,
		Tempo:    DefaultTempo,
		Interval: DefaultInterval,
	}
}

// Synthetic produces deterministic, music-like feature snapshots.
//
// Band energies are layered sines with a spectral tilt toward the bass, pumped
// by an envelope that peaks on every beat and decays until the next one.
//
// Thread-safety: SetTempo may be called while Run is pushing snapshots.
type Synthetic struct {
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	cfg      SyntheticConfig
	lastBeat int64
}

// NewSynthetic creates a synthetic source. Invalid config values fall back to
// the defaults.
func NewSynthetic(cfg SyntheticConfig, logger *slog.Logger) *Synthetic {
	if cfg.Bands < 0 {
		cfg.Bands = DefaultBands
	}
	if cfg.Tempo < 0 || math.IsNaN(cfg.Tempo) || math.IsInf(cfg.Tempo, 0) {
		cfg.Tempo = DefaultTempo
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Synthetic{
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "synthetic_feed")),
		now:      time.Now,
		lastBeat: -1,
	}
}

// Config returns the effective configuration.
func (s *Synthetic) Config() SyntheticConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// SetTempo changes the tempo of the running feed. The next snapshot starts a
// new beat. A tempo of 0 disables beats.
func (s *Synthetic) SetTempo(bpm float64) error {
	if bpm < 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return domain.NewValidationError("tempo", bpm, "must be a finite, non-negative BPM")
	}

	s.mu.Lock()
	s.cfg.Tempo = bpm
	s.lastBeat = -1
	s.mu.Unlock()

	s.logger.Info("tempo changed", slog.Float64("tempo", bpm))
	return nil
}

// Tempo returns the current tempo in BPM.
func (s *Synthetic) Tempo() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Tempo
}

// Run pushes a snapshot every Interval until ctx is done.
func (s *Synthetic) Run(ctx context.Context, sink ports.SnapshotSink) error {
	if sink == nil {
		return domain.NewValidationError("sink", nil, "snapshot sink cannot be nil")
	}

	cfg := s.Config()
	s.logger.Info("synthetic feed started",
		slog.Int("bands", cfg.Bands),
		slog.Float64("tempo", cfg.Tempo),
		slog.Duration("interval", cfg.Interval))

	start := s.now()
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	sink(s.Snapshot(0))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("synthetic feed stopped")
			return nil
		case now := <-ticker.C:
			sink(s.Snapshot(now.Sub(start)))
		}
	}
}

// Snapshot computes the snapshot at elapsed time t. IsBeat is true for the
// first snapshot taken at or after each beat boundary, so calls must be made
// with non-decreasing t.
func (s *Synthetic) Snapshot(t time.Duration) domain.AudioFeatureSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	sec := t.Seconds()
	envelope := 0.35
	isBeat := false

	if s.cfg.Tempo > 0 {
		period := 60 / s.cfg.Tempo
		beat := int64(math.Floor(sec / period))
		if beat > s.lastBeat {
			s.lastBeat = beat
			isBeat = true
		}
		phase := sec/period - float64(beat)
		envelope = 0.35 + 0.65*math.Exp(-6*phase)
	}

	bands := make([]float64, s.cfg.Bands)
	for i := range bands {
		x := float64(i) / math.Max(1, float64(s.cfg.Bands-1))
		tilt := 1 - 0.6*x
		wave := 0.5 + 0.25*math.Sin(2*math.Pi*(0.7+1.3*x)*sec+float64(i)) +
			0.25*math.Sin(2*math.Pi*0.23*sec+3*x)
		bands[i] = clamp01(tilt * wave * envelope)
	}

	bass, mid, high := bandAverages(bands)
	return domain.AudioFeatureSnapshot{
		BandEnergies: bands,
		IsBeat:       isBeat,
		Tempo:        s.cfg.Tempo,
		BassEnergy:   bass,
		MidEnergy:    mid,
		HighEnergy:   high,
	}
}

// bandAverages splits bands into thirds and averages each.
func bandAverages(bands []float64) (bass, mid, high float64) {
	n := len(bands)
	if n == 0 {
		return 0, 0, 0
	}
	avg := func(lo, hi int) float64 {
		if hi <= lo {
			return 0
		}
		sum := 0.0
		for _, e := range bands[lo:hi] {
			sum += e
		}
		return sum / float64(hi-lo)
	}
	third := n / 3
	if third == 0 {
		v := avg(0, n)
		return v, v, v
	}
	return avg(0, third), avg(third, n-third), avg(n-third, n)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

var (
	_ ports.FeatureSource   = (*Synthetic)(nil)
	_ ports.TempoController = (*Synthetic)(nil)
)
