package ports

import (
	"context"
	"time"

	"github.com/tejashwikalptaru/beatscope/internal/domain"
)

// FrameCallback is invoked once per requested frame.
type FrameCallback func(now time.Time)

// FrameHandle identifies a pending frame request. The zero value is never issued.
type FrameHandle uint64

// FrameScheduler is a "run on next frame" primitive.
//
// A display host implements it with its refresh-synchronized callback. Headless
// hosts use a fixed-rate timer. Each request fires at most once.
//
// Thread-safety: Implementations must be thread-safe.
type FrameScheduler interface {
	// RequestFrame schedules cb for the next frame and returns its handle.
	RequestFrame(cb FrameCallback) FrameHandle

	// CancelFrame withdraws a pending request. Unknown or fired handles are ignored.
	CancelFrame(handle FrameHandle)
}

// ResizeHandler receives container size changes.
type ResizeHandler func(box domain.BoxSize, devicePixelRatio float64)

// ResizeSource notifies subscribers when the container box or pixel ratio changes.
//
// Thread-safety: Implementations must be thread-safe.
type ResizeSource interface {
	// Subscribe registers handler and returns a subscription ID.
	Subscribe(handler ResizeHandler) domain.SubscriptionID

	// Unsubscribe removes a subscription. Unknown IDs are ignored.
	Unsubscribe(id domain.SubscriptionID)
}

// SnapshotSink receives snapshots from a FeatureSource.
type SnapshotSink func(snapshot domain.AudioFeatureSnapshot)

// FeatureSource is the external collaborator that produces audio features.
type FeatureSource interface {
	// Run pushes snapshots to sink until ctx is done.
	// It returns nil when stopped by ctx.
	Run(ctx context.Context, sink SnapshotSink) error
}

// TempoController adjusts the tempo of a running FeatureSource.
type TempoController interface {
	SetTempo(bpm float64) error
	Tempo() float64
}
