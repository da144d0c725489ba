// Package location wraps device geolocation behind a small provider
// interface and applies the client's acquisition policy on top: a
// permission gate, a last-known-first fast path, an accuracy threshold
// for one-shot fixes, and a cancellable watch subscription for
// continuous tracking.
package location

import (
	"context"
	"time"

	"haul-tracker/internal/models"
)

// Default watch parameters: a fix every 5 seconds or every 10 meters of
// displacement, whichever triggers first.
const (
	DefaultWatchInterval     = 5 * time.Second
	DefaultWatchDisplacement = 10.0 // meters
)

// MaxFixAccuracy is the one-shot quality gate in meters. A fresh fix
// whose reported accuracy is worse than this is rejected rather than
// submitted, so a cold GPS never feeds garbage into tracking.
const MaxFixAccuracy = 80.0

// WatchOptions configures a continuous position watch.
type WatchOptions struct {
	Interval     time.Duration
	Displacement float64
}

// Subscription is a handle on an active watch. Stop is idempotent; after
// the first call no further fixes are delivered.
type Subscription interface {
	Stop()
}

// Provider is the device geolocation backend. Implementations adapt a
// real positioning source; tests and the CLI use SimProvider.
type Provider interface {
	// RequestPermission asks for (or checks) foreground location
	// permission.
	RequestPermission(ctx context.Context) (bool, error)

	// LastKnown returns the most recent cached position, or nil when
	// none is available. Returning nil is not an error.
	LastKnown(ctx context.Context) (*models.Coordinates, error)

	// Current blocks for a fresh high-accuracy fix.
	Current(ctx context.Context) (*models.Coordinates, error)

	// Watch starts a continuous position stream, invoking fn for every
	// update until the subscription is stopped or ctx is cancelled.
	Watch(ctx context.Context, opts WatchOptions, fn func(models.Coordinates)) (Subscription, error)
}
