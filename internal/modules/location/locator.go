package location

import (
	"context"
	"fmt"
	"log/slog"

	"haul-tracker/internal/models"
)

// Locator applies the client's acquisition policy over a raw Provider.
type Locator struct {
	provider    Provider
	maxAccuracy float64
	logger      *slog.Logger
}

// NewLocator builds a Locator with the standard 80 m accuracy gate.
func NewLocator(provider Provider, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Locator{provider: provider, maxAccuracy: MaxFixAccuracy, logger: logger}
}

// AcquireFix returns one usable position for a submission.
//
// Order of preference: a cached last-known position (cheapest, and the
// cache is only ever populated by previously accepted fixes), then a
// fresh high-accuracy fix. A fresh fix worse than the accuracy gate is
// rejected with ErrUnstableFix — the driver retries by pressing the
// action button again, never by the client substituting a stale point.
func (l *Locator) AcquireFix(ctx context.Context) (*models.Coordinates, error) {
	granted, err := l.provider.RequestPermission(ctx)
	if err != nil {
		return nil, fmt.Errorf("location.AcquireFix: %w", err)
	}
	if !granted {
		return nil, models.ErrPermissionDenied
	}

	last, err := l.provider.LastKnown(ctx)
	if err == nil && last != nil {
		return last, nil
	}

	fix, err := l.provider.Current(ctx)
	if err != nil || fix == nil {
		l.logger.Debug("fresh fix unavailable", "error", err)
		return nil, models.ErrLocationUnavailable
	}

	if fix.Accuracy != nil && *fix.Accuracy > l.maxAccuracy {
		l.logger.Debug("fix rejected by accuracy gate", "accuracy", *fix.Accuracy)
		return nil, models.ErrUnstableFix
	}

	return fix, nil
}

// Watch opens a continuous stream with the default interval and
// displacement. Permission is re-checked on every start because it can
// be revoked between legs.
func (l *Locator) Watch(ctx context.Context, fn func(models.Coordinates)) (Subscription, error) {
	granted, err := l.provider.RequestPermission(ctx)
	if err != nil {
		return nil, fmt.Errorf("location.Watch: %w", err)
	}
	if !granted {
		return nil, models.ErrPermissionDenied
	}

	sub, err := l.provider.Watch(ctx, WatchOptions{
		Interval:     DefaultWatchInterval,
		Displacement: DefaultWatchDisplacement,
	}, fn)
	if err != nil {
		return nil, fmt.Errorf("location.Watch: %w", err)
	}
	return sub, nil
}
