package location_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haul-tracker/internal/models"
	"haul-tracker/internal/modules/location"
)

// fakeProvider is a function-field test double for location.Provider.
type fakeProvider struct {
	requestPermission func(ctx context.Context) (bool, error)
	lastKnown         func(ctx context.Context) (*models.Coordinates, error)
	current           func(ctx context.Context) (*models.Coordinates, error)
	watch             func(ctx context.Context, opts location.WatchOptions, fn func(models.Coordinates)) (location.Subscription, error)
}

func (f *fakeProvider) RequestPermission(ctx context.Context) (bool, error) {
	if f.requestPermission == nil {
		return true, nil
	}
	return f.requestPermission(ctx)
}

func (f *fakeProvider) LastKnown(ctx context.Context) (*models.Coordinates, error) {
	if f.lastKnown == nil {
		return nil, nil
	}
	return f.lastKnown(ctx)
}

func (f *fakeProvider) Current(ctx context.Context) (*models.Coordinates, error) {
	return f.current(ctx)
}

func (f *fakeProvider) Watch(ctx context.Context, opts location.WatchOptions, fn func(models.Coordinates)) (location.Subscription, error) {
	return f.watch(ctx, opts, fn)
}

var _ location.Provider = (*fakeProvider)(nil)

func coords(lat, lng, accuracy float64) *models.Coordinates {
	return &models.Coordinates{Latitude: lat, Longitude: lng, Accuracy: &accuracy}
}

func TestAcquireFix_PermissionDenied(t *testing.T) {
	provider := &fakeProvider{
		requestPermission: func(context.Context) (bool, error) { return false, nil },
		current: func(context.Context) (*models.Coordinates, error) {
			t.Fatal("must not request a fix without permission")
			return nil, nil
		},
	}
	locator := location.NewLocator(provider, nil)

	fix, err := locator.AcquireFix(context.Background())

	assert.ErrorIs(t, err, models.ErrPermissionDenied)
	assert.Nil(t, fix)
}

func TestAcquireFix_PrefersLastKnown(t *testing.T) {
	cached := coords(-6.28, 107.14, 15)
	provider := &fakeProvider{
		lastKnown: func(context.Context) (*models.Coordinates, error) { return cached, nil },
		current: func(context.Context) (*models.Coordinates, error) {
			t.Fatal("must not request a fresh fix when a cached one exists")
			return nil, nil
		},
	}
	locator := location.NewLocator(provider, nil)

	fix, err := locator.AcquireFix(context.Background())

	require.NoError(t, err)
	assert.Equal(t, cached, fix)
}

func TestAcquireFix_AccuracyGate(t *testing.T) {
	provider := &fakeProvider{
		current: func(context.Context) (*models.Coordinates, error) { return coords(-6.28, 107.14, 80.5), nil },
	}
	locator := location.NewLocator(provider, nil)

	fix, err := locator.AcquireFix(context.Background())

	// Above the 80 m threshold: never a coordinate object, always nil.
	assert.ErrorIs(t, err, models.ErrUnstableFix)
	assert.Nil(t, fix)
}

func TestAcquireFix_AccuracyAtThresholdAccepted(t *testing.T) {
	provider := &fakeProvider{
		current: func(context.Context) (*models.Coordinates, error) { return coords(-6.28, 107.14, 80), nil },
	}
	locator := location.NewLocator(provider, nil)

	fix, err := locator.AcquireFix(context.Background())

	require.NoError(t, err)
	require.NotNil(t, fix)
}

func TestAcquireFix_NoFixAvailable(t *testing.T) {
	provider := &fakeProvider{
		current: func(context.Context) (*models.Coordinates, error) { return nil, context.DeadlineExceeded },
	}
	locator := location.NewLocator(provider, nil)

	fix, err := locator.AcquireFix(context.Background())

	assert.ErrorIs(t, err, models.ErrLocationUnavailable)
	assert.Nil(t, fix)
}

func TestWatch_PermissionCheckedOnEveryStart(t *testing.T) {
	provider := &fakeProvider{
		requestPermission: func(context.Context) (bool, error) { return false, nil },
		watch: func(context.Context, location.WatchOptions, func(models.Coordinates)) (location.Subscription, error) {
			t.Fatal("must not open a watch without permission")
			return nil, nil
		},
	}
	locator := location.NewLocator(provider, nil)

	_, err := locator.Watch(context.Background(), func(models.Coordinates) {})

	assert.ErrorIs(t, err, models.ErrPermissionDenied)
}

func TestSimProvider_WatchStopSilencesCallbacks(t *testing.T) {
	provider := location.NewSimProvider(nil)

	var mu sync.Mutex
	count := 0
	sub, err := provider.Watch(context.Background(), location.WatchOptions{Interval: 5 * time.Millisecond}, func(models.Coordinates) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count > 0
	}, time.Second, time.Millisecond)

	sub.Stop()
	sub.Stop() // idempotent

	mu.Lock()
	after := count
	mu.Unlock()
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	final := count
	mu.Unlock()
	// One in-flight tick may land right at Stop; nothing beyond that.
	assert.LessOrEqual(t, final, after+1)
}
