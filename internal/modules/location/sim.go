package location

import (
	"context"
	"math"
	"sync"
	"time"

	"haul-tracker/internal/models"
)

// SimProvider is a deterministic Provider for development and tests. It
// replays a fixed track of coordinates; watches tick at the requested
// interval and loop over the track. Delivery is purely time-driven: the
// displacement trigger real device backends honor is not simulated.
type SimProvider struct {
	mu      sync.Mutex
	track   []models.Coordinates
	cursor  int
	denied  bool
	noCache bool
}

var _ Provider = (*SimProvider)(nil)

// NewSimProvider builds a provider replaying track. An empty track gets
// a small default loop around Cikarang (the plant area).
func NewSimProvider(track []models.Coordinates) *SimProvider {
	if len(track) == 0 {
		track = defaultTrack()
	}
	return &SimProvider{track: track, noCache: true}
}

// DenyPermission makes every permission request fail from now on.
func (p *SimProvider) DenyPermission() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.denied = true
}

func (p *SimProvider) RequestPermission(_ context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.denied, nil
}

func (p *SimProvider) LastKnown(_ context.Context) (*models.Coordinates, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.noCache {
		return nil, nil
	}
	c := p.track[p.cursor%len(p.track)]
	return &c, nil
}

func (p *SimProvider) Current(_ context.Context) (*models.Coordinates, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.next()
	return &c, nil
}

func (p *SimProvider) Watch(ctx context.Context, opts WatchOptions, fn func(models.Coordinates)) (Subscription, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	sub := &simSubscription{done: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.done:
				return
			case <-ticker.C:
				p.mu.Lock()
				c := p.next()
				p.mu.Unlock()
				fn(c)
			}
		}
	}()
	return sub, nil
}

// next advances the cursor and marks the cache warm. Callers hold p.mu.
func (p *SimProvider) next() models.Coordinates {
	c := p.track[p.cursor%len(p.track)]
	p.cursor++
	p.noCache = false
	return c
}

type simSubscription struct {
	once sync.Once
	done chan struct{}
}

func (s *simSubscription) Stop() {
	s.once.Do(func() { close(s.done) })
}

func defaultTrack() []models.Coordinates {
	const points = 12
	track := make([]models.Coordinates, 0, points)
	for i := 0; i < points; i++ {
		angle := 2 * math.Pi * float64(i) / points
		speed := 16.7 // ~60 km/h
		heading := math.Mod(angle*180/math.Pi+90, 360)
		accuracy := 12.0
		track = append(track, models.Coordinates{
			Latitude:  -6.2824 + 0.01*math.Sin(angle),
			Longitude: 107.1386 + 0.01*math.Cos(angle),
			Speed:     &speed,
			Heading:   &heading,
			Accuracy:  &accuracy,
		})
	}
	return track
}
