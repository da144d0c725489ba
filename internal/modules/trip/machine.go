// Package trip orchestrates one leg of a delivery: it advances the
// plate/ETD/ETA submission state, brackets continuous location tracking
// between the ETD and ETA events, and decides at logout whether trip
// data is wiped or retained.
package trip

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"haul-tracker/internal/models"
	"haul-tracker/internal/modules/location"
	"haul-tracker/internal/modules/status"
	"haul-tracker/internal/modules/tripstore"
)

// Submitter sends one status update. Satisfied by status.Client.
type Submitter interface {
	Submit(ctx context.Context, req models.StatusUpdateRequest, opts status.SubmitOptions) error
}

// Telemetry sends one fire-and-forget position report. Satisfied by
// status.Pinger.
type Telemetry interface {
	Send(ctx context.Context, coords models.Coordinates) models.Outcome
}

// Fixer acquires fixes and opens watches. Satisfied by location.Locator.
// Watch implementations deliver fixes asynchronously: fn must not be
// invoked before Watch returns.
type Fixer interface {
	AcquireFix(ctx context.Context) (*models.Coordinates, error)
	Watch(ctx context.Context, fn func(models.Coordinates)) (location.Subscription, error)
}

// DestinationSource provides the active destination list and its
// delivery date. Satisfied by plan.Catalog.
type DestinationSource interface {
	Destinations() []string
	DeliveryDate() string
}

// MachineConfig wires one Machine.
type MachineConfig struct {
	Direction models.Direction

	// Origin is the fixed plant name: the forward leg's origin and the
	// reverse leg's destination.
	Origin string

	Store     tripstore.Store
	Catalog   DestinationSource
	Locator   Fixer
	Submitter Submitter
	Telemetry Telemetry
	Logger    *slog.Logger

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Machine is the per-leg trip state machine. Status fields move from
// pending to sent exactly once, only after a confirmed remote
// submission; nothing short of a full reset moves them back.
//
// Methods are safe for concurrent use: the background stream callback
// races against user actions by design.
type Machine struct {
	direction models.Direction
	origin    string
	store     tripstore.Store
	catalog   DestinationSource
	locator   Fixer
	submitter Submitter
	telemetry Telemetry
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	form   models.TripForm
	status models.TripStatus

	// sub and streamCancel are the exclusively owned handle on the
	// active watch. Starting a new stream releases any prior one.
	sub          location.Subscription
	streamCancel context.CancelFunc
}

// NewMachine restores a machine from the store: a restart mid-trip picks
// up exactly where the driver left off.
func NewMachine(cfg MachineConfig) *Machine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	m := &Machine{
		direction: cfg.Direction,
		origin:    cfg.Origin,
		store:     cfg.Store,
		catalog:   cfg.Catalog,
		locator:   cfg.Locator,
		submitter: cfg.Submitter,
		telemetry: cfg.Telemetry,
		logger:    logger.With("direction", cfg.Direction),
		now:       now,
	}

	m.form, _ = cfg.Store.LoadForm(cfg.Direction)
	st, ok := cfg.Store.LoadStatus(cfg.Direction)
	if !ok {
		st = models.NewTripStatus()
	}
	m.status = st

	if m.form.DeliveryDate == "" {
		if date, ok := cfg.Store.LoadDeliveryDate(); ok {
			m.form.DeliveryDate = date
		} else {
			m.form.DeliveryDate = now().Format("2006-01-02")
		}
	}
	return m
}

// Direction returns the leg this machine drives.
func (m *Machine) Direction() models.Direction { return m.direction }

// Form returns a snapshot of the current form.
func (m *Machine) Form() models.TripForm {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form
}

// Status returns a snapshot of the current submission status.
func (m *Machine) Status() models.TripStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// SetPlate updates the plate number and writes the form through.
func (m *Machine) SetPlate(plate string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.form.PlateNumber = plate
	m.saveFormLocked()
}

// SelectDestination updates the destination index and writes the form
// through. Index 0 (the placeholder) is a valid selection meaning "none
// yet".
func (m *Machine) SelectDestination(index int) error {
	names := m.catalog.Destinations()
	if index < 0 || index >= len(names) {
		return fmt.Errorf("trip.SelectDestination: index %d out of range", index)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.form.DestinationIndex = index
	m.saveFormLocked()
	return nil
}

// SetDeliveryDate updates the delivery date (YYYY-MM-DD) and shares it
// with the other leg through the store.
func (m *Machine) SetDeliveryDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return models.ErrInvalidDate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.form.DeliveryDate = date
	m.saveFormLocked()
	m.store.SaveDeliveryDate(date)
	return nil
}

// Destination returns the selected destination name, or false while the
// selector is still on the placeholder.
func (m *Machine) Destination() (string, bool) {
	m.mu.Lock()
	index := m.form.DestinationIndex
	m.mu.Unlock()

	names := m.catalog.Destinations()
	if index <= 0 || index >= len(names) {
		return "", false
	}
	return names[index], true
}

// SubmitPlate sends the plate number. Location is attached when it can
// be acquired but is not required. On success the form is mirrored into
// the reverse leg's store so the reverse screen inherits plate and
// destination without re-entry.
func (m *Machine) SubmitPlate(ctx context.Context) error {
	m.mu.Lock()
	if m.status.Plate == models.StatusSent {
		m.mu.Unlock()
		return models.ErrStatusAlreadySent
	}
	plate := strings.TrimSpace(m.form.PlateNumber)
	m.mu.Unlock()

	if plate == "" {
		return models.ErrEmptyPlate
	}
	if _, ok := m.Destination(); !ok {
		return models.ErrNoDestination
	}

	coords, err := m.locator.AcquireFix(ctx)
	if err != nil {
		// Plate submission works without a position.
		m.logger.Debug("plate submitted without location", "error", err)
		coords = nil
	}

	req := m.buildRequest()
	req.Plate = &plate
	if err := m.submitter.Submit(ctx, req, status.SubmitOptions{Coords: coords}); err != nil {
		return fmt.Errorf("trip.SubmitPlate: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.Plate = models.StatusSent
	m.store.SaveStatus(m.direction, m.status)
	if m.direction == models.DirectionForward {
		m.store.SaveForm(models.DirectionReverse, m.form)
	}
	return nil
}

// SubmitETD sends the actual departure time. Location is required; on
// success continuous tracking starts.
func (m *Machine) SubmitETD(ctx context.Context) error {
	if err := m.checkTimeSubmission(func(s models.TripStatus) models.FieldStatus { return s.Etd }); err != nil {
		return err
	}

	coords, err := m.locator.AcquireFix(ctx)
	if err != nil {
		return fmt.Errorf("trip.SubmitETD: %w", err)
	}

	departed := m.now().Format("15:04")
	req := m.buildRequest()
	req.EtdTime = &departed
	if err := m.submitter.Submit(ctx, req, status.SubmitOptions{RequireLocation: true, Coords: coords}); err != nil {
		return fmt.Errorf("trip.SubmitETD: %w", err)
	}

	m.mu.Lock()
	m.status.Etd = models.StatusSent
	m.store.SaveStatus(m.direction, m.status)
	m.mu.Unlock()

	m.startStream()
	return nil
}

// SubmitETA sends the actual arrival time. Location is required; on
// success continuous tracking stops.
func (m *Machine) SubmitETA(ctx context.Context) error {
	if err := m.checkTimeSubmission(func(s models.TripStatus) models.FieldStatus { return s.Eta }); err != nil {
		return err
	}

	coords, err := m.locator.AcquireFix(ctx)
	if err != nil {
		return fmt.Errorf("trip.SubmitETA: %w", err)
	}

	arrived := m.now().Format("15:04")
	req := m.buildRequest()
	req.EtaTime = &arrived
	if err := m.submitter.Submit(ctx, req, status.SubmitOptions{RequireLocation: true, Coords: coords}); err != nil {
		return fmt.Errorf("trip.SubmitETA: %w", err)
	}

	m.mu.Lock()
	m.status.Eta = models.StatusSent
	m.store.SaveStatus(m.direction, m.status)
	m.mu.Unlock()

	m.StopStream()
	return nil
}

// Logout destroys the session unconditionally. Trip data is wiped only
// when the trip is complete (reverse ETA sent); logging out mid-trip
// keeps everything so the driver resumes after re-login.
func (m *Machine) Logout(_ context.Context) (wiped bool) {
	m.StopStream()

	complete := m.reverseComplete()

	keys := []string{tripstore.KeyToken, tripstore.KeyUser}
	if complete {
		keys = append(keys, tripstore.TripKeys()...)
	}
	m.store.Reset(keys...)

	if complete {
		m.clearTripState()
	}
	return complete
}

// EndSession logs the driver out of the whole trip, not one leg. Both
// streams stop before the session is destroyed so no watch outlives it;
// trip data is wiped only when the trip is complete. Callers holding two
// live machines use this instead of Logout.
func EndSession(ctx context.Context, forward, reverse *Machine) (wiped bool) {
	forward.StopStream()
	wiped = reverse.Logout(ctx)
	if wiped {
		forward.clearTripState()
	}
	return wiped
}

// Reset is the full reset: the only path that moves status fields back
// to pending.
func (m *Machine) Reset() {
	m.StopStream()
	m.store.Reset(tripstore.TripKeys()...)
	m.clearTripState()
}

// clearTripState returns the in-memory form and status to their
// fresh-trip defaults after the store keys have been wiped.
func (m *Machine) clearTripState() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.form = models.TripForm{DeliveryDate: m.now().Format("2006-01-02")}
	m.status = models.NewTripStatus()
}

// StopStream releases the active watch, if any. Idempotent; called on
// every teardown path.
func (m *Machine) StopStream() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopStreamLocked()
}

// Close releases the active watch, if any. It is the teardown hook for
// defer chains.
func (m *Machine) Close() {
	m.StopStream()
}

// StreamActive reports whether a watch subscription is currently held.
func (m *Machine) StreamActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sub != nil
}

// startStream opens the continuous watch, releasing any prior
// subscription first so exactly one stream is ever active per leg. A
// failure to start only logs: the ETD submission that triggered it has
// already succeeded and must not be rolled back.
func (m *Machine) startStream() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopStreamLocked()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := m.locator.Watch(ctx, func(c models.Coordinates) { m.onFix(ctx, c) })
	if err != nil {
		cancel()
		m.logger.Warn("continuous tracking unavailable", "error", err)
		return
	}
	m.sub = sub
	m.streamCancel = cancel
	m.logger.Info("continuous tracking started")
}

// stopStreamLocked releases the subscription. Callers hold m.mu.
func (m *Machine) stopStreamLocked() {
	if m.sub == nil {
		return
	}
	m.sub.Stop()
	m.sub = nil
	if m.streamCancel != nil {
		m.streamCancel()
		m.streamCancel = nil
	}
	m.logger.Info("continuous tracking stopped")
}

// onFix handles one background fix: a coordinate-only submission plus a
// telemetry ping, both silent. Failures are swallowed; the next fix
// retries implicitly. A fix racing a stop finds its context cancelled
// and is dropped.
func (m *Machine) onFix(ctx context.Context, c models.Coordinates) {
	if ctx.Err() != nil {
		return
	}
	req := m.buildRequest()
	if err := m.submitter.Submit(ctx, req, status.SubmitOptions{Coords: &c}); err != nil {
		m.logger.Debug("background position submit ignored", "error", err)
	}
	m.telemetry.Send(ctx, c)
}

// checkTimeSubmission validates the shared ETD/ETA preconditions.
func (m *Machine) checkTimeSubmission(field func(models.TripStatus) models.FieldStatus) error {
	m.mu.Lock()
	st := m.status
	date := m.form.DeliveryDate
	m.mu.Unlock()

	if field(st) == models.StatusSent {
		return models.ErrStatusAlreadySent
	}
	if _, ok := m.Destination(); !ok {
		return models.ErrNoDestination
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return models.ErrInvalidDate
	}
	return nil
}

// buildRequest assembles the constant part of a status payload. On the
// forward leg the plant is the origin; on the reverse leg the selected
// dock is.
func (m *Machine) buildRequest() models.StatusUpdateRequest {
	m.mu.Lock()
	date := m.form.DeliveryDate
	m.mu.Unlock()

	req := models.StatusUpdateRequest{
		Direction:    m.direction,
		DeliveryDate: date,
	}

	name, ok := m.Destination()
	var destination *string
	if ok {
		destination = &name
	}
	origin := m.origin

	if m.direction == models.DirectionForward {
		req.Origin = &origin
		req.Destination = destination
	} else {
		req.Origin = destination
		req.Destination = &origin
	}
	return req
}

func (m *Machine) saveFormLocked() {
	m.store.SaveForm(m.direction, m.form)
}

// reverseComplete reads the reverse leg's ETA state, from memory when
// this machine drives the reverse leg and from the store otherwise.
func (m *Machine) reverseComplete() bool {
	if m.direction == models.DirectionReverse {
		return m.Status().Complete()
	}
	st, _ := m.store.LoadStatus(models.DirectionReverse)
	return st.Complete()
}
