// Package stub is a self-contained development backend implementing the
// four remote endpoints the driver client talks to. Everything lives in
// memory; the point is to exercise the client offline, not to persist.
package stub

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"haul-tracker/internal/models"
)

var (
	// ErrNameTaken is returned when a driver name is already registered.
	ErrNameTaken = errors.New("driver name already registered")

	// ErrBadCredentials is returned when a name/password pair does not
	// match a registered driver.
	ErrBadCredentials = errors.New("invalid name or password")
)

type driverRecord struct {
	driver       models.Driver
	passwordHash []byte
}

// DriverRegistry is the in-memory driver account table.
type DriverRegistry struct {
	mu     sync.RWMutex
	byName map[string]*driverRecord
}

func NewDriverRegistry() *DriverRegistry {
	return &DriverRegistry{byName: make(map[string]*driverRecord)}
}

// Register creates a new driver account.
func (r *DriverRegistry) Register(name, phone, password string) (models.Driver, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Driver{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		return models.Driver{}, ErrNameTaken
	}

	driver := models.Driver{ID: uuid.NewString(), Name: name, Phone: phone}
	r.byName[name] = &driverRecord{driver: driver, passwordHash: hash}
	return driver, nil
}

// Authenticate checks a name/password pair.
func (r *DriverRegistry) Authenticate(name, password string) (models.Driver, error) {
	r.mu.RLock()
	record, exists := r.byName[name]
	r.mu.RUnlock()
	if !exists {
		return models.Driver{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(record.passwordHash, []byte(password)); err != nil {
		return models.Driver{}, ErrBadCredentials
	}
	return record.driver, nil
}

// StatusEntry is one received status update with its envelope.
type StatusEntry struct {
	DriverID   string
	ReceivedAt time.Time
	Request    models.StatusUpdateRequest
}

// StatusLog collects status updates in arrival order.
type StatusLog struct {
	mu      sync.Mutex
	entries []StatusEntry
}

func NewStatusLog() *StatusLog { return &StatusLog{} }

func (l *StatusLog) Append(driverID string, req models.StatusUpdateRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, StatusEntry{DriverID: driverID, ReceivedAt: time.Now(), Request: req})
}

// Entries returns a copy of the log.
func (l *StatusLog) Entries() []StatusEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]StatusEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// LocationLog collects telemetry pings in arrival order.
type LocationLog struct {
	mu      sync.Mutex
	entries []models.LocationPing
}

func NewLocationLog() *LocationLog { return &LocationLog{} }

func (l *LocationLog) Append(ping models.LocationPing) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, ping)
}

func (l *LocationLog) Entries() []models.LocationPing {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.LocationPing, len(l.entries))
	copy(out, l.entries)
	return out
}

// PlanTable serves the destination plan list per delivery date.
type PlanTable struct {
	mu    sync.RWMutex
	plans map[string][]models.DestinationPlan
}

func NewPlanTable() *PlanTable {
	return &PlanTable{plans: make(map[string][]models.DestinationPlan)}
}

// Seed replaces the plan list for a date.
func (t *PlanTable) Seed(date string, plans []models.DestinationPlan) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.plans[date] = plans
}

// ListFor returns the plans for a date; nil when none are seeded.
func (t *PlanTable) ListFor(date string) []models.DestinationPlan {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.plans[date]
}
