// Package tripstore persists the active trip's form fields, per-field
// submission status, shared delivery date and session on the device.
//
// Every operation is best-effort by design: the stored data is a
// convenience cache, not a source of truth, so reads that fail yield
// zero-value defaults and writes that fail are swallowed into an
// Ignored outcome. Nothing in the app branches on a storage failure.
package tripstore

import "haul-tracker/internal/models"

// Logical storage keys. The names mirror the wire-visible key set so the
// server-recoverable state stays obvious.
const (
	KeyForwardForm   = "forward_form"
	KeyReverseForm   = "reverse_form"
	KeyForwardStatus = "status_forward"
	KeyReverseStatus = "status_reverse"
	KeyDeliveryDate  = "delivery_date"
	KeyToken         = "token"
	KeyUser          = "user"
)

// FormKey returns the form key for a leg.
func FormKey(d models.Direction) string {
	if d == models.DirectionReverse {
		return KeyReverseForm
	}
	return KeyForwardForm
}

// StatusKey returns the status key for a leg.
func StatusKey(d models.Direction) string {
	if d == models.DirectionReverse {
		return KeyReverseStatus
	}
	return KeyForwardStatus
}

// TripKeys is the full set of keys wiped when a completed trip is
// cleared at logout. Session keys are cleared separately because logout
// always destroys the session regardless of trip state.
func TripKeys() []string {
	return []string{KeyForwardForm, KeyReverseForm, KeyForwardStatus, KeyReverseStatus, KeyDeliveryDate}
}

// Store is the narrow persistence interface the rest of the app depends
// on. Load methods report presence with a bool instead of an error; a
// missing or corrupt record is indistinguishable from never-saved and
// both yield defaults.
type Store interface {
	LoadForm(d models.Direction) (models.TripForm, bool)
	SaveForm(d models.Direction, form models.TripForm) models.Outcome

	LoadStatus(d models.Direction) (models.TripStatus, bool)
	SaveStatus(d models.Direction, status models.TripStatus) models.Outcome

	LoadDeliveryDate() (string, bool)
	SaveDeliveryDate(date string) models.Outcome

	LoadSession() (models.Session, bool)
	SaveSession(session models.Session) models.Outcome

	// Reset removes the given keys. Missing keys are not an error.
	Reset(keys ...string) models.Outcome
}
