package models

// Direction identifies one leg of a delivery trip. The forward leg runs
// from the plant to the customer dock, the reverse leg back.
type Direction string

const (
	DirectionForward Direction = "forward"
	DirectionReverse Direction = "reverse"
)

// Valid reports whether d is one of the two known legs.
func (d Direction) Valid() bool {
	return d == DirectionForward || d == DirectionReverse
}

// Opposite returns the other leg.
func (d Direction) Opposite() Direction {
	if d == DirectionForward {
		return DirectionReverse
	}
	return DirectionForward
}

// FieldStatus is the submission state of a single status field.
// A field moves from pending to sent exactly once; only a full reset
// brings it back.
type FieldStatus string

const (
	StatusPending FieldStatus = "pending"
	StatusSent    FieldStatus = "sent"
)

// TripForm holds the driver's editable inputs for one leg.
// DestinationIndex indexes into the active destination list; index 0 is
// the "Select Destinasi" placeholder and never a real destination.
type TripForm struct {
	PlateNumber      string `json:"plateNumber"`
	DestinationIndex int    `json:"destinationIndex"`
	DeliveryDate     string `json:"deliveryDate,omitempty"` // YYYY-MM-DD
}

// TripStatus tracks which status fields have been confirmed by the server
// for one leg.
type TripStatus struct {
	Plate FieldStatus `json:"plate"`
	Etd   FieldStatus `json:"etd"`
	Eta   FieldStatus `json:"eta"`
}

// NewTripStatus returns a status with every field pending.
func NewTripStatus() TripStatus {
	return TripStatus{Plate: StatusPending, Etd: StatusPending, Eta: StatusPending}
}

// Normalize fills unset fields with pending so a partially stored status
// (older app versions persisted only etd/eta) loads cleanly.
func (s TripStatus) Normalize() TripStatus {
	if s.Plate == "" {
		s.Plate = StatusPending
	}
	if s.Etd == "" {
		s.Etd = StatusPending
	}
	if s.Eta == "" {
		s.Eta = StatusPending
	}
	return s
}

// Complete reports whether this leg has reached its terminal state.
// A trip as a whole counts as complete once the reverse leg's ETA is sent.
func (s TripStatus) Complete() bool {
	return s.Eta == StatusSent
}
