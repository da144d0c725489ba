package models

import "time"

// NoPlanTime is the placeholder shown when a destination has no planned
// window for a field. Looking up an unknown destination is a normal,
// expected state and yields this placeholder, not an error.
const NoPlanTime = "-"

// DestinationPlan is one catalog entry: a destination with its planned
// ETD/ETA windows for a delivery date. Entries are read-only; the whole
// list is replaced on each successful refresh.
type DestinationPlan struct {
	Destination  string     `json:"destination"`
	DeliveryDate string     `json:"deliveryDate,omitempty"`
	Group        *string    `json:"group,omitempty"`
	ForwardEtd   *string    `json:"forwardEtd,omitempty"` // HH:MM
	ForwardEta   *string    `json:"forwardEta,omitempty"`
	ReverseEtd   *string    `json:"reverseEtd,omitempty"`
	ReverseEta   *string    `json:"reverseEta,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// PlanTimes is the planned window for one leg of a trip.
type PlanTimes struct {
	Etd string `json:"etd"`
	Eta string `json:"eta"`
}

// Times returns the planned window for the given leg, substituting the
// placeholder for any missing value.
func (p DestinationPlan) Times(d Direction) PlanTimes {
	etd, eta := p.ForwardEtd, p.ForwardEta
	if d == DirectionReverse {
		etd, eta = p.ReverseEtd, p.ReverseEta
	}
	return PlanTimes{Etd: orPlaceholder(etd), Eta: orPlaceholder(eta)}
}

func orPlaceholder(s *string) string {
	if s == nil || *s == "" {
		return NoPlanTime
	}
	return *s
}

// PlanListResponse is the body of GET /api/plan/list.
type PlanListResponse struct {
	OK           bool              `json:"ok"`
	Plans        []DestinationPlan `json:"plans"`
	DeliveryDate string            `json:"deliveryDate,omitempty"`
	Message      string            `json:"message,omitempty"`
}
