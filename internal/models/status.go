package models

// StatusUpdateRequest is the body of POST /api/status/update. Exactly one
// of Plate/EtdTime/EtaTime is set for a user-initiated submission; all
// three are nil for a coordinate-only telemetry submission during an
// active leg.
type StatusUpdateRequest struct {
	Direction    Direction `json:"direction" validate:"required,oneof=forward reverse"`
	Origin       *string   `json:"origin"`
	Destination  *string   `json:"destination"`
	DeliveryDate string    `json:"deliveryDate,omitempty"`

	Plate   *string `json:"plate,omitempty"`
	EtdTime *string `json:"etdTime,omitempty"` // HH:MM, actual departure
	EtaTime *string `json:"etaTime,omitempty"` // HH:MM, actual arrival

	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
	Speed    *float64 `json:"speed,omitempty"`
	Heading  *float64 `json:"heading,omitempty"`
	Accuracy *float64 `json:"accuracy,omitempty"`
}

// AttachCoordinates copies a fix into the request's location fields.
func (r *StatusUpdateRequest) AttachCoordinates(c Coordinates) {
	r.Lat = &c.Latitude
	r.Lng = &c.Longitude
	r.Speed = c.Speed
	r.Heading = c.Heading
	r.Accuracy = c.Accuracy
}

// LocationPing is the body of POST /api/locations/update, the periodic
// fire-and-forget position report sent while a leg is in progress.
type LocationPing struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Heading  float64 `json:"heading"`
	DriverID string  `json:"driverId" validate:"required"`
}
