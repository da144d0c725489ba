package models

// Coordinates is a single GPS fix. Speed, Heading and Accuracy are
// pointers because the device may not report them; absent values are
// omitted from outgoing payloads rather than sent as zeros.
type Coordinates struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Speed     *float64 `json:"speed,omitempty"`     // m/s
	Heading   *float64 `json:"heading,omitempty"`   // degrees from true north
	Accuracy  *float64 `json:"accuracy,omitempty"`  // meters, 68% confidence radius
}

// HeadingOrZero returns the reported heading, or 0 when the device did
// not provide one. Telemetry pings always carry a heading field.
func (c Coordinates) HeadingOrZero() float64 {
	if c.Heading == nil {
		return 0
	}
	return *c.Heading
}
