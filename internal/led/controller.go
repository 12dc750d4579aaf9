// Package led drives a status LED from camera detections.
package led

// Color is an RGB LED colour.
type Color struct {
	Red   uint8 `json:"red"`
	Green uint8 `json:"green"`
	Blue  uint8 `json:"blue"`
}

// Off is the dark colour.
var Off = Color{}

// IsOff reports whether every channel is zero.
func (c Color) IsOff() bool {
	return c == Off
}

// Controller abstracts the LED that reflects detection state.
type Controller interface {
	// SetColor sets the LED colour. Single-colour LEDs light for any non-zero colour.
	SetColor(c Color) error

	// Name identifies the backend, e.g. "pixy", "sysfs:ACT" or "none".
	Name() string
}
