// Package pixy holds the status codes shared by the Pixy host protocol packages.
//
// Every device service call reports a signed status: negative values are
// failures, zero and positive values are success codes. The subpackages
// turn negative statuses into *StatusError values so that callers can use
// errors.Is and errors.As instead of comparing integers.
package pixy

import (
	"errors"
	"fmt"
)

// Device service status codes.
const (
	StatusSuccess          int32 = 0
	StatusUSBIO            int32 = -1
	StatusUSBNoDevice      int32 = -4
	StatusUSBNotFound      int32 = -5
	StatusUSBBusy          int32 = -6
	StatusInvalidParameter int32 = -150
	StatusChirp            int32 = -151
	StatusInvalidCommand   int32 = -152
)

var statusText = map[int32]string{
	StatusSuccess:          "Success",
	StatusUSBIO:            "USB Error: I/O",
	StatusUSBBusy:          "USB Error: Busy",
	StatusUSBNoDevice:      "USB Error: No device",
	StatusUSBNotFound:      "USB Error: Target not found",
	StatusChirp:            "Chirp Protocol Error",
	StatusInvalidCommand:   "Pixy Error: Invalid command",
	StatusInvalidParameter: "Pixy Error: Invalid parameter",
}

// ErrStatus matches every *StatusError with errors.Is.
var ErrStatus = errors.New("pixy: device status failure")

// ErrInvalidParameter is returned when a caller-side argument guard rejects a value
// before anything is sent to the device.
var ErrInvalidParameter = &StatusError{Op: "validate", Code: StatusInvalidParameter}

// StatusText returns the human-readable description of a status code.
func StatusText(code int32) string {
	if text, ok := statusText[code]; ok {
		return text
	}
	return "Undefined error"
}

// StatusError reports a negative status returned by the device service.
type StatusError struct {
	Op   string // command or entry point that failed
	Code int32
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d (%s)", e.Op, e.Code, StatusText(e.Code))
}

// Text returns the status table entry for the error code.
func (e *StatusError) Text() string {
	return StatusText(e.Code)
}

// Is reports whether target is ErrStatus or a StatusError with the same code.
func (e *StatusError) Is(target error) bool {
	if target == ErrStatus {
		return true
	}
	var other *StatusError
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

// CheckStatus returns a *StatusError for negative codes and nil otherwise.
func CheckStatus(op string, code int32) error {
	if code < 0 {
		return &StatusError{Op: op, Code: code}
	}
	return nil
}

// StatusCode extracts the device status carried by err.
// It returns false when err does not wrap a *StatusError.
func StatusCode(err error) (int32, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}
