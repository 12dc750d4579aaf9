package led

import (
	"log/slog"
	"os"
	"strings"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// Backend names accepted by New.
const (
	BackendPixy  = "pixy"
	BackendBoard = "board"
	BackendNone  = "none"
)

// New creates the LED controller for backend. The board backend detects the
// host's activity LED and falls back to a no-op when there is none; so does
// the pixy backend without a device.
func New(backend string, dev RGBSetter, logger *slog.Logger) Controller {
	switch backend {
	case BackendPixy:
		if dev != nil {
			logger.Info("Using camera RGB LED")
			return newPixy(dev)
		}
		logger.Warn("Camera LED requested without a device, using no-op controller")
	case BackendBoard:
		model := detectBoard(deviceTreeModelPath)
		if name := boardLED(model); name != "" {
			logger.Info("Using board LED", "board_model", model, "led", name)
			return newSysfs(name)
		}
		logger.Info("No board LED support detected, using no-op controller", "board_model", model)
	}
	return newNoop(logger)
}

// boardLED maps a device tree model to its user-controllable LED.
func boardLED(model string) string {
	switch {
	case strings.Contains(model, "NanoPC-T6"):
		return "usr_led"
	case strings.Contains(model, "Orange Pi"):
		return "green_led"
	case strings.Contains(model, "Raspberry Pi"):
		return "ACT"
	default:
		return ""
	}
}

// detectBoard reads the device tree model to identify the board.
func detectBoard(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unknown"
	}
	// Device tree strings are NUL-terminated
	return strings.TrimRight(string(data), "\x00")
}
