package device

import (
	"fmt"

	"github.com/smazurov/pixynode/internal/device/sim"
)

// Backend names accepted by Open.
const (
	BackendSim = "sim"
)

// Open returns the device service for backend.
//
// TODO: add a libusb-backed Service for physical cameras; only the
// simulator is available today.
func Open(backend string) (Service, error) {
	switch backend {
	case BackendSim, "":
		return sim.New(sim.WithBlocks(sim.DemoScene()...)), nil
	default:
		return nil, fmt.Errorf("unknown device backend %q", backend)
	}
}
