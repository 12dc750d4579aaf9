// Package device connects to the camera's device service and exposes its
// commands, detection buffer and frame grabber behind one serialized Camera.
package device

import (
	"context"
	"log/slog"
	"time"

	"github.com/smazurov/pixynode/internal/metrics"
	"github.com/smazurov/pixynode/pkg/pixy"
	"github.com/smazurov/pixynode/pkg/pixy/blocks"
	"github.com/smazurov/pixynode/pkg/pixy/chirp"
	"github.com/smazurov/pixynode/pkg/pixy/frame"
)

// Service is the device service boundary: command transport, detection
// buffer, frame grabber and lifecycle.
type Service interface {
	chirp.Transport
	blocks.Source
	frame.Source

	// Init opens the device. A negative result is a status code.
	Init() int32
	Close()
}

// DefaultConnectInterval is the pause between Init attempts.
const DefaultConnectInterval = time.Second

// Connect calls svc.Init until it succeeds or ctx is done.
func Connect(ctx context.Context, svc Service, interval time.Duration, logger *slog.Logger) error {
	if interval <= 0 {
		interval = DefaultConnectInterval
	}

	for attempt := 1; ; attempt++ {
		status := svc.Init()
		if status >= 0 {
			metrics.SetDeviceConnected(true)
			logger.Info("Device initialized", "attempts", attempt)
			return nil
		}

		metrics.SetDeviceConnected(false)
		logger.Warn("Device init failed, retrying",
			"attempt", attempt,
			"status", status,
			"error", pixy.StatusText(status),
			"retry_in", interval)

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
