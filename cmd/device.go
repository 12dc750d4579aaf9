// Package cmd holds the one-shot subcommands that talk to the camera
// without starting the API server.
package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/smazurov/pixynode/internal/config"
	"github.com/smazurov/pixynode/internal/device"
	"github.com/smazurov/pixynode/internal/logging"
)

// initLogging sets up logging for a subcommand from the [logging] section
// of configPath. Subcommands default to warn so their output stays readable.
func initLogging(configPath string, verbose bool) {
	cfg := config.LoadLoggingConfig(configPath)
	if cfg.Level == "info" {
		cfg.Level = "warn"
	}
	if verbose {
		cfg.Level = "debug"
	}
	logging.Initialize(cfg)
}

// openCamera opens backend and waits until the device initializes or
// timeout elapses.
func openCamera(ctx context.Context, backend string, timeout time.Duration, logger *slog.Logger) (*device.Camera, error) {
	svc, err := device.Open(backend)
	if err != nil {
		return nil, err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := device.Connect(ctx, svc, device.DefaultConnectInterval, logger); err != nil {
		svc.Close()
		return nil, err
	}

	return device.NewCamera(svc, device.WithLogger(logging.GetLogger("camera"))), nil
}
