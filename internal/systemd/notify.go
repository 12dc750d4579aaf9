// Package systemd reports service state to the systemd service manager.
// Every call is a no-op when the process was not started by systemd.
package systemd

import (
	"context"
	"log/slog"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Notifier sends sd_notify state updates.
type Notifier struct {
	logger *slog.Logger
}

// NewNotifier creates a notifier that logs delivery failures to logger.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// Ready reports that startup has finished.
func (n *Notifier) Ready() bool {
	return n.notify(daemon.SdNotifyReady)
}

// Reloading reports that configuration is being reloaded.
// Call Ready once the reload completes.
func (n *Notifier) Reloading() bool {
	return n.notify(daemon.SdNotifyReloading)
}

// Stopping reports that shutdown has begun.
func (n *Notifier) Stopping() bool {
	return n.notify(daemon.SdNotifyStopping)
}

// Status sets the free-form status line shown by systemctl status.
func (n *Notifier) Status(status string) bool {
	return n.notify("STATUS=" + status)
}

// notify reports whether the state reached the service manager.
func (n *Notifier) notify(state string) bool {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		n.logger.Warn("sd_notify failed", "state", state, "error", err)
		return false
	}
	return sent
}

// StartWatchdog pings the watchdog at half the configured interval until
// ctx is done. It returns false without starting when WatchdogSec is unset.
func (n *Notifier) StartWatchdog(ctx context.Context) bool {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		n.logger.Warn("Invalid watchdog configuration", "error", err)
		return false
	}
	if interval <= 0 {
		return false
	}

	period := interval / 2
	n.logger.Info("Watchdog enabled", "interval", interval, "ping_every", period)

	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n.notify(daemon.SdNotifyWatchdog)
			}
		}
	}()
	return true
}
