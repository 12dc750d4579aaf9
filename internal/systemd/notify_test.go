package systemd

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestNotifierWithoutSystemd(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	t.Setenv("WATCHDOG_USEC", "")
	t.Setenv("WATCHDOG_PID", "")

	n := NewNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name string
		call func() bool
	}{
		{"ready", n.Ready},
		{"reloading", n.Reloading},
		{"stopping", n.Stopping},
		{"status", func() bool { return n.Status("connected") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.call() {
				t.Error("Expected no delivery without NOTIFY_SOCKET")
			}
		})
	}
}

func TestStartWatchdogDisabled(t *testing.T) {
	t.Setenv("WATCHDOG_USEC", "")
	t.Setenv("WATCHDOG_PID", "")

	n := NewNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if n.StartWatchdog(context.Background()) {
		t.Error("Expected watchdog to stay off without WATCHDOG_USEC")
	}
}
