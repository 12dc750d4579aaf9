package led

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	dev := &fakeSetter{}

	tests := []struct {
		name    string
		backend string
		dev     RGBSetter
		want    string
	}{
		{"camera LED", BackendPixy, dev, "pixy"},
		{"camera LED without device", BackendPixy, nil, "none"},
		{"disabled", BackendNone, dev, "none"},
		{"unknown backend", "lamp", dev, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := New(tt.backend, tt.dev, testLogger())
			if ctrl == nil {
				t.Fatal("New() returned nil")
			}
			if ctrl.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", ctrl.Name(), tt.want)
			}
		})
	}

	// Board detection must always yield a controller, whatever the host.
	if ctrl := New(BackendBoard, nil, testLogger()); ctrl == nil {
		t.Fatal("New(board) returned nil")
	}
}

func TestBoardLED(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"FriendlyElec NanoPC-T6", "usr_led"},
		{"Orange Pi 5 Plus", "green_led"},
		{"Raspberry Pi 4 Model B Rev 1.4", "ACT"},
		{"unknown", ""},
	}
	for _, tt := range tests {
		if got := boardLED(tt.model); got != tt.want {
			t.Errorf("boardLED(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestDetectBoard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model")
	if err := os.WriteFile(path, []byte("Raspberry Pi 4 Model B\x00"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := detectBoard(path); got != "Raspberry Pi 4 Model B" {
		t.Errorf("detectBoard() = %q", got)
	}
	if got := detectBoard(filepath.Join(t.TempDir(), "absent")); got != "unknown" {
		t.Errorf("detectBoard(missing) = %q, want unknown", got)
	}
}
