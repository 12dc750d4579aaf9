package led

import (
	"fmt"
	"os"
	"path/filepath"
)

const sysfsLEDPath = "/sys/class/leds"

// sysfs drives a single-colour board LED through the Linux LED class.
type sysfs struct {
	root string
	name string
}

func newSysfs(name string) *sysfs {
	return &sysfs{root: sysfsLEDPath, name: name}
}

// SetColor switches the LED to manual control and lights it for any non-zero colour.
func (s *sysfs) SetColor(c Color) error {
	ledPath := filepath.Join(s.root, s.name)
	if _, err := os.Stat(ledPath); err != nil {
		return fmt.Errorf("LED %q not found at %s: %w", s.name, ledPath, err)
	}

	if err := os.WriteFile(filepath.Join(ledPath, "trigger"), []byte("none"), 0o644); err != nil {
		return fmt.Errorf("failed to set LED trigger: %w", err)
	}

	brightness := "1"
	if c.IsOff() {
		brightness = "0"
	}
	if err := os.WriteFile(filepath.Join(ledPath, "brightness"), []byte(brightness), 0o644); err != nil {
		return fmt.Errorf("failed to set LED brightness: %w", err)
	}
	return nil
}

func (s *sysfs) Name() string {
	return "sysfs:" + s.name
}
