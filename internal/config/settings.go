package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// RGB is a colour triple used for white balance and the LED.
type RGB struct {
	Red   uint8 `toml:"red" json:"red" minimum:"0" maximum:"255"`
	Green uint8 `toml:"green" json:"green" minimum:"0" maximum:"255"`
	Blue  uint8 `toml:"blue" json:"blue" minimum:"0" maximum:"255"`
}

// ExposureValue is the manual exposure setting.
type ExposureValue struct {
	Gain         uint8  `toml:"gain" json:"gain" doc:"Analog gain"`
	Compensation uint16 `toml:"compensation" json:"compensation" doc:"Exposure compensation"`
}

// LEDSettings holds LED driver limits.
type LEDSettings struct {
	MaxCurrent *uint32 `toml:"max_current,omitempty" json:"max_current,omitempty" doc:"Maximum LED current in microamps"`
}

// Settings is a camera settings profile. Nil fields are left untouched
// when the profile is applied.
type Settings struct {
	Mode             *uint8         `toml:"mode,omitempty" json:"mode,omitempty" doc:"Camera mode register"`
	AutoWhiteBalance *bool          `toml:"auto_white_balance,omitempty" json:"auto_white_balance,omitempty" doc:"Enable automatic white balance"`
	WhiteBalance     *RGB           `toml:"white_balance,omitempty" json:"white_balance,omitempty" doc:"Manual white balance gains"`
	AutoExposure     *bool          `toml:"auto_exposure,omitempty" json:"auto_exposure,omitempty" doc:"Enable automatic exposure"`
	Exposure         *ExposureValue `toml:"exposure,omitempty" json:"exposure,omitempty" doc:"Manual exposure value"`
	Brightness       *int8          `toml:"brightness,omitempty" json:"brightness,omitempty" doc:"Brightness offset"`
	LED              *LEDSettings   `toml:"led,omitempty" json:"led,omitempty" doc:"LED settings"`
}

// IsEmpty reports whether no field is set.
func (s Settings) IsEmpty() bool {
	return s.Mode == nil && s.AutoWhiteBalance == nil && s.WhiteBalance == nil &&
		s.AutoExposure == nil && s.Exposure == nil && s.Brightness == nil &&
		(s.LED == nil || s.LED.MaxCurrent == nil)
}

// LoadSettings reads a settings profile. A missing file yields empty settings.
func LoadSettings(path string) (Settings, error) {
	var s Settings

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse settings: %w", err)
	}
	return s, nil
}

// SaveSettings writes s to path, replacing the file atomically.
func SaveSettings(path string, s Settings) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.toml")
	if err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}
