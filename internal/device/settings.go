package device

import (
	"errors"
	"fmt"

	"github.com/smazurov/pixynode/internal/config"
)

// Controls is the subset of Camera that reads and writes settings.
type Controls interface {
	Mode() (uint8, error)
	SetMode(mode uint8) error
	AutoWhiteBalance() (bool, error)
	SetAutoWhiteBalance(enable bool) error
	WhiteBalance() (r, g, b uint8, err error)
	SetWhiteBalance(r, g, b uint8) error
	AutoExposure() (bool, error)
	SetAutoExposure(enable bool) error
	Exposure() (gain uint8, compensation uint16, err error)
	SetExposure(gain uint8, compensation uint16) error
	Brightness() (int8, error)
	SetBrightness(brightness int8) error
	LEDMaxCurrent() (uint32, error)
	SetLEDMaxCurrent(microamps uint32) error
}

// ApplySettings writes every non-nil field of s. Each failing field is
// reported; the others are still applied.
//
// Auto modes are written before their manual values so that a profile
// switching auto off and setting a value lands the value.
func ApplySettings(c Controls, s config.Settings) error {
	var errs []error
	try := func(field string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}

	if s.Mode != nil {
		try("mode", c.SetMode(*s.Mode))
	}
	if s.AutoWhiteBalance != nil {
		try("auto_white_balance", c.SetAutoWhiteBalance(*s.AutoWhiteBalance))
	}
	if wb := s.WhiteBalance; wb != nil {
		try("white_balance", c.SetWhiteBalance(wb.Red, wb.Green, wb.Blue))
	}
	if s.AutoExposure != nil {
		try("auto_exposure", c.SetAutoExposure(*s.AutoExposure))
	}
	if ev := s.Exposure; ev != nil {
		try("exposure", c.SetExposure(ev.Gain, ev.Compensation))
	}
	if s.Brightness != nil {
		try("brightness", c.SetBrightness(*s.Brightness))
	}
	if s.LED != nil && s.LED.MaxCurrent != nil {
		try("led.max_current", c.SetLEDMaxCurrent(*s.LED.MaxCurrent))
	}

	return errors.Join(errs...)
}

// ReadSettings reads back every setting. Fields whose getter failed are
// left nil and the failures are joined into the returned error.
func ReadSettings(c Controls) (config.Settings, error) {
	var (
		s    config.Settings
		errs []error
	)

	if mode, err := c.Mode(); err != nil {
		errs = append(errs, fmt.Errorf("mode: %w", err))
	} else {
		s.Mode = &mode
	}
	if awb, err := c.AutoWhiteBalance(); err != nil {
		errs = append(errs, fmt.Errorf("auto_white_balance: %w", err))
	} else {
		s.AutoWhiteBalance = &awb
	}
	if r, g, b, err := c.WhiteBalance(); err != nil {
		errs = append(errs, fmt.Errorf("white_balance: %w", err))
	} else {
		s.WhiteBalance = &config.RGB{Red: r, Green: g, Blue: b}
	}
	if aec, err := c.AutoExposure(); err != nil {
		errs = append(errs, fmt.Errorf("auto_exposure: %w", err))
	} else {
		s.AutoExposure = &aec
	}
	if gain, comp, err := c.Exposure(); err != nil {
		errs = append(errs, fmt.Errorf("exposure: %w", err))
	} else {
		s.Exposure = &config.ExposureValue{Gain: gain, Compensation: comp}
	}
	if br, err := c.Brightness(); err != nil {
		errs = append(errs, fmt.Errorf("brightness: %w", err))
	} else {
		s.Brightness = &br
	}
	if mc, err := c.LEDMaxCurrent(); err != nil {
		errs = append(errs, fmt.Errorf("led.max_current: %w", err))
	} else {
		s.LED = &config.LEDSettings{MaxCurrent: &mc}
	}

	return s, errors.Join(errs...)
}
