package led

// RGBSetter is satisfied by the camera's LED command.
type RGBSetter interface {
	SetLED(r, g, b uint8) error
}

// pixyLED drives the RGB LED on the camera itself.
type pixyLED struct {
	dev RGBSetter
}

func newPixy(dev RGBSetter) *pixyLED {
	return &pixyLED{dev: dev}
}

func (p *pixyLED) SetColor(c Color) error {
	return p.dev.SetLED(c.Red, c.Green, c.Blue)
}

func (p *pixyLED) Name() string {
	return "pixy"
}
