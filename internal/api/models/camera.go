package models

import (
	"github.com/smazurov/pixynode/internal/config"
	"github.com/smazurov/pixynode/internal/events"
)

// CameraSettingsResponse carries the settings read back from the device.
type CameraSettingsResponse struct {
	Body config.Settings
}

// CameraSettingsRequest is a partial settings update; omitted fields are untouched.
type CameraSettingsRequest struct {
	Body config.Settings
}

// FirmwareData is the device firmware version.
type FirmwareData struct {
	Major   uint16 `json:"major" example:"2" doc:"Major version"`
	Minor   uint16 `json:"minor" example:"0" doc:"Minor version"`
	Build   uint16 `json:"build" example:"19" doc:"Build number"`
	Version string `json:"version" example:"2.0.19" doc:"Dotted version string"`
}

type FirmwareResponse struct {
	Body FirmwareData
}

// BlocksData is one detection read.
type BlocksData struct {
	Count  int                `json:"count" example:"2" doc:"Number of valid blocks"`
	Blocks []events.BlockInfo `json:"blocks" doc:"Classified blocks"`
}

type BlocksResponse struct {
	Body BlocksData
}

// FrameRequest selects the capture window and output channel order.
type FrameRequest struct {
	Order  string `query:"order" enum:"rgb,rbg" default:"rgb" doc:"Plane to channel mapping"`
	X      uint16 `query:"x" maximum:"317" doc:"Window left edge"`
	Y      uint16 `query:"y" maximum:"197" doc:"Window top edge"`
	Width  uint16 `query:"width" default:"320" minimum:"3" maximum:"320" doc:"Window width"`
	Height uint16 `query:"height" default:"200" minimum:"3" maximum:"200" doc:"Window height"`
}

// FrameResponse is a PNG image of the demosaiced frame.
type FrameResponse struct {
	ContentType string `header:"Content-Type"`
	RenderTime  string `header:"X-Render-Time"`
	Body        []byte
}

// LEDRequest sets the RGB LED.
type LEDRequest struct {
	Body struct {
		Red   uint8 `json:"red" example:"255" doc:"Red intensity"`
		Green uint8 `json:"green" example:"0" doc:"Green intensity"`
		Blue  uint8 `json:"blue" example:"0" doc:"Blue intensity"`
	}
}

// LEDData reports the colour last driven by the detection indicator.
type LEDData struct {
	Backend string `json:"backend" example:"pixy" doc:"LED backend in use"`
	Red     uint8  `json:"red" example:"255" doc:"Red intensity"`
	Green   uint8  `json:"green" example:"0" doc:"Green intensity"`
	Blue    uint8  `json:"blue" example:"0" doc:"Blue intensity"`
}

type LEDResponse struct {
	Body LEDData
}

// ServoInput addresses one RC servo channel.
type ServoInput struct {
	Channel uint8 `path:"channel" maximum:"1" doc:"Servo channel (0 or 1)"`
}

// ServoRequest moves one RC servo.
type ServoRequest struct {
	Channel uint8 `path:"channel" maximum:"1" doc:"Servo channel (0 or 1)"`
	Body    struct {
		Position uint16 `json:"position" maximum:"999" example:"500" doc:"Servo position"`
	}
}

type ServoData struct {
	Channel  uint8 `json:"channel" example:"0" doc:"Servo channel"`
	Position int32 `json:"position" example:"500" doc:"Servo position"`
}

type ServoResponse struct {
	Body ServoData
}

// ServoFrequencyRequest sets the RC servo PWM frequency.
type ServoFrequencyRequest struct {
	Body struct {
		Frequency uint16 `json:"frequency" minimum:"20" maximum:"300" example:"50" doc:"PWM frequency in Hz"`
	}
}
