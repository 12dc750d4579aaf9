package device

import (
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/pixynode/internal/events"
	"github.com/smazurov/pixynode/internal/metrics"
	"github.com/smazurov/pixynode/pkg/pixy"
	"github.com/smazurov/pixynode/pkg/pixy/blocks"
	"github.com/smazurov/pixynode/pkg/pixy/chirp"
	"github.com/smazurov/pixynode/pkg/pixy/frame"
)

// Servo limits accepted by the RC servo commands.
const (
	MaxServoChannel  = 1
	MaxServoPosition = 999
	MinServoFreq     = 20
	MaxServoFreq     = 300
)

// Publisher receives camera events.
type Publisher interface {
	Publish(ev events.Event)
}

// Option configures a Camera.
type Option func(*Camera)

// WithPublisher sets the bus that receives failure and capture events.
func WithPublisher(p Publisher) Option {
	return func(c *Camera) {
		c.publisher = p
	}
}

// WithLogger sets the camera logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Camera) {
		c.logger = logger
	}
}

// Camera serializes all access to one device service. It owns the block
// buffer, the raw frame and the colour planes, which are reused across calls.
type Camera struct {
	mu        sync.Mutex
	svc       Service
	invoker   *chirp.Invoker
	reader    *blocks.Reader
	raw       *frame.Frame
	planes    *frame.Planes
	publisher Publisher
	logger    *slog.Logger
}

// NewCamera wraps svc. Commands are timed into the metrics package.
func NewCamera(svc Service, opts ...Option) *Camera {
	c := &Camera{
		svc:    svc,
		reader: blocks.NewReader(svc),
		raw:    frame.NewFrame(frame.MaxPixels),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.invoker = chirp.NewInvoker(svc,
		chirp.WithObserver(metrics.ObserveCommand),
		chirp.WithLogger(c.logger),
	)
	return c
}

// Close releases the device service.
func (c *Camera) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.svc.Close()
	metrics.SetDeviceConnected(false)
}

// Invoke runs an arbitrary command.
func (c *Camera) Invoke(name string, args []chirp.Value, returns ...chirp.Type) (chirp.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invoke(name, args, returns...)
}

func (c *Camera) invoke(name string, args []chirp.Value, returns ...chirp.Type) (chirp.Response, error) {
	resp, err := c.invoker.Invoke(name, args, returns...)
	if err != nil {
		c.failed(name, err)
	}
	return resp, err
}

func (c *Camera) failed(op string, err error) {
	code, _ := pixy.StatusCode(err)
	c.logger.Debug("Device call failed", "command", op, "error", err)
	if c.publisher != nil {
		c.publisher.Publish(events.CommandFailedEvent{
			Command:   op,
			Status:    code,
			Error:     err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
}

// set sends a setter; only the transport status decides success.
func (c *Camera) set(name string, args ...chirp.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.invoke(name, args, chirp.TypeInt32)
	return err
}

// get sends a getter and returns its single result slot.
func (c *Camera) get(name string, ret chirp.Type, args ...chirp.Value) (chirp.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	resp, err := c.invoke(name, args, ret)
	if err != nil {
		return chirp.Value{}, err
	}
	return resp.Value(0), nil
}

// Mode returns the camera mode register.
func (c *Camera) Mode() (uint8, error) {
	v, err := c.get("cam_getMode", chirp.TypeInt32)
	return uint8(v.Uint32()), err
}

// SetMode writes the camera mode register.
func (c *Camera) SetMode(mode uint8) error {
	return c.set("cam_setMode", chirp.Uint8(mode))
}

// AutoWhiteBalance reports whether automatic white balance is on.
func (c *Camera) AutoWhiteBalance() (bool, error) {
	v, err := c.get("cam_getAWB", chirp.TypeInt32)
	return v.Int32() != 0, err
}

// SetAutoWhiteBalance switches automatic white balance.
func (c *Camera) SetAutoWhiteBalance(enable bool) error {
	return c.set("cam_setAWB", chirp.Uint8(boolByte(enable)))
}

// WhiteBalance returns the manual white balance gains.
func (c *Camera) WhiteBalance() (r, g, b uint8, err error) {
	v, err := c.get("cam_getWBV", chirp.TypeUint32)
	if err != nil {
		return 0, 0, 0, err
	}
	r, g, b = UnpackWhiteBalance(v.Uint32())
	return r, g, b, nil
}

// SetWhiteBalance writes the manual white balance gains.
func (c *Camera) SetWhiteBalance(r, g, b uint8) error {
	return c.set("cam_setWBV", chirp.Uint32(PackWhiteBalance(r, g, b)))
}

// AutoExposure reports whether automatic exposure is on.
func (c *Camera) AutoExposure() (bool, error) {
	v, err := c.get("cam_getAEC", chirp.TypeInt32)
	return v.Int32() != 0, err
}

// SetAutoExposure switches automatic exposure.
func (c *Camera) SetAutoExposure(enable bool) error {
	return c.set("cam_setAEC", chirp.Uint8(boolByte(enable)))
}

// Exposure returns the manual gain and exposure compensation.
func (c *Camera) Exposure() (gain uint8, compensation uint16, err error) {
	v, err := c.get("cam_getECV", chirp.TypeUint32)
	if err != nil {
		return 0, 0, err
	}
	gain, compensation = UnpackExposure(v.Uint32())
	return gain, compensation, nil
}

// SetExposure writes the manual gain and exposure compensation.
func (c *Camera) SetExposure(gain uint8, compensation uint16) error {
	return c.set("cam_setECV", chirp.Uint32(PackExposure(gain, compensation)))
}

// Brightness returns the brightness offset.
func (c *Camera) Brightness() (int8, error) {
	v, err := c.get("cam_getBrightness", chirp.TypeInt32)
	return int8(v.Int32()), err
}

// SetBrightness writes the brightness offset.
func (c *Camera) SetBrightness(brightness int8) error {
	return c.set("cam_setBrightness", chirp.Int8(brightness))
}

// SetLED sets the RGB LED colour.
func (c *Camera) SetLED(r, g, b uint8) error {
	return c.set("led_set", chirp.Uint32(PackLED(r, g, b)))
}

// LEDMaxCurrent returns the LED current limit in microamps.
func (c *Camera) LEDMaxCurrent() (uint32, error) {
	v, err := c.get("led_getMaxCurrent", chirp.TypeUint32)
	return v.Uint32(), err
}

// SetLEDMaxCurrent sets the LED current limit in microamps.
func (c *Camera) SetLEDMaxCurrent(microamps uint32) error {
	return c.set("led_setMaxCurrent", chirp.Uint32(microamps))
}

// ServoPosition returns the position of an RC servo channel.
func (c *Camera) ServoPosition(channel uint8) (int32, error) {
	if channel > MaxServoChannel {
		return 0, fmt.Errorf("servo channel %d: %w", channel, pixy.ErrInvalidParameter)
	}
	v, err := c.get("rcs_getPos", chirp.TypeInt32, chirp.Int8(int8(channel)))
	return v.Int32(), err
}

// SetServoPosition moves an RC servo. Channels above 1 and positions
// above 999 are rejected without contacting the device.
func (c *Camera) SetServoPosition(channel uint8, position uint16) error {
	if channel > MaxServoChannel || position > MaxServoPosition {
		return fmt.Errorf("servo channel %d position %d: %w", channel, position, pixy.ErrInvalidParameter)
	}
	return c.set("rcs_setPos", chirp.Int8(int8(channel)), chirp.Int16(int16(position)))
}

// SetServoFrequency sets the RC servo PWM frequency, 20..300 Hz.
func (c *Camera) SetServoFrequency(hz uint16) error {
	if hz < MinServoFreq || hz > MaxServoFreq {
		return fmt.Errorf("servo frequency %d: %w", hz, pixy.ErrInvalidParameter)
	}
	return c.set("rcs_setFreq", chirp.Int16(int16(hz)))
}

// Version is a firmware version triple.
type Version struct {
	Major uint16 `json:"major"`
	Minor uint16 `json:"minor"`
	Build uint16 `json:"build"`
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Build)
}

// FirmwareVersion queries the firmware version.
func (c *Camera) FirmwareVersion() (Version, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.invoke("version", nil, chirp.TypeUint16, chirp.TypeUint16, chirp.TypeUint16)
	if err != nil {
		return Version{}, err
	}
	return Version{
		Major: uint16(resp.Value(0).Uint32()),
		Minor: uint16(resp.Value(1).Uint32()),
		Build: uint16(resp.Value(2).Uint32()),
	}, nil
}

// ReadBlocks reads the detection buffer and returns a copy of the valid blocks.
func (c *Camera) ReadBlocks() ([]blocks.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.reader.Read(); err != nil {
		c.failed("get_blocks", err)
		return nil, err
	}
	return c.reader.Blocks(), nil
}

// Capture is the result of CaptureFrame.
type Capture struct {
	Image      *image.RGBA
	Format     string
	RawWidth   int
	RawHeight  int
	RenderTime time.Duration
}

// CaptureFrame grabs a raw frame and demosaics it into an image.
func (c *Camera) CaptureFrame(req frame.Request, order frame.ChannelOrder) (Capture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := frame.Capture(c.svc, req, c.raw); err != nil {
		c.failed("cam_getFrame", err)
		return Capture{}, err
	}

	w, h := int(c.raw.Width), int(c.raw.Height)
	if c.planes == nil || c.planes.Width != w-2 || c.planes.Height != h-2 {
		c.planes = frame.NewPlanes(w, h)
	}

	start := time.Now()
	if err := frame.Demosaic(c.raw, c.planes); err != nil {
		c.failed("cam_getFrame", err)
		return Capture{}, err
	}
	elapsed := time.Since(start)
	metrics.ObserveFrameRender(elapsed)

	img := c.planes.Image(order)
	if c.publisher != nil {
		c.publisher.Publish(events.FrameCapturedEvent{
			Format:    c.raw.FormatName(),
			Width:     c.planes.Width,
			Height:    c.planes.Height,
			RenderMS:  float64(elapsed.Microseconds()) / 1000,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	return Capture{
		Image:      img,
		Format:     c.raw.FormatName(),
		RawWidth:   w,
		RawHeight:  h,
		RenderTime: elapsed,
	}, nil
}

// PackWhiteBalance packs gains as g | r<<8 | b<<16.
func PackWhiteBalance(r, g, b uint8) uint32 {
	return uint32(g) | uint32(r)<<8 | uint32(b)<<16
}

// UnpackWhiteBalance reverses PackWhiteBalance.
func UnpackWhiteBalance(v uint32) (r, g, b uint8) {
	return uint8(v >> 8), uint8(v), uint8(v >> 16)
}

// PackExposure packs gain | compensation<<8.
func PackExposure(gain uint8, compensation uint16) uint32 {
	return uint32(gain) | uint32(compensation)<<8
}

// UnpackExposure reverses PackExposure.
func UnpackExposure(v uint32) (gain uint8, compensation uint16) {
	return uint8(v & 0xff), uint16((v >> 8) & 0xffff)
}

// PackLED packs an LED colour as b | g<<8 | r<<16.
func PackLED(r, g, b uint8) uint32 {
	return uint32(b) | uint32(g)<<8 | uint32(r)<<16
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
