// Package sim is an in-process device service that behaves like a Pixy
// camera: it parses command frames, keeps register state, serves a
// configurable set of detections and renders test frames as Bayer mosaics.
package sim

import (
	"sync"

	"github.com/smazurov/pixynode/pkg/pixy"
	"github.com/smazurov/pixynode/pkg/pixy/blocks"
	"github.com/smazurov/pixynode/pkg/pixy/chirp"
)

// Registers is the simulated camera state.
type Registers struct {
	Mode             uint8
	AutoWhiteBalance uint8
	WhiteBalance     uint32
	AutoExposure     uint8
	Exposure         uint32
	Brightness       int8
	LED              uint32
	LEDMaxCurrent    uint32
	ServoPosition    [2]int16
	ServoFrequency   int16
	Version          [3]uint16
}

// DefaultRegisters returns power-on state.
func DefaultRegisters() Registers {
	return Registers{
		AutoWhiteBalance: 1,
		WhiteBalance:     0x404040,
		AutoExposure:     1,
		Exposure:         0x001020,
		Brightness:       80,
		LEDMaxCurrent:    40000,
		ServoPosition:    [2]int16{500, 500},
		ServoFrequency:   50,
		Version:          [3]uint16{2, 0, 19},
	}
}

// Option configures a Device.
type Option func(*Device)

// WithRegisters sets the initial register state.
func WithRegisters(r Registers) Option {
	return func(d *Device) {
		d.regs = r
	}
}

// WithInitFailures makes the first n Init calls return status.
func WithInitFailures(n int, status int32) Option {
	return func(d *Device) {
		d.initFailures = n
		d.initStatus = status
	}
}

// WithPattern sets the scene rendered by GetFrame.
func WithPattern(p Pattern) Option {
	return func(d *Device) {
		d.pattern = p
	}
}

// WithBlocks sets the initial detection scene.
func WithBlocks(records ...blocks.Record) Option {
	return func(d *Device) {
		d.scene = append(d.scene[:0], records...)
	}
}

// DemoScene is a small scene with two blobs and one colour code.
func DemoScene() []blocks.Record {
	return []blocks.Record{
		{Type: blocks.TypeNormal, Signature: 1, X: 160, Y: 100, Width: 40, Height: 30},
		{Type: blocks.TypeNormal, Signature: 3, X: 60, Y: 140, Width: 12, Height: 12},
		// Colour codes list their signatures as octal digits: 012 is signatures 1 and 2.
		{Type: blocks.TypeColorCode, Signature: 012, X: 250, Y: 60, Width: 24, Height: 18, Angle: -45},
	}
}

// Device is a simulated device service. It is safe for concurrent use.
type Device struct {
	mu sync.Mutex

	regs     Registers
	forced   map[string]int32
	commands map[string]command
	calls    []string

	scene       []blocks.Record
	blockStatus int

	pattern     Pattern
	frameFormat uint32

	initFailures int
	initStatus   int32
	initCalls    int
	open         bool
}

// New creates a device with default registers, an empty scene and a
// colour-bar pattern.
func New(opts ...Option) *Device {
	d := &Device{
		regs:       DefaultRegisters(),
		forced:     make(map[string]int32),
		pattern:    Bars(),
		initStatus: pixy.StatusUSBNotFound,
	}
	d.commands = d.commandTable()
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Init opens the device, failing as configured by WithInitFailures.
func (d *Device) Init() int32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.initCalls++
	if d.initCalls <= d.initFailures {
		return d.initStatus
	}
	d.open = true
	return pixy.StatusSuccess
}

// InitCalls returns how many times Init was called.
func (d *Device) InitCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initCalls
}

// Close marks the device closed. Later calls report StatusUSBNoDevice.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
}

// Open reports whether Init succeeded and Close has not been called.
func (d *Device) Open() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// Registers returns a copy of the register state.
func (d *Device) Registers() Registers {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs
}

// SetStatus forces every later call of name to return status.
// A zero status removes the override.
func (d *Device) SetStatus(name string, status int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status == 0 {
		delete(d.forced, name)
		return
	}
	d.forced[name] = status
}

// Calls returns the names of dispatched commands in order.
func (d *Device) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	copy(out, d.calls)
	return out
}

// Send dispatches one encoded command frame.
func (d *Device) Send(frame []byte) (int32, []byte) {
	var f chirp.CommandFrame
	if err := f.UnmarshalBinary(frame); err != nil {
		return pixy.StatusChirp, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls = append(d.calls, f.Name)
	if !d.open {
		return pixy.StatusUSBNoDevice, nil
	}
	if status, ok := d.forced[f.Name]; ok {
		return status, nil
	}

	cmd, ok := d.commands[f.Name]
	if !ok {
		return pixy.StatusInvalidCommand, nil
	}
	if len(f.Args) != len(cmd.args) {
		return pixy.StatusChirp, nil
	}
	args := make([]chirp.Value, len(f.Args))
	for i, a := range f.Args {
		if a.Type().Size() != cmd.args[i].Size() {
			return pixy.StatusChirp, nil
		}
		args[i] = a.As(cmd.args[i])
	}

	status, values := cmd.run(args)
	if status < 0 {
		return status, nil
	}
	return status, reply(values, f.Returns)
}

// reply fits the command's results to the caller's slots. Missing results
// are zero and each value is truncated to its slot width.
func reply(values []chirp.Value, slots []chirp.Type) []byte {
	out := make([]chirp.Value, len(slots))
	for i, t := range slots {
		var bits uint32
		if i < len(values) {
			bits = values[i].Uint32()
		}
		out[i] = chirp.New(t, int64(bits))
	}
	return chirp.EncodeReply(out)
}

// SetBlocks replaces the scene returned by GetBlocks.
func (d *Device) SetBlocks(records ...blocks.Record) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scene = append(d.scene[:0], records...)
}

// SetBlockStatus overrides the GetBlocks result. Negative values are
// status codes; zero removes the override.
func (d *Device) SetBlockStatus(status int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.blockStatus = status
}

// GetBlocks copies up to maxBlocks records of the scene into dst.
func (d *Device) GetBlocks(maxBlocks uint16, dst []byte) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return int(pixy.StatusUSBNoDevice)
	}
	if d.blockStatus != 0 {
		return d.blockStatus
	}

	n := min(len(d.scene), int(maxBlocks), len(dst)/blocks.RecordSize)
	for i := 0; i < n; i++ {
		d.scene[i].Put(dst[i*blocks.RecordSize:])
	}
	return n
}
