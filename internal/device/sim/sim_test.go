package sim

import (
	"testing"

	"github.com/smazurov/pixynode/pkg/pixy"
	"github.com/smazurov/pixynode/pkg/pixy/blocks"
	"github.com/smazurov/pixynode/pkg/pixy/chirp"
	"github.com/smazurov/pixynode/pkg/pixy/frame"
)

func openDevice(t *testing.T, opts ...Option) *Device {
	t.Helper()
	d := New(opts...)
	if status := d.Init(); status != pixy.StatusSuccess {
		t.Fatalf("Init() = %d, want 0", status)
	}
	return d
}

func encode(t *testing.T, f chirp.CommandFrame) []byte {
	t.Helper()
	data, err := f.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}
	return data
}

func TestInitFailures(t *testing.T) {
	d := New(WithInitFailures(2, pixy.StatusUSBBusy))

	for i := 0; i < 2; i++ {
		if status := d.Init(); status != pixy.StatusUSBBusy {
			t.Errorf("Init() attempt %d = %d, want %d", i+1, status, pixy.StatusUSBBusy)
		}
	}
	if status := d.Init(); status != pixy.StatusSuccess {
		t.Errorf("Init() attempt 3 = %d, want 0", status)
	}
	if d.InitCalls() != 3 {
		t.Errorf("InitCalls() = %d, want 3", d.InitCalls())
	}
	if !d.Open() {
		t.Error("Expected device to be open")
	}
}

func TestSendDispatch(t *testing.T) {
	tests := []struct {
		name       string
		frame      chirp.CommandFrame
		wantStatus int32
		wantReply  []byte
	}{
		{
			name:       "version",
			frame:      chirp.CommandFrame{Name: "version", Returns: []chirp.Type{chirp.TypeUint16, chirp.TypeUint16, chirp.TypeUint16}},
			wantStatus: pixy.StatusSuccess,
			wantReply:  []byte{2, 0, 0, 0, 19, 0},
		},
		{
			name:       "setter",
			frame:      chirp.CommandFrame{Name: "cam_setMode", Args: []chirp.Value{chirp.Uint8(1)}, Returns: []chirp.Type{chirp.TypeInt32}},
			wantStatus: pixy.StatusSuccess,
			wantReply:  []byte{0, 0, 0, 0},
		},
		{
			name:       "unknown command",
			frame:      chirp.CommandFrame{Name: "cam_selfDestruct"},
			wantStatus: pixy.StatusInvalidCommand,
		},
		{
			name:       "wrong argument width",
			frame:      chirp.CommandFrame{Name: "cam_setMode", Args: []chirp.Value{chirp.Uint32(1)}},
			wantStatus: pixy.StatusChirp,
		},
		{
			name:       "missing argument",
			frame:      chirp.CommandFrame{Name: "rcs_setPos", Args: []chirp.Value{chirp.Int8(0)}},
			wantStatus: pixy.StatusChirp,
		},
		{
			name:       "servo out of range",
			frame:      chirp.CommandFrame{Name: "rcs_setPos", Args: []chirp.Value{chirp.Int8(0), chirp.Int16(1000)}},
			wantStatus: pixy.StatusInvalidParameter,
		},
		{
			name:       "no return slots",
			frame:      chirp.CommandFrame{Name: "cam_getAWB"},
			wantStatus: pixy.StatusSuccess,
			wantReply:  []byte{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := openDevice(t)
			status, reply := d.Send(encode(t, tt.frame))
			if status != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, status)
			}
			if tt.wantReply != nil && string(reply) != string(tt.wantReply) {
				t.Errorf("Expected reply %v, got %v", tt.wantReply, reply)
			}
		})
	}
}

func TestSendMalformedFrame(t *testing.T) {
	d := openDevice(t)
	if status, _ := d.Send([]byte{5, 'a'}); status != pixy.StatusChirp {
		t.Errorf("Expected %d, got %d", pixy.StatusChirp, status)
	}
}

func TestSendClosedDevice(t *testing.T) {
	d := New()
	frame := encode(t, chirp.CommandFrame{Name: "version"})
	if status, _ := d.Send(frame); status != pixy.StatusUSBNoDevice {
		t.Errorf("Expected %d before Init, got %d", pixy.StatusUSBNoDevice, status)
	}

	d.Init()
	d.Close()
	if status, _ := d.Send(frame); status != pixy.StatusUSBNoDevice {
		t.Errorf("Expected %d after Close, got %d", pixy.StatusUSBNoDevice, status)
	}
}

func TestSetStatus(t *testing.T) {
	d := openDevice(t)
	frame := encode(t, chirp.CommandFrame{Name: "cam_getAWB", Returns: []chirp.Type{chirp.TypeInt32}})

	d.SetStatus("cam_getAWB", pixy.StatusUSBIO)
	if status, reply := d.Send(frame); status != pixy.StatusUSBIO || reply != nil {
		t.Errorf("Expected forced status with no reply, got %d %v", status, reply)
	}

	d.SetStatus("cam_getAWB", 0)
	if status, _ := d.Send(frame); status != pixy.StatusSuccess {
		t.Errorf("Expected override cleared, got %d", status)
	}

	calls := d.Calls()
	if len(calls) != 2 || calls[0] != "cam_getAWB" {
		t.Errorf("Calls() = %v", calls)
	}
}

func TestRegistersRoundTrip(t *testing.T) {
	d := openDevice(t)
	inv := chirp.NewInvoker(d)

	if _, err := inv.Invoke("cam_setBrightness", []chirp.Value{chirp.Int8(-20)}, chirp.TypeInt32); err != nil {
		t.Fatalf("set brightness: %v", err)
	}
	resp, err := inv.Invoke("cam_getBrightness", nil, chirp.TypeInt32)
	if err != nil {
		t.Fatalf("get brightness: %v", err)
	}
	if got := resp.Value(0).Int32(); got != -20 {
		t.Errorf("Expected brightness -20, got %d", got)
	}
	if d.Registers().Brightness != -20 {
		t.Errorf("Expected register -20, got %d", d.Registers().Brightness)
	}

	if _, err := inv.Invoke("rcs_setPos", []chirp.Value{chirp.Int8(1), chirp.Int16(250)}, chirp.TypeInt32); err != nil {
		t.Fatalf("set servo: %v", err)
	}
	resp, err = inv.Invoke("rcs_getPos", []chirp.Value{chirp.Int8(1)}, chirp.TypeInt32)
	if err != nil {
		t.Fatalf("get servo: %v", err)
	}
	if got := resp.Value(0).Int32(); got != 250 {
		t.Errorf("Expected servo 250, got %d", got)
	}
}

func TestDemoScene(t *testing.T) {
	d := openDevice(t, WithBlocks(DemoScene()...))

	var buf blocks.Buffer
	n, err := blocks.ReadInto(d, &buf)
	if err != nil {
		t.Fatalf("ReadInto() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("Expected 3 blocks, got %d", n)
	}

	cc := buf.Block(2)
	if cc.Kind != blocks.KindColorCode {
		t.Errorf("Expected COLOR_CODE, got %s", cc.Kind)
	}
	// Octal 012 pairs signatures 1 and 2.
	if cc.Signature != 10 {
		t.Errorf("Expected signature 10, got %d", cc.Signature)
	}
	if angle, ok := cc.Angle(); !ok || angle != -45 {
		t.Errorf("Expected angle -45, got %d (%v)", angle, ok)
	}
}

func TestGetBlocks(t *testing.T) {
	d := openDevice(t)
	d.SetBlocks(
		blocks.Record{Type: blocks.TypeNormal, Signature: 1, X: 10, Y: 20, Width: 5, Height: 6},
		blocks.Record{Type: blocks.TypeColorCode, Signature: 12, X: 30, Y: 40, Width: 7, Height: 8, Angle: -45},
		blocks.Record{Type: blocks.TypeNormal, Signature: 2},
	)

	var buf blocks.Buffer
	n, err := blocks.ReadInto(d, &buf)
	if err != nil {
		t.Fatalf("ReadInto() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("Expected 3 blocks, got %d", n)
	}
	cc := buf.Block(1)
	if angle, ok := cc.Angle(); !ok || angle != -45 {
		t.Errorf("Expected angle -45, got %d (%v)", angle, ok)
	}

	t.Run("bounded by maxBlocks", func(t *testing.T) {
		dst := make([]byte, blocks.Capacity*blocks.RecordSize)
		if got := d.GetBlocks(2, dst); got != 2 {
			t.Errorf("Expected 2, got %d", got)
		}
	})

	t.Run("bounded by dst", func(t *testing.T) {
		dst := make([]byte, blocks.RecordSize)
		if got := d.GetBlocks(blocks.Capacity, dst); got != 1 {
			t.Errorf("Expected 1, got %d", got)
		}
	})

	t.Run("status override", func(t *testing.T) {
		d.SetBlockStatus(int(pixy.StatusUSBIO))
		defer d.SetBlockStatus(0)
		if _, err := blocks.ReadInto(d, &buf); err == nil {
			t.Error("Expected error")
		}
		if buf.Len() != 0 {
			t.Errorf("Expected empty buffer, got %d", buf.Len())
		}
	})
}

func TestGetFrameFlat(t *testing.T) {
	d := openDevice(t, WithPattern(Flat(RGB{200, 100, 50})))

	f := frame.NewFrame(frame.MaxPixels)
	if err := frame.Capture(d, frame.FullFrame(), f); err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if f.Format != frame.FormatBA81 || f.Width != frame.MaxWidth || f.Height != frame.MaxHeight {
		t.Fatalf("Unexpected frame %s %dx%d", f.FormatName(), f.Width, f.Height)
	}

	p := frame.NewPlanes(int(f.Width), int(f.Height))
	if err := frame.Demosaic(f, p); err != nil {
		t.Fatalf("Demosaic() error = %v", err)
	}
	for i := range p.Red {
		if p.Red[i] != 200 || p.Green[i] != 100 || p.Blue[i] != 50 {
			t.Fatalf("pixel %d = (%d,%d,%d), want (200,100,50)", i, p.Red[i], p.Green[i], p.Blue[i])
		}
	}
}

func TestGetFrameBars(t *testing.T) {
	d := openDevice(t)

	f := frame.NewFrame(frame.MaxPixels)
	if err := frame.Capture(d, frame.FullFrame(), f); err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	p := frame.NewPlanes(int(f.Width), int(f.Height))
	if err := frame.Demosaic(f, p); err != nil {
		t.Fatalf("Demosaic() error = %v", err)
	}

	// Sample the middle of each 40-column bar, away from its edges.
	bars := Bars()
	for bar := 0; bar < 8; bar++ {
		x := bar*40 + 20
		want := bars.At(x, frame.MaxWidth)
		o := 50*p.Width + (x - 1)
		got := RGB{p.Red[o], p.Green[o], p.Blue[o]}
		if got != want {
			t.Errorf("bar %d: got %v, want %v", bar, got, want)
		}
	}
}

func TestGetFrameFailures(t *testing.T) {
	t.Run("forced status", func(t *testing.T) {
		d := openDevice(t)
		d.SetStatus("cam_getFrame", pixy.StatusUSBBusy)
		f := frame.NewFrame(frame.MaxPixels)
		err := frame.Capture(d, frame.FullFrame(), f)
		if code, ok := pixy.StatusCode(err); !ok || code != pixy.StatusUSBBusy {
			t.Errorf("Expected busy status, got %v", err)
		}
	})

	t.Run("wrong mode", func(t *testing.T) {
		d := openDevice(t)
		req := frame.FullFrame()
		req.Mode = 0x10
		err := frame.Capture(d, req, frame.NewFrame(frame.MaxPixels))
		if code, ok := pixy.StatusCode(err); !ok || code != pixy.StatusInvalidParameter {
			t.Errorf("Expected invalid parameter, got %v", err)
		}
	})

	t.Run("forced format", func(t *testing.T) {
		d := openDevice(t)
		d.SetFrameFormat(frame.FormatCMV1)
		f := frame.NewFrame(frame.MaxPixels)
		if err := frame.Capture(d, frame.FullFrame(), f); err != nil {
			t.Fatalf("Capture() error = %v", err)
		}
		if f.FormatName() != "CMV1" {
			t.Errorf("Expected CMV1, got %s", f.FormatName())
		}
	})

	t.Run("buffer too small", func(t *testing.T) {
		d := openDevice(t)
		if err := frame.Capture(d, frame.FullFrame(), frame.NewFrame(100)); err == nil {
			t.Error("Expected capacity error")
		}
	})
}
