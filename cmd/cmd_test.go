package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/pixynode/internal/device"
	"github.com/smazurov/pixynode/internal/device/sim"
	"github.com/smazurov/pixynode/pkg/pixy"
	"github.com/smazurov/pixynode/pkg/pixy/blocks"
	"github.com/smazurov/pixynode/pkg/pixy/chirp"
	"github.com/smazurov/pixynode/pkg/pixy/frame"
	"github.com/spf13/cobra"
)

type scriptedReader struct {
	reads [][]blocks.Block
	err   error
	calls int
}

func (r *scriptedReader) ReadBlocks() ([]blocks.Block, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if len(r.reads) == 0 {
		return nil, nil
	}
	next := r.reads[0]
	r.reads = r.reads[1:]
	return next, nil
}

func TestPollBlocksStopsAfterCount(t *testing.T) {
	blob := blocks.Block{Kind: blocks.KindNormal, Signature: 1, X: 10, Y: 20, Width: 3, Height: 4}
	r := &scriptedReader{reads: [][]blocks.Block{
		nil,
		{blob},
		nil,
		{blob, blob},
		{blob},
	}}

	var out bytes.Buffer
	if err := pollBlocks(context.Background(), r, &out, 2, time.Millisecond); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if r.calls != 4 {
		t.Errorf("Expected 4 reads, got %d", r.calls)
	}
	got := out.String()
	if !strings.Contains(got, "frame 0:\n") || !strings.Contains(got, "frame 1:\n") {
		t.Errorf("Expected two frame headers, got:\n%s", got)
	}
	if strings.Contains(got, "frame 2:") {
		t.Errorf("Expected output to stop after two frames, got:\n%s", got)
	}
	if n := strings.Count(got, "BLOCK[NORMAL]"); n != 3 {
		t.Errorf("Expected 3 block lines, got %d", n)
	}
}

func TestPollBlocksReturnsReadError(t *testing.T) {
	wantErr := &pixy.StatusError{Op: "get_blocks", Code: pixy.StatusUSBIO}
	r := &scriptedReader{err: wantErr}

	err := pollBlocks(context.Background(), r, &bytes.Buffer{}, 0, time.Millisecond)
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected %v, got %v", wantErr, err)
	}
}

func TestPollBlocksCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &scriptedReader{}
	if err := pollBlocks(ctx, r, &bytes.Buffer{}, 0, time.Hour); err != nil {
		t.Errorf("Expected nil error on cancel, got %v", err)
	}
	if r.calls != 1 {
		t.Errorf("Expected 1 read before cancel was seen, got %d", r.calls)
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantType []chirp.Type
		wantVal  []int64
		wantErr  bool
	}{
		{"empty", nil, []chirp.Type{}, []int64{}, false},
		{"signed", []string{"i8:-45"}, []chirp.Type{chirp.TypeInt8}, []int64{-45}, false},
		{"hex", []string{"u32:0x404040"}, []chirp.Type{chirp.TypeUint32}, []int64{0x404040}, false},
		{"mixed", []string{"u8:1", "i16:500"}, []chirp.Type{chirp.TypeUint8, chirp.TypeInt16}, []int64{1, 500}, false},
		{"missing type", []string{"42"}, nil, nil, true},
		{"bad number", []string{"u8:x"}, nil, nil, true},
		{"unknown type", []string{"f32:1"}, nil, nil, true},
		{"out of range", []string{"u8:256"}, nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := parseArgs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %v", tt.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(values) != len(tt.wantType) {
				t.Fatalf("Expected %d values, got %d", len(tt.wantType), len(values))
			}
			for i, v := range values {
				if v.Type() != tt.wantType[i] {
					t.Errorf("Value %d: expected type %s, got %s", i, tt.wantType[i], v.Type())
				}
				if v.Int64() != tt.wantVal[i] {
					t.Errorf("Value %d: expected %d, got %d", i, tt.wantVal[i], v.Int64())
				}
			}
		})
	}
}

func TestParseReturns(t *testing.T) {
	slots, err := parseReturns([]string{"u16", "int8"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(slots) != 2 || slots[0] != chirp.TypeUint16 || slots[1] != chirp.TypeInt8 {
		t.Errorf("Expected [uint16 int8], got %v", slots)
	}

	if _, err := parseReturns([]string{"double"}); err == nil {
		t.Error("Expected error for unknown return type")
	}
}

func TestWriteResponse(t *testing.T) {
	var out bytes.Buffer
	writeResponse(&out, "version", chirp.Response{
		Status: 0,
		Values: []chirp.Value{chirp.New(chirp.TypeUint16, 2), chirp.New(chirp.TypeUint16, 19)},
	})

	want := "version: status 0 (Success)\n  [0] uint16 2\n  [1] uint16 19\n"
	if out.String() != want {
		t.Errorf("Expected %q, got %q", want, out.String())
	}
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		name   string
		create func() *cobra.Command
		flags  []string
	}{
		{"blocks", CreateBlocksCmd, []string{"device", "count", "interval", "timeout"}},
		{"frame", CreateFrameCmd, []string{"device", "output", "order", "x", "y", "width", "height"}},
		{"invoke", CreateInvokeCmd, []string{"device", "returns", "timeout"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.create()
			if c.Name() != tt.name {
				t.Errorf("Expected command %q, got %q", tt.name, c.Name())
			}
			for _, f := range tt.flags {
				if c.Flags().Lookup(f) == nil {
					t.Errorf("Expected flag --%s on %s", f, tt.name)
				}
			}
		})
	}
}

func TestVersionCmd(t *testing.T) {
	c := CreateVersionCmd()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetArgs(nil)
	if err := c.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "pixynode ") {
		t.Errorf("Expected build line, got %q", out.String())
	}
}

func TestRunClosesCameraOnFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*sim.Device)
		run   func(*device.Camera, *bytes.Buffer) error
	}{
		{
			name:  "invoke",
			setup: func(d *sim.Device) { d.SetStatus("cam_getBrightness", pixy.StatusUSBIO) },
			run: func(cam *device.Camera, out *bytes.Buffer) error {
				return runInvoke(cam, out, "cam_getBrightness", nil, []chirp.Type{chirp.TypeInt32})
			},
		},
		{
			name:  "frame",
			setup: func(d *sim.Device) { d.SetFrameFormat(frame.FormatCCB1) },
			run: func(cam *device.Camera, out *bytes.Buffer) error {
				return runFrame(cam, out, frame.FullFrame(), frame.OrderRGB, filepath.Join(t.TempDir(), "frame.png"))
			},
		},
		{
			name:  "blocks",
			setup: func(d *sim.Device) { d.SetBlockStatus(int(pixy.StatusUSBIO)) },
			run: func(cam *device.Camera, out *bytes.Buffer) error {
				return runBlocks(context.Background(), cam, out, 1, time.Millisecond)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := sim.New()
			if status := dev.Init(); status != pixy.StatusSuccess {
				t.Fatalf("Init() = %d", status)
			}
			tt.setup(dev)

			var out bytes.Buffer
			if err := tt.run(device.NewCamera(dev), &out); err == nil {
				t.Fatal("Expected error, got nil")
			}
			if dev.Open() {
				t.Error("Expected device to be closed after failure")
			}
		})
	}
}

func TestRunFrameWritesPNG(t *testing.T) {
	dev := sim.New()
	if status := dev.Init(); status != pixy.StatusSuccess {
		t.Fatalf("Init() = %d", status)
	}
	output := filepath.Join(t.TempDir(), "frame.png")
	req := frame.Request{Mode: frame.ModeBayer, Width: 64, Height: 32}

	var out bytes.Buffer
	if err := runFrame(device.NewCamera(dev), &out, req, frame.OrderRGB, output); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasPrefix(out.String(), output+": 62x30 BA81") {
		t.Errorf("Expected summary for 62x30 BA81, got %q", out.String())
	}
	if dev.Open() {
		t.Error("Expected device to be closed")
	}
}
