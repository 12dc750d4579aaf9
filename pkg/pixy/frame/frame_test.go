package frame

import (
	"bytes"
	"errors"
	"testing"

	"github.com/smazurov/pixynode/pkg/pixy"
)

func bayerFrame(w, h int, pixels []byte) *Frame {
	return &Frame{
		Format:    FormatBA81,
		Width:     uint16(w),
		Height:    uint16(h),
		NumPixels: uint32(len(pixels)),
		Pixels:    pixels,
	}
}

func TestFourCCString(t *testing.T) {
	tests := []struct {
		name     string
		format   uint32
		expected string
	}{
		{"BA81", FormatBA81, "BA81"},
		{"CCQ1", FormatCCQ1, "CCQ1"},
		{"CCB1", FormatCCB1, "CCB1"},
		{"CMV1", FormatCMV1, "CMV1"},
		{"packing", FourCC('B', 'A', '8', '1'), "BA81"},
		{"unknown", FourCC('Y', 'U', 'Y', 'V'), "???"},
		{"zero", 0, "???"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FourCCString(tt.format); got != tt.expected {
				t.Errorf("FourCCString(0x%08X) = %q, want %q", tt.format, got, tt.expected)
			}
		})
	}

	if FormatBA81 != 0x31384142 {
		t.Errorf("FormatBA81 = 0x%08X, want 0x31384142", FormatBA81)
	}
}

func TestDemosaicFlatField(t *testing.T) {
	pixels := bytes.Repeat([]byte{128}, MaxPixels)
	f := bayerFrame(MaxWidth, MaxHeight, pixels)
	p := NewPlanes(MaxWidth, MaxHeight)

	if p.Width != 318 || p.Height != 198 {
		t.Fatalf("NewPlanes dims = %dx%d, want 318x198", p.Width, p.Height)
	}
	if err := Demosaic(f, p); err != nil {
		t.Fatalf("Demosaic() error = %v", err)
	}
	for i := 0; i < p.Width*p.Height; i++ {
		if p.Red[i] != 128 || p.Green[i] != 128 || p.Blue[i] != 128 {
			t.Fatalf("pixel %d = (%d,%d,%d), want (128,128,128)", i, p.Red[i], p.Green[i], p.Blue[i])
		}
	}
}

func TestDemosaicParityKernels(t *testing.T) {
	pixels := []byte{
		1, 2, 3, 4,
		10, 20, 30, 40,
		50, 60, 70, 80,
		100, 110, 120, 130,
	}
	f := bayerFrame(4, 4, pixels)
	p := NewPlanes(4, 4)

	if err := Demosaic(f, p); err != nil {
		t.Fatalf("Demosaic() error = %v", err)
	}

	tests := []struct {
		name    string
		index   int
		r, g, b byte
	}{
		{"odd row odd column", 0, 20, 25, 31},
		{"odd row even column", 1, 30, 30, 36},
		{"even row odd column", 2, 65, 60, 60},
		{"even row even column", 3, 75, 72, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := [3]byte{p.Red[tt.index], p.Green[tt.index], p.Blue[tt.index]}
			want := [3]byte{tt.r, tt.g, tt.b}
			if got != want {
				t.Errorf("pixel %d = %v, want %v", tt.index, got, want)
			}
		})
	}
}

func TestDemosaicColourSites(t *testing.T) {
	const w, h = 8, 6
	pixels := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			switch {
			case y&1 == 1 && x&1 == 1:
				pixels[y*w+x] = 200
			case y&1 == 0 && x&1 == 0:
				pixels[y*w+x] = 50
			default:
				pixels[y*w+x] = 100
			}
		}
	}

	p := NewPlanes(w, h)
	if err := Demosaic(bayerFrame(w, h, pixels), p); err != nil {
		t.Fatalf("Demosaic() error = %v", err)
	}
	for i := range p.Red {
		if p.Red[i] != 200 || p.Green[i] != 100 || p.Blue[i] != 50 {
			t.Fatalf("pixel %d = (%d,%d,%d), want (200,100,50)", i, p.Red[i], p.Green[i], p.Blue[i])
		}
	}
}

func TestDemosaicRejects(t *testing.T) {
	tests := []struct {
		name   string
		frame  *Frame
		planes *Planes
		want   error
	}{
		{
			name:   "format mismatch",
			frame:  &Frame{Format: FormatCMV1, Width: 4, Height: 4, NumPixels: 16, Pixels: make([]byte, 16)},
			planes: NewPlanes(4, 4),
			want:   ErrFormat,
		},
		{
			name:   "too narrow",
			frame:  bayerFrame(2, 4, make([]byte, 8)),
			planes: NewPlanes(2, 4),
			want:   ErrDimensions,
		},
		{
			name:   "too short",
			frame:  bayerFrame(4, 2, make([]byte, 8)),
			planes: NewPlanes(4, 2),
			want:   ErrDimensions,
		},
		{
			name:   "missing pixels",
			frame:  &Frame{Format: FormatBA81, Width: 4, Height: 4, NumPixels: 16, Pixels: make([]byte, 15)},
			planes: NewPlanes(4, 4),
			want:   ErrShortFrame,
		},
		{
			name:   "reported count too small",
			frame:  &Frame{Format: FormatBA81, Width: 4, Height: 4, NumPixels: 12, Pixels: make([]byte, 16)},
			planes: NewPlanes(4, 4),
			want:   ErrShortFrame,
		},
		{
			name:   "plane size mismatch",
			frame:  bayerFrame(4, 4, make([]byte, 16)),
			planes: NewPlanes(5, 4),
			want:   ErrPlaneSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Demosaic(tt.frame, tt.planes)
			if !errors.Is(err, tt.want) {
				t.Errorf("Demosaic() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDemosaicFormatCheckedFirst(t *testing.T) {
	// Pixels is nil: a format mismatch must be reported without touching it.
	f := &Frame{Format: FormatCCB1, Width: 320, Height: 200, NumPixels: 64000}
	if err := Demosaic(f, NewPlanes(320, 200)); !errors.Is(err, ErrFormat) {
		t.Errorf("Demosaic() error = %v, want ErrFormat", err)
	}
}

type fakeSource struct {
	header Header
	status int32
	fill   byte
	gotReq Request
	gotLen int
}

func (s *fakeSource) GetFrame(req Request, dst []byte) (Header, int32) {
	s.gotReq = req
	s.gotLen = len(dst)
	n := min(int(s.header.NumPixels), len(dst))
	for i := 0; i < n; i++ {
		dst[i] = s.fill
	}
	return s.header, s.status
}

func TestCapture(t *testing.T) {
	src := &fakeSource{
		header: Header{Format: FormatBA81, RenderFlags: 1, Width: 4, Height: 3, NumPixels: 12},
		fill:   7,
	}
	f := NewFrame(64)
	req := Request{Mode: ModeBayer, Width: 4, Height: 3}

	if err := Capture(src, req, f); err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if src.gotReq != req {
		t.Errorf("request = %+v, want %+v", src.gotReq, req)
	}
	if src.gotLen != 64 {
		t.Errorf("buffer length passed = %d, want 64", src.gotLen)
	}
	if f.Width != 4 || f.Height != 3 || f.NumPixels != 12 || f.RenderFlags != 1 {
		t.Errorf("frame metadata = %+v", f)
	}
	if f.FormatName() != "BA81" {
		t.Errorf("FormatName() = %q, want BA81", f.FormatName())
	}
	if len(f.Pixels) != 12 || f.Pixels[11] != 7 {
		t.Errorf("pixels = %v", f.Pixels)
	}
	if cap(f.Pixels) != 64 {
		t.Errorf("Capture reallocated pixels: cap = %d", cap(f.Pixels))
	}
}

func TestCaptureFailures(t *testing.T) {
	tests := []struct {
		name       string
		src        *fakeSource
		wantStatus int32
		wantErr    error
	}{
		{
			name:       "transport status",
			src:        &fakeSource{status: pixy.StatusUSBBusy},
			wantStatus: pixy.StatusUSBBusy,
			wantErr:    pixy.ErrStatus,
		},
		{
			name:       "negative response",
			src:        &fakeSource{header: Header{Response: -3}},
			wantStatus: -3,
			wantErr:    pixy.ErrStatus,
		},
		{
			name:    "over capacity",
			src:     &fakeSource{header: Header{Format: FormatBA81, Width: 10, Height: 10, NumPixels: 100}},
			wantErr: ErrCapacity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFrame(64)
			err := Capture(tt.src, FullFrame(), f)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Capture() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantStatus != 0 {
				code, ok := pixy.StatusCode(err)
				if !ok || code != tt.wantStatus {
					t.Errorf("StatusCode() = %d, %v; want %d", code, ok, tt.wantStatus)
				}
			}
			if len(f.Pixels) != 0 {
				t.Errorf("failed capture left %d pixels", len(f.Pixels))
			}
		})
	}
}

func TestPlanesImage(t *testing.T) {
	p := &Planes{
		Width:  2,
		Height: 1,
		Red:    []byte{10, 11},
		Green:  []byte{20, 21},
		Blue:   []byte{30, 31},
	}

	tests := []struct {
		name  string
		order ChannelOrder
		want  []byte
	}{
		{"rgb", OrderRGB, []byte{10, 20, 30, 255, 11, 21, 31, 255}},
		{"rbg", OrderRBG, []byte{10, 30, 20, 255, 11, 31, 21, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := p.Image(tt.order)
			if !bytes.Equal(img.Pix, tt.want) {
				t.Errorf("Pix = %v, want %v", img.Pix, tt.want)
			}
		})
	}
}

func TestParseChannelOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    ChannelOrder
		wantErr bool
	}{
		{"", OrderRGB, false},
		{"rgb", OrderRGB, false},
		{"RBG", OrderRBG, false},
		{"bgr", ChannelOrder{}, true},
	}
	for _, tt := range tests {
		got, err := ParseChannelOrder(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseChannelOrder(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseChannelOrder(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if OrderRBG.String() != "rbg" {
		t.Errorf("OrderRBG.String() = %q", OrderRBG.String())
	}
}
