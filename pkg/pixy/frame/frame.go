// Package frame captures raw camera frames and converts Bayer mosaics to RGB.
package frame

import (
	"errors"
	"fmt"

	"github.com/smazurov/pixynode/pkg/pixy"
)

// Reference frame geometry.
const (
	MaxWidth  = 320
	MaxHeight = 200
	MaxPixels = MaxWidth * MaxHeight
)

// ModeBayer is the cam_getFrame mode that returns a full-resolution BA81 frame.
const ModeBayer uint8 = 0x21

var (
	ErrFormat     = errors.New("frame: unsupported pixel format")
	ErrDimensions = errors.New("frame: width and height must be at least 3")
	ErrShortFrame = errors.New("frame: fewer pixels than width*height")
	ErrPlaneSize  = errors.New("frame: plane dimensions do not match frame")
	ErrCapacity   = errors.New("frame: device reported more pixels than buffer capacity")
)

// Frame is a raw frame and its metadata. Pixels is allocated once and reused.
type Frame struct {
	Format      uint32
	RenderFlags uint8
	Width       uint16
	Height      uint16
	NumPixels   uint32
	Pixels      []byte
}

// NewFrame allocates a frame able to hold maxPixels bytes.
func NewFrame(maxPixels int) *Frame {
	return &Frame{Pixels: make([]byte, 0, maxPixels)}
}

// FormatName returns the FourCC name of the frame's format.
func (f *Frame) FormatName() string {
	return FourCCString(f.Format)
}

// Request selects the frame window to capture.
type Request struct {
	Mode   uint8
	X      uint16
	Y      uint16
	Width  uint16
	Height uint16
}

// FullFrame requests the whole sensor in Bayer mode.
func FullFrame() Request {
	return Request{Mode: ModeBayer, Width: MaxWidth, Height: MaxHeight}
}

// Header is the metadata the device returns alongside the pixels.
// Response is the command's own result; negative values are failures.
type Header struct {
	Response    int32
	Format      uint32
	RenderFlags uint8
	Width       uint16
	Height      uint16
	NumPixels   uint32
}

// Source is the device service entry point that fills a frame buffer.
// The returned status is negative on transport failure.
type Source interface {
	GetFrame(req Request, dst []byte) (Header, int32)
}

// Capture fetches one frame from src into f, reusing f.Pixels.
func Capture(src Source, req Request, f *Frame) error {
	buf := f.Pixels[:cap(f.Pixels)]
	hdr, status := src.GetFrame(req, buf)
	if status < 0 {
		f.Pixels = buf[:0]
		return &pixy.StatusError{Op: "cam_getFrame", Code: status}
	}
	if hdr.Response < 0 {
		f.Pixels = buf[:0]
		return &pixy.StatusError{Op: "cam_getFrame", Code: hdr.Response}
	}
	if int(hdr.NumPixels) > len(buf) {
		f.Pixels = buf[:0]
		return fmt.Errorf("%w: got %d, capacity %d", ErrCapacity, hdr.NumPixels, len(buf))
	}

	f.Format = hdr.Format
	f.RenderFlags = hdr.RenderFlags
	f.Width = hdr.Width
	f.Height = hdr.Height
	f.NumPixels = hdr.NumPixels
	f.Pixels = buf[:hdr.NumPixels]
	return nil
}
