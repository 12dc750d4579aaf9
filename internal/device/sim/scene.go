package sim

import (
	"github.com/smazurov/pixynode/pkg/pixy"
	"github.com/smazurov/pixynode/pkg/pixy/frame"
)

// RGB is one scene colour.
type RGB struct {
	R, G, B uint8
}

// Pattern describes the scene as a function of position.
type Pattern struct {
	colors []RGB
}

// Bars returns the eight classic vertical colour bars.
func Bars() Pattern {
	return Pattern{colors: []RGB{
		{255, 255, 255},
		{255, 255, 0},
		{0, 255, 255},
		{0, 255, 0},
		{255, 0, 255},
		{255, 0, 0},
		{0, 0, 255},
		{0, 0, 0},
	}}
}

// Flat returns a single-colour scene.
func Flat(c RGB) Pattern {
	return Pattern{colors: []RGB{c}}
}

// At returns the colour at column x of a w-wide frame.
func (p Pattern) At(x, w int) RGB {
	if len(p.colors) == 0 || w <= 0 {
		return RGB{}
	}
	return p.colors[x*len(p.colors)/w]
}

// SetPattern replaces the rendered scene.
func (d *Device) SetPattern(p Pattern) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pattern = p
}

// SetFrameFormat makes GetFrame report format instead of BA81.
// Zero restores BA81.
func (d *Device) SetFrameFormat(format uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frameFormat = format
}

// GetFrame renders the scene at the requested window into dst as a Bayer
// mosaic: red where x and y are odd, blue where both are even and green
// elsewhere. The header reports the full pixel count even when dst is too
// small to hold it; only len(dst) bytes are written.
func (d *Device) GetFrame(req frame.Request, dst []byte) (frame.Header, int32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return frame.Header{}, pixy.StatusUSBNoDevice
	}
	if status, ok := d.forced["cam_getFrame"]; ok {
		return frame.Header{Response: status}, pixy.StatusSuccess
	}
	if req.Mode != frame.ModeBayer {
		return frame.Header{Response: pixy.StatusInvalidParameter}, pixy.StatusSuccess
	}

	w := min(int(req.Width), frame.MaxWidth-int(req.X))
	h := min(int(req.Height), frame.MaxHeight-int(req.Y))
	if w <= 0 || h <= 0 {
		return frame.Header{Response: pixy.StatusInvalidParameter}, pixy.StatusSuccess
	}

	n := w * h
	written := min(n, len(dst))
	for i := 0; i < written; i++ {
		x, y := i%w, i/w
		c := d.pattern.At(int(req.X)+x, frame.MaxWidth)
		switch {
		case y&1 == 1 && x&1 == 1:
			dst[i] = c.R
		case y&1 == 0 && x&1 == 0:
			dst[i] = c.B
		default:
			dst[i] = c.G
		}
	}

	format := frame.FormatBA81
	if d.frameFormat != 0 {
		format = d.frameFormat
	}
	return frame.Header{
		Format:    format,
		Width:     uint16(w),
		Height:    uint16(h),
		NumPixels: uint32(n),
	}, pixy.StatusSuccess
}
