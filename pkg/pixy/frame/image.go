package frame

import (
	"fmt"
	"image"
	"strings"
)

// ChannelOrder selects which plane feeds each output channel.
// Index 0, 1 and 2 are the red, green and blue planes.
type ChannelOrder [3]int

var (
	OrderRGB = ChannelOrder{0, 1, 2}
	// OrderRBG shows the blue plane in the green channel and vice versa.
	OrderRBG = ChannelOrder{0, 2, 1}
)

// ParseChannelOrder accepts "rgb" or "rbg".
func ParseChannelOrder(s string) (ChannelOrder, error) {
	switch strings.ToLower(s) {
	case "", "rgb":
		return OrderRGB, nil
	case "rbg":
		return OrderRBG, nil
	default:
		return ChannelOrder{}, fmt.Errorf("unknown channel order %q", s)
	}
}

func (o ChannelOrder) String() string {
	names := [3]byte{'r', 'g', 'b'}
	return string([]byte{names[o[0]%3], names[o[1]%3], names[o[2]%3]})
}

// Image assembles the planes into a new RGBA image.
func (p *Planes) Image(order ChannelOrder) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	p.Draw(img, order)
	return img
}

// Draw writes the planes into dst starting at its origin. Pixels outside
// dst's bounds are skipped.
func (p *Planes) Draw(dst *image.RGBA, order ChannelOrder) {
	planes := [3][]byte{p.Red, p.Green, p.Blue}
	r, g, b := planes[order[0]%3], planes[order[1]%3], planes[order[2]%3]

	bounds := dst.Bounds()
	w := min(p.Width, bounds.Dx())
	h := min(p.Height, bounds.Dy())
	for y := 0; y < h; y++ {
		src := y * p.Width
		off := dst.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		for x := 0; x < w; x++ {
			dst.Pix[off+0] = r[src+x]
			dst.Pix[off+1] = g[src+x]
			dst.Pix[off+2] = b[src+x]
			dst.Pix[off+3] = 0xff
			off += 4
		}
	}
}
