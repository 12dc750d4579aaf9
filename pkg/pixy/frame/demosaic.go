package frame

import "fmt"

// Planes holds the three colour channels of a demosaiced frame.
// A frame of w*h pixels produces (w-2)*(h-2) planes; the border row and
// column on each side lack neighbours and are dropped.
type Planes struct {
	Width  int
	Height int
	Red    []byte
	Green  []byte
	Blue   []byte
}

// NewPlanes allocates planes for a frame of frameWidth x frameHeight pixels.
func NewPlanes(frameWidth, frameHeight int) *Planes {
	w, h := frameWidth-2, frameHeight-2
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	n := w * h
	return &Planes{
		Width:  w,
		Height: h,
		Red:    make([]byte, n),
		Green:  make([]byte, n),
		Blue:   make([]byte, n),
	}
}

// Demosaic interpolates the BA81 mosaic in f into p.
//
// Pixel (x, y) of the mosaic is red when both coordinates are odd, blue
// when both are even, and green otherwise. Missing channels are integer
// averages of the 2 or 4 nearest samples of that colour.
func Demosaic(f *Frame, p *Planes) error {
	if f.Format != FormatBA81 {
		return fmt.Errorf("%w: %s", ErrFormat, FourCCString(f.Format))
	}

	w, h := int(f.Width), int(f.Height)
	if w < 3 || h < 3 {
		return fmt.Errorf("%w: got %dx%d", ErrDimensions, w, h)
	}
	if len(f.Pixels) < w*h || int(f.NumPixels) < w*h {
		return fmt.Errorf("%w: have %d (reported %d), need %d", ErrShortFrame, len(f.Pixels), f.NumPixels, w*h)
	}

	pw, ph := w-2, h-2
	n := pw * ph
	if p.Width != pw || p.Height != ph || len(p.Red) < n || len(p.Green) < n || len(p.Blue) < n {
		return fmt.Errorf("%w: planes %dx%d, frame needs %dx%d", ErrPlaneSize, p.Width, p.Height, pw, ph)
	}

	px := f.Pixels
	for y := 1; y < h-1; y++ {
		row := y * w
		out := (y - 1) * pw
		for x := 1; x < w-1; x++ {
			i := row + x
			c := uint(px[i])
			west, east := uint(px[i-1]), uint(px[i+1])
			north, south := uint(px[i-w]), uint(px[i+w])

			var r, g, b uint
			switch {
			case y&1 == 1 && x&1 == 1:
				r = c
				g = (west + east + north + south) >> 2
				b = (uint(px[i-w-1]) + uint(px[i-w+1]) + uint(px[i+w-1]) + uint(px[i+w+1])) >> 2
			case y&1 == 1:
				r = (west + east) >> 1
				g = c
				b = (north + south) >> 1
			case x&1 == 1:
				r = (north + south) >> 1
				g = c
				b = (west + east) >> 1
			default:
				r = (uint(px[i-w-1]) + uint(px[i-w+1]) + uint(px[i+w-1]) + uint(px[i+w+1])) >> 2
				g = (west + east + north + south) >> 2
				b = c
			}

			o := out + x - 1
			p.Red[o] = byte(r)
			p.Green[o] = byte(g)
			p.Blue[o] = byte(b)
		}
	}
	return nil
}
