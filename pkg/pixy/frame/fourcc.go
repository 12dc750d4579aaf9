package frame

// FourCC packs four ASCII characters into a little-endian pixel format code.
func FourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

// Pixel formats the camera can report.
var (
	FormatBA81 = FourCC('B', 'A', '8', '1') // raw Bayer, 8 bits per pixel
	FormatCCQ1 = FourCC('C', 'C', 'Q', '1') // colour-connected run queue
	FormatCCB1 = FourCC('C', 'C', 'B', '1') // colour-connected blobs
	FormatCMV1 = FourCC('C', 'M', 'V', '1') // colour model
)

// FourCCString returns the four-character name of a known format and "???"
// for anything else.
func FourCCString(format uint32) string {
	switch format {
	case FormatBA81, FormatCCQ1, FormatCCB1, FormatCMV1:
		return string([]byte{
			byte(format),
			byte(format >> 8),
			byte(format >> 16),
			byte(format >> 24),
		})
	default:
		return "???"
	}
}
