// Package blocks reads the Pixy detection buffer.
//
// The device service writes up to Capacity fixed-size records into a
// caller-owned buffer and reports how many it wrote. Records share one
// layout; the first field tells a plain colour blob from a colour code.
package blocks

import (
	"encoding/binary"
	"fmt"
)

// Capacity is the number of records the device service may report per read.
const Capacity = 50

// RecordSize is the size in bytes of one detection record:
// type, signature, x, y, width, height (uint16) and angle (int16).
const RecordSize = 14

// Record discriminator values written by the device.
const (
	TypeNormal    uint16 = 0
	TypeColorCode uint16 = 1
)

// Kind classifies a detection record.
type Kind int

// Record kinds.
const (
	KindUnknown Kind = iota
	KindNormal
	KindColorCode
)

func (k Kind) String() string {
	switch k {
	case KindNormal:
		return "NORMAL"
	case KindColorCode:
		return "COLOR_CODE"
	default:
		return "???"
	}
}

// Block is one decoded detection.
type Block struct {
	Kind      Kind
	Type      uint16 // raw discriminator as written by the device
	Signature uint16
	X         uint16
	Y         uint16
	Width     uint16
	Height    uint16
	angle     int16
}

// Angle returns the orientation of a colour-code block.
// Plain blobs carry no meaningful angle and report false.
func (b Block) Angle() (int16, bool) {
	if b.Kind != KindColorCode {
		return 0, false
	}
	return b.angle, true
}

func (b Block) String() string {
	switch b.Kind {
	case KindNormal:
		return fmt.Sprintf("BLOCK[NORMAL]: sig:%2d w:%3d h:%3d x:%3d y:%3d",
			b.Signature, b.Width, b.Height, b.X, b.Y)
	case KindColorCode:
		return fmt.Sprintf("BLOCK[COLOR_CODE]: sig:%2d w:%3d h:%3d x:%3d y:%3d ang:%3d",
			b.Signature, b.Width, b.Height, b.X, b.Y, b.angle)
	default:
		return fmt.Sprintf("BLOCK[???]: type:%d", b.Type)
	}
}

// decodeRecord classifies one RecordSize-byte record.
func decodeRecord(rec []byte) Block {
	b := Block{
		Type:      binary.LittleEndian.Uint16(rec[0:]),
		Signature: binary.LittleEndian.Uint16(rec[2:]),
		X:         binary.LittleEndian.Uint16(rec[4:]),
		Y:         binary.LittleEndian.Uint16(rec[6:]),
		Width:     binary.LittleEndian.Uint16(rec[8:]),
		Height:    binary.LittleEndian.Uint16(rec[10:]),
	}

	switch b.Type {
	case TypeNormal:
		b.Kind = KindNormal
	case TypeColorCode:
		b.Kind = KindColorCode
		b.angle = int16(binary.LittleEndian.Uint16(rec[12:]))
	default:
		b.Kind = KindUnknown
	}
	return b
}

// Record holds the raw field values of one detection, used to build
// buffers on the device side.
type Record struct {
	Type      uint16
	Signature uint16
	X         uint16
	Y         uint16
	Width     uint16
	Height    uint16
	Angle     int16
}

// Put writes r into dst, which must hold at least RecordSize bytes.
func (r Record) Put(dst []byte) {
	_ = dst[RecordSize-1]
	binary.LittleEndian.PutUint16(dst[0:], r.Type)
	binary.LittleEndian.PutUint16(dst[2:], r.Signature)
	binary.LittleEndian.PutUint16(dst[4:], r.X)
	binary.LittleEndian.PutUint16(dst[6:], r.Y)
	binary.LittleEndian.PutUint16(dst[8:], r.Width)
	binary.LittleEndian.PutUint16(dst[10:], r.Height)
	binary.LittleEndian.PutUint16(dst[12:], uint16(r.Angle))
}
