// Package chirp implements the typed-argument encoding and the generic
// named-command invoker used to talk to the Pixy device service.
//
// A command is a short ASCII name followed by a list of typed input
// arguments and a list of typed output slots. Each argument travels as its
// byte width followed by the little-endian value; each output slot travels
// as its byte width alone. A zero byte terminates both lists.
package chirp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// ErrShortBuffer is returned when there are fewer bytes than the tag's width.
var ErrShortBuffer = errors.New("chirp: buffer shorter than value width")

// Type tags a value with its width and signedness.
type Type uint8

// Supported argument and return types.
const (
	TypeUint8 Type = iota + 1
	TypeInt8
	TypeUint16
	TypeInt16
	TypeUint32
	TypeInt32
)

var typeNames = map[Type]string{
	TypeUint8:  "uint8",
	TypeInt8:   "int8",
	TypeUint16: "uint16",
	TypeInt16:  "int16",
	TypeUint32: "uint32",
	TypeInt32:  "int32",
}

// Size returns the width in bytes, or 0 for an invalid tag.
func (t Type) Size() int {
	switch t {
	case TypeUint8, TypeInt8:
		return 1
	case TypeUint16, TypeInt16:
		return 2
	case TypeUint32, TypeInt32:
		return 4
	default:
		return 0
	}
}

// Signed reports whether values of this type sign-extend.
func (t Type) Signed() bool {
	return t == TypeInt8 || t == TypeInt16 || t == TypeInt32
}

// Valid reports whether t is one of the supported tags.
func (t Type) Valid() bool {
	return t.Size() != 0
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// ParseType converts a type name such as "uint16" or "i32" into a Type.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uint8", "u8", "byte":
		return TypeUint8, nil
	case "int8", "i8":
		return TypeInt8, nil
	case "uint16", "u16":
		return TypeUint16, nil
	case "int16", "i16":
		return TypeInt16, nil
	case "uint32", "u32":
		return TypeUint32, nil
	case "int32", "i32", "int":
		return TypeInt32, nil
	default:
		return 0, fmt.Errorf("chirp: unknown type %q", s)
	}
}

// typeForWidth picks the unsigned tag for a wire width.
// The wire carries widths only, so a decoded frame cannot know signedness.
func typeForWidth(width byte) (Type, bool) {
	switch width {
	case 1:
		return TypeUint8, true
	case 2:
		return TypeUint16, true
	case 4:
		return TypeUint32, true
	default:
		return 0, false
	}
}

// Value is a tagged scalar. The zero Value is invalid.
type Value struct {
	typ  Type
	bits uint32 // raw little-endian payload, already truncated to the width
}

// New builds a value of type t, truncating v to the width's modulus.
func New(t Type, v int64) Value {
	return Value{typ: t, bits: truncate(t, uint32(v))}
}

// Uint8 builds a TypeUint8 value.
func Uint8(v uint8) Value { return Value{typ: TypeUint8, bits: uint32(v)} }

// Int8 builds a TypeInt8 value.
func Int8(v int8) Value { return Value{typ: TypeInt8, bits: uint32(uint8(v))} }

// Uint16 builds a TypeUint16 value.
func Uint16(v uint16) Value { return Value{typ: TypeUint16, bits: uint32(v)} }

// Int16 builds a TypeInt16 value.
func Int16(v int16) Value { return Value{typ: TypeInt16, bits: uint32(uint16(v))} }

// Uint32 builds a TypeUint32 value.
func Uint32(v uint32) Value { return Value{typ: TypeUint32, bits: v} }

// Int32 builds a TypeInt32 value.
func Int32(v int32) Value { return Value{typ: TypeInt32, bits: uint32(v)} }

func truncate(t Type, bits uint32) uint32 {
	switch t.Size() {
	case 1:
		return bits & 0xFF
	case 2:
		return bits & 0xFFFF
	default:
		return bits
	}
}

// Type returns the value's tag.
func (v Value) Type() Type { return v.typ }

// Uint32 returns the raw payload zero-extended to 32 bits.
func (v Value) Uint32() uint32 { return v.bits }

// Int64 returns the value, sign-extended when the tag is signed.
func (v Value) Int64() int64 {
	if !v.typ.Signed() {
		return int64(v.bits)
	}
	switch v.typ.Size() {
	case 1:
		return int64(int8(v.bits))
	case 2:
		return int64(int16(v.bits))
	default:
		return int64(int32(v.bits))
	}
}

// Int32 returns the value as a signed 32-bit integer.
func (v Value) Int32() int32 { return int32(v.Int64()) }

func (v Value) String() string {
	return fmt.Sprintf("%s(%d)", v.typ, v.Int64())
}

// AppendBinary appends the little-endian encoding of v to dst.
func (v Value) AppendBinary(dst []byte) []byte {
	switch v.typ.Size() {
	case 1:
		return append(dst, byte(v.bits))
	case 2:
		return binary.LittleEndian.AppendUint16(dst, uint16(v.bits))
	case 4:
		return binary.LittleEndian.AppendUint32(dst, v.bits)
	default:
		return dst
	}
}

// Decode reads a value of type t from the start of b.
func Decode(t Type, b []byte) (Value, error) {
	size := t.Size()
	if size == 0 {
		return Value{}, fmt.Errorf("chirp: invalid type %s", t)
	}
	if len(b) < size {
		return Value{}, fmt.Errorf("%w: need %d bytes for %s, have %d", ErrShortBuffer, size, t, len(b))
	}

	var bits uint32
	switch size {
	case 1:
		bits = uint32(b[0])
	case 2:
		bits = uint32(binary.LittleEndian.Uint16(b))
	case 4:
		bits = binary.LittleEndian.Uint32(b)
	}
	return Value{typ: t, bits: bits}, nil
}

// As reinterprets the raw payload under another tag, truncating to its width.
// The device side uses it to apply signedness to width-only wire values.
func (v Value) As(t Type) Value {
	return Value{typ: t, bits: truncate(t, v.bits)}
}
