package chirp

import (
	"errors"
	"fmt"
)

// Frame errors.
var (
	ErrEmptyName    = errors.New("chirp: empty command name")
	ErrInvalidName  = errors.New("chirp: command name must be ASCII and at most 255 bytes")
	ErrInvalidType  = errors.New("chirp: invalid argument type")
	ErrMalformed    = errors.New("chirp: malformed command frame")
	ErrShortReply   = errors.New("chirp: reply shorter than return slots")
	ErrTrailingData = errors.New("chirp: trailing bytes after frame")
)

const sentinel = 0x00

// CommandFrame is a named call with ordered input arguments and output slots.
type CommandFrame struct {
	Name    string
	Args    []Value
	Returns []Type
}

func validName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > 255 {
		return ErrInvalidName
	}
	for i := 0; i < len(name); i++ {
		if name[i] == 0 || name[i] > 0x7F {
			return ErrInvalidName
		}
	}
	return nil
}

// Size returns the encoded length of the frame in bytes.
func (f CommandFrame) Size() int {
	n := 1 + len(f.Name) + 1 + len(f.Returns) + 1
	for _, a := range f.Args {
		n += 1 + a.Type().Size()
	}
	return n
}

// AppendBinary appends the wire encoding of f to dst.
func (f CommandFrame) AppendBinary(dst []byte) ([]byte, error) {
	if err := validName(f.Name); err != nil {
		return dst, err
	}

	dst = append(dst, byte(len(f.Name)))
	dst = append(dst, f.Name...)

	for i, a := range f.Args {
		if !a.Type().Valid() {
			return dst, fmt.Errorf("%w: argument %d", ErrInvalidType, i)
		}
		dst = append(dst, byte(a.Type().Size()))
		dst = a.AppendBinary(dst)
	}
	dst = append(dst, sentinel)

	for i, t := range f.Returns {
		if !t.Valid() {
			return dst, fmt.Errorf("%w: return slot %d", ErrInvalidType, i)
		}
		dst = append(dst, byte(t.Size()))
	}
	dst = append(dst, sentinel)

	return dst, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (f CommandFrame) MarshalBinary() ([]byte, error) {
	return f.AppendBinary(make([]byte, 0, f.Size()))
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// Decoded arguments and slots carry unsigned tags for their wire width;
// use Value.As to apply the signedness a command expects.
func (f *CommandFrame) UnmarshalBinary(data []byte) error {
	if len(data) < 1 {
		return ErrMalformed
	}
	nameLen := int(data[0])
	if len(data) < 1+nameLen {
		return fmt.Errorf("%w: truncated name", ErrMalformed)
	}
	name := string(data[1 : 1+nameLen])
	if err := validName(name); err != nil {
		return err
	}
	pos := 1 + nameLen

	var args []Value
	for {
		if pos >= len(data) {
			return fmt.Errorf("%w: missing argument terminator", ErrMalformed)
		}
		width := data[pos]
		pos++
		if width == sentinel {
			break
		}
		t, ok := typeForWidth(width)
		if !ok {
			return fmt.Errorf("%w: argument width %d", ErrMalformed, width)
		}
		v, err := Decode(t, data[pos:])
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		args = append(args, v)
		pos += int(width)
	}

	var returns []Type
	for {
		if pos >= len(data) {
			return fmt.Errorf("%w: missing return terminator", ErrMalformed)
		}
		width := data[pos]
		pos++
		if width == sentinel {
			break
		}
		t, ok := typeForWidth(width)
		if !ok {
			return fmt.Errorf("%w: return width %d", ErrMalformed, width)
		}
		returns = append(returns, t)
	}

	if pos != len(data) {
		return ErrTrailingData
	}

	f.Name = name
	f.Args = args
	f.Returns = returns
	return nil
}

// EncodeReply packs return values in slot order for the device side.
func EncodeReply(values []Value) []byte {
	n := 0
	for _, v := range values {
		n += v.Type().Size()
	}
	out := make([]byte, 0, n)
	for _, v := range values {
		out = v.AppendBinary(out)
	}
	return out
}

// DecodeReply decodes one value per return type from a reply payload.
func DecodeReply(reply []byte, returns []Type) ([]Value, error) {
	values := make([]Value, 0, len(returns))
	pos := 0
	for i, t := range returns {
		v, err := Decode(t, reply[pos:])
		if err != nil {
			if errors.Is(err, ErrShortBuffer) {
				return nil, fmt.Errorf("%w: slot %d (%s)", ErrShortReply, i, t)
			}
			return nil, err
		}
		values = append(values, v)
		pos += t.Size()
	}
	return values, nil
}
