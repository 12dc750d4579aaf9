package blocks

import (
	"errors"
	"fmt"

	"github.com/smazurov/pixynode/pkg/pixy"
)

// ErrCapacity is returned when the device reports more records than the buffer holds.
var ErrCapacity = errors.New("blocks: device reported more records than buffer capacity")

// Source is the device service entry point that fills a detection buffer.
// Implementations must not write more than maxBlocks records nor past len(dst).
// A negative return is a device status code.
type Source interface {
	GetBlocks(maxBlocks uint16, dst []byte) int
}

// Buffer is caller-owned storage for one read.
// Only the first Len() records are valid; the rest hold stale bytes.
type Buffer struct {
	raw   [Capacity * RecordSize]byte
	count int
}

// Len returns the number of valid records.
func (b *Buffer) Len() int {
	return b.count
}

// Block decodes record i. It panics if i is outside [0, Len()).
func (b *Buffer) Block(i int) Block {
	if i < 0 || i >= b.count {
		panic(fmt.Sprintf("blocks: index %d out of range [0,%d)", i, b.count))
	}
	return decodeRecord(b.raw[i*RecordSize : (i+1)*RecordSize])
}

// AppendBlocks appends the valid records to dst.
func (b *Buffer) AppendBlocks(dst []Block) []Block {
	for i := 0; i < b.count; i++ {
		dst = append(dst, b.Block(i))
	}
	return dst
}

// Reader polls a Source into its own Buffer.
type Reader struct {
	src Source
	buf Buffer
}

// NewReader creates a Reader over src.
func NewReader(src Source) *Reader {
	return &Reader{src: src}
}

// Read asks the device for the current detections.
// Zero is a successful read with no detections. On error the buffer
// reports zero valid records.
func (r *Reader) Read() (int, error) {
	return ReadInto(r.src, &r.buf)
}

// Buffer returns the reader's buffer.
func (r *Reader) Buffer() *Buffer {
	return &r.buf
}

// Blocks returns a fresh slice of the valid records from the last read.
func (r *Reader) Blocks() []Block {
	return r.buf.AppendBlocks(make([]Block, 0, r.buf.count))
}

// ReadInto fills buf from src, always passing the buffer's true capacity.
func ReadInto(src Source, buf *Buffer) (int, error) {
	n := src.GetBlocks(Capacity, buf.raw[:])
	if n < 0 {
		buf.count = 0
		return n, &pixy.StatusError{Op: "get_blocks", Code: int32(n)}
	}
	if n > Capacity {
		buf.count = 0
		return 0, fmt.Errorf("%w: got %d, capacity %d", ErrCapacity, n, Capacity)
	}
	buf.count = n
	return n, nil
}
