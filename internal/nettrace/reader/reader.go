// Package reader provides BitStreamReader, the byte/varint primitive layer
// every nettrace sub-parser reads through. It plays the same role the
// teacher's parser.BinaryReader plays for HPROF: a thin wrapper over a
// buffered io.Reader that tracks an absolute byte position and exposes
// typed little-endian reads, plus the varint/zigzag and UTF-16
// primitives the Nettrace format needs that HPROF (big-endian, ASCII
// strings only) does not.
package reader

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf16"

	"github.com/mabhi256/nettrace/internal/nettrace/model"
)

// BitStreamReader reads little-endian primitives from a buffered
// io.Reader, tracking an absolute byte-position counter (spec §4.1).
type BitStreamReader struct {
	r         *bufio.Reader
	bytesRead int64
}

func New(r io.Reader) *BitStreamReader {
	return &BitStreamReader{r: bufio.NewReaderSize(r, 64*1024)}
}

func (b *BitStreamReader) Position() int64 {
	return b.bytesRead
}

func wrapEOF(err error, context string) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return model.NewError(model.UnexpectedEnd, context, err)
	}
	return fmt.Errorf("%s: %w", context, err)
}

func (b *BitStreamReader) readN(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(b.r, buf)
	b.bytesRead += int64(read)
	if err != nil {
		return nil, wrapEOF(err, fmt.Sprintf("read %d bytes", n))
	}
	return buf, nil
}

func (b *BitStreamReader) ReadU8() (uint8, error) {
	c, err := b.r.ReadByte()
	if err != nil {
		return 0, wrapEOF(err, "read u8")
	}
	b.bytesRead++
	return c, nil
}

func (b *BitStreamReader) ReadI8() (int8, error) {
	v, err := b.ReadU8()
	return int8(v), err
}

func (b *BitStreamReader) ReadU16LE() (uint16, error) {
	buf, err := b.readN(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

func (b *BitStreamReader) ReadI16LE() (int16, error) {
	v, err := b.ReadU16LE()
	return int16(v), err
}

func (b *BitStreamReader) ReadU32LE() (uint32, error) {
	buf, err := b.readN(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func (b *BitStreamReader) ReadI32LE() (int32, error) {
	v, err := b.ReadU32LE()
	return int32(v), err
}

func (b *BitStreamReader) ReadU64LE() (uint64, error) {
	buf, err := b.readN(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

func (b *BitStreamReader) ReadI64LE() (int64, error) {
	v, err := b.ReadU64LE()
	return int64(v), err
}

func (b *BitStreamReader) ReadF32LE() (float32, error) {
	v, err := b.ReadU32LE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (b *BitStreamReader) ReadF64LE() (float64, error) {
	v, err := b.ReadU64LE()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadGuid reads the 16-byte GUID layout from spec §4.1: a 4-byte LE int, a
// 2-byte LE short, a 2-byte LE short, then 8 raw bytes.
func (b *BitStreamReader) ReadGuid() (model.Guid, error) {
	var g model.Guid
	var err error
	if g.Data1, err = b.ReadU32LE(); err != nil {
		return g, fmt.Errorf("guid data1: %w", err)
	}
	if g.Data2, err = b.ReadU16LE(); err != nil {
		return g, fmt.Errorf("guid data2: %w", err)
	}
	if g.Data3, err = b.ReadU16LE(); err != nil {
		return g, fmt.Errorf("guid data3: %w", err)
	}
	tail, err := b.readN(8)
	if err != nil {
		return g, fmt.Errorf("guid data4: %w", err)
	}
	copy(g.Data4[:], tail)
	return g, nil
}

// ReadRawBytes reads n raw bytes verbatim, the same as ReadExact.
func (b *BitStreamReader) ReadRawBytes(n int) ([]byte, error) {
	return b.readN(n)
}

// ReadUtf16NullTerminated reads 2-byte little-endian UTF-16 code units
// until the 0x0000 terminator (spec §4.1), returning the decoded string
// without the terminator.
func (b *BitStreamReader) ReadUtf16NullTerminated() (string, error) {
	var units []uint16
	for {
		u, err := b.ReadU16LE()
		if err != nil {
			return "", fmt.Errorf("utf16 code unit: %w", err)
		}
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units)), nil
}

// ReadVarUInt reads a ULEB128-encoded unsigned integer, up to 10 bytes
// (spec §4.1).
func (b *BitStreamReader) ReadVarUInt() (uint64, error) {
	var result uint64
	var shift uint
	for i := 0; i < 10; i++ {
		byt, err := b.ReadU8()
		if err != nil {
			return 0, fmt.Errorf("varuint byte %d: %w", i, err)
		}
		result |= uint64(byt&0x7f) << shift
		if byt&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
	return 0, model.Errorf(model.StructuralViolation, "varuint exceeds 10 bytes")
}

// ReadVarInt reads a zig-zag encoded signed integer over ReadVarUInt (spec
// §4.1).
func (b *BitStreamReader) ReadVarInt() (int64, error) {
	u, err := b.ReadVarUInt()
	if err != nil {
		return 0, err
	}
	return int64(u>>1) ^ -int64(u&1), nil
}

// AlignTo skips zero-padding bytes until Position() is a multiple of n,
// measured from stream origin (spec §4.1).
func (b *BitStreamReader) AlignTo(n int64) error {
	rem := b.bytesRead % n
	if rem == 0 {
		return nil
	}
	return b.Skip(int(n - rem))
}

// Skip discards n bytes.
func (b *BitStreamReader) Skip(n int) error {
	if n <= 0 {
		return nil
	}
	discarded, err := io.CopyN(io.Discard, b.r, int64(n))
	b.bytesRead += discarded
	if err != nil {
		return wrapEOF(err, fmt.Sprintf("skip %d bytes", n))
	}
	return nil
}

// ReadExact reads exactly n bytes, returning a copy.
func (b *BitStreamReader) ReadExact(n int) ([]byte, error) {
	return b.readN(n)
}

// ReadLenPrefixedUtf8 reads a 4-byte LE length followed by that many bytes
// of UTF-8 text (no terminator); used for the FastSerialization magic
// suffix and container type names (spec §4.2).
func (b *BitStreamReader) ReadLenPrefixedUtf8() (string, error) {
	n, err := b.ReadU32LE()
	if err != nil {
		return "", fmt.Errorf("length-prefixed string length: %w", err)
	}
	buf, err := b.readN(int(n))
	if err != nil {
		return "", fmt.Errorf("length-prefixed string body: %w", err)
	}
	return string(buf), nil
}
