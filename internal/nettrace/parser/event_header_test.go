package parser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mabhi256/nettrace/internal/nettrace/reader"
)

// writeVarUInt ULEB128-encodes v into buf, mirroring the wire format
// reader.ReadVarUInt decodes.
func writeVarUInt(buf *bytes.Buffer, v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf.WriteByte(b)
		if v == 0 {
			return
		}
	}
}

// compressedRecord builds one compressed event record: flags byte, then
// the present fields in wire order, then a zero-length payload.
func compressedRecord(flags byte, metadataID, seqDelta, captureThreadID, procNum, threadID, stackID, tsDelta uint64) []byte {
	var buf bytes.Buffer
	buf.WriteByte(flags)
	if flags&flagMetadataID != 0 {
		writeVarUInt(&buf, metadataID)
	}
	if flags&flagSequenceNumber != 0 {
		writeVarUInt(&buf, seqDelta)
		writeVarUInt(&buf, captureThreadID)
		writeVarUInt(&buf, procNum)
	}
	if flags&flagThreadID != 0 {
		writeVarUInt(&buf, threadID)
	}
	if flags&flagStackID != 0 {
		writeVarUInt(&buf, stackID)
	}
	if flags&flagTimestamp != 0 {
		writeVarUInt(&buf, tsDelta)
	}
	writeVarUInt(&buf, 0) // payload size
	return buf.Bytes()
}

const fullFlags = flagMetadataID | flagSequenceNumber | flagThreadID | flagStackID | flagTimestamp

// S5: a sequence point forces the next compressed event to carry every
// field explicitly; decoding that event must produce the same content
// whether or not a reset happened, because the flags already set every bit.
func TestEventHeaderDecoder_SequencePointResetYieldsIdenticalContent(t *testing.T) {
	record := compressedRecord(fullFlags, 7, 100, 2562, 0, 2562, 1, 500)

	// Path A: decoder starts fresh (as if right after a sequence point).
	da := NewEventHeaderDecoder()
	ha, _, err := da.ReadCompressed(reader.New(bytes.NewReader(record)))
	require.NoError(t, err)

	// Path B: decoder has unrelated prior state, then is explicitly reset
	// before decoding the identical full-flags record.
	db := NewEventHeaderDecoder()
	_, _, err = db.ReadCompressed(reader.New(bytes.NewReader(
		compressedRecord(fullFlags, 1, 1, 9999, 0, 9999, 9, 1))))
	require.NoError(t, err)
	db.ResetOnSequencePoint()
	hb, _, err := db.ReadCompressed(reader.New(bytes.NewReader(record)))
	require.NoError(t, err)

	require.Equal(t, ha, hb)
}

func TestEventHeaderDecoder_CompressedInheritsOmittedFields(t *testing.T) {
	d := NewEventHeaderDecoder()

	first := compressedRecord(fullFlags, 3, 10, 100, 0, 200, 5, 1000)
	h1, _, err := d.ReadCompressed(reader.New(bytes.NewReader(first)))
	require.NoError(t, err)
	require.Equal(t, int32(3), h1.MetadataID)
	require.Equal(t, int64(1000), h1.TimeStamp)

	// Second record omits metadata-id, thread-id and stack-id: they must be
	// inherited from the block's compression state, and the timestamp must
	// accumulate as a delta.
	second := compressedRecord(flagSequenceNumber|flagTimestamp, 0, 1, 100, 0, 0, 0, 50)
	h2, _, err := d.ReadCompressed(reader.New(bytes.NewReader(second)))
	require.NoError(t, err)
	require.Equal(t, int32(3), h2.MetadataID)
	require.Equal(t, int64(200), h2.ThreadID)
	require.Equal(t, int32(5), h2.StackID)
	require.Equal(t, int64(1050), h2.TimeStamp)
	// sequenceNumber = previous + 1 + delta at each step: 0+1+10=11, then 11+1+1=13.
	require.Equal(t, int32(11), h1.SequenceNumber)
	require.Equal(t, int32(13), h2.SequenceNumber)
}

func TestEventHeaderDecoder_ResetZeroesState(t *testing.T) {
	d := NewEventHeaderDecoder()
	_, _, err := d.ReadCompressed(reader.New(bytes.NewReader(
		compressedRecord(fullFlags, 9, 1, 1, 0, 1, 1, 1))))
	require.NoError(t, err)

	d.ResetOnSequencePoint()

	// After reset, omitting metadata-id must fall back to the zero value,
	// not the pre-reset state.
	omitted := compressedRecord(0, 0, 0, 0, 0, 0, 0, 0)
	h, _, err := d.ReadCompressed(reader.New(bytes.NewReader(omitted)))
	require.NoError(t, err)
	require.Equal(t, int32(0), h.MetadataID)
	require.Equal(t, int64(0), h.ThreadID)
	require.Equal(t, int32(0), h.StackID)
}

func TestEventHeaderDecoder_Uncompressed(t *testing.T) {
	var buf bytes.Buffer

	// Placeholder event-size, patched after the body is built.
	buf.Write([]byte{0, 0, 0, 0})
	recordStart := buf.Len()

	writeI32 := func(v int32) { var b [4]byte; for i := 0; i < 4; i++ { b[i] = byte(v >> (8 * i)) }; buf.Write(b[:]) }
	writeI64 := func(v int64) { var b [8]byte; for i := 0; i < 8; i++ { b[i] = byte(v >> (8 * i)) }; buf.Write(b[:]) }

	writeI32(11)             // metadata id
	writeI32(1)              // sequence number
	writeI64(2562)           // thread id
	writeI64(2562)           // capture thread id
	writeI32(0)              // processor number (discarded)
	writeI32(1)              // stack id
	writeI64(12345)          // timestamp
	buf.Write(make([]byte, 16)) // activity id
	buf.Write(make([]byte, 16)) // related activity id
	writeI32(3)              // payload size
	buf.Write([]byte{1, 2, 3})

	raw := buf.Bytes()
	eventSize := int32(len(raw) - recordStart)
	raw[0] = byte(eventSize)
	raw[1] = byte(eventSize >> 8)
	raw[2] = byte(eventSize >> 16)
	raw[3] = byte(eventSize >> 24)

	d := NewEventHeaderDecoder()
	h, payload, err := d.ReadUncompressed(reader.New(bytes.NewReader(raw)))
	require.NoError(t, err)
	require.Equal(t, int32(11), h.MetadataID)
	require.Equal(t, int64(2562), h.ThreadID)
	require.Equal(t, int32(1), h.StackID)
	require.Equal(t, int64(12345), h.TimeStamp)
	require.Equal(t, []byte{1, 2, 3}, payload)
}
