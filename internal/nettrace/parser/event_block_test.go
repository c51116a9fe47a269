package parser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mabhi256/nettrace/internal/nettrace/model"
	"github.com/mabhi256/nettrace/internal/nettrace/reader"
	"github.com/mabhi256/nettrace/internal/nettrace/registry"
)

// compressedRecordWithPayload is compressedRecord (event_header_test.go)
// but with caller-supplied payload bytes instead of an empty one.
func compressedRecordWithPayload(flags byte, metadataID, seqDelta, captureThreadID, procNum, threadID, stackID, tsDelta uint64, payload []byte) []byte {
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
	writeVarUInt(&buf, uint64(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

func registerInt32Schema(t *testing.T, metas *registry.MetadataRegistry, metadataID int32, fieldName string) {
	t.Helper()
	require.NoError(t, metas.Register(&model.EventMetadata{
		MetadataID: metadataID,
		Provider:   "Test.Provider",
		EventID:    1,
		EventName:  "TestEvent",
		Fields:     []model.EventFieldDefinition{{Name: fieldName, Type: model.TypeInt32}},
	}))
}

func TestParseEventBlockBody_DecodesCompressedRecords(t *testing.T) {
	metas := registry.NewMetadataRegistry()
	registerInt32Schema(t, metas, 1, "Value")

	record := compressedRecordWithPayload(fullFlags, 1, 0, 100, 0, 200, 3, 50, []byte{9, 0, 0, 0})
	r := reader.New(bytes.NewReader(record))
	header := &EventBlockHeader{MinTimestamp: 0, MaxTimestamp: 1000}

	var events []*model.Event
	err := ParseEventBlockBody(r, header, int64(len(record)), NewEventHeaderDecoder(), metas, &events)
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	require.Equal(t, 0, e.Index)
	require.Equal(t, int64(50), e.TimeStamp)
	require.Equal(t, int32(3), e.StackIndex)
	require.Equal(t, int64(9), e.Payload["Value"].I)
	require.Equal(t, "TestEvent", e.Metadata.EventName)
}

func TestParseEventBlockBody_StackZeroNormalizesToEmpty(t *testing.T) {
	metas := registry.NewMetadataRegistry()
	registerInt32Schema(t, metas, 1, "Value")

	record := compressedRecordWithPayload(fullFlags, 1, 0, 100, 0, 200, 0, 50, []byte{0, 0, 0, 0})
	r := reader.New(bytes.NewReader(record))
	header := &EventBlockHeader{MinTimestamp: 0, MaxTimestamp: 1000}

	var events []*model.Event
	err := ParseEventBlockBody(r, header, int64(len(record)), NewEventHeaderDecoder(), metas, &events)
	require.NoError(t, err)
	require.Equal(t, model.EmptyStackIndex, events[0].StackIndex)
}

func TestParseEventBlockBody_TimestampOutsideRangeIsStructuralViolation(t *testing.T) {
	metas := registry.NewMetadataRegistry()
	registerInt32Schema(t, metas, 1, "Value")

	record := compressedRecordWithPayload(fullFlags, 1, 0, 100, 0, 200, 1, 5000, []byte{0, 0, 0, 0})
	r := reader.New(bytes.NewReader(record))
	header := &EventBlockHeader{MinTimestamp: 0, MaxTimestamp: 1000}

	var events []*model.Event
	err := ParseEventBlockBody(r, header, int64(len(record)), NewEventHeaderDecoder(), metas, &events)
	require.Error(t, err)

	var kindErr *model.Error
	require.ErrorAs(t, err, &kindErr)
	require.Equal(t, model.StructuralViolation, kindErr.Kind)
}

func TestParseEventBlockBody_UnregisteredMetadataIDIsMissingSchema(t *testing.T) {
	metas := registry.NewMetadataRegistry()

	record := compressedRecordWithPayload(fullFlags, 99, 0, 100, 0, 200, 1, 50, nil)
	r := reader.New(bytes.NewReader(record))
	header := &EventBlockHeader{MinTimestamp: 0, MaxTimestamp: 1000}

	var events []*model.Event
	err := ParseEventBlockBody(r, header, int64(len(record)), NewEventHeaderDecoder(), metas, &events)
	require.Error(t, err)

	var kindErr *model.Error
	require.ErrorAs(t, err, &kindErr)
	require.Equal(t, model.MissingSchema, kindErr.Kind)
}
