package parser

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mabhi256/nettrace/internal/nettrace/model"
	"github.com/mabhi256/nettrace/internal/nettrace/reader"
)

// Exercises the exact field order of a type descriptor against the S1
// golden scenario: BeginPrivateObject, NullReference sentinel, version,
// min-reader-version, length-prefixed name, EndObject, then the object
// body, then a final EndObject.
const s1Body = "BQUBBAAAAAQAAAAFAAAAVHJhY2UG5wcMAAIAGgARAC8ACgBuAk8T5s1YAwAAgJaYAAAAAAAIAAAAxAoAAAwAAABAQg8ABg=="

func TestContainerDecoder_ReadObjectHeader_S1(t *testing.T) {
	body, err := base64.StdEncoding.DecodeString(s1Body)
	require.NoError(t, err)

	br := reader.New(bytes.NewReader(body))
	cd := NewContainerDecoder(br)

	tag, err := cd.ReadTag()
	require.NoError(t, err)
	require.Equal(t, model.TagBeginPrivateObject, tag)

	header, err := cd.ReadObjectHeader()
	require.NoError(t, err)
	require.Equal(t, "Trace", header.TypeName)
	require.Equal(t, model.ObjectTrace, header.Kind)
	require.Equal(t, int32(4), header.Version)
	require.Equal(t, int32(4), header.MinReaderVersion)

	meta, err := ParseTraceMetadata(br)
	require.NoError(t, err)
	require.Equal(t, int32(2756), meta.ProcessID)
	require.Equal(t, int32(8), meta.PointerSize)

	require.NoError(t, cd.ExpectEndObject())
}

func TestContainerDecoder_ReadObjectHeader_RejectsMissingSentinel(t *testing.T) {
	// BeginPrivateObject, BeginPrivateObject, then a version int32 where the
	// NullReference sentinel tag should be.
	raw := []byte{byte(model.TagBeginPrivateObject), byte(model.TagBeginPrivateObject), 0x04, 0x00, 0x00, 0x00}
	br := reader.New(bytes.NewReader(raw))
	cd := NewContainerDecoder(br)

	_, err := cd.ReadTag()
	require.NoError(t, err)

	_, err = cd.ReadObjectHeader()
	require.Error(t, err)

	var kindErr *model.Error
	require.ErrorAs(t, err, &kindErr)
	require.Equal(t, model.StructuralViolation, kindErr.Kind)
}

func TestContainerDecoder_VerifyMagic(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		var buf bytes.Buffer
		buf.WriteString("Nettrace")
		buf.Write([]byte{20, 0, 0, 0})
		buf.WriteString("!FastSerialization.1")

		cd := NewContainerDecoder(reader.New(&buf))
		require.NoError(t, cd.VerifyMagic())
	})

	t.Run("bad prefix", func(t *testing.T) {
		cd := NewContainerDecoder(reader.New(bytes.NewReader([]byte("NotAMagic1234567890"))))
		err := cd.VerifyMagic()
		require.Error(t, err)

		var kindErr *model.Error
		require.ErrorAs(t, err, &kindErr)
		require.Equal(t, model.BadMagic, kindErr.Kind)
	})
}
