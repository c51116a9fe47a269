package parser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mabhi256/nettrace/internal/nettrace/reader"
)

func TestParseSPBlockBody(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{100, 0, 0, 0, 0, 0, 0, 0}) // timestamp = 100
	buf.Write([]byte{2, 0, 0, 0})                // thread count = 2
	buf.Write([]byte{1, 0, 0, 0, 0, 0, 0, 0})     // thread id 1
	buf.Write([]byte{5, 0, 0, 0})                 // sequence number 5
	buf.Write([]byte{2, 0, 0, 0, 0, 0, 0, 0})     // thread id 2
	buf.Write([]byte{9, 0, 0, 0})                 // sequence number 9

	sp, err := ParseSPBlockBody(reader.New(&buf))
	require.NoError(t, err)
	require.Equal(t, int64(100), sp.Timestamp)
	require.Len(t, sp.Threads, 2)
	require.Equal(t, int64(1), sp.Threads[0].ThreadID)
	require.Equal(t, int32(5), sp.Threads[0].SequenceNumber)
	require.Equal(t, int64(2), sp.Threads[1].ThreadID)
	require.Equal(t, int32(9), sp.Threads[1].SequenceNumber)
}

func TestParseSPBlockBody_ZeroThreads(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0, 0, 0, 0, 0})
	buf.Write([]byte{0, 0, 0, 0})

	sp, err := ParseSPBlockBody(reader.New(&buf))
	require.NoError(t, err)
	require.Empty(t, sp.Threads)
}
