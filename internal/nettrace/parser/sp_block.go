package parser

import (
	"fmt"

	"github.com/mabhi256/nettrace/internal/nettrace/reader"
)

// SequencePoint is one SPBlock body: a sync timestamp plus the per-thread
// sequence numbers observed up to that point (spec §4.3). The assembler
// only needs the reset signal this block carries, not the per-thread
// detail, but the detail is still decoded to validate the block shape and
// to consume exactly its declared size.
type SequencePoint struct {
	Timestamp int64
	Threads   []SequencePointThread
}

type SequencePointThread struct {
	ThreadID       int64
	SequenceNumber int32
}

// ParseSPBlockBody decodes an SPBlock body: an 8-byte timestamp, a 4-byte
// thread count, then that many 12-byte (thread-id, sequence-number)
// records (spec §4.3).
func ParseSPBlockBody(r *reader.BitStreamReader) (*SequencePoint, error) {
	ts, err := r.ReadI64LE()
	if err != nil {
		return nil, fmt.Errorf("sequence point timestamp: %w", err)
	}
	count, err := r.ReadI32LE()
	if err != nil {
		return nil, fmt.Errorf("sequence point thread count: %w", err)
	}

	threads := make([]SequencePointThread, count)
	for i := int32(0); i < count; i++ {
		threadID, err := r.ReadI64LE()
		if err != nil {
			return nil, fmt.Errorf("sequence point thread %d id: %w", i, err)
		}
		seqNum, err := r.ReadI32LE()
		if err != nil {
			return nil, fmt.Errorf("sequence point thread %d sequence number: %w", i, err)
		}
		threads[i] = SequencePointThread{ThreadID: threadID, SequenceNumber: seqNum}
	}

	return &SequencePoint{Timestamp: ts, Threads: threads}, nil
}
