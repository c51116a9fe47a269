package parser

import (
	"fmt"

	"github.com/mabhi256/nettrace/internal/nettrace/model"
	"github.com/mabhi256/nettrace/internal/nettrace/reader"
)

// BlockEnvelope carries the absolute stream position a block's body must
// end at, derived from its size-prefix field (spec §4.3).
type BlockEnvelope struct {
	BodyEnd int64
}

// OpenBlock reads the common block preamble shared by EventBlock,
// MetadataBlock, StackBlock and SPBlock: a 4-byte LE size N (bytes of body
// following the size field), then an alignment pad to the next 4-byte
// boundary measured from stream origin.
func OpenBlock(r *reader.BitStreamReader) (BlockEnvelope, error) {
	size, err := r.ReadU32LE()
	if err != nil {
		return BlockEnvelope{}, fmt.Errorf("read block size: %w", err)
	}
	bodyEnd := r.Position() + int64(size)

	if err := r.AlignTo(4); err != nil {
		return BlockEnvelope{}, fmt.Errorf("align block header: %w", err)
	}

	return BlockEnvelope{BodyEnd: bodyEnd}, nil
}

// CloseBlock verifies the block body consumed exactly its declared size
// (spec §4.3: "Body bytes consumed must equal N; surplus or deficit is a
// decode failure").
func CloseBlock(r *reader.BitStreamReader, env BlockEnvelope) error {
	if r.Position() != env.BodyEnd {
		return model.Errorf(model.StructuralViolation,
			"block body size mismatch: expected to end at %d, ended at %d", env.BodyEnd, r.Position())
	}
	return nil
}

// EventBlockHeader is the header shared by EventBlock and MetadataBlock
// (spec §4.3).
type EventBlockHeader struct {
	HeaderSize   uint16
	Flags        model.BlockFlags
	MinTimestamp int64
	MaxTimestamp int64
}

const eventBlockHeaderCoreSize = 2 + 2 + 8 + 8 // headerSize + flags + min + max

// ParseEventBlockHeader reads an EventBlock/MetadataBlock header: 2-byte
// header size, 2-byte flags, 8-byte min-timestamp, 8-byte max-timestamp,
// then any reserved trailing bytes implied by header size.
func ParseEventBlockHeader(r *reader.BitStreamReader) (*EventBlockHeader, error) {
	headerSize, err := r.ReadU16LE()
	if err != nil {
		return nil, fmt.Errorf("event block header size: %w", err)
	}
	flags, err := r.ReadU16LE()
	if err != nil {
		return nil, fmt.Errorf("event block flags: %w", err)
	}
	minTS, err := r.ReadI64LE()
	if err != nil {
		return nil, fmt.Errorf("event block min timestamp: %w", err)
	}
	maxTS, err := r.ReadI64LE()
	if err != nil {
		return nil, fmt.Errorf("event block max timestamp: %w", err)
	}

	if int(headerSize) > eventBlockHeaderCoreSize {
		if err := r.Skip(int(headerSize) - eventBlockHeaderCoreSize); err != nil {
			return nil, fmt.Errorf("skip reserved event block header bytes: %w", err)
		}
	}

	return &EventBlockHeader{
		HeaderSize:   headerSize,
		Flags:        model.BlockFlags(flags),
		MinTimestamp: minTS,
		MaxTimestamp: maxTS,
	}, nil
}

// StackBlockHeader is the header of a StackBlock (spec §4.3).
type StackBlockHeader struct {
	FirstStackID int32
	StackCount   int32
}

func ParseStackBlockHeader(r *reader.BitStreamReader) (*StackBlockHeader, error) {
	first, err := r.ReadI32LE()
	if err != nil {
		return nil, fmt.Errorf("stack block first id: %w", err)
	}
	count, err := r.ReadI32LE()
	if err != nil {
		return nil, fmt.Errorf("stack block count: %w", err)
	}
	return &StackBlockHeader{FirstStackID: first, StackCount: count}, nil
}
