package parser

import (
	"fmt"

	"github.com/mabhi256/nettrace/internal/nettrace/model"
	"github.com/mabhi256/nettrace/internal/nettrace/reader"
)

// Compressed-record flag bits (spec §4.4).
const (
	flagMetadataID     = 0x01
	flagSequenceNumber = 0x02 // also covers capture-thread-id + processor-number
	flagThreadID       = 0x04
	flagStackID        = 0x08
	flagTimestamp      = 0x10
	flagActivityID     = 0x20
	flagRelatedActivityID = 0x40
	flagSorted         = 0x80
)

// EventHeader is one decoded per-event record header, uncompressed or
// compressed, normalized to the same shape (spec §4.4).
type EventHeader struct {
	MetadataID        int32
	SequenceNumber    int32
	CaptureThreadID   int64
	ProcessorNumber   int32
	ThreadID          int64
	StackID           int32
	TimeStamp         int64
	ActivityID        model.Guid
	RelatedActivityID model.Guid
	PayloadSize       int32
	Sorted            bool
}

// compressionState is the single "previous event" carried per block (not
// per-thread, spec §9 design note resolving the ambiguity in §4.4's
// prose): every field a compressed record can omit is inherited from here.
type compressionState struct {
	metadataID        int32
	sequenceNumber    int32
	captureThreadID   int64
	processorNumber   int32
	threadID          int64
	stackID           int32
	timestamp         int64
	activityID        model.Guid
	relatedActivityID model.Guid
}

// EventHeaderDecoder decodes compressed or uncompressed per-event record
// headers within a block, applying delta-encoding against the block's
// previous header (spec §4.4).
type EventHeaderDecoder struct {
	state compressionState
}

func NewEventHeaderDecoder() *EventHeaderDecoder {
	return &EventHeaderDecoder{}
}

// ResetOnSequencePoint zeroes the compression state, forcing the next
// compressed record to set every flag bit (spec §4.3 SPBlock, §4.4, §8 S5).
func (d *EventHeaderDecoder) ResetOnSequencePoint() {
	d.state = compressionState{}
}

// ReadUncompressed decodes a legacy fixed-layout event record header plus
// its payload bytes (spec §4.4).
func (d *EventHeaderDecoder) ReadUncompressed(r *reader.BitStreamReader) (*EventHeader, []byte, error) {
	eventSize, err := r.ReadI32LE()
	if err != nil {
		return nil, nil, fmt.Errorf("uncompressed event size: %w", err)
	}
	recordStart := r.Position()

	var h EventHeader
	if h.MetadataID, err = r.ReadI32LE(); err != nil {
		return nil, nil, fmt.Errorf("uncompressed metadata id: %w", err)
	}
	if h.SequenceNumber, err = r.ReadI32LE(); err != nil {
		return nil, nil, fmt.Errorf("uncompressed sequence number: %w", err)
	}
	if h.ThreadID, err = r.ReadI64LE(); err != nil {
		return nil, nil, fmt.Errorf("uncompressed thread id: %w", err)
	}
	if h.CaptureThreadID, err = r.ReadI64LE(); err != nil {
		return nil, nil, fmt.Errorf("uncompressed capture thread id: %w", err)
	}
	if _, err = r.ReadI32LE(); err != nil { // processor number, discarded
		return nil, nil, fmt.Errorf("uncompressed processor number: %w", err)
	}
	if h.StackID, err = r.ReadI32LE(); err != nil {
		return nil, nil, fmt.Errorf("uncompressed stack id: %w", err)
	}
	if h.TimeStamp, err = r.ReadI64LE(); err != nil {
		return nil, nil, fmt.Errorf("uncompressed timestamp: %w", err)
	}
	activityBytes, err := r.ReadExact(16)
	if err != nil {
		return nil, nil, fmt.Errorf("uncompressed activity id: %w", err)
	}
	h.ActivityID = guidFromBytes(activityBytes)
	relatedBytes, err := r.ReadExact(16)
	if err != nil {
		return nil, nil, fmt.Errorf("uncompressed related activity id: %w", err)
	}
	h.RelatedActivityID = guidFromBytes(relatedBytes)

	payloadSize, err := r.ReadI32LE()
	if err != nil {
		return nil, nil, fmt.Errorf("uncompressed payload size: %w", err)
	}
	h.PayloadSize = payloadSize

	payload, err := r.ReadExact(int(payloadSize))
	if err != nil {
		return nil, nil, fmt.Errorf("uncompressed payload bytes: %w", err)
	}

	if consumed := r.Position() - recordStart; int32(consumed) != eventSize {
		return nil, nil, model.Errorf(model.PayloadShape,
			"uncompressed event record size mismatch: header declared %d, consumed %d", eventSize, consumed)
	}

	return &h, payload, nil
}

// ReadCompressed decodes one compressed event record: a 1-byte flags mask
// selecting which fields are present, with every omitted field inherited
// from the block's compression state (spec §4.4).
func (d *EventHeaderDecoder) ReadCompressed(r *reader.BitStreamReader) (*EventHeader, []byte, error) {
	flagsByte, err := r.ReadU8()
	if err != nil {
		return nil, nil, fmt.Errorf("compressed flags byte: %w", err)
	}

	s := &d.state

	if flagsByte&flagMetadataID != 0 {
		v, err := r.ReadVarUInt()
		if err != nil {
			return nil, nil, fmt.Errorf("compressed metadata id: %w", err)
		}
		s.metadataID = int32(v)
	}

	if flagsByte&flagSequenceNumber != 0 {
		delta, err := r.ReadVarUInt()
		if err != nil {
			return nil, nil, fmt.Errorf("compressed sequence number delta: %w", err)
		}
		s.sequenceNumber = s.sequenceNumber + 1 + int32(delta)

		captureThreadID, err := r.ReadVarUInt()
		if err != nil {
			return nil, nil, fmt.Errorf("compressed capture thread id: %w", err)
		}
		s.captureThreadID = int64(captureThreadID)

		procNum, err := r.ReadVarUInt()
		if err != nil {
			return nil, nil, fmt.Errorf("compressed processor number: %w", err)
		}
		s.processorNumber = int32(procNum)
	}

	if flagsByte&flagThreadID != 0 {
		v, err := r.ReadVarUInt()
		if err != nil {
			return nil, nil, fmt.Errorf("compressed thread id: %w", err)
		}
		s.threadID = int64(v)
	}

	if flagsByte&flagStackID != 0 {
		v, err := r.ReadVarUInt()
		if err != nil {
			return nil, nil, fmt.Errorf("compressed stack id: %w", err)
		}
		s.stackID = int32(v)
	}

	if flagsByte&flagTimestamp != 0 {
		delta, err := r.ReadVarUInt()
		if err != nil {
			return nil, nil, fmt.Errorf("compressed timestamp delta: %w", err)
		}
		s.timestamp += int64(delta)
	}

	if flagsByte&flagActivityID != 0 {
		buf, err := r.ReadExact(16)
		if err != nil {
			return nil, nil, fmt.Errorf("compressed activity id: %w", err)
		}
		s.activityID = guidFromBytes(buf)
	}

	if flagsByte&flagRelatedActivityID != 0 {
		buf, err := r.ReadExact(16)
		if err != nil {
			return nil, nil, fmt.Errorf("compressed related activity id: %w", err)
		}
		s.relatedActivityID = guidFromBytes(buf)
	}

	payloadSize, err := r.ReadVarUInt()
	if err != nil {
		return nil, nil, fmt.Errorf("compressed payload size: %w", err)
	}

	payload, err := r.ReadExact(int(payloadSize))
	if err != nil {
		return nil, nil, fmt.Errorf("compressed payload bytes: %w", err)
	}

	h := &EventHeader{
		MetadataID:        s.metadataID,
		SequenceNumber:    s.sequenceNumber,
		CaptureThreadID:   s.captureThreadID,
		ProcessorNumber:   s.processorNumber,
		ThreadID:          s.threadID,
		StackID:           s.stackID,
		TimeStamp:         s.timestamp,
		ActivityID:        s.activityID,
		RelatedActivityID: s.relatedActivityID,
		PayloadSize:       int32(payloadSize),
		Sorted:            flagsByte&flagSorted != 0,
	}
	return h, payload, nil
}

func guidFromBytes(b []byte) model.Guid {
	var g model.Guid
	g.Data1 = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	g.Data2 = uint16(b[4]) | uint16(b[5])<<8
	g.Data3 = uint16(b[6]) | uint16(b[7])<<8
	copy(g.Data4[:], b[8:16])
	return g
}
