package parser

import (
	"bytes"
	"fmt"

	"github.com/mabhi256/nettrace/internal/nettrace/model"
	"github.com/mabhi256/nettrace/internal/nettrace/reader"
	"github.com/mabhi256/nettrace/internal/nettrace/registry"
)

// ParseEventBlockBody decodes the packed event records in an EventBlock
// body (spec §4.3, §4.4), appending one *model.Event per record to events.
// Each record's schema must already be registered (MissingSchema
// otherwise); stack-ids are recorded as raw indices (wire 0 normalized to
// model.EmptyStackIndex) and resolved to StackTrace objects once the whole
// stream has been parsed.
func ParseEventBlockBody(
	r *reader.BitStreamReader,
	blockHeader *EventBlockHeader,
	bodyEnd int64,
	decoder *EventHeaderDecoder,
	metas *registry.MetadataRegistry,
	events *[]*model.Event,
) error {
	compressed := blockHeader.Flags.CompressedHeaders()

	for r.Position() < bodyEnd {
		h, payload, err := readEventRecord(r, decoder, compressed)
		if err != nil {
			return fmt.Errorf("event record at offset %d: %w", r.Position(), err)
		}

		if h.TimeStamp < blockHeader.MinTimestamp || h.TimeStamp > blockHeader.MaxTimestamp {
			return model.Errorf(model.StructuralViolation,
				"event timestamp %d outside block range [%d, %d]", h.TimeStamp, blockHeader.MinTimestamp, blockHeader.MaxTimestamp)
		}

		schema, ok := metas.Lookup(h.MetadataID)
		if !ok {
			return model.Errorf(model.MissingSchema, "event references unregistered metadata-id %d", h.MetadataID)
		}

		payloadReader := reader.New(bytes.NewReader(payload))
		values, order, err := ParsePayload(payloadReader, schema.Fields)
		if err != nil {
			return fmt.Errorf("payload for metadata-id %d (%s): %w", h.MetadataID, schema.EventName, err)
		}

		stackIndex := h.StackID
		if stackIndex == 0 {
			stackIndex = model.EmptyStackIndex
		}

		*events = append(*events, &model.Event{
			Index:             len(*events),
			SequenceNumber:    h.SequenceNumber,
			CaptureThreadID:   h.CaptureThreadID,
			ThreadID:          h.ThreadID,
			StackIndex:        stackIndex,
			TimeStamp:         h.TimeStamp,
			ActivityID:        h.ActivityID,
			RelatedActivityID: h.RelatedActivityID,
			Payload:           values,
			PayloadOrder:      order,
			Metadata:          schema,
		})
	}

	if r.Position() != bodyEnd {
		return model.Errorf(model.StructuralViolation,
			"event block body overran its declared size: expected to end at %d, got %d", bodyEnd, r.Position())
	}
	return nil
}

func readEventRecord(r *reader.BitStreamReader, decoder *EventHeaderDecoder, compressed bool) (*EventHeader, []byte, error) {
	if compressed {
		return decoder.ReadCompressed(r)
	}
	return decoder.ReadUncompressed(r)
}
