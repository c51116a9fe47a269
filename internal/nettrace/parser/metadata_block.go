package parser

import (
	"bytes"
	"fmt"

	"github.com/mabhi256/nettrace/internal/nettrace/model"
	"github.com/mabhi256/nettrace/internal/nettrace/reader"
	"github.com/mabhi256/nettrace/internal/nettrace/registry"
)

// ParseMetadataBlockBody decodes the packed metadata-definition records in
// a MetadataBlock body (spec §4.3, §4.5). Records share the EventBlock's
// compressed/uncompressed header framing, but every metadata-id must be 0
// (a metadata-definition event) and the payload is a from-file
// EventMetadata definition rather than a schema-driven event payload.
func ParseMetadataBlockBody(
	r *reader.BitStreamReader,
	blockHeader *EventBlockHeader,
	bodyEnd int64,
	decoder *EventHeaderDecoder,
	metas *registry.MetadataRegistry,
) error {
	compressed := blockHeader.Flags.CompressedHeaders()

	for r.Position() < bodyEnd {
		h, payload, err := readEventRecord(r, decoder, compressed)
		if err != nil {
			return fmt.Errorf("metadata record at offset %d: %w", r.Position(), err)
		}
		if h.MetadataID != 0 {
			return model.Errorf(model.StructuralViolation,
				"metadata block record has non-zero metadata-id %d", h.MetadataID)
		}

		payloadReader := reader.New(bytes.NewReader(payload))
		meta, err := ParseMetadataDefinition(payloadReader)
		if err != nil {
			return fmt.Errorf("metadata definition: %w", err)
		}
		if err := metas.Register(meta); err != nil {
			return err
		}
	}

	if r.Position() != bodyEnd {
		return model.Errorf(model.StructuralViolation,
			"metadata block body overran its declared size: expected to end at %d, got %d", bodyEnd, r.Position())
	}
	return nil
}
