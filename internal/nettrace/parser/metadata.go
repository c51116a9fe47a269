package parser

import (
	"fmt"

	"github.com/mabhi256/nettrace/internal/nettrace/model"
	"github.com/mabhi256/nettrace/internal/nettrace/reader"
)

/*
ParseMetadataDefinition decodes a metadata-id 0 payload, the from-file
schema record (spec §4.5):

	i4     metadata-id (>= 1)
	utf16  provider name (null-terminated)
	i4     event-id
	utf16  event name (null-terminated)
	i8     keywords
	i4     version
	i4     level
	i4     field count
	[field definition]*

Each field definition starts with a 4-byte tag (0 = simple, 1 = with
sub-fields). A simple field is a type-code (i4) then a name (null-terminated
utf16). A field "with sub-fields" is a 4-byte sub-field count followed by
that many recursively-encoded field definitions, THEN the outer field's own
type-code and name — the sub-field block precedes the type-code/name it
describes. A field whose outer type-code is Array uses this form with
exactly one sub-field naming the element type; a field whose outer
type-code is Object uses it with the full nested field list (spec §3's
"ArrayElementType present iff Array" / "SubFields present iff Object").
*/
func ParseMetadataDefinition(r *reader.BitStreamReader) (*model.EventMetadata, error) {
	metadataID, err := r.ReadI32LE()
	if err != nil {
		return nil, fmt.Errorf("metadata id: %w", err)
	}
	if metadataID < 1 {
		return nil, model.Errorf(model.StructuralViolation, "metadata-id must be >= 1, got %d", metadataID)
	}

	provider, err := r.ReadUtf16NullTerminated()
	if err != nil {
		return nil, fmt.Errorf("provider name: %w", err)
	}
	eventID, err := r.ReadI32LE()
	if err != nil {
		return nil, fmt.Errorf("event id: %w", err)
	}
	eventName, err := r.ReadUtf16NullTerminated()
	if err != nil {
		return nil, fmt.Errorf("event name: %w", err)
	}
	keywords, err := r.ReadU64LE()
	if err != nil {
		return nil, fmt.Errorf("keywords: %w", err)
	}
	version, err := r.ReadI32LE()
	if err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}
	level, err := r.ReadI32LE()
	if err != nil {
		return nil, fmt.Errorf("level: %w", err)
	}

	fieldCount, err := r.ReadI32LE()
	if err != nil {
		return nil, fmt.Errorf("field count: %w", err)
	}
	fields := make([]model.EventFieldDefinition, fieldCount)
	for i := int32(0); i < fieldCount; i++ {
		f, err := parseFieldDefinition(r)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		fields[i] = f
	}

	return &model.EventMetadata{
		MetadataID: metadataID,
		Provider:   provider,
		EventID:    eventID,
		EventName:  eventName,
		Keywords:   keywords,
		Version:    version,
		Level:      model.Level(level),
		Fields:     fields,
	}, nil
}

const (
	fieldTagSimple     = 0
	fieldTagWithSubFields = 1
)

func parseFieldDefinition(r *reader.BitStreamReader) (model.EventFieldDefinition, error) {
	tag, err := r.ReadI32LE()
	if err != nil {
		return model.EventFieldDefinition{}, fmt.Errorf("field tag: %w", err)
	}

	var subFields []model.EventFieldDefinition
	if tag == fieldTagWithSubFields {
		subCount, err := r.ReadI32LE()
		if err != nil {
			return model.EventFieldDefinition{}, fmt.Errorf("sub-field count: %w", err)
		}
		subFields = make([]model.EventFieldDefinition, subCount)
		for i := int32(0); i < subCount; i++ {
			sf, err := parseFieldDefinition(r)
			if err != nil {
				return model.EventFieldDefinition{}, fmt.Errorf("sub-field %d: %w", i, err)
			}
			subFields[i] = sf
		}
	} else if tag != fieldTagSimple {
		return model.EventFieldDefinition{}, model.Errorf(model.StructuralViolation, "unknown field tag %d", tag)
	}

	typeCode, err := r.ReadI32LE()
	if err != nil {
		return model.EventFieldDefinition{}, fmt.Errorf("field type code: %w", err)
	}
	name, err := r.ReadUtf16NullTerminated()
	if err != nil {
		return model.EventFieldDefinition{}, fmt.Errorf("field name: %w", err)
	}

	f := model.EventFieldDefinition{Name: name, Type: model.TypeCode(typeCode)}
	switch f.Type {
	case model.TypeArray:
		if len(subFields) != 1 {
			return model.EventFieldDefinition{}, model.Errorf(model.StructuralViolation,
				"array field %q must have exactly one sub-field naming the element type, got %d", name, len(subFields))
		}
		f.ArrayElementType = subFields[0].Type
	case model.TypeObject:
		f.SubFields = subFields
	}

	return f, nil
}
