package parser

import (
	"fmt"

	"github.com/mabhi256/nettrace/internal/nettrace/model"
	"github.com/mabhi256/nettrace/internal/nettrace/reader"
)

// ParsePayload decodes a full event payload against an ordered field-
// definition list, returning the order-preserving name->value mapping and
// the field order itself (spec §4.6).
func ParsePayload(r *reader.BitStreamReader, fields []model.EventFieldDefinition) (map[string]model.Value, []string, error) {
	values := make(map[string]model.Value, len(fields))
	order := make([]string, len(fields))

	for i, f := range fields {
		v, err := parseFieldValue(r, f)
		if err != nil {
			return nil, nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		values[f.Name] = v
		order[i] = f.Name
	}

	return values, order, nil
}

// parseFieldValue decodes a single field per the type-code table (spec
// §4.6).
func parseFieldValue(r *reader.BitStreamReader, f model.EventFieldDefinition) (model.Value, error) {
	switch f.Type {
	case model.TypeBoolean32:
		v, err := r.ReadU32LE()
		if err != nil {
			return model.Value{}, err
		}
		return model.BoolValue(v != 0), nil

	case model.TypeBoolean8:
		v, err := r.ReadU8()
		if err != nil {
			return model.Value{}, err
		}
		return model.BoolValue(v != 0), nil

	case model.TypeUtf16CodeUnit:
		v, err := r.ReadU16LE()
		if err != nil {
			return model.Value{}, err
		}
		return model.UintValue(uint64(v)), nil

	case model.TypeUtf8CodeUnit:
		v, err := r.ReadU8()
		if err != nil {
			return model.Value{}, err
		}
		return model.UintValue(uint64(v)), nil

	case model.TypeSByte:
		v, err := r.ReadI8()
		if err != nil {
			return model.Value{}, err
		}
		return model.IntValue(int64(v)), nil

	case model.TypeByte:
		v, err := r.ReadU8()
		if err != nil {
			return model.Value{}, err
		}
		return model.UintValue(uint64(v)), nil

	case model.TypeInt16:
		v, err := r.ReadI16LE()
		if err != nil {
			return model.Value{}, err
		}
		return model.IntValue(int64(v)), nil

	case model.TypeUInt16:
		v, err := r.ReadU16LE()
		if err != nil {
			return model.Value{}, err
		}
		return model.UintValue(uint64(v)), nil

	case model.TypeInt32:
		v, err := r.ReadI32LE()
		if err != nil {
			return model.Value{}, err
		}
		return model.IntValue(int64(v)), nil

	case model.TypeUInt32:
		v, err := r.ReadU32LE()
		if err != nil {
			return model.Value{}, err
		}
		return model.UintValue(uint64(v)), nil

	case model.TypeInt64:
		v, err := r.ReadI64LE()
		if err != nil {
			return model.Value{}, err
		}
		return model.IntValue(v), nil

	case model.TypeUInt64:
		v, err := r.ReadU64LE()
		if err != nil {
			return model.Value{}, err
		}
		return model.UintValue(v), nil

	case model.TypeSingle:
		v, err := r.ReadF32LE()
		if err != nil {
			return model.Value{}, err
		}
		return model.Float32Value(v), nil

	case model.TypeDouble:
		v, err := r.ReadF64LE()
		if err != nil {
			return model.Value{}, err
		}
		return model.Float64Value(v), nil

	case model.TypeDecimal:
		b, err := r.ReadExact(16)
		if err != nil {
			return model.Value{}, err
		}
		return model.BytesValue(b), nil

	case model.TypeDateTime:
		dt, err := parseDateTime(r)
		if err != nil {
			return model.Value{}, err
		}
		return model.DateTimeValue(dt), nil

	case model.TypeGuid:
		g, err := r.ReadGuid()
		if err != nil {
			return model.Value{}, err
		}
		return model.GuidValue(g), nil

	case model.TypeNullTerminatedUtf16String:
		s, err := r.ReadUtf16NullTerminated()
		if err != nil {
			return model.Value{}, err
		}
		return model.StringValue(s), nil

	case model.TypeVarInt:
		v, err := r.ReadVarInt()
		if err != nil {
			return model.Value{}, err
		}
		return model.IntValue(v), nil

	case model.TypeVarUInt:
		v, err := r.ReadVarUInt()
		if err != nil {
			return model.Value{}, err
		}
		return model.UintValue(v), nil

	case model.TypeArray:
		count, err := r.ReadU16LE()
		if err != nil {
			return model.Value{}, err
		}
		return parseArrayElements(r, f.ArrayElementType, int(count))

	case model.TypeFixedLengthArray:
		return parseArrayElements(r, f.ArrayElementType, len(f.SubFields))

	case model.TypeObject:
		obj, _, err := ParsePayload(r, f.SubFields)
		if err != nil {
			return model.Value{}, err
		}
		return model.ObjectValue(obj), nil

	case model.TypeRelLoc, model.TypeDataLoc:
		// Reserved for advanced payload layouts (spec §4.6): not parsed as
		// values, represented as an opaque byte span. Since this decoder
		// doesn't track the producing event's total payload window here,
		// RelLoc/DataLoc fields are recorded as a zero-length opaque value;
		// callers needing the real offsets must read the raw payload bytes
		// directly.
		return model.BytesValue(nil), nil

	default:
		return model.Value{}, model.Errorf(model.SchemaTypeCode, "unknown type code %d", int32(f.Type))
	}
}

func parseArrayElements(r *reader.BitStreamReader, elemType model.TypeCode, count int) (model.Value, error) {
	elems := make([]model.Value, count)
	elemDef := model.EventFieldDefinition{Name: "", Type: elemType}
	for i := 0; i < count; i++ {
		v, err := parseFieldValue(r, elemDef)
		if err != nil {
			return model.Value{}, fmt.Errorf("array element %d: %w", i, err)
		}
		elems[i] = v
	}
	return model.ArrayValue(elems), nil
}

func parseDateTime(r *reader.BitStreamReader) (model.DateTime, error) {
	var d model.DateTime
	fields := []*int16{&d.Year, &d.Month, &d.DayOfWeek, &d.Day, &d.Hour, &d.Minute, &d.Second, &d.Millisecond}
	for _, f := range fields {
		v, err := r.ReadI16LE()
		if err != nil {
			return d, err
		}
		*f = v
	}
	return d, nil
}
