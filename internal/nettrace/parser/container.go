// Package parser implements the layered nettrace binary decoder: the outer
// self-describing object container, the size-prefixed block framing, the
// compressed/uncompressed event header codec, and the schema-driven
// payload decoder. Each file groups the free functions that decode one
// kind of object, one file per record family.
package parser

import (
	"fmt"

	"github.com/mabhi256/nettrace/internal/nettrace/model"
	"github.com/mabhi256/nettrace/internal/nettrace/reader"
)

const magicPrefix = "Nettrace"
const serializationMarker = "!FastSerialization.1"

// ContainerDecoder walks the outer tagged object stream (spec §4.2).
type ContainerDecoder struct {
	r *reader.BitStreamReader
}

func NewContainerDecoder(r *reader.BitStreamReader) *ContainerDecoder {
	return &ContainerDecoder{r: r}
}

// VerifyMagic consumes the fixed "Nettrace" + length-prefixed
// "!FastSerialization.1" preamble (spec §6).
func (c *ContainerDecoder) VerifyMagic() error {
	buf, err := c.r.ReadExact(len(magicPrefix))
	if err != nil {
		return fmt.Errorf("read magic prefix: %w", err)
	}
	if string(buf) != magicPrefix {
		return model.Errorf(model.BadMagic, "expected magic %q, got %q", magicPrefix, string(buf))
	}

	marker, err := c.r.ReadLenPrefixedUtf8()
	if err != nil {
		return fmt.Errorf("read serialization marker: %w", err)
	}
	if marker != serializationMarker {
		return model.Errorf(model.BadMagic, "expected serialization marker %q, got %q", serializationMarker, marker)
	}
	return nil
}

// ReadTag reads the next one-byte container tag.
func (c *ContainerDecoder) ReadTag() (model.ContainerTag, error) {
	b, err := c.r.ReadU8()
	if err != nil {
		return 0, fmt.Errorf("read container tag: %w", err)
	}
	return model.ContainerTag(b), nil
}

// ObjectHeader describes one object's type descriptor (spec §4.2).
type ObjectHeader struct {
	Kind             model.ObjectKind
	TypeName         string
	Version          int32
	MinReaderVersion int32
}

// ReadObjectHeader reads the nested type-descriptor object that follows a
// BeginPrivateObject tag: a BeginPrivateObject, a NullReference sentinel
// (the descriptor's own type is never itself recursively described),
// version, min-reader-version, the length-prefixed type name, and the
// closing EndObject (spec §4.2, field order and the sentinel tag confirmed
// against the literal S1 byte scenario in spec §8 rather than its prose,
// which omits both).
func (c *ContainerDecoder) ReadObjectHeader() (ObjectHeader, error) {
	tag, err := c.ReadTag()
	if err != nil {
		return ObjectHeader{}, err
	}
	if tag != model.TagBeginPrivateObject {
		return ObjectHeader{}, model.Errorf(model.StructuralViolation,
			"expected BeginPrivateObject for type descriptor, got %s", tag)
	}

	sentinelTag, err := c.ReadTag()
	if err != nil {
		return ObjectHeader{}, err
	}
	if sentinelTag != model.TagNullReference {
		return ObjectHeader{}, model.Errorf(model.StructuralViolation,
			"expected NullReference type-of-type sentinel, got %s", sentinelTag)
	}

	version, err := c.r.ReadI32LE()
	if err != nil {
		return ObjectHeader{}, fmt.Errorf("read type version: %w", err)
	}

	minReaderVersion, err := c.r.ReadI32LE()
	if err != nil {
		return ObjectHeader{}, fmt.Errorf("read min reader version: %w", err)
	}

	name, err := c.r.ReadLenPrefixedUtf8()
	if err != nil {
		return ObjectHeader{}, fmt.Errorf("read type name: %w", err)
	}

	endTag, err := c.ReadTag()
	if err != nil {
		return ObjectHeader{}, err
	}
	if endTag != model.TagEndObject {
		return ObjectHeader{}, model.Errorf(model.StructuralViolation,
			"expected EndObject closing type descriptor, got %s", endTag)
	}

	return ObjectHeader{
		Kind:             model.ObjectKindFromName(name),
		TypeName:         name,
		Version:          version,
		MinReaderVersion: minReaderVersion,
	}, nil
}

// ExpectEndObject reads the tag that must close an object body.
func (c *ContainerDecoder) ExpectEndObject() error {
	tag, err := c.ReadTag()
	if err != nil {
		return err
	}
	if tag != model.TagEndObject {
		return model.Errorf(model.StructuralViolation, "expected EndObject, got %s", tag)
	}
	return nil
}

// SkipUnknownObject consumes the body of an object whose type name wasn't
// recognized, by reading its block-style 4-byte size prefix and skipping
// that many bytes whole (spec §4.2: "their body length... must be inferred
// from the block header").
func (c *ContainerDecoder) SkipUnknownObject() error {
	size, err := c.r.ReadU32LE()
	if err != nil {
		return fmt.Errorf("read unknown object size: %w", err)
	}
	if err := c.r.Skip(int(size)); err != nil {
		return fmt.Errorf("skip unknown object body (%d bytes): %w", size, err)
	}
	return nil
}

// Reader exposes the underlying BitStreamReader for sub-parsers (block,
// header, payload) that need direct field access.
func (c *ContainerDecoder) Reader() *reader.BitStreamReader {
	return c.r
}
