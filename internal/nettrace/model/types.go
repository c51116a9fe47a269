// Package model holds the data types produced by the nettrace decoder:
// the tagged container vocabulary, the event/metadata/stack types that make
// up a materialized Trace, and the field type-code table events are encoded
// against.
package model

import "fmt"

// ContainerTag is a one-byte tag in the outer FastSerialization object
// stream (spec §4.2).
type ContainerTag byte

const (
	TagNullReference     ContainerTag = 1
	TagBeginPrivateObject ContainerTag = 5
	TagEndObject          ContainerTag = 6
)

func (t ContainerTag) String() string {
	switch t {
	case TagNullReference:
		return "NullReference"
	case TagBeginPrivateObject:
		return "BeginPrivateObject"
	case TagEndObject:
		return "EndObject"
	default:
		return fmt.Sprintf("ContainerTag(0x%02x)", byte(t))
	}
}

// ObjectKind identifies the top-level object type a container object
// describes (spec §4.2).
type ObjectKind int

const (
	ObjectUnknown ObjectKind = iota
	ObjectTrace
	ObjectEventBlock
	ObjectMetadataBlock
	ObjectStackBlock
	ObjectSPBlock
)

func ObjectKindFromName(name string) ObjectKind {
	switch name {
	case "Trace":
		return ObjectTrace
	case "EventBlock":
		return ObjectEventBlock
	case "MetadataBlock":
		return ObjectMetadataBlock
	case "StackBlock":
		return ObjectStackBlock
	case "SPBlock":
		return ObjectSPBlock
	default:
		return ObjectUnknown
	}
}

func (k ObjectKind) String() string {
	switch k {
	case ObjectTrace:
		return "Trace"
	case ObjectEventBlock:
		return "EventBlock"
	case ObjectMetadataBlock:
		return "MetadataBlock"
	case ObjectStackBlock:
		return "StackBlock"
	case ObjectSPBlock:
		return "SPBlock"
	default:
		return "Unknown"
	}
}

// TypeCode is the bit-exact field type-code table from spec §3.
type TypeCode int32

const (
	TypeObject                    TypeCode = 1
	TypeBoolean32                 TypeCode = 3
	TypeUtf16CodeUnit             TypeCode = 4
	TypeSByte                     TypeCode = 5
	TypeByte                      TypeCode = 6
	TypeInt16                     TypeCode = 7
	TypeUInt16                    TypeCode = 8
	TypeInt32                     TypeCode = 9
	TypeUInt32                    TypeCode = 10
	TypeInt64                     TypeCode = 11
	TypeUInt64                    TypeCode = 12
	TypeSingle                    TypeCode = 13
	TypeDouble                    TypeCode = 14
	TypeDecimal                   TypeCode = 15
	TypeDateTime                  TypeCode = 16
	TypeGuid                      TypeCode = 17
	TypeNullTerminatedUtf16String TypeCode = 18
	TypeArray                     TypeCode = 19
	TypeVarInt                    TypeCode = 20
	TypeVarUInt                   TypeCode = 21
	TypeFixedLengthArray          TypeCode = 22
	TypeUtf8CodeUnit              TypeCode = 23
	TypeRelLoc                    TypeCode = 24
	TypeDataLoc                   TypeCode = 25
	TypeBoolean8                  TypeCode = 26
)

func (t TypeCode) String() string {
	switch t {
	case TypeObject:
		return "Object"
	case TypeBoolean32:
		return "Boolean32"
	case TypeUtf16CodeUnit:
		return "Utf16CodeUnit"
	case TypeSByte:
		return "SByte"
	case TypeByte:
		return "Byte"
	case TypeInt16:
		return "Int16"
	case TypeUInt16:
		return "UInt16"
	case TypeInt32:
		return "Int32"
	case TypeUInt32:
		return "UInt32"
	case TypeInt64:
		return "Int64"
	case TypeUInt64:
		return "UInt64"
	case TypeSingle:
		return "Single"
	case TypeDouble:
		return "Double"
	case TypeDecimal:
		return "Decimal"
	case TypeDateTime:
		return "DateTime"
	case TypeGuid:
		return "Guid"
	case TypeNullTerminatedUtf16String:
		return "NullTerminatedUtf16String"
	case TypeArray:
		return "Array"
	case TypeVarInt:
		return "VarInt"
	case TypeVarUInt:
		return "VarUInt"
	case TypeFixedLengthArray:
		return "FixedLengthArray"
	case TypeUtf8CodeUnit:
		return "Utf8CodeUnit"
	case TypeRelLoc:
		return "RelLoc"
	case TypeDataLoc:
		return "DataLoc"
	case TypeBoolean8:
		return "Boolean8"
	default:
		return fmt.Sprintf("TypeCode(%d)", int32(t))
	}
}

// Opcode names the well-known EventPipe/ETW opcodes used by built-in
// catalog entries for display purposes only (SPEC_FULL §3.1); it is not a
// distinct wire concept, just an Int32 schema field.
type Opcode int32

const (
	OpcodeInfo Opcode = iota
	OpcodeStart
	OpcodeStop
	OpcodeDCStart
	OpcodeDCStop
	OpcodeExtension
	OpcodeReply
	OpcodeResume
	OpcodeSuspend
	OpcodeSend
	_ // 10 unused
	OpcodeReceive
)

func (o Opcode) String() string {
	switch o {
	case OpcodeInfo:
		return "Info"
	case OpcodeStart:
		return "Start"
	case OpcodeStop:
		return "Stop"
	case OpcodeDCStart:
		return "DCStart"
	case OpcodeDCStop:
		return "DCStop"
	case OpcodeExtension:
		return "Extension"
	case OpcodeReply:
		return "Reply"
	case OpcodeResume:
		return "Resume"
	case OpcodeSuspend:
		return "Suspend"
	case OpcodeSend:
		return "Send"
	case OpcodeReceive:
		return "Receive"
	default:
		return fmt.Sprintf("Opcode(%d)", int32(o))
	}
}

// Level mirrors the EventPipe/ETW severity level field.
type Level int32

const (
	LevelLogAlways Level = iota
	LevelCritical
	LevelError
	LevelWarning
	LevelInformational
	LevelVerbose
)

func (l Level) String() string {
	switch l {
	case LevelLogAlways:
		return "LogAlways"
	case LevelCritical:
		return "Critical"
	case LevelError:
		return "Error"
	case LevelWarning:
		return "Warning"
	case LevelInformational:
		return "Informational"
	case LevelVerbose:
		return "Verbose"
	default:
		return fmt.Sprintf("Level(%d)", int32(l))
	}
}

// BlockFlags is the 2-byte EventBlock/MetadataBlock header flags field
// (spec §4.3).
type BlockFlags uint16

const (
	BlockFlagCompressedHeaders BlockFlags = 0x01
)

func (f BlockFlags) CompressedHeaders() bool {
	return f&BlockFlagCompressedHeaders != 0
}

// EmptyStackIndex is the sentinel stack index for events with no captured
// stack (spec §3).
const EmptyStackIndex int32 = -1
