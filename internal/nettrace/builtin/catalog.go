// Package builtin is the hard-coded schema catalog for events whose
// providers omit metadata (spec §4.5). It is pure data: every entry
// decodes through the same generic, table-driven PayloadParser the
// file-supplied schemas use, so there is no per-event parsing code to
// maintain here, only the (provider, event-id, version) -> field-table
// mapping (spec §1's "representative set used as worked examples", and
// SPEC_FULL §8's golden scenarios). Most entries follow real traces; the
// ProcessMapping/ProcessSymbol ids are this catalog's own choice.
package builtin

import "github.com/mabhi256/nettrace/internal/nettrace/model"

// Key identifies a built-in catalog entry.
type Key struct {
	Provider string
	EventID  int32
	Version  int32
}

// Entry is a catalog-registered schema. Name/Opcode/Fields replace
// whatever the file supplied for the same metadata-id, per spec §4.5 and
// the catalog-wins decision recorded in DESIGN.md.
type Entry struct {
	EventName string
	Opcode    model.Opcode
	HasOpcode bool
	Level     model.Level
	Fields    []model.EventFieldDefinition
}

func field(name string, t model.TypeCode) model.EventFieldDefinition {
	return model.EventFieldDefinition{Name: name, Type: t}
}

// Catalog is the static (provider, event-id, version) -> Entry mapping.
var Catalog = map[Key]Entry{
	// System.Threading.Tasks.TplEventSource / TaskWaitBegin (spec §8 S2).
	{Provider: "System.Threading.Tasks.TplEventSource", EventID: 10, Version: 3}: {
		EventName: "TaskWaitBegin",
		Opcode:    model.OpcodeSend,
		HasOpcode: true,
		Level:     model.LevelInformational,
		Fields: []model.EventFieldDefinition{
			field("OriginatingTaskSchedulerID", model.TypeInt32),
			field("OriginatingTaskID", model.TypeInt32),
			field("TaskID", model.TypeInt32),
			field("Behavior", model.TypeInt32),
			field("ContinueWithTaskID", model.TypeInt32),
		},
	},
	// System.Threading.Tasks.TplEventSource / TaskWaitEnd.
	{Provider: "System.Threading.Tasks.TplEventSource", EventID: 11, Version: 1}: {
		EventName: "TaskWaitEnd",
		Opcode:    model.OpcodeStop,
		HasOpcode: true,
		Level:     model.LevelInformational,
		Fields: []model.EventFieldDefinition{
			field("OriginatingTaskSchedulerID", model.TypeInt32),
			field("OriginatingTaskID", model.TypeInt32),
			field("TaskID", model.TypeInt32),
		},
	},
	// Microsoft-Windows-DotNETRuntime / GCStart_V2.
	{Provider: "Microsoft-Windows-DotNETRuntime", EventID: 1, Version: 2}: {
		EventName: "GCStart",
		Opcode:    model.OpcodeStart,
		HasOpcode: true,
		Level:     model.LevelInformational,
		Fields: []model.EventFieldDefinition{
			field("Count", model.TypeUInt32),
			field("Depth", model.TypeUInt32),
			field("Reason", model.TypeUInt32),
			field("Type", model.TypeUInt32),
			field("ClrInstanceID", model.TypeUInt16),
			field("ClientSequenceNumber", model.TypeUInt64),
		},
	},
	// Microsoft-Windows-DotNETRuntime / GCEnd_V1.
	{Provider: "Microsoft-Windows-DotNETRuntime", EventID: 2, Version: 1}: {
		EventName: "GCEnd",
		Opcode:    model.OpcodeStop,
		HasOpcode: true,
		Level:     model.LevelInformational,
		Fields: []model.EventFieldDefinition{
			field("Count", model.TypeUInt32),
			field("Depth", model.TypeUInt32),
			field("ClrInstanceID", model.TypeUInt16),
		},
	},
	// Microsoft-Windows-DotNETRuntimeRundown / MethodDCEndVerbose (spec
	// §4.8 "rundown path"). Parsed specially by the symbol table, but also
	// registered here so generic payload decode never hits MissingSchema
	// for it when a file omits its own copy.
	{Provider: "Microsoft-Windows-DotNETRuntimeRundown", EventID: 144, Version: 0}: {
		EventName: "MethodDCEndVerbose",
		HasOpcode: false,
		Level:     model.LevelVerbose,
		Fields: []model.EventFieldDefinition{
			field("MethodID", model.TypeUInt64),
			field("ModuleID", model.TypeUInt64),
			field("MethodStartAddress", model.TypeUInt64),
			field("MethodSize", model.TypeUInt32),
			field("MethodToken", model.TypeUInt32),
			field("MethodFlags", model.TypeUInt32),
			field("MethodNamespace", model.TypeNullTerminatedUtf16String),
			field("MethodName", model.TypeNullTerminatedUtf16String),
			field("MethodSignature", model.TypeNullTerminatedUtf16String),
			field("ClrInstanceID", model.TypeUInt16),
		},
	},
	// Microsoft-Windows-DotNETRuntimeRundown / ProcessMapping (spec §4.8
	// "process-mapping path", V6+). Event-id/version are this catalog's own
	// choice (not pinned by a golden scenario): the rundown provider emits
	// these alongside MethodDCEndVerbose on newer runtimes.
	{Provider: "Microsoft-Windows-DotNETRuntimeRundown", EventID: 145, Version: 0}: {
		EventName: "ProcessMapping",
		HasOpcode: false,
		Level:     model.LevelVerbose,
		Fields: []model.EventFieldDefinition{
			field("MappingID", model.TypeUInt64),
			field("RangeStart", model.TypeUInt64),
			field("RangeEnd", model.TypeUInt64),
			field("FileOffset", model.TypeUInt64),
			field("FileName", model.TypeNullTerminatedUtf16String),
		},
	},
	// Microsoft-Windows-DotNETRuntimeRundown / ProcessSymbol (spec §4.8,
	// V6+): one resolved symbol within a previously-registered mapping.
	{Provider: "Microsoft-Windows-DotNETRuntimeRundown", EventID: 146, Version: 0}: {
		EventName: "ProcessSymbol",
		HasOpcode: false,
		Level:     model.LevelVerbose,
		Fields: []model.EventFieldDefinition{
			field("MappingID", model.TypeUInt64),
			field("RangeStart", model.TypeUInt64),
			field("RangeEnd", model.TypeUInt64),
			field("Name", model.TypeNullTerminatedUtf16String),
		},
	},
}

// Lookup consults the catalog for (provider, event-id, version), per spec
// §4.5's "registry consults the catalog first" rule.
func Lookup(provider string, eventID, version int32) (Entry, bool) {
	e, ok := Catalog[Key{Provider: provider, EventID: eventID, Version: version}]
	return e, ok
}
