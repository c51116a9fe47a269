package model

// EventFieldDefinition describes one field of an event's payload schema
// (spec §3). ArrayElementType is meaningful iff Type == TypeArray;
// SubFields is meaningful iff Type == TypeObject.
type EventFieldDefinition struct {
	Name             string
	Type             TypeCode
	ArrayElementType TypeCode
	SubFields        []EventFieldDefinition
}

// EventMetadata is a schema record keyed by a stream-local metadata-id
// (spec §3). Two records may share (Provider, EventID) across versions;
// metadata-id itself is bound exactly once within a trace.
type EventMetadata struct {
	MetadataID int32
	Provider   string
	EventID    int32
	EventName  string
	Keywords   uint64
	Version    int32
	Level      Level
	Opcode     Opcode
	HasOpcode  bool
	Fields     []EventFieldDefinition
}

// MetadataKey is the (provider, event-id) identity consumers key call-tree/filter
// logic on (spec §9 "Polymorphism across aggregators").
type MetadataKey struct {
	Provider string
	EventID  int32
}

func (m *EventMetadata) Key() MetadataKey {
	return MetadataKey{Provider: m.Provider, EventID: m.EventID}
}

// Event is one decoded trace record (spec §3). StackTrace is nil until
// TraceAssembler's finalization pass resolves it; StackIndex remains valid
// throughout (it is the pre-resolution weak reference).
type Event struct {
	Index             int
	SequenceNumber    int32
	CaptureThreadID   int64
	ThreadID          int64
	StackIndex        int32
	TimeStamp         int64
	ActivityID        Guid
	RelatedActivityID Guid
	Payload           map[string]Value
	PayloadOrder      []string // field names, in schema definition order
	Metadata          *EventMetadata
	StackTrace        *StackTrace
}

// OrderedPayload returns the event's payload values in schema field order,
// for consumers that want to iterate deterministically rather than range
// over the map directly.
func (e *Event) OrderedPayload() []Value {
	vals := make([]Value, len(e.PayloadOrder))
	for i, name := range e.PayloadOrder {
		vals[i] = e.Payload[name]
	}
	return vals
}
