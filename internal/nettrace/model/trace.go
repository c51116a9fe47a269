package model

import "time"

// TraceMetadata is the root Trace object body decoded per spec §4.2.
type TraceMetadata struct {
	Date                DateTime
	QpcSyncTime         int64
	QpcFrequency        int64
	PointerSize         int32
	ProcessID           int32
	NumberOfProcessors  int32
	CpuSamplingRate     int32
}

// Time converts the capture DateTime into a time.Time, for consumers that
// want to compare against wall-clock values.
func (m TraceMetadata) Time() time.Time {
	d := m.Date
	return time.Date(int(d.Year), time.Month(d.Month), int(d.Day),
		int(d.Hour), int(d.Minute), int(d.Second), int(d.Millisecond)*1_000_000, time.UTC)
}

// Trace is the root, immutable result of a decode (spec §3). It is created
// once by the assembler and never mutated afterward.
type Trace struct {
	Metadata TraceMetadata
	Events   []*Event
	Metas    []*EventMetadata // distinct EventMetadata observed, in first-seen order
	Stacks   []*StackTrace    // distinct StackTrace objects, in first-seen order (excludes EmptyStack)
}
