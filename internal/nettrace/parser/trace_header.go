package parser

import (
	"fmt"

	"github.com/mabhi256/nettrace/internal/nettrace/model"
	"github.com/mabhi256/nettrace/internal/nettrace/reader"
)

/*
ParseTraceMetadata decodes the Trace object body (spec §4.2):

	i2   Year
	i2   Month
	i2   DayOfWeek (ignored)
	i2   Day
	i2   Hour
	i2   Minute
	i2   Second
	i2   Millisecond
	i8   QpcSyncTime
	i8   QpcFrequency
	i4   PointerSize (4 or 8)
	i4   ProcessId
	i4   NumberOfProcessors
	i4   CpuSamplingRate
*/
func ParseTraceMetadata(r *reader.BitStreamReader) (*model.TraceMetadata, error) {
	var d model.DateTime
	var err error

	if d.Year, err = r.ReadI16LE(); err != nil {
		return nil, fmt.Errorf("trace year: %w", err)
	}
	if d.Month, err = r.ReadI16LE(); err != nil {
		return nil, fmt.Errorf("trace month: %w", err)
	}
	if d.DayOfWeek, err = r.ReadI16LE(); err != nil {
		return nil, fmt.Errorf("trace day-of-week: %w", err)
	}
	if d.Day, err = r.ReadI16LE(); err != nil {
		return nil, fmt.Errorf("trace day: %w", err)
	}
	if d.Hour, err = r.ReadI16LE(); err != nil {
		return nil, fmt.Errorf("trace hour: %w", err)
	}
	if d.Minute, err = r.ReadI16LE(); err != nil {
		return nil, fmt.Errorf("trace minute: %w", err)
	}
	if d.Second, err = r.ReadI16LE(); err != nil {
		return nil, fmt.Errorf("trace second: %w", err)
	}
	if d.Millisecond, err = r.ReadI16LE(); err != nil {
		return nil, fmt.Errorf("trace millisecond: %w", err)
	}

	m := &model.TraceMetadata{Date: d}

	if m.QpcSyncTime, err = r.ReadI64LE(); err != nil {
		return nil, fmt.Errorf("trace qpc sync time: %w", err)
	}
	if m.QpcFrequency, err = r.ReadI64LE(); err != nil {
		return nil, fmt.Errorf("trace qpc frequency: %w", err)
	}
	if m.PointerSize, err = r.ReadI32LE(); err != nil {
		return nil, fmt.Errorf("trace pointer size: %w", err)
	}
	if m.PointerSize != 4 && m.PointerSize != 8 {
		return nil, model.Errorf(model.StructuralViolation, "invalid pointer size: %d", m.PointerSize)
	}
	if m.ProcessID, err = r.ReadI32LE(); err != nil {
		return nil, fmt.Errorf("trace process id: %w", err)
	}
	if m.NumberOfProcessors, err = r.ReadI32LE(); err != nil {
		return nil, fmt.Errorf("trace number of processors: %w", err)
	}
	if m.CpuSamplingRate, err = r.ReadI32LE(); err != nil {
		return nil, fmt.Errorf("trace cpu sampling rate: %w", err)
	}

	return m, nil
}
