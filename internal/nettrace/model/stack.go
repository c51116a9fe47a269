package model

import "fmt"

// MethodDescription is both a symbol-table entry (an address range) and a
// resolved frame within a StackTrace (spec §3).
type MethodDescription struct {
	Name      string
	Namespace string
	Signature string
	Address   uint64
	Size      uint64
}

func (m MethodDescription) String() string {
	if m.Namespace != "" {
		return fmt.Sprintf("%s.%s%s", m.Namespace, m.Name, m.Signature)
	}
	return m.Name
}

// UnresolvedFrame is the sentinel frame substituted when an address has no
// matching symbol-table entry (spec §4.8); it still occupies a slot in the
// resolved stack.
var UnresolvedFrame = MethodDescription{Name: "??"}

// StackTrace is a dense, trace-unique index plus its resolved frames. It is
// immutable once constructed and shared by identity across every event that
// referenced the same stack-id (spec invariant 2).
type StackTrace struct {
	Index  int32
	Frames []MethodDescription
}

// EmptyStack is the sentinel stack for events with no captured call stack
// (spec §3, index -1).
var EmptyStack = &StackTrace{Index: EmptyStackIndex}
