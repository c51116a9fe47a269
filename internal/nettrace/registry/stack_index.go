package registry

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/mabhi256/nettrace/internal/nettrace/model"
)

// stackClass is one equivalence class of identical address vectors (spec
// §4.7): every stack-id whose addresses compare equal shares one of these,
// and in turn shares one *model.StackTrace object once resolved.
type stackClass struct {
	addresses []uint64
	trace     *model.StackTrace // filled by Resolve
}

// StackIndex interns stack traces by address-vector identity (spec §4.7).
// Traces routinely carry tens of thousands of identical stacks, so instead
// of keying a map by the stringified address vector (an allocation+copy
// per stack just to intern it), addresses are hashed with xxhash the way
// arloliu/mebo content-hashes encoded blobs; hash collisions are resolved
// by an equality check against the (short) list of address vectors already
// seen for that hash.
type StackIndex struct {
	byStackID map[int32]*stackClass
	buckets   map[uint64][]*stackClass
	classes   []*stackClass // first-seen order; becomes Trace.Stacks after Resolve
}

func NewStackIndex() *StackIndex {
	return &StackIndex{
		byStackID: make(map[int32]*stackClass),
		buckets:   make(map[uint64][]*stackClass),
	}
}

func hashAddresses(addrs []uint64) uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, a := range addrs {
		binary.LittleEndian.PutUint64(buf[:], a)
		h.Write(buf[:])
	}
	return h.Sum64()
}

func equalAddresses(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AddStack registers the address vector for stack-id, interning it against
// any previously-seen identical vector.
func (s *StackIndex) AddStack(stackID int32, addresses []uint64) {
	h := hashAddresses(addresses)
	for _, c := range s.buckets[h] {
		if equalAddresses(c.addresses, addresses) {
			s.byStackID[stackID] = c
			return
		}
	}
	c := &stackClass{addresses: addresses}
	s.buckets[h] = append(s.buckets[h], c)
	s.classes = append(s.classes, c)
	s.byStackID[stackID] = c
}

// Resolve builds the final StackTrace for every interned class by looking
// up each address in symbols, assigning dense indices in first-seen class
// order, and returns the distinct StackTrace list for Trace.Stacks.
func (s *StackIndex) Resolve(symbols *SymbolTable) []*model.StackTrace {
	out := make([]*model.StackTrace, len(s.classes))
	for i, c := range s.classes {
		frames := make([]model.MethodDescription, len(c.addresses))
		for j, addr := range c.addresses {
			frames[j] = symbols.Lookup(addr)
		}
		c.trace = &model.StackTrace{Index: int32(i), Frames: frames}
		out[i] = c.trace
	}
	return out
}

// StackTraceFor returns the resolved StackTrace for stackID. Must be
// called after Resolve. Unknown stack-ids (never registered via AddStack)
// resolve to EmptyStack, matching events with no captured stack.
func (s *StackIndex) StackTraceFor(stackID int32) *model.StackTrace {
	if stackID == model.EmptyStackIndex {
		return model.EmptyStack
	}
	c, ok := s.byStackID[stackID]
	if !ok || c.trace == nil {
		return model.EmptyStack
	}
	return c.trace
}
