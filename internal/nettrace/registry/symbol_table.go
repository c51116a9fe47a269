package registry

import (
	"sort"

	"github.com/mabhi256/nettrace/internal/nettrace/model"
)

// mapping is a V6+ ProcessMapping memory region (spec §4.8).
type mapping struct {
	start      uint64
	end        uint64
	fileOffset uint64
	fileName   string
}

// SymbolTable collects method symbols from rundown events and from
// process-mapping/process-symbol pairs, and supports address->symbol
// lookup via binary search once sorted (spec §4.8).
type SymbolTable struct {
	entries  []model.MethodDescription // unsorted until Finalize
	mappings map[uint64]mapping         // V6+ mapping-id -> region
	sorted   bool
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{mappings: make(map[uint64]mapping)}
}

// AddRundownMethod adds one entry from a MethodDCEndVerbose event
// (pre-V6 rundown path, spec §4.8).
func (s *SymbolTable) AddRundownMethod(name, namespace, signature string, startAddress, size uint64) {
	s.entries = append(s.entries, model.MethodDescription{
		Name:      name,
		Namespace: namespace,
		Signature: signature,
		Address:   startAddress,
		Size:      size,
	})
	s.sorted = false
}

// AddProcessMapping registers a V6+ memory region keyed by mapping-id
// (spec §4.8).
func (s *SymbolTable) AddProcessMapping(mappingID, start, end, fileOffset uint64, fileName string) {
	s.mappings[mappingID] = mapping{start: start, end: end, fileOffset: fileOffset, fileName: fileName}
}

// AddProcessSymbol adds an entry from a V6+ ProcessSymbol event, whose
// namespace is the owning mapping's file name. A reference to an unknown
// mapping-id is a SymbolDomain soft failure: the symbol is dropped and the
// caller should continue parsing (spec §4.8, §7).
func (s *SymbolTable) AddProcessSymbol(mappingID, start, end uint64, name string) error {
	m, ok := s.mappings[mappingID]
	if !ok {
		return model.Errorf(model.SymbolDomain, "process symbol references unknown mapping-id %d", mappingID)
	}
	s.entries = append(s.entries, model.MethodDescription{
		Name:      name,
		Namespace: m.fileName,
		Address:   start,
		Size:      end - start,
	})
	s.sorted = false
	return nil
}

// Finalize sorts entries by start address; must be called before Lookup.
func (s *SymbolTable) Finalize() {
	sort.Slice(s.entries, func(i, j int) bool { return s.entries[i].Address < s.entries[j].Address })
	s.sorted = true
}

// Lookup resolves an address to the greatest entry with start <= address
// that also satisfies address < start+size, i.e. a method occupies the
// half-open range [start, start+size) (spec §4.8). Non-matches resolve to
// the "??" sentinel frame but still occupy a slot in the resolved stack.
func (s *SymbolTable) Lookup(address uint64) model.MethodDescription {
	if !s.sorted || len(s.entries) == 0 {
		return model.UnresolvedFrame
	}

	// Greatest index with entries[i].Address <= address.
	i := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].Address > address
	}) - 1

	if i < 0 {
		return model.UnresolvedFrame
	}

	e := s.entries[i]
	if address < e.Address+e.Size {
		return e
	}
	return model.UnresolvedFrame
}
