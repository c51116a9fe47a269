package registry

import (
	"github.com/mabhi256/nettrace/internal/nettrace/builtin"
	"github.com/mabhi256/nettrace/internal/nettrace/model"
)

// MetadataRegistry catalogs event schemas by metadata-id, merging
// schemas read from the file with the built-in catalog (spec §4.5).
type MetadataRegistry struct {
	byID   *BaseRegistry[int32, *model.EventMetadata]
	distinct []*model.EventMetadata // first-seen order, for Trace.Metas
}

func NewMetadataRegistry() *MetadataRegistry {
	return &MetadataRegistry{byID: NewBaseRegistry[int32, *model.EventMetadata]()}
}

// Register binds a metadata-id to a schema read from the file, consulting
// the built-in catalog first: a matching catalog entry's name/opcode/field
// list always wins over the file-supplied one (spec §4.5, Open Question
// resolved catalog-wins per DESIGN.md).
//
// Invariant (spec §3): a metadata-id is bound exactly once; re-registering
// an id that already has a schema is a StructuralViolation.
func (r *MetadataRegistry) Register(meta *model.EventMetadata) error {
	if _, exists := r.byID.Get(meta.MetadataID); exists {
		return model.Errorf(model.StructuralViolation,
			"metadata-id %d registered more than once", meta.MetadataID)
	}

	if entry, ok := builtin.Lookup(meta.Provider, meta.EventID, meta.Version); ok {
		meta.EventName = entry.EventName
		meta.Opcode = entry.Opcode
		meta.HasOpcode = entry.HasOpcode
		meta.Fields = entry.Fields
	}

	r.byID.Add(meta.MetadataID, meta)
	r.distinct = append(r.distinct, meta)
	return nil
}

// Lookup returns the schema bound to metadata-id, or (nil, false) if none
// has been registered (spec §4.4 invariant: callers must turn this into
// MissingSchema).
func (r *MetadataRegistry) Lookup(metadataID int32) (*model.EventMetadata, bool) {
	return r.byID.Get(metadataID)
}

// Distinct returns every registered schema in first-registered order, for
// Trace.Metas.
func (r *MetadataRegistry) Distinct() []*model.EventMetadata {
	out := make([]*model.EventMetadata, len(r.distinct))
	copy(out, r.distinct)
	return out
}
