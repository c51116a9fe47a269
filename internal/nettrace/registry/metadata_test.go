package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mabhi256/nettrace/internal/nettrace/model"
)

func TestMetadataRegistry_CatalogOverridesFileSuppliedSchema(t *testing.T) {
	r := NewMetadataRegistry()

	// A file-supplied schema for TaskWaitBegin with a deliberately wrong
	// name and no fields -- the catalog entry must win.
	meta := &model.EventMetadata{
		MetadataID: 1,
		Provider:   "System.Threading.Tasks.TplEventSource",
		EventID:    10,
		EventName:  "WrongName",
		Version:    3,
	}
	require.NoError(t, r.Register(meta))

	got, ok := r.Lookup(1)
	require.True(t, ok)
	require.Equal(t, "TaskWaitBegin", got.EventName)
	require.NotEmpty(t, got.Fields)
}

func TestMetadataRegistry_DuplicateMetadataIDIsStructuralViolation(t *testing.T) {
	r := NewMetadataRegistry()
	first := &model.EventMetadata{MetadataID: 5, Provider: "P", EventID: 1}
	require.NoError(t, r.Register(first))

	second := &model.EventMetadata{MetadataID: 5, Provider: "P", EventID: 2}
	err := r.Register(second)
	require.Error(t, err)

	var kindErr *model.Error
	require.ErrorAs(t, err, &kindErr)
	require.Equal(t, model.StructuralViolation, kindErr.Kind)
}

func TestMetadataRegistry_LookupUnknownIDFails(t *testing.T) {
	r := NewMetadataRegistry()
	_, ok := r.Lookup(42)
	require.False(t, ok)
}

func TestMetadataRegistry_DistinctPreservesFirstSeenOrder(t *testing.T) {
	r := NewMetadataRegistry()
	require.NoError(t, r.Register(&model.EventMetadata{MetadataID: 2, Provider: "P", EventID: 2, EventName: "Second"}))
	require.NoError(t, r.Register(&model.EventMetadata{MetadataID: 1, Provider: "P", EventID: 1, EventName: "First"}))

	distinct := r.Distinct()
	require.Len(t, distinct, 2)
	require.Equal(t, int32(2), distinct[0].MetadataID)
	require.Equal(t, int32(1), distinct[1].MetadataID)
}
