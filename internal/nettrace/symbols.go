package nettrace

import (
	"github.com/mabhi256/nettrace/internal/nettrace/model"
	"github.com/mabhi256/nettrace/internal/nettrace/registry"
)

// feedSymbolTable routes rundown and process-mapping/process-symbol events
// into the symbol table as they're decoded (spec §4.8). Events with any
// other name pass through untouched; this is not part of the generic
// payload pipeline, just an extra look at certain well-known event names
// after PayloadParser has already produced their values.
func feedSymbolTable(meta *model.EventMetadata, values map[string]model.Value, symbols *registry.SymbolTable, cfg *config) {
	switch meta.EventName {
	case "MethodDCEndVerbose":
		symbols.AddRundownMethod(
			values["MethodName"].Str,
			values["MethodNamespace"].Str,
			values["MethodSignature"].Str,
			values["MethodStartAddress"].U,
			values["MethodSize"].U,
		)

	case "ProcessMapping":
		symbols.AddProcessMapping(
			values["MappingID"].U,
			values["RangeStart"].U,
			values["RangeEnd"].U,
			values["FileOffset"].U,
			values["FileName"].Str,
		)

	case "ProcessSymbol":
		if err := symbols.AddProcessSymbol(
			values["MappingID"].U,
			values["RangeStart"].U,
			values["RangeEnd"].U,
			values["Name"].Str,
		); err != nil {
			// SymbolDomain is the one documented soft failure (spec §7): the
			// symbol is dropped, decoding continues.
			cfg.debugf("dropped process symbol: %v", err)
		}
	}
}
