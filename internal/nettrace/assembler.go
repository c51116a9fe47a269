// Package nettrace decodes .NET EventPipe "Nettrace" trace streams into an
// in-memory model.Trace. Read is the single entry point; everything else in
// this package wires together the sub-parsers in internal/nettrace/{reader,
// parser,registry,builtin} behind one top-level object-stream state machine.
package nettrace

import (
	"fmt"
	"io"
	"os"

	"github.com/mabhi256/nettrace/internal/nettrace/model"
	"github.com/mabhi256/nettrace/internal/nettrace/parser"
	"github.com/mabhi256/nettrace/internal/nettrace/reader"
	"github.com/mabhi256/nettrace/internal/nettrace/registry"
)

// Read decodes a complete Nettrace stream from r and returns the
// materialized Trace, or an error if the stream is structurally invalid
// (spec §6, §7). No partial Trace is ever returned.
func Read(r io.Reader, opts ...Option) (*model.Trace, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	total := int64(-1)
	if f, ok := r.(*os.File); ok {
		if stat, err := f.Stat(); err == nil {
			total = stat.Size()
		}
	}

	a := &assembler{
		br:       reader.New(r),
		cfg:      cfg,
		totalLen: total,
		metas:    registry.NewMetadataRegistry(),
		stacks:   registry.NewStackIndex(),
		symbols:  registry.NewSymbolTable(),
		decoder:  parser.NewEventHeaderDecoder(),
	}
	a.cd = parser.NewContainerDecoder(a.br)

	if err := a.run(); err != nil {
		return nil, err
	}
	return a.finalize(), nil
}

// assembler holds the mutable state threaded through one decode (spec §4.9,
// §5 "the decoder owns all mutable state; nothing is shared across tasks").
type assembler struct {
	br       *reader.BitStreamReader
	cd       *parser.ContainerDecoder
	cfg      *config
	totalLen int64

	metas   *registry.MetadataRegistry
	stacks  *registry.StackIndex
	symbols *registry.SymbolTable
	decoder *parser.EventHeaderDecoder

	traceMeta *model.TraceMetadata
	events    []*model.Event
}

// run drives the top-level state machine from spec §4.9: Init ->
// ExpectingObject -> InObjectHeader -> InObjectBody(kind) ->
// ExpectingEndObject -> ... -> Done (on a top-level NullReference).
func (a *assembler) run() error {
	if err := a.cd.VerifyMagic(); err != nil {
		return err
	}

	for {
		tag, err := a.cd.ReadTag()
		if err != nil {
			return err
		}

		switch tag {
		case model.TagNullReference:
			return nil // Done

		case model.TagBeginPrivateObject:
			header, err := a.cd.ReadObjectHeader()
			if err != nil {
				return err
			}
			if err := a.decodeObjectBody(header); err != nil {
				return fmt.Errorf("object %q: %w", header.TypeName, err)
			}
			if err := a.cd.ExpectEndObject(); err != nil {
				return err
			}
			a.cfg.reportProgress(a.br.Position(), a.totalLen)

		default:
			return model.Errorf(model.StructuralViolation, "unexpected top-level tag %s", tag)
		}
	}
}

// decodeObjectBody dispatches on the object's type-descriptor kind,
// producing the InObjectBody(kind) transitions of the spec §4.9 table.
func (a *assembler) decodeObjectBody(header parser.ObjectHeader) error {
	switch header.Kind {
	case model.ObjectTrace:
		meta, err := parser.ParseTraceMetadata(a.br)
		if err != nil {
			return err
		}
		a.traceMeta = meta
		return nil

	case model.ObjectEventBlock:
		// Compressed headers delta-encode against the block's own previous
		// header, so each block starts from a zeroed state.
		a.decoder.ResetOnSequencePoint()
		return a.decodeEventBlock()

	case model.ObjectMetadataBlock:
		a.decoder.ResetOnSequencePoint()
		return a.decodeMetadataBlock()

	case model.ObjectStackBlock:
		return a.decodeStackBlock()

	case model.ObjectSPBlock:
		return a.decodeSPBlock()

	default:
		return a.cd.SkipUnknownObject()
	}
}

func (a *assembler) decodeEventBlock() error {
	env, err := parser.OpenBlock(a.br)
	if err != nil {
		return err
	}
	blockHeader, err := parser.ParseEventBlockHeader(a.br)
	if err != nil {
		return err
	}

	before := len(a.events)
	if err := parser.ParseEventBlockBody(a.br, blockHeader, env.BodyEnd, a.decoder, a.metas, &a.events); err != nil {
		return err
	}
	for _, e := range a.events[before:] {
		feedSymbolTable(e.Metadata, e.Payload, a.symbols, a.cfg)
	}

	return parser.CloseBlock(a.br, env)
}

func (a *assembler) decodeMetadataBlock() error {
	env, err := parser.OpenBlock(a.br)
	if err != nil {
		return err
	}
	blockHeader, err := parser.ParseEventBlockHeader(a.br)
	if err != nil {
		return err
	}
	if err := parser.ParseMetadataBlockBody(a.br, blockHeader, env.BodyEnd, a.decoder, a.metas); err != nil {
		return err
	}
	return parser.CloseBlock(a.br, env)
}

func (a *assembler) decodeStackBlock() error {
	if a.traceMeta == nil {
		return model.Errorf(model.StructuralViolation, "stack block encountered before the Trace object")
	}

	env, err := parser.OpenBlock(a.br)
	if err != nil {
		return err
	}
	stackHeader, err := parser.ParseStackBlockHeader(a.br)
	if err != nil {
		return err
	}
	if err := parser.ParseStackBlockBody(a.br, stackHeader, a.traceMeta.PointerSize, a.stacks); err != nil {
		return err
	}
	return parser.CloseBlock(a.br, env)
}

func (a *assembler) decodeSPBlock() error {
	env, err := parser.OpenBlock(a.br)
	if err != nil {
		return err
	}
	if _, err := parser.ParseSPBlockBody(a.br); err != nil {
		return err
	}
	a.decoder.ResetOnSequencePoint()
	return parser.CloseBlock(a.br, env)
}

// finalize runs the Done-state work: sort symbols, resolve stacks, and
// materialize the immutable Trace (spec §4.9).
func (a *assembler) finalize() *model.Trace {
	a.symbols.Finalize()
	stacks := a.stacks.Resolve(a.symbols)

	for _, e := range a.events {
		e.StackTrace = a.stacks.StackTraceFor(e.StackIndex)
	}

	var meta model.TraceMetadata
	if a.traceMeta != nil {
		meta = *a.traceMeta
	}

	a.cfg.debugf("decoded %d events, %d distinct metadata, %d distinct stacks",
		len(a.events), len(a.metas.Distinct()), len(stacks))

	return &model.Trace{
		Metadata: meta,
		Events:   a.events,
		Metas:    a.metas.Distinct(),
		Stacks:   stacks,
	}
}
