package parser

import (
	"fmt"

	"github.com/mabhi256/nettrace/internal/nettrace/reader"
	"github.com/mabhi256/nettrace/internal/nettrace/registry"
)

/*
ParseStackBlockBody parses the packed stack sequence in a StackBlock body
(spec §4.7). Given header.FirstStackID = F and header.StackCount = C, the
block provides C stacks with dense ids F, F+1, ..., F+C-1. Each stack is:

	u4      size S (bytes)
	[addr]* (S / pointerSize) little-endian addresses
*/
func ParseStackBlockBody(r *reader.BitStreamReader, header *StackBlockHeader, pointerSize int32, stacks *registry.StackIndex) error {
	for i := int32(0); i < header.StackCount; i++ {
		stackID := header.FirstStackID + i

		size, err := r.ReadU32LE()
		if err != nil {
			return fmt.Errorf("stack %d size: %w", stackID, err)
		}

		count := int(size) / int(pointerSize)
		addresses := make([]uint64, count)
		for j := 0; j < count; j++ {
			var addr uint64
			if pointerSize == 4 {
				v, err := r.ReadU32LE()
				if err != nil {
					return fmt.Errorf("stack %d address %d: %w", stackID, j, err)
				}
				addr = uint64(v)
			} else {
				v, err := r.ReadU64LE()
				if err != nil {
					return fmt.Errorf("stack %d address %d: %w", stackID, j, err)
				}
				addr = v
			}
			addresses[j] = addr
		}

		stacks.AddStack(stackID, addresses)
	}
	return nil
}
