package slab

import (
	"github.com/deploymenttheory/go-vdo/internal/codec"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// DepotState is the slab depot component persisted in the super block.
type DepotState struct {
	FirstBlock types.PhysicalBlockNumber
	LastBlock  types.PhysicalBlockNumber
	ZoneCount  types.ZoneCount
	SlabCount  types.SlabCount
	SlabConfig Config
}

// encodedDepotStateSize is the size of the depot state after its header:
// two block numbers, the zone count, the slab count, and seven config
// fields.
const encodedDepotStateSize = 8 + 8 + 4 + 8 + 7*8

// DepotStateHeader is the versioned header the depot state is written under.
var DepotStateHeader = codec.Header{
	ID:      types.ComponentSlabDepot,
	Version: codec.VersionNumber{Major: 2, Minor: 0},
	Size:    encodedDepotStateSize,
}

// Encode writes the depot state, header first, to w.
func (d *DepotState) Encode(w *codec.Writer) {
	DepotStateHeader.Encode(w)
	w.PutUint64(uint64(d.FirstBlock))
	w.PutUint64(uint64(d.LastBlock))
	w.PutUint32(uint32(d.ZoneCount))
	w.PutUint64(uint64(d.SlabCount))
	w.PutUint64(uint64(d.SlabConfig.SlabBlocks))
	w.PutUint64(uint64(d.SlabConfig.DataBlocks))
	w.PutUint64(uint64(d.SlabConfig.ReferenceCountBlocks))
	w.PutUint64(uint64(d.SlabConfig.SlabJournalBlocks))
	w.PutUint64(uint64(d.SlabConfig.SlabJournalFlushingThreshold))
	w.PutUint64(uint64(d.SlabConfig.SlabJournalBlockingThreshold))
	w.PutUint64(uint64(d.SlabConfig.SlabJournalScrubbingThreshold))
}

// DecodeDepotState reads a depot state, validating its header.
func DecodeDepotState(r *codec.Reader) (DepotState, error) {
	header := codec.DecodeHeader(r)
	if err := codec.ValidateHeader(DepotStateHeader, header, true, "slab depot"); err != nil {
		return DepotState{}, err
	}
	d := DepotState{
		FirstBlock: types.PhysicalBlockNumber(r.Uint64()),
		LastBlock:  types.PhysicalBlockNumber(r.Uint64()),
		ZoneCount:  types.ZoneCount(r.Uint32()),
		SlabCount:  types.SlabCount(r.Uint64()),
		SlabConfig: Config{
			SlabBlocks:                    types.BlockCount(r.Uint64()),
			DataBlocks:                    types.BlockCount(r.Uint64()),
			ReferenceCountBlocks:          types.BlockCount(r.Uint64()),
			SlabJournalBlocks:             types.BlockCount(r.Uint64()),
			SlabJournalFlushingThreshold:  types.BlockCount(r.Uint64()),
			SlabJournalBlockingThreshold:  types.BlockCount(r.Uint64()),
			SlabJournalScrubbingThreshold: types.BlockCount(r.Uint64()),
		},
	}
	return d, r.Err()
}
