package slab

import (
	"math/bits"

	"github.com/cockroachdb/errors"

	"github.com/deploymenttheory/go-vdo/internal/interfaces"
	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// Summary entry flag bits. Each entry is two bytes: the tail block offset,
// then the flags and the 6-bit fullness hint.
const (
	summaryLoadRefCountsBit = 1 << 0
	summaryIsDirtyBit       = 1 << 1
	summaryHintShiftInByte  = 2
)

// SummarySize returns the total size of the slab summary partition for the
// given block size.
func SummarySize(blockSize int) types.BlockCount {
	entriesPerBlock := types.BlockCount(blockSize / 2)
	return (types.MaxSlabs / entriesPerBlock) * types.MaxPhysicalZones
}

// fullnessHint compresses a free block count into the 6 bits the summary
// entry carries for it.
func fullnessHint(freeBlocks, slabSize types.BlockCount) uint8 {
	shift := bits.Len64(uint64(slabSize)) - 1 - types.SlabSummaryFullnessShift
	if shift < 0 {
		shift = 0
	}
	return uint8(freeBlocks >> shift)
}

// WriteSummary seeds the slab summary partition at origin. Zone 0 carries
// one entry per slab, clean and fully free, with no reference counts to
// load; every other zone is zeroed.
func WriteSummary(layer interfaces.Layer, origin types.PhysicalBlockNumber,
	length types.BlockCount, slabCount types.SlabCount, config Config) error {

	if length != types.SlabSummaryBlocks {
		return errors.Wrapf(status.ErrOutOfRange,
			"slab summary partition is %d blocks, not %d",
			length, types.SlabSummaryBlocks)
	}
	if slabCount > types.MaxSlabs {
		return errors.Wrapf(status.ErrOutOfRange,
			"%d slabs exceed the maximum of %d", slabCount, types.MaxSlabs)
	}

	buf, err := layer.AllocateIOBuffer(int(length)*types.BlockSize, "slab summary")
	if err != nil {
		return err
	}

	hint := fullnessHint(config.DataBlocks, config.SlabBlocks)
	for i := types.SlabCount(0); i < slabCount; i++ {
		// Tail block offset zero, clean, hint for an empty slab.
		buf[i*2] = 0
		buf[i*2+1] = hint << summaryHintShiftInByte
	}

	if err := layer.Write(origin, length, buf); err != nil {
		return errors.Wrap(err, "cannot write slab summary")
	}
	return nil
}
