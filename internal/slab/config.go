// Package slab derives the per-slab metadata arithmetic and seeds the slab
// summary for a freshly formatted depot.
package slab

import (
	"math/bits"

	"github.com/cockroachdb/errors"

	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// Config describes how the blocks of one slab are split between data, the
// reference counts, and the slab journal. The journal and reference count
// regions live at the tail of each slab, so the data blocks are the leading
// contiguous region.
type Config struct {
	SlabBlocks           types.BlockCount
	DataBlocks           types.BlockCount
	ReferenceCountBlocks types.BlockCount
	SlabJournalBlocks    types.BlockCount

	// Journal occupancy thresholds, in journal blocks.
	SlabJournalFlushingThreshold  types.BlockCount
	SlabJournalBlockingThreshold  types.BlockCount
	SlabJournalScrubbingThreshold types.BlockCount
}

// referenceCountBlocks returns the number of blocks needed to hold one
// counter for each of blockCount blocks.
func referenceCountBlocks(blockCount types.BlockCount) types.BlockCount {
	return (blockCount + types.ReferenceCountsPerBlock - 1) / types.ReferenceCountsPerBlock
}

// Configure computes the slab configuration for the given slab size and
// journal size.
func Configure(slabSize, slabJournalBlocks types.BlockCount) (Config, error) {
	if slabSize < types.MinSlabBlocks || slabSize > types.MaxSlabBlocks ||
		bits.OnesCount64(uint64(slabSize)) != 1 {
		return Config{}, errors.Wrapf(status.ErrOutOfRange,
			"slab size %d must be a power of two between %d and %d",
			slabSize, types.MinSlabBlocks, types.MaxSlabBlocks)
	}
	if slabJournalBlocks < types.MinSlabJournalBlocks {
		return Config{}, errors.Wrapf(status.ErrOutOfRange,
			"slab journal of %d blocks is smaller than the minimum %d",
			slabJournalBlocks, types.MinSlabJournalBlocks)
	}
	if slabJournalBlocks >= slabSize/2 {
		return Config{}, errors.Wrapf(status.ErrOutOfRange,
			"slab journal of %d blocks must be less than half the slab size %d",
			slabJournalBlocks, slabSize)
	}

	refBlocks := referenceCountBlocks(slabSize - slabJournalBlocks)
	metaBlocks := slabJournalBlocks + refBlocks
	if metaBlocks >= slabSize {
		return Config{}, errors.Wrapf(status.ErrOutOfRange,
			"slab of %d blocks has no room for data after %d metadata blocks",
			slabSize, metaBlocks)
	}

	// Flush before the journal fills, block writers shortly before it is
	// full, and scrub in between.
	flushing := (slabJournalBlocks * 3) / 4
	remaining := slabJournalBlocks - flushing
	blocking := flushing + (remaining*5)/7
	scrubbing := blocking + remaining/7

	return Config{
		SlabBlocks:                    slabSize,
		DataBlocks:                    slabSize - metaBlocks,
		ReferenceCountBlocks:          refBlocks,
		SlabJournalBlocks:             slabJournalBlocks,
		SlabJournalFlushingThreshold:  flushing,
		SlabJournalBlockingThreshold:  blocking,
		SlabJournalScrubbingThreshold: scrubbing,
	}, nil
}
