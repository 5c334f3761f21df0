// Package layout carves the data region into the fixed partition table the
// volume runs on: block map, block allocator, recovery journal, and slab
// summary, in that order, contiguous and non-overlapping.
package layout

import (
	"github.com/cockroachdb/errors"

	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// PartitionID identifies one partition of the layout.
type PartitionID uint32

const (
	BlockMapPartition PartitionID = iota
	BlockAllocatorPartition
	RecoveryJournalPartition
	SlabSummaryPartition

	partitionCount
)

var partitionNames = [partitionCount]string{
	"block map",
	"block allocator",
	"recovery journal",
	"slab summary",
}

func (id PartitionID) String() string {
	if id >= partitionCount {
		return "unknown"
	}
	return partitionNames[id]
}

// Partition is one contiguous extent of the layout.
type Partition struct {
	ID     PartitionID
	Offset types.PhysicalBlockNumber
	Length types.BlockCount
}

// VDOLayout is the partition table of a volume's data region. It is derived
// from the geometry and the format configuration rather than stored as a
// disk block of its own.
type VDOLayout struct {
	FirstBlock types.PhysicalBlockNumber
	LastBlock  types.PhysicalBlockNumber
	Partitions [partitionCount]Partition
}

// Make carves the four partitions from [startingOffset, physicalBlocks).
// The block allocator receives everything not claimed by the other three,
// rounded down to a whole number of slabs of slabSize blocks.
func Make(physicalBlocks types.BlockCount, startingOffset types.PhysicalBlockNumber,
	blockMapBlocks, journalBlocks, summaryBlocks, slabSize types.BlockCount) (*VDOLayout, error) {

	if types.BlockCount(startingOffset) >= physicalBlocks {
		return nil, errors.Wrapf(status.ErrOutOfRange,
			"layout offset %d is beyond the %d block device",
			startingOffset, physicalBlocks)
	}
	if blockMapBlocks == 0 || journalBlocks == 0 || summaryBlocks == 0 {
		return nil, errors.Wrap(status.ErrOutOfRange,
			"every partition must hold at least one block")
	}

	available := physicalBlocks - types.BlockCount(startingOffset)
	fixed := blockMapBlocks + journalBlocks + summaryBlocks
	if fixed >= available {
		return nil, errors.Wrapf(status.ErrOutOfRange,
			"%d blocks of fixed partitions leave no allocator space in %d",
			fixed, available)
	}

	allocatorBlocks := ((available - fixed) / slabSize) * slabSize
	if allocatorBlocks == 0 {
		return nil, errors.Wrapf(status.ErrOutOfRange,
			"%d remaining blocks cannot hold a slab of %d",
			available-fixed, slabSize)
	}

	l := &VDOLayout{FirstBlock: startingOffset}
	offset := startingOffset
	for _, p := range []struct {
		id     PartitionID
		length types.BlockCount
	}{
		{BlockMapPartition, blockMapBlocks},
		{BlockAllocatorPartition, allocatorBlocks},
		{RecoveryJournalPartition, journalBlocks},
		{SlabSummaryPartition, summaryBlocks},
	} {
		l.Partitions[p.id] = Partition{ID: p.id, Offset: offset, Length: p.length}
		offset += types.PhysicalBlockNumber(p.length)
	}
	l.LastBlock = offset

	return l, nil
}

// Partition returns the partition with the given ID.
func (l *VDOLayout) Partition(id PartitionID) (Partition, error) {
	if id >= partitionCount {
		return Partition{}, errors.Wrapf(status.ErrOutOfRange,
			"no partition with ID %d", id)
	}
	return l.Partitions[id], nil
}
