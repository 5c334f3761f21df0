// Package vdo drives the format and reconfigure operations: it validates
// the configuration, plans the layout, and sequences the writes that
// produce a loadable volume.
package vdo

import (
	"github.com/cockroachdb/errors"

	"github.com/deploymenttheory/go-vdo/internal/blockmap"
	"github.com/deploymenttheory/go-vdo/internal/geometry"
	"github.com/deploymenttheory/go-vdo/internal/layout"
	"github.com/deploymenttheory/go-vdo/internal/slab"
	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// Config is the configuration surface the format driver accepts.
type Config struct {
	// PhysicalBlocks must equal the device's block count when set; zero
	// means "use the device".
	PhysicalBlocks types.BlockCount

	// LogicalBlocks is the logical capacity; zero means "derive the
	// maximum the device supports".
	LogicalBlocks types.BlockCount

	// SlabSize is the size of each slab, a power of two block count.
	SlabSize types.BlockCount

	// SlabJournalBlocks is the per-slab journal size.
	SlabJournalBlocks types.BlockCount

	// RecoveryJournalSize is the recovery journal partition size.
	RecoveryJournalSize types.BlockCount

	// Index configures the dedup index region; nil formats without one.
	Index *geometry.IndexConfig
}

// validate checks the configuration against the device size and fills in
// PhysicalBlocks when it was left as "use the device". The returned slab
// config is reused by the caller.
func (c *Config) validate(deviceBlocks types.BlockCount) (slab.Config, error) {
	if c.PhysicalBlocks == 0 {
		c.PhysicalBlocks = deviceBlocks
	} else if c.PhysicalBlocks != deviceBlocks {
		return slab.Config{}, errors.Wrapf(status.ErrOutOfRange,
			"configured physical size %d does not match the %d block device",
			c.PhysicalBlocks, deviceBlocks)
	}

	slabConfig, err := slab.Configure(c.SlabSize, c.SlabJournalBlocks)
	if err != nil {
		return slab.Config{}, err
	}

	if c.RecoveryJournalSize < types.MinRecoveryJournalBlocks {
		return slab.Config{}, errors.Wrapf(status.ErrOutOfRange,
			"recovery journal of %d blocks is smaller than the minimum %d",
			c.RecoveryJournalSize, types.MinRecoveryJournalBlocks)
	}
	if c.LogicalBlocks > types.MaxLogicalBlocks {
		return slab.Config{}, errors.Wrapf(status.ErrOutOfRange,
			"logical size %d exceeds the maximum %d",
			c.LogicalBlocks, types.MaxLogicalBlocks)
	}

	indexBlocks, err := c.Index.Blocks()
	if err != nil {
		return slab.Config{}, err
	}

	// Geometry, index, super block, minimal block map, one slab, journal,
	// and summary all have to fit.
	minimum := 1 + indexBlocks + 1 +
		blockmap.PageCount(1, types.DefaultBlockMapTreeRootCount) +
		c.SlabSize + c.RecoveryJournalSize + types.SlabSummaryBlocks
	if c.PhysicalBlocks < minimum {
		return slab.Config{}, errors.Wrapf(status.ErrOutOfRange,
			"device of %d blocks is smaller than the %d block minimum",
			c.PhysicalBlocks, minimum)
	}

	return slabConfig, nil
}

// planLayout derives the logical capacity (when asked to fill the device)
// and carves the partition layout starting one block past the data-region
// origin, which holds the super block. Format and inspect share this path
// so a loaded volume reconstructs the exact layout it was formatted with.
func planLayout(physicalBlocks types.BlockCount, dataRegionStart types.PhysicalBlockNumber,
	config *Config, slabConfig slab.Config) (types.BlockCount, *layout.VDOLayout, error) {

	start := dataRegionStart + 1
	logical := config.LogicalBlocks

	blockMapBlocks := blockmap.PageCount(logical, types.DefaultBlockMapTreeRootCount)
	if logical == 0 {
		available := physicalBlocks - types.BlockCount(start)
		fixed := config.RecoveryJournalSize + types.SlabSummaryBlocks
		if fixed >= available {
			return 0, nil, errors.Wrapf(status.ErrOutOfRange,
				"no allocator space after %d blocks of fixed partitions", fixed)
		}

		// The block map partition and the depot trade blocks: growing
		// the logical capacity grows the forest, which shrinks the
		// depot. Grow the forest from its minimum until the sizes agree.
		for i := 0; i < 16; i++ {
			if blockMapBlocks+fixed >= available {
				return 0, nil, errors.Wrap(status.ErrOutOfRange,
					"block map leaves no room for the depot")
			}
			depotBlocks := ((available - blockMapBlocks - fixed) /
				config.SlabSize) * config.SlabSize
			if depotBlocks == 0 {
				return 0, nil, errors.Wrapf(status.ErrOutOfRange,
					"remaining space cannot hold a slab of %d blocks",
					config.SlabSize)
			}
			slabCount := types.SlabCount(depotBlocks / config.SlabSize)
			dataBlocks := types.BlockCount(slabCount) * slabConfig.DataBlocks
			logical = blockmap.ComputeLogicalBlocks(dataBlocks,
				types.DefaultBlockMapTreeRootCount)
			next := blockmap.PageCount(logical, types.DefaultBlockMapTreeRootCount)
			if next == blockMapBlocks {
				break
			}
			blockMapBlocks = next
		}
	}

	l, err := layout.Make(physicalBlocks, start, blockMapBlocks,
		config.RecoveryJournalSize, types.SlabSummaryBlocks, config.SlabSize)
	if err != nil {
		return 0, nil, err
	}

	depot := l.Partitions[layout.BlockAllocatorPartition]
	if slabCount := depot.Length / config.SlabSize; slabCount > types.MaxSlabs {
		return 0, nil, errors.Wrapf(status.ErrOutOfRange,
			"%d slabs exceed the maximum of %d", slabCount, types.MaxSlabs)
	}

	return logical, l, nil
}
