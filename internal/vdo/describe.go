package vdo

import (
	"github.com/cockroachdb/errors"

	"github.com/deploymenttheory/go-vdo/internal/geometry"
	"github.com/deploymenttheory/go-vdo/internal/interfaces"
	"github.com/deploymenttheory/go-vdo/internal/layout"
	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/superblock"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// Description is a read-only view of a formatted volume: its geometry, its
// super block, and the partition layout reconstructed from them.
type Description struct {
	Geometry   *geometry.VolumeGeometry
	SuperBlock *superblock.SuperBlock
	Layout     *layout.VDOLayout
}

// Describe loads the volume's metadata without modifying the device. The
// layout is re-derived from the persisted configuration and cross-checked
// against the depot bounds the super block records.
func Describe(layer interfaces.Layer) (*Description, error) {
	g, err := geometry.Load(layer)
	if err != nil {
		return nil, err
	}
	sb, err := superblock.Load(layer, g.DataRegionStart())
	if err != nil {
		return nil, err
	}

	config := &Config{
		PhysicalBlocks:      sb.Component.Config.PhysicalBlocks,
		LogicalBlocks:       sb.Component.Config.LogicalBlocks,
		SlabSize:            sb.Component.Config.SlabSize,
		SlabJournalBlocks:   sb.Component.Config.SlabJournalBlocks,
		RecoveryJournalSize: sb.Component.Config.RecoveryJournalSize,
		Index:               g.IndexConfig,
	}
	_, l, err := planLayout(config.PhysicalBlocks, g.DataRegionStart(),
		config, sb.Depot.SlabConfig)
	if err != nil {
		return nil, err
	}

	depot := l.Partitions[layout.BlockAllocatorPartition]
	if depot.Offset != sb.Depot.FirstBlock ||
		depot.Offset+types.PhysicalBlockNumber(depot.Length) != sb.Depot.LastBlock {
		return nil, errors.Wrap(status.ErrCorrupt,
			"super block depot bounds do not match the derived layout")
	}

	return &Description{Geometry: g, SuperBlock: sb, Layout: l}, nil
}
