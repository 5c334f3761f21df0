package geometry

import (
	"github.com/cockroachdb/errors"

	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// Recognised dedup index memory classes, in MiB. Larger indexes are whole
// gibibyte multiples.
const (
	IndexMemory256MB uint32 = 256
	IndexMemory512MB uint32 = 512
	IndexMemory768MB uint32 = 768
	IndexMemory1GB   uint32 = 1024
)

// IndexConfig describes the dedup index the volume is formatted with. A nil
// IndexConfig means the volume carries no index and the data region starts
// immediately after the geometry block.
type IndexConfig struct {
	// MemoryMB is the index memory class: 256, 512, 768, or a multiple of
	// 1024.
	MemoryMB uint32

	// CheckpointFrequency is the index checkpointing interval.
	CheckpointFrequency uint32

	// Sparse selects the sparse index variant, which trades memory for a
	// ten times larger on-disk footprint.
	Sparse bool
}

// On-disk blocks reserved for each dense memory class.
var denseIndexBlocks = map[uint32]types.BlockCount{
	IndexMemory256MB: 65536,
	IndexMemory512MB: 131072,
	IndexMemory768MB: 196608,
}

const (
	denseIndexBlocksPerGB types.BlockCount = 262144
	sparseIndexMultiplier types.BlockCount = 10
)

// Blocks returns the size of the on-disk index region for the configuration.
func (c *IndexConfig) Blocks() (types.BlockCount, error) {
	if c == nil {
		return 0, nil
	}
	blocks, ok := denseIndexBlocks[c.MemoryMB]
	if !ok {
		if c.MemoryMB == 0 || c.MemoryMB%IndexMemory1GB != 0 {
			return 0, errors.Wrapf(status.ErrOutOfRange,
				"invalid index memory class %d MB", c.MemoryMB)
		}
		blocks = types.BlockCount(c.MemoryMB/IndexMemory1GB) * denseIndexBlocksPerGB
	}
	if c.Sparse {
		blocks *= sparseIndexMultiplier
	}
	return blocks, nil
}
