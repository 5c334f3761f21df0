package slab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

func TestConfigureDefaultSlab(t *testing.T) {
	config, err := Configure(8192, 224)
	require.NoError(t, err)

	assert.Equal(t, types.BlockCount(8192), config.SlabBlocks)
	assert.Equal(t, types.BlockCount(224), config.SlabJournalBlocks)
	// 7968 counters at one byte each need two blocks.
	assert.Equal(t, types.BlockCount(2), config.ReferenceCountBlocks)
	assert.Equal(t, types.BlockCount(7966), config.DataBlocks)

	assert.Equal(t, types.BlockCount(168), config.SlabJournalFlushingThreshold)
	assert.Equal(t, types.BlockCount(208), config.SlabJournalBlockingThreshold)
	assert.Equal(t, types.BlockCount(216), config.SlabJournalScrubbingThreshold)
}

func TestConfigurePartitionsWholeSlab(t *testing.T) {
	// Every block of the slab is accounted for exactly once.
	for _, slabSize := range []types.BlockCount{128, 1024, 8192, 1 << 23} {
		config, err := Configure(slabSize, types.MinSlabJournalBlocks)
		require.NoError(t, err, "slab size %d", slabSize)
		assert.Equal(t, slabSize,
			config.DataBlocks+config.ReferenceCountBlocks+config.SlabJournalBlocks,
			"slab size %d does not tile", slabSize)
	}
}

func TestConfigureRejectsBadSizes(t *testing.T) {
	cases := []struct {
		name          string
		slabSize      types.BlockCount
		journalBlocks types.BlockCount
	}{
		{"not a power of two", 8000, 224},
		{"below minimum", 64, 8},
		{"above maximum", 1 << 24, 224},
		{"journal too small", 8192, 4},
		{"journal at half the slab", 8192, 4096},
		{"journal over half the slab", 8192, 5000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Configure(tc.slabSize, tc.journalBlocks)
			assert.ErrorIs(t, err, status.ErrOutOfRange)
		})
	}
}
