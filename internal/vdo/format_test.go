package vdo

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-vdo/internal/blockmap"
	"github.com/deploymenttheory/go-vdo/internal/device"
	"github.com/deploymenttheory/go-vdo/internal/geometry"
	"github.com/deploymenttheory/go-vdo/internal/layout"
	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/superblock"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// 512 MiB device, the default slab geometry of the tests.
func minimumConfig() *Config {
	return &Config{
		SlabSize:            8192,
		SlabJournalBlocks:   224,
		RecoveryJournalSize: 2048,
	}
}

func formatMinimum(t *testing.T) *device.MemoryLayer {
	t.Helper()
	layer := device.NewMemoryLayer(131072)
	require.NoError(t, Format(layer, minimumConfig()))
	return layer
}

func TestFormatMinimum(t *testing.T) {
	layer := formatMinimum(t)

	g, err := geometry.Load(layer)
	require.NoError(t, err)
	assert.Equal(t, types.PhysicalBlockNumber(1), g.DataRegionStart())

	sb, err := superblock.Load(layer, g.DataRegionStart())
	require.NoError(t, err)
	assert.Equal(t, types.StateNew, sb.Component.State)
	assert.Zero(t, sb.Component.CompleteRecoveries)
	assert.GreaterOrEqual(t, sb.Depot.SlabCount, types.SlabCount(1))
	assert.Equal(t, g.Nonce, sb.Component.Nonce)
	assert.Equal(t, uint64(1), sb.Journal.Head)
	assert.Equal(t, uint64(1), sb.Journal.Tail)

	// The derived logical capacity leaves room for its own forest.
	logical := sb.Component.Config.LogicalBlocks
	assert.NotZero(t, logical)
	assert.Less(t, logical, types.BlockCount(131072))
}

func TestFormatOverProvisionedLogical(t *testing.T) {
	// A thin-provisioned volume: four times more logical than physical
	// space. The block map for 1048576 logical blocks needs 1292 leaves
	// plus the per-root overhead.
	assert.Equal(t, types.BlockCount(1352),
		blockmap.PageCount(1048576, types.DefaultBlockMapTreeRootCount))

	layer := device.NewMemoryLayer(262144)
	config := minimumConfig()
	config.LogicalBlocks = 1048576
	require.NoError(t, Format(layer, config))

	d, err := Describe(layer)
	require.NoError(t, err)
	assert.Equal(t, types.BlockCount(1048576), d.SuperBlock.Component.Config.LogicalBlocks)
	assert.Equal(t, types.BlockCount(1352),
		d.Layout.Partitions[layout.BlockMapPartition].Length)
}

func TestFormatRejectsUnsatisfiableLogical(t *testing.T) {
	// The same logical size on a much smaller device: the block map alone
	// no longer leaves a slab's worth of allocator space.
	layer := device.NewMemoryLayer(11264)
	config := minimumConfig()
	config.LogicalBlocks = 1048576
	err := Format(layer, config)
	assert.ErrorIs(t, err, status.ErrOutOfRange)
}

func TestForceRebuildOnCleanVolume(t *testing.T) {
	layer := formatMinimum(t)
	err := ForceRebuild(layer)
	assert.ErrorIs(t, err, status.ErrNotReadOnly)
}

func TestReadOnlyThenForceRebuild(t *testing.T) {
	layer := formatMinimum(t)

	require.NoError(t, SetReadOnlyMode(layer))
	require.NoError(t, ForceRebuild(layer))

	g, err := geometry.Load(layer)
	require.NoError(t, err)
	sb, err := superblock.Load(layer, g.DataRegionStart())
	require.NoError(t, err)
	assert.Equal(t, types.StateForceRebuild, sb.Component.State)
}

func TestReconfigureIsIdempotent(t *testing.T) {
	layer := formatMinimum(t)

	require.NoError(t, SetReadOnlyMode(layer))
	first := append([]byte(nil), layer.BlockData(1)...)

	require.NoError(t, SetReadOnlyMode(layer))
	assert.Equal(t, first, layer.BlockData(1),
		"rewriting the same state must be byte-identical")
}

func TestCorruptGeometryFailsChecksum(t *testing.T) {
	layer := formatMinimum(t)
	layer.BlockData(0)[40] ^= 0x01

	_, err := geometry.Load(layer)
	assert.ErrorIs(t, err, status.ErrBadChecksum)
}

func TestTornFormatLeavesUnloadableDevice(t *testing.T) {
	// Fail the super block write: the geometry must never be written, so
	// the device stays unrecognisable.
	layer := device.NewMemoryLayer(131072)
	layer.FailWritesAt(1)

	err := Format(layer, minimumConfig())
	assert.ErrorIs(t, err, status.ErrIOError)

	_, err = geometry.Load(layer)
	assert.ErrorIs(t, err, status.ErrBadMagic)
	assert.Equal(t, make([]byte, types.BlockSize), layer.BlockData(0))
}

func TestFormatWithIndex(t *testing.T) {
	layer := device.NewMemoryLayer(262144)
	config := minimumConfig()
	config.Index = &geometry.IndexConfig{MemoryMB: geometry.IndexMemory256MB}
	require.NoError(t, Format(layer, config))

	g, err := geometry.Load(layer)
	require.NoError(t, err)
	assert.Equal(t, types.BlockCount(65536), g.Regions[geometry.IndexRegion].Length)
	assert.Equal(t, types.PhysicalBlockNumber(65537), g.DataRegionStart())

	sb, err := superblock.Load(layer, g.DataRegionStart())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, sb.Depot.SlabCount, types.SlabCount(1))
}

func TestFormatRejectsPhysicalMismatch(t *testing.T) {
	layer := device.NewMemoryLayer(131072)
	config := minimumConfig()
	config.PhysicalBlocks = 65536
	err := Format(layer, config)
	assert.ErrorIs(t, err, status.ErrOutOfRange)
}

func TestFormatRejectsTinyDevice(t *testing.T) {
	layer := device.NewMemoryLayer(4096)
	err := Format(layer, minimumConfig())
	assert.ErrorIs(t, err, status.ErrOutOfRange)
}

func TestFormatWithNonceIsReproducible(t *testing.T) {
	id := uuid.MustParse("99999999-8888-7777-6666-555555555555")
	var blocks [2][]byte
	for i := range blocks {
		layer := device.NewMemoryLayer(131072)
		require.NoError(t, FormatWithNonce(layer, minimumConfig(), 42, id))
		blocks[i] = append(append([]byte(nil), layer.BlockData(0)...),
			layer.BlockData(1)...)
	}
	assert.Equal(t, blocks[0], blocks[1],
		"identical identity must produce identical metadata")
}

func TestDescribeMatchesFormat(t *testing.T) {
	layer := formatMinimum(t)
	d, err := Describe(layer)
	require.NoError(t, err)

	depot := d.Layout.Partitions[layout.BlockAllocatorPartition]
	assert.Equal(t, d.SuperBlock.Depot.FirstBlock, depot.Offset)
	assert.Equal(t, types.SlabCount(depot.Length/8192), d.SuperBlock.Depot.SlabCount)
	assert.Zero(t, depot.Length%8192)
}
