package blockmap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deploymenttheory/go-vdo/internal/types"
)

const roots = types.DefaultBlockMapTreeRootCount

func TestPageCountTable(t *testing.T) {
	// Hand-computed against the fixed fan-out of 812 entries per page and
	// 60 tree roots.
	cases := []struct {
		logical types.BlockCount
		pages   types.BlockCount
	}{
		{0, 61},           // one leaf minimum, one root page per root
		{1, 61},           //
		{812, 61},         // still a single leaf
		{813, 62},         // second leaf
		{48720, 120},      // 60 leaves, one per root
		{1048576, 1352},   // 1292 leaves + 60 root pages
		{39560640, 48780}, // 812 leaves per root, still one interior level
		{39560641, 48901}, // spills into a second interior level
	}
	for _, tc := range cases {
		assert.Equal(t, tc.pages, PageCount(tc.logical, roots),
			"page count for %d logical blocks", tc.logical)
	}
}

func TestPageCountMonotone(t *testing.T) {
	// The sizing function must never shrink as the logical size grows.
	previous := PageCount(0, roots)
	for logical := types.BlockCount(1); logical < 2_000_000; logical += 979 {
		current := PageCount(logical, roots)
		assert.GreaterOrEqual(t, current, previous,
			"page count shrank between %d and %d logical blocks",
			logical-979, logical)
		previous = current
	}
}

func TestComputeLogicalBlocks(t *testing.T) {
	for _, dataBlocks := range []types.BlockCount{100, 7966, 119490, 1 << 22} {
		logical := ComputeLogicalBlocks(dataBlocks, roots)
		assert.Less(t, logical, dataBlocks)

		// The derived capacity plus its own forest always fits the data
		// blocks it was derived from.
		assert.LessOrEqual(t, logical+PageCount(logical, roots), dataBlocks,
			"derived logical size for %d data blocks does not fit", dataBlocks)
	}
}

func TestComputeLogicalBlocksTiny(t *testing.T) {
	// A region smaller than its own forest overhead has no capacity.
	assert.Equal(t, types.BlockCount(0), ComputeLogicalBlocks(10, roots))
}
