// Package blockmap sizes the block map forest: the trees of fan-out 812
// that map logical block numbers to physical ones.
package blockmap

import "github.com/deploymenttheory/go-vdo/internal/types"

func ceilDiv(n, d types.BlockCount) types.BlockCount {
	return (n + d - 1) / d
}

// PageCount returns the total number of block map pages needed to map
// logicalBlocks entries: the leaf pages plus the interior pages of every
// root's tree. Leaves are partitioned across rootCount roots and each level
// folds the one below it by the page fan-out until a single page per root
// remains.
func PageCount(logicalBlocks types.BlockCount, rootCount uint32) types.BlockCount {
	leaves := ceilDiv(logicalBlocks, types.BlockMapEntriesPerPage)
	if leaves == 0 {
		leaves = 1
	}

	levelSize := ceilDiv(leaves, types.BlockCount(rootCount))
	var interior types.BlockCount
	for height := 0; height < types.BlockMapTreeHeight; height++ {
		levelSize = ceilDiv(levelSize, types.BlockMapEntriesPerPage)
		interior += levelSize
		if levelSize == 1 {
			break
		}
	}

	return leaves + interior*types.BlockCount(rootCount)
}

// ComputeLogicalBlocks returns the logical capacity to use when the caller
// asked to fill the device: the data blocks of the depot, less the forest
// needed to map that many entries.
func ComputeLogicalBlocks(dataBlocks types.BlockCount, rootCount uint32) types.BlockCount {
	overhead := PageCount(dataBlocks, rootCount)
	if overhead >= dataBlocks {
		return 0
	}
	return dataBlocks - overhead
}
